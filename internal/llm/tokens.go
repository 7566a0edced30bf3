package llm

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// TokenCounter estimates how many tokens a text costs for a model.
type TokenCounter interface {
	CountTokens(model, text string) int
}

// TokenCounterFunc adapts a function to TokenCounter.
type TokenCounterFunc func(model, text string) int

// CountTokens calls f.
func (f TokenCounterFunc) CountTokens(model, text string) int {
	return f(model, text)
}

// HeuristicTokenCounter approximates one token per four runes.
var HeuristicTokenCounter TokenCounter = TokenCounterFunc(func(_ string, text string) int {
	return charsToTokens(utf8.RuneCountInString(text))
})

// TiktokenCounter counts with the model's BPE encoding, or cl100k_base for
// models tiktoken does not know (Gemini, Claude). When no encoding can be
// loaded it falls back to the rune heuristic.
type TiktokenCounter struct {
	mu       sync.Mutex
	encoders map[string]*tiktoken.Tiktoken
}

// NewTiktokenCounter creates a counter that loads encodings lazily.
func NewTiktokenCounter() *TiktokenCounter {
	return &TiktokenCounter{encoders: make(map[string]*tiktoken.Tiktoken)}
}

// CountTokens implements TokenCounter.
func (c *TiktokenCounter) CountTokens(model, text string) int {
	if text == "" {
		return 0
	}
	if encoder := c.encoder(model); encoder != nil {
		return len(encoder.Encode(text, nil, nil))
	}
	return HeuristicTokenCounter.CountTokens(model, text)
}

func (c *TiktokenCounter) encoder(model string) *tiktoken.Tiktoken {
	c.mu.Lock()
	defer c.mu.Unlock()

	if encoder, ok := c.encoders[model]; ok {
		return encoder
	}

	encoder, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoder, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			encoder = nil
		}
	}
	// Failures are cached as nil so a missing BPE file is only fetched once.
	c.encoders[model] = encoder
	return encoder
}

// EstimateTokenCount returns a rough token estimate for the provided content.
func EstimateTokenCount(content string) int {
	return HeuristicTokenCounter.CountTokens("", content)
}

func charsToTokens(chars int) int {
	if chars <= 0 {
		return 0
	}
	return (chars + 3) / 4
}
