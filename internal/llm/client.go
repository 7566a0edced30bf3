// Package llm talks to hosted language models and turns their replies into
// structured values.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/codefionn/codecompanion/internal/provider"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// CompletionRequest represents a completion request
type CompletionRequest struct {
	Messages     []*Message `json:"messages"`
	SystemPrompt string     `json:"system_prompt,omitempty"`
	Temperature  float64    `json:"temperature"`
	MaxTokens    int        `json:"max_tokens,omitempty"`

	// ResponseSchema asks for a JSON reply matching the schema, usually
	// produced by GenerateSchema. SchemaName labels it for providers that
	// require a name.
	ResponseSchema any    `json:"response_schema,omitempty"`
	SchemaName     string `json:"schema_name,omitempty"`
}

// Usage reports token consumption when the provider returns it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// CompletionResponse represents a completion response
type CompletionResponse struct {
	Content    string `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      Usage  `json:"usage"`
}

// Client is the interface for LLM clients
type Client interface {
	// CompleteWithRequest sends a completion request and returns the response
	CompleteWithRequest(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
	// Complete is a simplified version for single prompt
	Complete(ctx context.Context, prompt string) (string, error)
	// GetModelName returns the model name
	GetModelName() string
}

// NewClient builds the client for a provider name. An empty model selects
// the provider default.
func NewClient(providerName, apiKey, model string) (Client, error) {
	name := provider.Canonical(providerName)
	if err := provider.Validate(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%s: no API key configured (set api_key or one of %s)",
			name, strings.Join(provider.EnvVarHints(name), ", "))
	}
	if strings.TrimSpace(model) == "" {
		model = provider.DefaultModel(name)
	}

	switch name {
	case provider.OpenAI:
		return NewOpenAIClient(apiKey, model)
	case provider.Anthropic:
		return NewAnthropicClient(apiKey, model)
	default:
		return NewGoogleAIClient(apiKey, model)
	}
}

func userPrompt(prompt string) *CompletionRequest {
	return &CompletionRequest{
		Messages: []*Message{{Role: "user", Content: prompt}},
	}
}
