package llm

import (
	"context"
	"sync"
	"time"
)

// defaultResponseTokenEstimate is charged for the reply when a request sets
// no MaxTokens.
const defaultResponseTokenEstimate = 512

// RateLimitedClient spaces calls to the delegate by a fixed interval and,
// optionally, by a tokens-per-minute budget. Waiting honors ctx.
type RateLimitedClient struct {
	delegate     Client
	counter      TokenCounter
	interval     time.Duration
	tokensPerMin int

	mu          sync.Mutex
	nextAllowed time.Time
	nextToken   time.Time
}

// NewRateLimitedClient wraps base. With both limits disabled it returns base itself.
func NewRateLimitedClient(base Client, interval time.Duration, tokensPerMinute int, counter TokenCounter) Client {
	if base == nil || (interval <= 0 && tokensPerMinute <= 0) {
		return base
	}
	if counter == nil {
		counter = HeuristicTokenCounter
	}
	return &RateLimitedClient{
		delegate:     base,
		counter:      counter,
		interval:     interval,
		tokensPerMin: max(tokensPerMinute, 0),
	}
}

// reserve books the next slot and returns how long the caller has to wait for it.
func (c *RateLimitedClient) reserve(tokens int) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	start := now

	if c.interval > 0 {
		if c.nextAllowed.After(start) {
			start = c.nextAllowed
		}
		c.nextAllowed = start.Add(c.interval)
	}

	if c.tokensPerMin > 0 && tokens > 0 {
		if c.nextToken.After(start) {
			start = c.nextToken
		}
		c.nextToken = start.Add(tokensToDuration(tokens, c.tokensPerMin))
	}

	return start.Sub(now)
}

func (c *RateLimitedClient) wait(ctx context.Context, tokens int) error {
	delay := c.reserve(tokens)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *RateLimitedClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.wait(ctx, c.estimate(userPrompt(prompt))); err != nil {
		return "", err
	}
	return c.delegate.Complete(ctx, prompt)
}

func (c *RateLimitedClient) CompleteWithRequest(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := c.wait(ctx, c.estimate(req)); err != nil {
		return nil, err
	}
	return c.delegate.CompleteWithRequest(ctx, req)
}

func (c *RateLimitedClient) GetModelName() string {
	return c.delegate.GetModelName()
}

func (c *RateLimitedClient) estimate(req *CompletionRequest) int {
	if req == nil {
		return defaultResponseTokenEstimate
	}

	model := c.delegate.GetModelName()
	tokens := c.counter.CountTokens(model, req.SystemPrompt)
	for _, msg := range req.Messages {
		if msg != nil {
			tokens += c.counter.CountTokens(model, msg.Content)
		}
	}

	if req.MaxTokens > 0 {
		return tokens + req.MaxTokens
	}
	return tokens + defaultResponseTokenEstimate
}

func tokensToDuration(tokens, tokensPerMinute int) time.Duration {
	if tokensPerMinute <= 0 || tokens <= 0 {
		return 0
	}
	return time.Duration(float64(time.Minute) * float64(tokens) / float64(tokensPerMinute))
}
