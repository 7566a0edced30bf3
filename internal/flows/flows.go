// Package flows implements the two model-backed requests: generating Java
// code from a description and explaining errors in Java code.
package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/codefionn/codecompanion/internal/cache"
	"github.com/codefionn/codecompanion/internal/consts"
	"github.com/codefionn/codecompanion/internal/history"
	"github.com/codefionn/codecompanion/internal/htmlconv"
	"github.com/codefionn/codecompanion/internal/llm"
	"github.com/codefionn/codecompanion/internal/logger"
	"github.com/codefionn/codecompanion/internal/syntax"
)

// Replacement texts used when the model reply is incomplete.
const (
	NoResponseExplanation     = "Error: Could not analyze the code. The AI model did not return a valid response."
	MissingErrorExplanation   = "An error was detected but no specific explanation was provided."
	NoErrorDefaultExplanation = "Analysis complete."
)

const (
	generateSchemaName = "generate_java_code"
	explainSchemaName  = "explain_java_error"
)

var (
	// ErrInputTooShort is returned when an input is below its minimum length.
	ErrInputTooShort = errors.New("input too short")
	// ErrInputTooLong is returned when an input exceeds the token budget.
	ErrInputTooLong = errors.New("input too long")
	// ErrNoOutput is returned when the model produced no usable code.
	ErrNoOutput = errors.New("model returned no output")
)

// ModelError wraps a failure of the model call itself.
type ModelError struct {
	Flow string
	Err  error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%s: model request failed: %v", e.Flow, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// IsModelError reports whether err came from the model call.
func IsModelError(err error) bool {
	var modelErr *ModelError
	return errors.As(err, &modelErr)
}

// GenerateJavaCodeInput is the input of the code generation flow.
type GenerateJavaCodeInput struct {
	Description string `json:"description" jsonschema_description:"A natural language description of the Java function."`
}

// GenerateJavaCodeOutput is the result of the code generation flow.
type GenerateJavaCodeOutput struct {
	Code string `json:"code" jsonschema_description:"The generated Java code."`
}

// ExplainJavaErrorInput is the input of the error explanation flow.
type ExplainJavaErrorInput struct {
	JavaCode string `json:"javaCode" jsonschema_description:"The Java code to analyze for errors."`
}

// ExplainJavaErrorOutput is the result of the error explanation flow.
type ExplainJavaErrorOutput struct {
	HasError    bool   `json:"hasError" jsonschema_description:"Whether the Java code has error(s) or not."`
	Explanation string `json:"explanation" jsonschema_description:"The detailed explanation of the error(s) in the Java code, or a message indicating no errors were found. This includes line and column numbers, error types, and suggestions."`
}

// Options tune a Service. Zero values select the defaults.
type Options struct {
	Temperature     float64
	MaxOutputTokens int
	MaxInputTokens  int
	CacheTTL        time.Duration
	Counter         llm.TokenCounter
	History         *history.Store
}

// Service runs the flows against one model client. It is safe for
// concurrent use.
type Service struct {
	client          llm.Client
	temperature     float64
	maxOutputTokens int
	maxInputTokens  int
	counter         llm.TokenCounter
	history         *history.Store
	generateCache   *cache.Cache[GenerateJavaCodeOutput]
	explainCache    *cache.Cache[ExplainJavaErrorOutput]
	log             *logger.Logger
}

// NewService creates a Service.
func NewService(client llm.Client, opts Options) *Service {
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = consts.DefaultMaxTokens
	}
	if opts.MaxInputTokens <= 0 {
		opts.MaxInputTokens = consts.DefaultMaxInputTokens
	}
	if opts.Counter == nil {
		opts.Counter = llm.NewTiktokenCounter()
	}

	return &Service{
		client:          client,
		temperature:     opts.Temperature,
		maxOutputTokens: opts.MaxOutputTokens,
		maxInputTokens:  opts.MaxInputTokens,
		counter:         opts.Counter,
		history:         opts.History,
		generateCache:   cache.New[GenerateJavaCodeOutput]("generate", opts.CacheTTL),
		explainCache:    cache.New[ExplainJavaErrorOutput]("explain", opts.CacheTTL),
		log:             logger.Global().WithPrefix("flows"),
	}
}

// ModelName returns the name of the model behind the service.
func (s *Service) ModelName() string {
	return s.client.GetModelName()
}

// CheckLength rejects values whose trimmed length is below min characters.
func CheckLength(field, value string, min int) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(value)); n < min {
		if min <= 1 {
			return fmt.Errorf("%w: %s must not be empty", ErrInputTooShort, field)
		}
		return fmt.Errorf("%w: %s must be at least %d characters", ErrInputTooShort, field, min)
	}
	return nil
}

func (s *Service) checkTokens(field, value string) error {
	tokens := s.counter.CountTokens(s.client.GetModelName(), value)
	if tokens > s.maxInputTokens {
		return fmt.Errorf("%w: %s is about %d tokens, the limit is %d", ErrInputTooLong, field, tokens, s.maxInputTokens)
	}
	return nil
}

// GenerateJavaCode asks the model for Java code matching the description.
func (s *Service) GenerateJavaCode(ctx context.Context, input GenerateJavaCodeInput) (GenerateJavaCodeOutput, error) {
	if err := CheckLength("description", input.Description, consts.MinDescriptionLength); err != nil {
		return GenerateJavaCodeOutput{}, err
	}
	if err := s.checkTokens("description", input.Description); err != nil {
		return GenerateJavaCodeOutput{}, err
	}

	key := cache.Key("generate", s.client.GetModelName(), input.Description)
	out, hit, err := s.generateCache.GetOrLoad(ctx, key, func(ctx context.Context) (GenerateJavaCodeOutput, error) {
		return s.generate(ctx, input)
	})
	if err != nil {
		return GenerateJavaCodeOutput{}, err
	}
	if hit {
		s.log.Debug("generate: served from cache")
	}
	return out, nil
}

func (s *Service) generate(ctx context.Context, input GenerateJavaCodeInput) (GenerateJavaCodeOutput, error) {
	prompt, err := renderPrompt(generateTemplate, input)
	if err != nil {
		return GenerateJavaCodeOutput{}, err
	}

	start := time.Now()
	resp, err := s.client.CompleteWithRequest(ctx, s.request(prompt, llm.GenerateSchema[GenerateJavaCodeOutput](), generateSchemaName))
	if err != nil {
		return GenerateJavaCodeOutput{}, &ModelError{Flow: "generate", Err: err}
	}
	elapsed := time.Since(start)

	code, ok := decodeGenerated(resp.Content)
	if !ok {
		s.log.Warn("generate: no usable output (%s)", llm.TruncateForError(resp.Content, 200))
		return GenerateJavaCodeOutput{}, ErrNoOutput
	}

	out := GenerateJavaCodeOutput{Code: code}
	s.log.Info("generate: %d chars of code in %s", len(code), elapsed.Round(time.Millisecond))
	s.record(ctx, &history.Run{
		Kind:     history.KindGenerate,
		Input:    input.Description,
		Output:   out.Code,
		Model:    s.client.GetModelName(),
		Duration: elapsed,
	})
	return out, nil
}

// decodeGenerated pulls the code out of a reply. A reply that is not JSON
// but carries a fenced block is accepted as the code itself.
func decodeGenerated(content string) (string, bool) {
	if strings.TrimSpace(content) == "" {
		return "", false
	}

	var raw map[string]any
	if err := llm.ParseLLMJSONResponse(content, &raw); err == nil {
		if validateOutput(generateOutputSchema, raw) != nil {
			return "", false
		}
		code := syntax.ExtractCodeBlock(raw["code"].(string))
		return code, code != ""
	}

	if strings.Contains(content, "```") {
		code := syntax.ExtractCodeBlock(content)
		return code, code != ""
	}
	return "", false
}

// ExplainJavaError asks the model to find and explain errors in the code.
// Incomplete replies are repaired instead of failing: a missing reply
// reports an error with NoResponseExplanation, a missing explanation is
// filled in from HasError.
func (s *Service) ExplainJavaError(ctx context.Context, input ExplainJavaErrorInput) (ExplainJavaErrorOutput, error) {
	if err := CheckLength("javaCode", input.JavaCode, consts.MinPlaygroundCodeLength); err != nil {
		return ExplainJavaErrorOutput{}, err
	}
	if err := s.checkTokens("javaCode", input.JavaCode); err != nil {
		return ExplainJavaErrorOutput{}, err
	}

	key := cache.Key("explain", s.client.GetModelName(), input.JavaCode)
	if out, ok := s.explainCache.Get(key); ok {
		s.log.Debug("explain: served from cache")
		return out, nil
	}

	prompt, err := renderPrompt(explainTemplate, input)
	if err != nil {
		return ExplainJavaErrorOutput{}, err
	}

	start := time.Now()
	resp, err := s.client.CompleteWithRequest(ctx, s.request(prompt, llm.GenerateSchema[ExplainJavaErrorOutput](), explainSchemaName))
	if err != nil {
		return ExplainJavaErrorOutput{}, &ModelError{Flow: "explain", Err: err}
	}
	elapsed := time.Since(start)

	out, complete := decodeExplanation(resp.Content)
	if !complete {
		s.log.Warn("explain: incomplete output repaired (%s)", llm.TruncateForError(resp.Content, 200))
	} else {
		// Repaired replies are not cached so the next request asks again.
		s.explainCache.Set(key, out)
	}

	s.log.Info("explain: hasError=%t in %s", out.HasError, elapsed.Round(time.Millisecond))
	s.record(ctx, &history.Run{
		Kind:     history.KindExplain,
		Input:    input.JavaCode,
		Output:   out.Explanation,
		HasError: out.HasError,
		Model:    s.client.GetModelName(),
		Duration: elapsed,
	})
	return out, nil
}

// decodeExplanation turns a reply into an explanation. The bool is false
// when the reply had to be repaired.
func decodeExplanation(content string) (ExplainJavaErrorOutput, bool) {
	noResponse := ExplainJavaErrorOutput{HasError: true, Explanation: NoResponseExplanation}
	if strings.TrimSpace(content) == "" {
		return noResponse, false
	}

	var raw map[string]any
	if err := llm.ParseLLMJSONResponse(content, &raw); err != nil {
		return noResponse, false
	}
	if err := validateOutput(explainOutputSchema, raw); err != nil {
		return noResponse, false
	}

	out := ExplainJavaErrorOutput{HasError: raw["hasError"].(bool)}
	explanation, _ := raw["explanation"].(string)
	if _, present := raw["explanation"]; !present || raw["explanation"] == nil {
		if out.HasError {
			out.Explanation = MissingErrorExplanation
		} else {
			out.Explanation = NoErrorDefaultExplanation
		}
		return out, false
	}

	if markdown, converted := htmlconv.ConvertIfHTML(explanation); converted {
		explanation = markdown
	}
	out.Explanation = explanation
	return out, true
}

func (s *Service) request(prompt string, schema any, schemaName string) *llm.CompletionRequest {
	return &llm.CompletionRequest{
		Messages:       []*llm.Message{{Role: "user", Content: prompt}},
		SystemPrompt:   jsonReplyInstruction,
		Temperature:    s.temperature,
		MaxTokens:      s.maxOutputTokens,
		ResponseSchema: schema,
		SchemaName:     schemaName,
	}
}

func (s *Service) record(ctx context.Context, run *history.Run) {
	if s.history == nil {
		return
	}
	// A cancelled request still gets its run stored.
	if err := s.history.Record(context.WithoutCancel(ctx), run); err != nil {
		s.log.Warn("failed to record %s run: %v", run.Kind, err)
	}
}
