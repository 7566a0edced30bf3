package web

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/codecompanion/internal/flows"
)

type recorder struct {
	mu   sync.Mutex
	msgs []*WebMessage
}

func (r *recorder) send(msg *WebMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) snapshot() []*WebMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*WebMessage(nil), r.msgs...)
}

func (r *recorder) last() *WebMessage {
	msgs := r.snapshot()
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

type analyzerFunc func(ctx context.Context, input flows.ExplainJavaErrorInput) (flows.ExplainJavaErrorOutput, error)

func (f analyzerFunc) ExplainJavaError(ctx context.Context, input flows.ExplainJavaErrorInput) (flows.ExplainJavaErrorOutput, error) {
	return f(ctx, input)
}

func TestShouldAnalyze(t *testing.T) {
	tests := map[string]bool{
		"public class A {}":        true,
		"   public static void x":  true,
		"public class":             false,
		"a function that sorts":    false,
		"Public class Something {": false,
		"":                         false,
	}
	for text, want := range tests {
		assert.Equal(t, want, ShouldAnalyze(text), text)
	}
}

func TestAnalysisBroker_DebouncesToLatest(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	analyzer := analyzerFunc(func(_ context.Context, input flows.ExplainJavaErrorInput) (flows.ExplainJavaErrorOutput, error) {
		mu.Lock()
		seen = append(seen, input.JavaCode)
		mu.Unlock()
		return flows.ExplainJavaErrorOutput{HasError: false, Explanation: "Analysis complete."}, nil
	})

	rec := &recorder{}
	b := NewAnalysisBroker(analyzer, 30*time.Millisecond, rec.send)
	defer b.Stop()

	b.Submit("public class A")
	b.Submit("public class AB")
	b.Submit("public class ABC {}")

	require.Eventually(t, func() bool {
		last := rec.last()
		return last != nil && last.Type == MessageTypeAnalysis
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"public class ABC {}"}, seen)
	last := rec.last()
	require.NotNil(t, last.HasError)
	assert.False(t, *last.HasError)
}

func TestAnalysisBroker_ClearForNonCode(t *testing.T) {
	rec := &recorder{}
	b := NewAnalysisBroker(analyzerFunc(func(context.Context, flows.ExplainJavaErrorInput) (flows.ExplainJavaErrorOutput, error) {
		t.Error("analyzer must not run")
		return flows.ExplainJavaErrorOutput{}, nil
	}), time.Millisecond, rec.send)
	defer b.Stop()

	b.Submit("sort an array of ints")
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, MessageTypeAnalysisClear, rec.last().Type)
}

func TestAnalysisBroker_Failure(t *testing.T) {
	rec := &recorder{}
	b := NewAnalysisBroker(analyzerFunc(func(context.Context, flows.ExplainJavaErrorInput) (flows.ExplainJavaErrorOutput, error) {
		return flows.ExplainJavaErrorOutput{}, errors.New("model down")
	}), time.Millisecond, rec.send)
	defer b.Stop()

	b.Submit("public class Broken {")
	require.Eventually(t, func() bool {
		last := rec.last()
		return last != nil && last.Type == MessageTypeAnalysis
	}, time.Second, 5*time.Millisecond)

	last := rec.last()
	assert.True(t, *last.HasError)
	assert.Equal(t, AnalysisFailedExplanation, last.Explanation)
}

func TestAnalysisBroker_NewInputCancelsInFlight(t *testing.T) {
	started := make(chan struct{}, 2)
	analyzer := analyzerFunc(func(ctx context.Context, input flows.ExplainJavaErrorInput) (flows.ExplainJavaErrorOutput, error) {
		started <- struct{}{}
		if strings.Contains(input.JavaCode, "Slow") {
			<-ctx.Done()
			return flows.ExplainJavaErrorOutput{}, ctx.Err()
		}
		return flows.ExplainJavaErrorOutput{HasError: true, Explanation: "fast"}, nil
	})

	rec := &recorder{}
	b := NewAnalysisBroker(analyzer, time.Millisecond, rec.send)
	defer b.Stop()

	b.Submit("public class Slow {")
	<-started
	b.Submit("public class Fast {")

	require.Eventually(t, func() bool {
		last := rec.last()
		return last != nil && last.Type == MessageTypeAnalysis
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	for _, msg := range rec.snapshot() {
		if msg.Type == MessageTypeAnalysis {
			assert.Equal(t, "fast", msg.Explanation, "cancelled analysis must not report")
		}
	}
}

func TestAnalysisBroker_StopIgnoresLaterInput(t *testing.T) {
	rec := &recorder{}
	b := NewAnalysisBroker(analyzerFunc(func(context.Context, flows.ExplainJavaErrorInput) (flows.ExplainJavaErrorOutput, error) {
		return flows.ExplainJavaErrorOutput{}, nil
	}), time.Millisecond, rec.send)

	b.Stop()
	b.Submit("public class Late {}")
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	long := strings.Repeat("é", 301)
	got := preview(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 303, len([]rune(got)))
}
