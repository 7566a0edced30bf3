package web

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/codefionn/codecompanion/internal/consts"
	"github.com/codefionn/codecompanion/internal/flows"
	"github.com/codefionn/codecompanion/internal/logger"
)

// Analyzer runs the error explanation flow.
type Analyzer interface {
	ExplainJavaError(ctx context.Context, input flows.ExplainJavaErrorInput) (flows.ExplainJavaErrorOutput, error)
}

// AnalysisBroker debounces live analysis requests of one connection. Only
// the newest submission is analyzed; a newer one cancels the timer and any
// in-flight analysis of the previous one.
type AnalysisBroker struct {
	analyzer Analyzer
	delay    time.Duration
	timeout  time.Duration
	send     func(*WebMessage)

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	stopped bool
}

// NewAnalysisBroker creates a broker that reports results through send.
func NewAnalysisBroker(analyzer Analyzer, delay time.Duration, send func(*WebMessage)) *AnalysisBroker {
	return &AnalysisBroker{
		analyzer: analyzer,
		delay:    delay,
		timeout:  consts.Timeout2Minutes,
		send:     send,
	}
}

// ShouldAnalyze reports whether text looks like Java source worth a live
// analysis: it starts with "public" once trimmed and is longer than the
// minimum length.
func ShouldAnalyze(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), consts.LiveAnalysisPrefix) &&
		len(text) > consts.LiveAnalysisMinLength
}

// Submit schedules content for analysis after the debounce delay.
func (b *AnalysisBroker) Submit(content string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return
	}
	b.resetLocked()
	id := b.seq
	b.timer = time.AfterFunc(b.delay, func() { b.run(id, content) })
}

// Stop cancels pending and running analyses. Later submissions are ignored.
func (b *AnalysisBroker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetLocked()
	b.stopped = true
}

func (b *AnalysisBroker) resetLocked() {
	b.seq++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

func (b *AnalysisBroker) run(id uint64, content string) {
	if !ShouldAnalyze(content) {
		if b.current(id) {
			b.send(&WebMessage{Type: MessageTypeAnalysisClear})
		}
		return
	}

	b.mu.Lock()
	if id != b.seq {
		b.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	b.cancel = cancel
	b.mu.Unlock()
	defer cancel()

	b.send(&WebMessage{Type: MessageTypeAnalyzing})
	out, err := b.analyzer.ExplainJavaError(ctx, flows.ExplainJavaErrorInput{JavaCode: content})

	if !b.current(id) {
		return
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("Live analysis failed: %v", err)
		}
		b.send(analysisMessage(true, AnalysisFailedExplanation))
		return
	}
	b.send(analysisMessage(out.HasError, out.Explanation))
}

func (b *AnalysisBroker) current(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return id == b.seq && !b.stopped
}

// preview shortens an explanation for the inline tooltip.
func preview(explanation string) string {
	runes := []rune(explanation)
	if len(runes) <= consts.AnalysisPreviewLength {
		return explanation
	}
	return string(runes[:consts.AnalysisPreviewLength]) + "..."
}
