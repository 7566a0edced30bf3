package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"none", LevelNone},
		{"off", LevelNone},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if got := Level(42).String(); got != "UNKNOWN" {
		t.Errorf("Level(42).String() = %q, want UNKNOWN", got)
	}
	if got := LevelWarn.String(); got != "WARN" {
		t.Errorf("LevelWarn.String() = %q, want WARN", got)
	}
}

func TestNew_File(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "codecompanion.log")

	l, err := New(LevelInfo, logPath, "web")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Info("listening on %s", "localhost:9002")
	l.Debug("should not appear")
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "[INFO] [web] listening on localhost:9002") {
		t.Errorf("missing info line, got %q", text)
	}
	if strings.Contains(text, "should not appear") {
		t.Errorf("debug line written at info level")
	}
}

func TestNew_DisabledWhenNoPath(t *testing.T) {
	l, err := New(LevelDebug, "", "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Error("dropped")
	if err := l.Close(); err != nil {
		t.Errorf("Close on discard logger: %v", err)
	}
}

func TestNewWithWriter_LevelsAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(LevelWarn, &buf, "flows")

	child := l.WithPrefix("explain")
	child.Info("hidden")
	child.Warn("model returned no output")

	l.SetLevel(LevelDebug)
	l.Debug("now visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "[WARN] [flows:explain] model returned no output") {
		t.Errorf("missing prefixed warning: %q", out)
	}
	if !strings.Contains(out, "[DEBUG] [flows] now visible") {
		t.Errorf("level change not applied: %q", out)
	}
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(LevelInfo, &buf, "")

	s := NewSlog(l).With("route", "/api/highlight").WithGroup("req")
	s.Debug("skipped")
	s.Info("served", "status", 200, slog.Group("timing", "ms", 3))

	out := buf.String()
	if strings.Contains(out, "skipped") {
		t.Errorf("debug record passed the info level: %q", out)
	}
	if !strings.Contains(out, "served route=/api/highlight req.status=200 req.timing.ms=3") {
		t.Errorf("unexpected attribute rendering: %q", out)
	}
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(LevelDebug, &buf, "http")

	StdLogger(l, slog.LevelError).Printf("http: TLS handshake error")
	if !strings.Contains(buf.String(), "[ERROR] [http] http: TLS handshake error") {
		t.Errorf("std logger did not forward: %q", buf.String())
	}
}

func TestGlobalLogger(t *testing.T) {
	if Global() == nil {
		t.Fatal("Global() returned nil")
	}

	logPath := filepath.Join(t.TempDir(), "global.log")
	if err := Init(LevelDebug, logPath); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Debug("debug %d", 1)
	Info("info")
	Warn("warn")
	Error("error")
	if err := Global().Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{"debug 1", "[INFO] info", "[WARN] warn", "[ERROR] error"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("global log missing %q", want)
		}
	}
}
