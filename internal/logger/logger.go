// Package logger is a small leveled logger writing one timestamped line per
// entry to a file, standard error or nowhere.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents a logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelNone disables all logging
	LevelNone
)

// StderrPath selects standard error instead of a log file.
const StderrPath = "-"

const timestampLayout = "2006-01-02 15:04:05.000"

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelNone:  "NONE",
}

var levelAliases = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
	"none":    LevelNone,
	"off":     LevelNone,
}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel parses a config value. Unknown values map to LevelInfo.
func ParseLevel(s string) Level {
	if level, ok := levelAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return level
	}
	return LevelInfo
}

// sink is the destination shared by a logger and the children created with
// WithPrefix. Closing it silences all of them.
type sink struct {
	mu     sync.Mutex
	out    *log.Logger
	closer io.Closer
	closed bool
}

func (s *sink) write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.out.Print(line)
	}
}

func (s *sink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// Logger is a leveled printf-style logger.
type Logger struct {
	mu     sync.RWMutex
	level  Level
	prefix string
	sink   *sink
}

var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

func discard(level Level, prefix string) *Logger {
	return &Logger{level: level, prefix: prefix, sink: &sink{out: log.New(io.Discard, "", 0), closed: true}}
}

// Init replaces the global logger, closing the previous one.
func Init(level Level, logPath string) error {
	l, err := New(level, logPath, "")
	if err != nil {
		return err
	}

	globalMu.Lock()
	previous := globalLogger
	globalLogger = l
	globalMu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}
	return nil
}

// New creates a Logger. An empty path or LevelNone discards output,
// StderrPath writes to standard error and anything else appends to that file.
func New(level Level, logPath string, prefix string) (*Logger, error) {
	switch {
	case level == LevelNone || logPath == "":
		return discard(level, prefix), nil
	case logPath == StderrPath:
		return NewWithWriter(level, os.Stderr, prefix), nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := NewWithWriter(level, file, prefix)
	l.sink.closer = file
	return l, nil
}

// NewWithWriter creates a logger writing to w. Close does not close w.
func NewWithWriter(level Level, w io.Writer, prefix string) *Logger {
	return &Logger{level: level, prefix: prefix, sink: &sink{out: log.New(w, "", 0)}}
}

// Global returns the global logger, a silent one until Init is called.
func Global() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		globalLogger = discard(LevelNone, "")
	}
	return globalLogger
}

// WithPrefix returns a child logger; prefixes nest as "parent:child".
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.prefix != "" {
		prefix = l.prefix + ":" + prefix
	}
	return &Logger{level: l.level, prefix: prefix, sink: l.sink}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) enabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level && level < LevelNone
}

func (l *Logger) log(level Level, format string, args ...any) {
	if !l.enabled(level) {
		return
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format(timestampLayout))
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("] ")
	if l.prefix != "" {
		sb.WriteString("[" + l.prefix + "] ")
	}
	fmt.Fprintf(&sb, format, args...)
	l.sink.write(sb.String())
}

func (l *Logger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(LevelError, format, args...) }

// Close closes the log file when the logger owns one and silences the
// logger and its children.
func (l *Logger) Close() error {
	return l.sink.close()
}

func Debug(format string, args ...any) { Global().Debug(format, args...) }
func Info(format string, args ...any)  { Global().Info(format, args...) }
func Warn(format string, args ...any)  { Global().Warn(format, args...) }
func Error(format string, args ...any) { Global().Error(format, args...) }
