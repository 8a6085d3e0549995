// ABOUTME: Leveled logging for the hook engine, printf-style, on stderr by default
// ABOUTME: Global level via SetLevel; colored level prefixes via fatih/color when the output is a TTY

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var level atomic.Int64

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

var prefixes = map[slog.Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

func init() {
	level.Store(int64(LevelInfo))
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Store(int64(l))
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return slog.Level(level.Load())
}

// ParseLevel maps "debug", "info", "warn" or "error" to a level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// SetOutput redirects log output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

// Debug logs a debug message if the level allows it.
func Debug(format string, args ...any) {
	logf(LevelDebug, "DEBUG", format, args...)
}

// Info logs an info message if the level allows it.
func Info(format string, args ...any) {
	logf(LevelInfo, "INFO", format, args...)
}

// Warn logs a warning message if the level allows it.
func Warn(format string, args ...any) {
	logf(LevelWarn, "WARN", format, args...)
}

// Error logs an error message (always emitted).
func Error(format string, args ...any) {
	logf(LevelError, "ERROR", format, args...)
}

func logf(l slog.Level, name, format string, args ...any) {
	if l < LevelError && slog.Level(level.Load()) > l {
		return
	}
	msg := fmt.Sprintf(format, args...)

	mu.Lock()
	defer mu.Unlock()
	// Redirected writers always get plain prefixes.
	prefix := "[" + name + "]"
	if out == os.Stderr {
		prefix = prefixes[l].Sprint(prefix)
	}
	fmt.Fprintf(out, "%s %s\n", prefix, msg)
}
