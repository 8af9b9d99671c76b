package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.Mutex
	level  = new(slog.LevelVar)
	logger *slog.Logger
	out    io.Writer = os.Stderr
)

// Setup initializes the global logger. format is "text" or "json"; anything
// else falls back to text. An invalid level falls back to INFO.
func Setup(lvl, format string) {
	mu.Lock()
	defer mu.Unlock()
	level.Set(parseLevel(lvl))
	logger = newLogger(out, format)
	slog.SetDefault(logger)
}

// SetOutput redirects the global logger, primarily for tests.
func SetOutput(w io.Writer, format string) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	logger = newLogger(w, format)
	slog.SetDefault(logger)
}

// Adjust moves the log level by steps: negative is more verbose, positive is
// quieter. One step is one slog level, clamped to DEBUG..ERROR.
func Adjust(steps int) {
	l := level.Level() + slog.Level(steps*4)
	if l < slog.LevelDebug {
		l = slog.LevelDebug
	}
	if l > slog.LevelError {
		l = slog.LevelError
	}
	level.Set(l)
}

func newLogger(w io.Writer, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToUpper(lvl) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the configured logger, or a default one if Setup hasn't been called.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		level.Set(slog.LevelInfo)
		logger = newLogger(out, "text")
	}
	return logger
}

// WithComponent returns a logger with the component field set.
func WithComponent(name string) *slog.Logger {
	return Get().With(slog.String("component", name))
}

// WithJob returns a logger with the job field set.
func WithJob(label string) *slog.Logger {
	return Get().With(slog.String("job", label))
}

// Info logs at INFO level.
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Warn logs at WARN level.
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs at ERROR level.
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}
