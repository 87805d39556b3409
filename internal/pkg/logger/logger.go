package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	globalLogger *slog.Logger
	level        = new(slog.LevelVar)
	once         sync.Once
)

// Init installs the process-wide JSON logger. Later calls only adjust the level.
func Init(lvl string) {
	once.Do(func() {
		globalLogger = New(os.Stdout, level)
		slog.SetDefault(globalLogger)
	})
	SetLevel(lvl)
}

// New builds a JSON logger writing to w. Used by Init and by tests that need to inspect output.
func New(w io.Writer, lvl slog.Leveler) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// SetOutput redirects the global logger to w, keeping the current level.
func SetOutput(w io.Writer) {
	Init(level.Level().String())
	globalLogger = New(w, level)
	slog.SetDefault(globalLogger)
}

// SetLevel changes the level of the global logger at runtime.
func SetLevel(lvl string) {
	level.Set(ParseLevel(lvl))
}

func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the global logger instance
func Get() *slog.Logger {
	if globalLogger == nil {
		Init("info")
	}
	return globalLogger
}

// DebugEnabled reports whether debug records would be emitted.
func DebugEnabled(ctx context.Context) bool {
	return Get().Enabled(ctx, slog.LevelDebug)
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func With(args ...any) *slog.Logger {
	return Get().With(args...)
}

func LogError(ctx context.Context, err error, msg string, args ...any) {
	if err == nil {
		return
	}
	args = append(args, slog.String("error", err.Error()))
	Get().ErrorContext(ctx, msg, args...)
}
