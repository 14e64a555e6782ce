package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger is a thin wrapper over *slog.Logger that accepts the proxy's
// level spelling ("warning" as well as "warn") and offers WithContext
// to pull trace id / upstream identity out of a context.Context.
type Logger struct {
	slog *slog.Logger
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn (or
	// warning), error.
	Level string

	// Writer is the output destination. Defaults to os.Stdout.
	Writer io.Writer
}

// New builds a Logger emitting JSON lines via slog.JSONHandler.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{slog: slog.New(handler)}, nil
}

func parseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug", "":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", level)
	}
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a Logger that includes args on every subsequent line.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// WithContext returns a Logger annotated with any trace id and
// upstream identity carried on ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var args []any
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		args = append(args, "trace_id", traceID)
	}
	if upstream := UpstreamFromContext(ctx); upstream != "" {
		args = append(args, "upstream", upstream)
	}
	if len(args) == 0 {
		return l
	}
	return l.With(args...)
}
