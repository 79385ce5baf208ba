package logger

import (
	"io"
	"log/slog"
	"sort"
	"strings"
)

type LoggerAdapter struct {
	log *slog.Logger
}

// NewLoggerAdapterWithWriter logs JSON in production and human readable
// text elsewhere.
func NewLoggerAdapterWithWriter(w io.Writer, env, level string) *LoggerAdapter {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &LoggerAdapter{log: slog.New(handler)}
}

// NewNopLogger discards everything.
func NewNopLogger() *LoggerAdapter {
	return &LoggerAdapter{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// With returns a logger that adds the given attributes to every record.
func (l *LoggerAdapter) With(key string, value interface{}) *LoggerAdapter {
	return &LoggerAdapter{log: l.log.With(key, value)}
}

func (l *LoggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug(msg, attrs(fields)...)
}

func (l *LoggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.log.Info(msg, attrs(fields)...)
}

func (l *LoggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn(msg, attrs(fields)...)
}

func (l *LoggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.log.Error(msg, attrs(fields)...)
}

func attrs(fields map[string]interface{}) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
