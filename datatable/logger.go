package datatable

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LogLevel is the severity passed to Table.Log.
type LogLevel int

const (
	// LogWarn is used for problems the table works around.
	LogWarn LogLevel = iota + 1
	// LogError is used for problems that leave part of the table unusable.
	LogError
)

func (l LogLevel) slog() slog.Level {
	if l >= LogError {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// Logger wraps slog.Logger with table-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithTable adds the table id to every record.
func (l *Logger) WithTable(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", id),
	}
}

// LogDraw logs a completed pipeline run.
func (l *Logger) LogDraw(ctx context.Context, v View) {
	l.DebugContext(ctx, "draw completed",
		"total", v.Total,
		"filtered", len(v.Filtered),
		"start", v.Start,
		"length", v.Length,
	)
}

// LogLoad logs a data source load.
func (l *Logger) LogLoad(ctx context.Context, rows, columns int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "rows loaded",
			"rows", rows,
			"columns", columns,
		)
	}
}
