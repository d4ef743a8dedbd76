package hexzone

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with hexzone-specific context.
// This provides structured logging with consistent field names.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// WithRegion adds a region field to the logger.
func (l *Logger) WithRegion(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("region", name),
	}
}

// LogGenerate logs a region generation.
func (l *Logger) LogGenerate(ctx context.Context, output string, res, cells int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "generate failed",
			"output", output,
			"resolution", res,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "generate completed",
		"output", output,
		"resolution", res,
		"cells", cells,
		"elapsed", elapsed,
	)
}

// LogExport logs a region export.
func (l *Logger) LogExport(ctx context.Context, input string, res, cells int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"input", input,
			"resolution", res,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "export completed",
		"input", input,
		"resolution", res,
		"cells", cells,
	)
}

// LogFind logs a find over a set of artifacts.
func (l *Logger) LogFind(ctx context.Context, needles, files, matches int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "find failed",
			"needles", needles,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "find completed",
		"needles", needles,
		"files", files,
		"matches", matches,
	)
}

// LogOverlaps logs an overlap detection run.
func (l *Logger) LogOverlaps(ctx context.Context, regions, conflicts int, elapsed time.Duration, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "overlap detection failed",
			"regions", regions,
			"error", err,
		)
	case conflicts > 0:
		l.WarnContext(ctx, "overlapping regions found",
			"regions", regions,
			"conflicts", conflicts,
			"elapsed", elapsed,
		)
	default:
		l.InfoContext(ctx, "no overlapping regions",
			"regions", regions,
			"elapsed", elapsed,
		)
	}
}

// LogLookup logs a region lookup.
func (l *Logger) LogLookup(ctx context.Context, target string, region string, err error) {
	if err != nil {
		l.DebugContext(ctx, "lookup failed",
			"cell", target,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "lookup completed",
		"cell", target,
		"region", region,
	)
}

// LogCountries logs a country map generation.
func (l *Logger) LogCountries(ctx context.Context, output string, files, skipped, nodes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "countries generate failed",
			"output", output,
			"error", err,
		)
		return
	}
	if skipped > 0 {
		l.WarnContext(ctx, "countries generated with skipped files",
			"output", output,
			"files", files,
			"skipped", skipped,
			"nodes", nodes,
		)
		return
	}
	l.InfoContext(ctx, "countries generated",
		"output", output,
		"files", files,
		"nodes", nodes,
	)
}
