package famalloc

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with famalloc-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithBits adds the bitmap capacity (in bits) to the logger.
func (l *Logger) WithBits(bits uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("bits", bits),
	}
}

// LogInit logs the outcome of registering (and optionally zeroing) a bitmap region.
func (l *Logger) LogInit(words uint64, zeroed bool, err error) {
	if err != nil {
		l.Error("unable to register atomic region",
			"words", words,
			"error", err,
		)
		return
	}
	l.Debug("bitmap registered",
		"words", words,
		"zeroed", zeroed,
	)
}

// LogTeardown logs the release of a bitmap region.
func (l *Logger) LogTeardown(words uint64, err error) {
	if err != nil {
		l.Warn("unable to unregister atomic region",
			"words", words,
			"error", err,
		)
		return
	}
	l.Debug("bitmap unregistered",
		"words", words,
	)
}

// LogContention logs a bit transition that keeps losing its word to other writers.
func (l *Logger) LogContention(bit uint64, attempts int) {
	l.Warn("high CAS contention on bitmap word",
		"bit", bit,
		"word", bit/WordBits,
		"attempts", attempts,
	)
}
