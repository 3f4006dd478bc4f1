package drawbatch

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with drawbatch-specific helpers so that the
// store and collector log with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger returns a Logger that sends records to handler. A nil handler
// logs text at info level and above to os.Stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithComponent tags every record logged through the returned Logger.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// LogClear logs a per-frame clear of a store.
func (l *Logger) LogClear(primaryKeys, records, items int) {
	l.Debug("batches cleared",
		"primary_keys", primaryKeys,
		"records", records,
		"items", items,
	)
}

// LogPrune logs removal of idle primary keys.
func (l *Logger) LogPrune(removed, remaining int) {
	if removed == 0 {
		return
	}
	l.Debug("idle primary keys pruned",
		"removed", removed,
		"remaining", remaining,
	)
}

// LogDrain logs a collector drain.
func (l *Logger) LogDrain(entries, items int) {
	l.Debug("collector drained",
		"entries", entries,
		"items", items,
	)
}
