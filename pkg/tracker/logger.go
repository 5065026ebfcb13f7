package tracker

import (
	"context"
	"log/slog"
)

const logPrefix = "[Tracker] "

// trackerLogger prefixes every message with "[Tracker]" so tracker output is
// easy to pick out of the host's logs.
type trackerLogger struct {
	logger *slog.Logger
}

func newTrackerLogger(logger *slog.Logger) *trackerLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &trackerLogger{logger: logger.With(slog.String("component", "tracker"))}
}

func (l *trackerLogger) Debug(msg string, args ...any) {
	l.logger.Debug(logPrefix+msg, args...)
}

func (l *trackerLogger) Warn(msg string, args ...any) {
	l.logger.Warn(logPrefix+msg, args...)
}

func (l *trackerLogger) Error(msg string, args ...any) {
	l.logger.Error(logPrefix+msg, args...)
}

// Enabled reports whether the underlying logger handles level.
func (l *trackerLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.logger.Enabled(ctx, level)
}
