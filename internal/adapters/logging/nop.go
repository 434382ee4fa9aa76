package logging

import "github.com/groundwork-cli/groundwork/internal/ports"

// NopLogger is a no-op logger that discards all messages.
// Useful when logging is disabled or as a default.
type NopLogger struct {
	level ports.Level
}

// NewNopLogger creates a new no-op logger.
func NewNopLogger() *NopLogger {
	return &NopLogger{level: ports.LevelInfo}
}

// Section does nothing.
func (l *NopLogger) Section(_ string) {}

// Step does nothing.
func (l *NopLogger) Step(_ string, _ ...ports.Field) {}

// Debug does nothing.
func (l *NopLogger) Debug(_ string, _ ...ports.Field) {}

// Info does nothing.
func (l *NopLogger) Info(_ string, _ ...ports.Field) {}

// Warn does nothing.
func (l *NopLogger) Warn(_ string, _ ...ports.Field) {}

// Error does nothing.
func (l *NopLogger) Error(_ string, _ ...ports.Field) {}

// Success does nothing.
func (l *NopLogger) Success(_ string, _ ...ports.Field) {}

// Level returns the log level.
func (l *NopLogger) Level() ports.Level {
	return l.level
}

// SetLevel sets the log level.
func (l *NopLogger) SetLevel(level ports.Level) {
	l.level = level
}

// Ensure NopLogger implements Logger.
var _ ports.Logger = (*NopLogger)(nil)
