// Package logging provides implementations of the ports.Logger interface.
// It includes a ConsoleLogger for sectioned provisioning output and a
// NopLogger for disabled logging.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/groundwork-cli/groundwork/internal/ports"
)

// Styles for the console markers.
var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	fieldStyle   = lipgloss.NewStyle().Faint(true)
)

// ConsoleLogger writes sectioned, leveled provisioning output to the
// console and, when configured, tees a plain-text copy to an
// append-only log file for post-run audit.
type ConsoleLogger struct {
	mu      sync.Mutex
	out     io.Writer
	file    io.Writer
	level   ports.Level
	noColor bool
}

// ConsoleLoggerOption configures the console logger.
type ConsoleLoggerOption func(*ConsoleLogger)

// WithOutput sets the console writer (default: os.Stderr).
func WithOutput(w io.Writer) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.out = w
	}
}

// WithLevel sets the minimum log level (default: Info).
func WithLevel(level ports.Level) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.level = level
	}
}

// WithFile tees every entry to the given writer as timestamped plain
// text, free of ANSI sequences.
func WithFile(w io.Writer) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.file = w
	}
}

// WithNoColor disables styled markers on the console.
func WithNoColor(enabled bool) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.noColor = enabled
	}
}

// NewConsoleLogger creates a new console logger.
func NewConsoleLogger(opts ...ConsoleLoggerOption) *ConsoleLogger {
	l := &ConsoleLogger{
		out:   os.Stderr,
		level: ports.LevelInfo,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// OpenLogFile opens (creating if needed) an append-only log file
// suitable for WithFile.
func OpenLogFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// Section opens a named block of output. Re-entrant: a new section
// never needs the prior one closed.
func (l *ConsoleLogger) Section(title string) {
	l.write(ports.LevelInfo, sectionStyle, "==>", title, nil)
}

// Step announces that a step is about to run.
func (l *ConsoleLogger) Step(msg string, fields ...ports.Field) {
	l.write(ports.LevelInfo, stepStyle, " ->", msg, fields)
}

// Debug logs verbose diagnostic detail.
func (l *ConsoleLogger) Debug(msg string, fields ...ports.Field) {
	l.write(ports.LevelDebug, fieldStyle, "  ·", msg, fields)
}

// Info logs general operational information.
func (l *ConsoleLogger) Info(msg string, fields ...ports.Field) {
	l.write(ports.LevelInfo, infoStyle, "  ·", msg, fields)
}

// Warn logs a recoverable problem.
func (l *ConsoleLogger) Warn(msg string, fields ...ports.Field) {
	l.write(ports.LevelWarn, warnStyle, "  !", msg, fields)
}

// Error logs a failure. Reporting only; the caller decides whether the
// run continues.
func (l *ConsoleLogger) Error(msg string, fields ...ports.Field) {
	l.write(ports.LevelError, errorStyle, "  ✗", msg, fields)
}

// Success logs a completed step.
func (l *ConsoleLogger) Success(msg string, fields ...ports.Field) {
	l.write(ports.LevelInfo, successStyle, "  ✓", msg, fields)
}

// Level returns the minimum log level.
func (l *ConsoleLogger) Level() ports.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetLevel sets the minimum log level.
func (l *ConsoleLogger) SetLevel(level ports.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// write emits a single entry to the console and the file tee.
func (l *ConsoleLogger) write(level ports.Level, style lipgloss.Style, marker, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	suffix := formatFields(fields)

	line := marker + " " + msg
	if !l.noColor {
		line = style.Render(marker) + " " + msg
		if suffix != "" {
			line += " " + fieldStyle.Render(suffix)
		}
	} else if suffix != "" {
		line += " " + suffix
	}
	_, _ = fmt.Fprintln(l.out, line)

	if l.file != nil {
		entry := fmt.Sprintf("%s [%s] %s %s", time.Now().Format(time.RFC3339), level.String(), marker, msg)
		if suffix != "" {
			entry += " " + suffix
		}
		_, _ = fmt.Fprintln(l.file, entry)
	}
}

// formatFields renders key=value pairs in call order.
func formatFields(fields []ports.Field) string {
	if len(fields) == 0 {
		return ""
	}

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", f.Key, f.Value)
	}
	return b.String()
}

// Ensure ConsoleLogger implements Logger.
var _ ports.Logger = (*ConsoleLogger)(nil)
