package ports

// Level represents the severity of a log message.
type Level int

const (
	// LevelDebug is for verbose debugging information.
	LevelDebug Level = iota
	// LevelInfo is for general operational information.
	LevelInfo
	// LevelWarn is for potentially problematic situations.
	LevelWarn
	// LevelError is for error conditions.
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Field represents a structured logging field.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger is the sectioned, leveled logger every step reports through.
//
// Section and Step are presentation markers rather than severities: a
// section opens a named block of output and is re-entrant (opening a
// new section never requires closing a prior one). Error reports a
// failure but never terminates the process; termination stays with the
// caller.
type Logger interface {
	// Section opens a named block of output.
	Section(title string)

	// Step announces that a step is about to run.
	Step(msg string, fields ...Field)

	// Debug logs verbose diagnostic detail.
	Debug(msg string, fields ...Field)

	// Info logs general operational information.
	Info(msg string, fields ...Field)

	// Warn logs a recoverable problem.
	Warn(msg string, fields ...Field)

	// Error logs a failure.
	Error(msg string, fields ...Field)

	// Success logs a completed step.
	Success(msg string, fields ...Field)

	// Level returns the minimum log level.
	Level() Level

	// SetLevel sets the minimum log level.
	SetLevel(level Level)
}
