// Package logger provides a pluggable structured logging interface for herald.
// The interface follows the GORM logger design: a small level-aware contract
// that external libraries (zap, logrus, slog) can be adapted onto.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Level represents the severity threshold of a logger.
type Level int

const (
	// Silent suppresses all output.
	Silent Level = iota + 1
	// Error logs only errors.
	Error
	// Warn logs warnings and errors.
	Warn
	// Info logs informational messages and above.
	Info
	// Debug logs everything.
	Debug
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case Silent:
		return "silent"
	case Error:
		return "error"
	case Warn:
		return "warn"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// Logger is the logging contract used by every herald component.
// Messages carry structured key-value pairs in slog style.
type Logger interface {
	// LogMode returns a copy of the logger with the given level.
	LogMode(level Level) Logger
	// Info logs an informational message.
	Info(msg string, args ...any)
	// Warn logs a warning.
	Warn(msg string, args ...any)
	// Error logs an error.
	Error(msg string, args ...any)
	// Debug logs a debug message.
	Debug(msg string, args ...any)
}

// Predefined loggers.
var (
	// Discard drops all log output.
	Discard Logger = &StandardLogger{level: Silent}

	// Default writes to stderr at Warn level.
	Default Logger = NewStandardLogger(log.New(os.Stderr, "", log.LstdFlags), Warn, "[herald]")
)

// StandardLogger implements Logger on top of the standard library log package.
type StandardLogger struct {
	logger *log.Logger
	level  Level
	prefix string
}

// NewStandardLogger creates a logger writing to the given log.Logger.
func NewStandardLogger(writer *log.Logger, level Level, prefix string) Logger {
	return &StandardLogger{logger: writer, level: level, prefix: prefix}
}

// LogMode returns a copy of the logger with the given level.
func (l *StandardLogger) LogMode(level Level) Logger {
	clone := *l
	clone.level = level
	return &clone
}

// Info logs an informational message.
func (l *StandardLogger) Info(msg string, args ...any) {
	if l.level >= Info {
		l.print("INFO", msg, args...)
	}
}

// Warn logs a warning.
func (l *StandardLogger) Warn(msg string, args ...any) {
	if l.level >= Warn {
		l.print("WARN", msg, args...)
	}
}

// Error logs an error.
func (l *StandardLogger) Error(msg string, args ...any) {
	if l.level >= Error {
		l.print("ERROR", msg, args...)
	}
}

// Debug logs a debug message.
func (l *StandardLogger) Debug(msg string, args ...any) {
	if l.level >= Debug {
		l.print("DEBUG", msg, args...)
	}
}

func (l *StandardLogger) print(levelName, msg string, args ...any) {
	if l.logger == nil {
		return
	}
	var b strings.Builder
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] %s", levelName, msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 != 0 {
		fmt.Fprintf(&b, " %v", args[len(args)-1])
	}
	l.logger.Print(b.String())
}
