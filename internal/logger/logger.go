package logger

import (
	"io"
	"log"
	"os"
)

// Logger is the logging contract shared by the timeloop packages.
// Implementations should support standard log levels and be safe for concurrent use.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// StdLogger implements Logger on top of Go's standard logger.
type StdLogger struct {
	logger *log.Logger
}

// New creates a StdLogger writing to w.
func New(w io.Writer) *StdLogger {
	return &StdLogger{
		logger: log.New(w, "", log.LstdFlags),
	}
}

// NewStdLogger creates a StdLogger writing to stderr, keeping stdout free
// for command output.
func NewStdLogger() *StdLogger {
	return New(os.Stderr)
}

func (l *StdLogger) Info(msg string, args ...any) {
	l.logger.Printf("[INFO] "+msg, args...)
}

func (l *StdLogger) Warn(msg string, args ...any) {
	l.logger.Printf("[WARN] "+msg, args...)
}

func (l *StdLogger) Error(msg string, args ...any) {
	l.logger.Printf("[ERROR] "+msg, args...)
}

func (l *StdLogger) Debug(msg string, args ...any) {
	l.logger.Printf("[DEBUG] "+msg, args...)
}

// Default provides a process-wide default logger instance.
var Default Logger = NewStdLogger()
