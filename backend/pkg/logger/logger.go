// backend/pkg/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Logger is a wrapper around the standard log.Logger that tags every line
// with its level. The level tag is written per line, so a Logger is safe to
// share between goroutines.
type Logger struct {
	*log.Logger
	debug atomic.Bool
}

// New creates a new logger instance writing to stdout with a standard prefix.
func New(prefix string) *Logger {
	return NewWithWriter(os.Stdout, prefix)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, prefix string) *Logger {
	return &Logger{
		Logger: log.New(w, prefix, log.LstdFlags|log.Lshortfile),
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return NewWithWriter(io.Discard, "")
}

// SetDebug toggles Debug/Debugf output.
func (l *Logger) SetDebug(enabled bool) {
	l.debug.Store(enabled)
}

// Info logs an informational message.
func (l *Logger) Info(v ...interface{}) {
	l.output("INFO: ", fmt.Sprintln(v...))
}

// Error logs an error message.
func (l *Logger) Error(v ...interface{}) {
	l.output("ERROR: ", fmt.Sprintln(v...))
}

// Warn logs a warning message.
func (l *Logger) Warn(v ...interface{}) {
	l.output("WARN: ", fmt.Sprintln(v...))
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.output("INFO: ", fmt.Sprintf(format, v...))
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.output("WARN: ", fmt.Sprintf(format, v...))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.output("ERROR: ", fmt.Sprintf(format, v...))
}

// Debugf logs only when debug output is enabled.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if !l.debug.Load() {
		return
	}
	l.output("DEBUG: ", fmt.Sprintf(format, v...))
}

// output reports the caller of the exported method, hence depth 3.
func (l *Logger) output(level, msg string) {
	_ = l.Output(3, level+msg)
}
