package threadpool

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/logrusorgru/aurora"
	"golang.org/x/xerrors"
)

// Level represents a logging level.
type Level uint32

// Logging levels, from least to most verbose.
const (
	LevelError Level = iota + 1
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel converts a level name like "debug" or "warn" to a Level. An
// empty string is LevelInfo.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}

	return 0, xerrors.Errorf("unknown log level: '%s'", s)
}

// LoggerInterface is an interface that should be implemented by loggers used
// with the library. Logger provides a basic implementation, but it's also
// compatible with libraries such as Logrus.
type LoggerInterface interface {
	Debugf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}

// Logger is a basic implementation of LoggerInterface.
type Logger struct {
	// Colors enables colored level tags.
	Colors bool

	// Level is the minimum logging level that will be emitted by this logger.
	//
	// For example, a Level set to LevelWarn will emit warnings and errors, but
	// not information or debug messages.
	//
	// Always set this to a non-zero value. The zero value is below LevelError
	// and silences everything.
	Level Level

	// Out is where log lines are written.
	//
	// Defaults to os.Stdout.
	Out io.Writer

	mu sync.Mutex
}

// Debugf logs a debug message using Printf conventions.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.Level >= LevelDebug {
		l.printf(l.au().Magenta("[DEBUG]"), format, v...)
	}
}

// Errorf logs an error message using Printf conventions.
func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.Level >= LevelError {
		l.printf(l.au().Red("[ERROR]"), format, v...)
	}
}

// Infof logs an informational message using Printf conventions.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l.Level >= LevelInfo {
		l.printf(l.au().Cyan("[INFO] "), format, v...)
	}
}

// Warnf logs a warning message using Printf conventions.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.Level >= LevelWarn {
		l.printf(l.au().Yellow("[WARN] "), format, v...)
	}
}

func (l *Logger) au() aurora.Aurora {
	return aurora.NewAurora(l.Colors)
}

func (l *Logger) printf(tag aurora.Value, format string, v ...interface{}) {
	out := l.Out
	if out == nil {
		out = os.Stdout
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(out, "%s "+format+"\n", append([]interface{}{tag}, v...)...)
}
