package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"crypto-compare/src/models"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level orders log severities
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	logger *log.Logger
	level  Level
	exit   func(int)
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. A nil config logs everything at
// INFO and above to stdout.
func NewLogger(config *models.MConfig, name string) *Logger {
	var out io.Writer = os.Stdout
	level := LevelInfo

	if config != nil {
		level = ParseLevel(config.LogLevel)
		if config.LogFile != "" {
			out = io.MultiWriter(os.Stdout, fileWriter(config))
		}
	}

	return NewWithWriter(out, name, level)
}

// NewWithWriter builds a logger on an arbitrary writer (used by tests)
func NewWithWriter(w io.Writer, name string, level Level) *Logger {
	return &Logger{
		name:   name,
		logger: log.New(w, "", log.LstdFlags),
		level:  level,
		exit:   os.Exit,
	}
}

// -----------------------------------------------------------------------------

// rotated writers are shared per file so every component appends to one log
var (
	rotators   = map[string]*lumberjack.Logger{}
	rotatorsMu sync.Mutex
)

func fileWriter(config *models.MConfig) io.Writer {
	rotatorsMu.Lock()
	defer rotatorsMu.Unlock()

	if w, ok := rotators[config.LogFile]; ok {
		return w
	}
	w := &lumberjack.Logger{
		Filename:   config.LogFile,
		MaxSize:    config.LogMaxSizeMB,
		MaxBackups: config.LogMaxBackups,
		MaxAge:     config.LogMaxAgeDays,
		Compress:   true,
	}
	rotators[config.LogFile] = w
	return w
}

// -----------------------------------------------------------------------------

// ParseLevel maps a config string to a Level, defaulting to INFO
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// -----------------------------------------------------------------------------

// Named returns a logger for a sub component sharing output and level
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		name:   name,
		logger: l.logger,
		level:  l.level,
		exit:   l.exit,
	}
}

// -----------------------------------------------------------------------------

func (l *Logger) printf(level Level, tag, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s: %s", l.name, tag, msg)
}

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LevelDebug, "DEBUG", format, args...)
}

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.printf(LevelWarning, "WARNING", format, args...)
}

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LevelInfo, "INFO", format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LevelError, "ERROR", format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] CRITICAL: %s", l.name, msg)
	l.exit(1)
}

// Close flushes and closes any rotated log files
func Close() error {
	rotatorsMu.Lock()
	defer rotatorsMu.Unlock()

	var firstErr error
	for name, w := range rotators {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(rotators, name)
	}
	return firstErr
}
