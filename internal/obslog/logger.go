// Package obslog provides the small leveled logger used by package driver
// to report job lifecycle events (a dedicated run starting, a run
// returning a failed result, CancelAll timing out). It is grounded on
// pkg/common/logging/logger.go and pkg/logging/logger.go from the teacher
// repository, trimmed to the concerns this module actually needs: this
// library has no PII to sanitize, so the teacher's redaction machinery is
// left behind (see DESIGN.md for the full disposition).
package obslog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel is a logging verbosity threshold; messages below the logger's
// configured level are dropped before formatting.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the upper-cased level name used in log output.
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a case-insensitive level name, defaulting to
// InfoLevel with a descriptive error for anything else.
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("obslog: invalid log level %q", level)
	}
}

// Logger is a small, thread-safe, component-tagged text logger.
type Logger struct {
	mu        sync.RWMutex
	level     LogLevel
	output    io.Writer
	component string
}

// Config configures a new Logger.
type Config struct {
	Level     LogLevel
	Output    io.Writer
	Component string
}

// DefaultConfig returns InfoLevel logging to stdout with no component tag.
func DefaultConfig() Config {
	return Config{Level: InfoLevel, Output: os.Stdout}
}

// New returns a Logger built from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	return &Logger{level: cfg.Level, output: cfg.Output, component: cfg.Component}
}

// WithComponent returns a copy of l tagged with component, for per-driver
// or per-pool logging (e.g. "driver.pooled", "driver.dedicated").
func (l *Logger) WithComponent(component string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &Logger{level: l.level, output: l.output, component: component}
}

// SetLevel changes the minimum level that will be logged.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) log(level LogLevel, format string, args []interface{}) {
	l.mu.RLock()
	enabled := level >= l.level
	out := l.output
	component := l.component
	l.mu.RUnlock()

	if !enabled {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	ts := time.Now().Format("2006-01-02 15:04:05.000")
	if component != "" {
		fmt.Fprintf(out, "%s [%s] (%s) %s\n", ts, level, component, msg)
	} else {
		fmt.Fprintf(out, "%s [%s] %s\n", ts, level, msg)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(DebugLevel, format, args) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(InfoLevel, format, args) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WarnLevel, format, args) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(ErrorLevel, format, args) }
