// Package logging provides the structured logger used across the report
// router. Every component logs through the Logger interface; the zap adapter
// is the only implementation.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = map[LogLevel]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel converts a level name to a LogLevel. Unknown names give InfoLevel.
func ParseLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Output encodings understood by NewZapLogger.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// Logger defines the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	WithFields(fields ...Field) Logger
	WithContext(ctx context.Context) Logger
}

// LogConfig holds logger configuration. A nil Output writes to stdout and an
// empty Format means console.
type LogConfig struct {
	Level      LogLevel
	Output     io.Writer
	Format     string
	TimeFormat string
	// Name is attached to every entry as the logger name.
	Name string
}

// DefaultLogConfig reads LOG_LEVEL and LOG_FORMAT from the environment.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      ParseLevel(os.Getenv("LOG_LEVEL")),
		Format:     strings.ToLower(os.Getenv("LOG_FORMAT")),
		TimeFormat: time.RFC3339,
	}
}

type contextKey string

const (
	// RequestIDKey carries the HTTP request identifier
	RequestIDKey contextKey = "request_id"
	// RunIDKey carries the identifier of a routing pass
	RunIDKey contextKey = "run_id"
	// PrincipalKey carries the acting principal's email
	PrincipalKey contextKey = "principal"
)

var contextKeys = []contextKey{RequestIDKey, RunIDKey, PrincipalKey}

// ContextWith returns a copy of ctx carrying value under key, picked up by
// Logger.WithContext.
func ContextWith(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

var (
	globalMu     sync.RWMutex
	globalLogger Logger
)

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// GetGlobalLogger returns the global logger, creating one from the
// environment on first use.
func GetGlobalLogger() Logger {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()
	if logger != nil {
		return logger
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewDefaultLogger()
	}
	return globalLogger
}

func Debug(msg string, fields ...Field) {
	GetGlobalLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...Field) {
	GetGlobalLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...Field) {
	GetGlobalLogger().Warn(msg, fields...)
}

func Error(msg string, err error, fields ...Field) {
	GetGlobalLogger().Error(msg, err, fields...)
}
