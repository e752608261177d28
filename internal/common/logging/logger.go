package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// NewDefaultLogger builds a zap logger from DefaultLogConfig. An unknown
// LOG_FORMAT falls back to console output.
func NewDefaultLogger() Logger {
	config := DefaultLogConfig()
	logger, err := NewZapLogger(config)
	if err != nil {
		config.Format = FormatConsole
		logger, err = NewZapLogger(config)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to initialize default zap logger: %v", err))
	}
	return logger
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &ZapAdapter{logger: zap.NewNop()}
}

// InitGlobalLogger installs the global logger configured by LOG_LEVEL,
// LOG_FORMAT and LOG_FILE. Without LOG_FILE entries go to stdout.
func InitGlobalLogger() error {
	config := DefaultLogConfig()
	config.Name = "report-router"

	logFile := os.Getenv("LOG_FILE")
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		config.Output = file
	}

	logger, err := NewZapLogger(config)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	SetGlobalLogger(logger)

	logger.Info("Logger initialized",
		Field{"level", config.Level.String()},
		Field{"format", formatOrDefault(config.Format)},
		Field{"log_file", logFile},
	)
	return nil
}

// MustSync flushes buffered entries of the global logger. Call it before exit.
func MustSync() {
	if zapLogger, ok := GetGlobalLogger().(*ZapAdapter); ok {
		_ = zapLogger.Sync()
	}
}

// WithFields adds fields to the global logger.
func WithFields(fields ...Field) Logger {
	return GetGlobalLogger().WithFields(fields...)
}

// Strings creates a string slice field
func Strings(key string, values []string) Field {
	return Field{Key: key, Value: values}
}

// Err creates an error field with key "error"
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
