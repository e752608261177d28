package logging

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapAdapter implements Logger on top of zap.
type ZapAdapter struct {
	logger *zap.Logger
}

// NewZapLogger creates a zap-backed Logger. Format selects the console or
// JSON encoder.
func NewZapLogger(config LogConfig) (Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	if config.TimeFormat != "" {
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(config.TimeFormat)
	}

	var encoder zapcore.Encoder
	switch formatOrDefault(config.Format) {
	case FormatConsole:
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unsupported log format %q", config.Format)
	}

	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	logger := zap.New(zapcore.NewCore(encoder, zapcore.AddSync(output), zapLevel(config.Level)))
	if config.Name != "" {
		logger = logger.Named(config.Name)
	}
	return &ZapAdapter{logger: logger}, nil
}

func formatOrDefault(format string) string {
	if format == "" {
		return FormatConsole
	}
	return format
}

func (z *ZapAdapter) Debug(msg string, fields ...Field) {
	z.logger.Debug(msg, zapFields(fields)...)
}

func (z *ZapAdapter) Info(msg string, fields ...Field) {
	z.logger.Info(msg, zapFields(fields)...)
}

func (z *ZapAdapter) Warn(msg string, fields ...Field) {
	z.logger.Warn(msg, zapFields(fields)...)
}

// Error logs msg with err attached under "error" when it is non-nil.
func (z *ZapAdapter) Error(msg string, err error, fields ...Field) {
	converted := zapFields(fields)
	if err != nil {
		converted = append(converted, zap.Error(err))
	}
	z.logger.Error(msg, converted...)
}

func (z *ZapAdapter) WithFields(fields ...Field) Logger {
	if len(fields) == 0 {
		return z
	}
	return &ZapAdapter{logger: z.logger.With(zapFields(fields)...)}
}

// WithContext returns a logger carrying the request, run and principal
// values stored in ctx. It returns z unchanged when ctx holds none.
func (z *ZapAdapter) WithContext(ctx context.Context) Logger {
	var fields []zap.Field
	for _, key := range contextKeys {
		if value, ok := ctx.Value(key).(string); ok && value != "" {
			fields = append(fields, zap.String(string(key), value))
		}
	}
	if len(fields) == 0 {
		return z
	}
	return &ZapAdapter{logger: z.logger.With(fields...)}
}

func (z *ZapAdapter) Sync() error {
	return z.logger.Sync()
}

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, field := range fields {
		switch v := field.Value.(type) {
		case error:
			out[i] = zap.NamedError(field.Key, v)
		case time.Duration:
			out[i] = zap.Duration(field.Key, v)
		default:
			out[i] = zap.Any(field.Key, v)
		}
	}
	return out
}
