package logger

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger so services depend on one logging surface.
type Logger struct {
	*zap.Logger
}

// New builds a logger from the configured level and encoding ("json" or "console").
func New(level, encoding string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if encoding != "" {
		cfg.Encoding = encoding
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Encoding == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return &Logger{zapLogger}, nil
}

// Field wraps an arbitrary value for structured logging.
func Field(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

// StringField wraps a string value.
func StringField(key, value string) zap.Field {
	return zap.String(key, value)
}

// IntField wraps an int value.
func IntField(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// Float64Field wraps a float64 value.
func Float64Field(key string, value float64) zap.Field {
	return zap.Float64(key, value)
}

// BoolField wraps a bool value.
func BoolField(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}

// DurationField wraps a time.Duration value.
func DurationField(key string, value time.Duration) zap.Field {
	return zap.Duration(key, value)
}

// ErrorField wraps an error under the standard "error" key.
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}
