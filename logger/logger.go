// Package logger wraps zap with the field-map call style used across the service.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

type Config struct {
	Level   string
	Service string
}

// Logger is a wrapper around Uber's Zap logger.
type Logger struct {
	Zap *zap.Logger
}

// NewLogger builds a JSON logger writing to stderr at the configured level.
func NewLogger(cfg Config) (*Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	service := cfg.Service
	if service == "" {
		service = "docqa-be"
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:         "json",
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": service,
		},
	}

	logger, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &Logger{Zap: logger}, nil
}

// NewNop returns a logger that discards everything. Used by tests and CLI commands.
func NewNop() *Logger {
	return &Logger{Zap: zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// convertToZapFields turns an optional error and field maps into zap fields.
// Later maps override earlier ones on duplicate keys.
func (l *Logger) convertToZapFields(err error, fields ...map[string]interface{}) []zap.Field {
	var zapFields []zap.Field
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	merged := make(map[string]interface{})
	for _, fieldMap := range fields {
		for key, value := range fieldMap {
			merged[key] = value
		}
	}
	for key, value := range merged {
		zapFields = append(zapFields, zap.Any(key, value))
	}
	return zapFields
}

// Info logs an informational message, along with an optional error and structured fields.
//
// Example:
//
//	logger.Info("Documents added", nil, map[string]interface{}{
//	    "database_id": "alpha",
//	    "chunks": 12,
//	})
func (l *Logger) Info(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Info(msg, l.convertToZapFields(err, fields...)...)
}

func (l *Logger) Debug(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Debug(msg, l.convertToZapFields(err, fields...)...)
}

func (l *Logger) Warn(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Warn(msg, l.convertToZapFields(err, fields...)...)
}

// Error logs a failure that affected the current operation but not the process.
func (l *Logger) Error(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Error(msg, l.convertToZapFields(err, fields...)...)
}

// Fatal logs and exits with status 1.
func (l *Logger) Fatal(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Fatal(msg, l.convertToZapFields(err, fields...)...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.Zap.Sync()
}
