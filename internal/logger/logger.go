// Package logger wraps zap so that binaries can create a placeholder logger
// early and initialize it once configuration is known.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger holds the process logger.
type ZapLogger struct {
	Log *zap.Logger
}

// New returns a ZapLogger backed by a no-op logger.
func New() *ZapLogger {
	return &ZapLogger{Log: zap.NewNop()}
}

// Init replaces the no-op logger with a production JSON logger at the given
// level. Level names are case-insensitive. Output defaults to stdout.
func (l *ZapLogger) Init(level string, outputs ...string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if len(outputs) > 0 {
		cfg.OutputPaths = outputs
		cfg.ErrorOutputPaths = outputs
	}

	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = zl
	return nil
}

// OrNop returns log, or a no-op logger when log is nil.
func OrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
