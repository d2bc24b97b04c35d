// Package logger builds the shared zap logger for the CLI binaries.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr. Info level by default,
// Debug when verbose is set.
func New(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// Nop returns a logger that discards everything. Used in tests and as the
// fallback when a component is constructed without a logger.
func Nop() *zap.Logger {
	return zap.NewNop()
}
