package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op until Init is called.
var Log = zap.NewNop()

var initialized bool

// New builds a JSON production logger, or a colored console logger when env is "dev" or "test".
func New(env string) (*zap.Logger, error) {
	if env == "dev" || env == "test" {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// Init replaces the global logger.
func Init(env string) error {
	l, err := New(env)
	if err != nil {
		return err
	}
	Log = l
	initialized = true
	zap.ReplaceGlobals(l)
	return nil
}

// Fallback returns Log once Init has run, otherwise a JSON logger on stderr,
// so start-up failures are never swallowed by the no-op logger.
func Fallback() *zap.Logger {
	if initialized {
		return Log
	}
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewExample()
	}
	return l
}

// Sync flushes buffered entries.
func Sync() {
	_ = Log.Sync()
}
