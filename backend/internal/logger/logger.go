package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/carbontracker/backend/internal/config"
)

// New builds the logger for env: human readable for local, JSON otherwise.
func New(env string) (*zap.Logger, error) {
	switch env {
	case config.EnvLocal:
		return zap.NewDevelopment()
	case config.EnvDev:
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	default:
		return zap.NewProduction()
	}
}

// Must is New that panics on error.
func Must(env string) *zap.Logger {
	return zap.Must(New(env))
}
