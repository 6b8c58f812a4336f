package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger configured for the given environment.
// Local/dev environments get a human-readable console encoder,
// everything else gets production JSON.
func New(env string) *zap.Logger {
	switch env {
	case "local", "dev", "development":
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		log, err := cfg.Build()
		if err != nil {
			panic("failed to build development logger: " + err.Error())
		}
		return log
	default:
		log, err := zap.NewProduction()
		if err != nil {
			panic("failed to build production logger: " + err.Error())
		}
		return log
	}
}
