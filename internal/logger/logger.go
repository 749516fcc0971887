package logger

import (
	"rental-backend/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Init builds the global logger: JSON in production, colored console otherwise.
func Init(cfg *config.Config) (*zap.Logger, error) {
	var logConfig zap.Config
	if cfg.IsProduction() {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = zapcore.InfoLevel
	}
	logConfig.Level.SetLevel(level)

	l, err := logConfig.Build()
	if err != nil {
		return nil, err
	}
	log = l
	return log, nil
}

// Get returns the global logger, falling back to a production logger when Init was not called.
func Get() *zap.Logger {
	if log == nil {
		l, err := zap.NewProduction()
		if err != nil {
			return zap.NewNop()
		}
		log = l
	}
	return log
}
