package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"meeting-room-client/config"
)

// newLogger builds the process logger from the logs section of the config.
func newLogger(cfg config.LogsConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
