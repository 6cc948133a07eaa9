package config

import (
	"go.uber.org/zap"
)

// InitLogger builds the process logger for the environment and replaces zap's globals,
// so every package can log through zap.S().
func InitLogger(environment string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		logger = zap.NewExample()
	}
	zap.ReplaceGlobals(logger)
	return logger
}
