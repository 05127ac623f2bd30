package app

import "go.uber.org/zap"

func NewLogger(env string) (*zap.Logger, error) {
	if env == EnvProduction {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
