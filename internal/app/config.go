package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/elskow/identity-infra/internal/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

func LoadConfig() (*config.AppConfig, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = EnvDevelopment
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("./config")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "identity.db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Load environment-specific configurations
	if envSettings := v.GetStringMap(fmt.Sprintf("database.%s", env)); len(envSettings) > 0 {
		if err := v.UnmarshalKey(fmt.Sprintf("database.%s", env), &cfg.Database); err != nil {
			return nil, fmt.Errorf("error unmarshaling env config: %w", err)
		}
	}

	return &cfg, nil
}
