// Package config loads studytrack settings from the environment, an optional
// .env file, and an optional studytrack.yaml.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/msomdec/studytrack/pkg/validator"
)

const envPrefix = "STUDYTRACK"

type Config struct {
	DatabasePath string `mapstructure:"database_path" validate:"required"`
	// CatalogPath points at a YAML course catalog. Empty means the embedded one.
	CatalogPath string `mapstructure:"catalog_path"`
	LogLevel    string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	// Ephemeral keeps all state in memory for the life of the process.
	Ephemeral bool `mapstructure:"ephemeral"`
}

// Load reads the configuration. Precedence, highest first: STUDYTRACK_*
// environment variables (including those set by .env), the config file,
// defaults. configFile overrides the search for studytrack.yaml in the
// working directory and $HOME/.config/studytrack.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("database_path", "studytrack.db")
	v.SetDefault("catalog_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("ephemeral", false)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("studytrack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "studytrack"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.ValidateStruct(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
