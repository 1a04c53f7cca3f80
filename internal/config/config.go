package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the static application configuration, loaded once at startup.
type Config struct {
	AppPort         int    `mapstructure:"APP_PORT"`
	DatabasePath    string `mapstructure:"DATABASE_PATH"`
	PoeAPIKey       string `mapstructure:"POE_API_KEY"`
	PoeBaseURL      string `mapstructure:"POE_BASE_URL"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	HistoryCacheTTL int    `mapstructure:"HISTORY_CACHE_TTL_SECONDS"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
}

// LoadConfig reads configuration from a .env file (if present), the
// environment, and built-in defaults, in that order of precedence.
func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "data/gopoe.db")
	viper.SetDefault("POE_API_KEY", "")
	viper.SetDefault("POE_BASE_URL", "https://api.poe.com")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("HISTORY_CACHE_TTL_SECONDS", 60)
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
