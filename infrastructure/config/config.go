package config

import (
	"os"
	"strconv"
	"time"

	domaincfg "cardboard/domain/config"
)

// Config holds all application configuration
type Config struct {
	Environment string

	// Logging
	LogLevel string

	// History tuning
	HistoryLimit int
	MergeWindow  time.Duration

	// Persistence tuning
	SaveDebounce time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	defaults := domaincfg.DefaultDomainConfig()

	cfg := &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		HistoryLimit: getEnvInt("HISTORY_LIMIT", defaults.HistoryLimit),
		MergeWindow:  getEnvDuration("MERGE_WINDOW_MS", defaults.MergeWindow),
		SaveDebounce: getEnvDuration("SAVE_DEBOUNCE_MS", defaults.SaveDebounce),
	}

	if err := cfg.Domain().Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Domain derives the domain rule set from this configuration
func (c *Config) Domain() *domaincfg.DomainConfig {
	d := domaincfg.DefaultDomainConfig()
	d.HistoryLimit = c.HistoryLimit
	d.MergeWindow = c.MergeWindow
	d.SaveDebounce = c.SaveDebounce
	return d
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a millisecond-valued environment variable
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}
