// internal/config/environment.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         int
	DBPath       string
	LogDir       string
	FailureDelay time.Duration
}

func GetConfig() Config {
	config := Config{
		Port:         8080, // default port
		DBPath:       "data/gatelog.db",
		LogDir:       "data/logs",
		FailureDelay: 3 * time.Second,
	}

	// Override with environment variables if present
	if port := os.Getenv("GATELOG_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}

	if dbPath := os.Getenv("GATELOG_DB_PATH"); dbPath != "" {
		config.DBPath = dbPath
	}

	if logDir := os.Getenv("GATELOG_LOG_DIR"); logDir != "" {
		config.LogDir = logDir
	}

	if delay := os.Getenv("GATELOG_FAILURE_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			config.FailureDelay = d
		}
	}

	return config
}

func (c Config) GetAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}
