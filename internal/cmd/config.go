package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Quiz struct {
		AnswerWindowSec  int `yaml:"answer_window_sec"`
		DebounceWindowMs int `yaml:"debounce_window_ms"`
		CacheTTLMs       int `yaml:"cache_ttl_ms"`
	} `yaml:"quiz"`
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func defaultConfig() *Config {
	var config Config
	config.Quiz.AnswerWindowSec = 30
	config.Quiz.DebounceWindowMs = 1000
	config.Quiz.CacheTTLMs = 2000
	return &config
}

func (c *Config) debounceWindow() time.Duration {
	return time.Duration(c.Quiz.DebounceWindowMs) * time.Millisecond
}

func (c *Config) cacheTTL() time.Duration {
	return time.Duration(c.Quiz.CacheTTLMs) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := defaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}
