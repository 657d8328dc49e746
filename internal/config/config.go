package config

import (
	"errors"
	"os"
)

// Config holds the service configuration, loaded from environment variables.
type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	JudgeURL    string
	JWTSecret   string
}

// LoadConfig reads configuration from the environment, applying defaults for
// everything except the database connection string.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		JudgeURL:    getEnvOrDefault("JUDGE_URL", "https://emkc.org/api/v2/piston/execute"),
		JWTSecret:   getEnvOrDefault("JWT_SECRET", "dev"),
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
