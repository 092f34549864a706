package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIBase        string
	RequestTimeout time.Duration
	AutoInterval   time.Duration
	RunBatchSize   int
}

func Load() Config {
	return Config{
		APIBase:        envOrDefault("VENDORMAIL_API_BASE", "http://127.0.0.1:8787"),
		RequestTimeout: envDurationOrDefault("VENDORMAIL_REQUEST_TIMEOUT", 10*time.Second),
		AutoInterval:   envDurationOrDefault("VENDORMAIL_AUTO_INTERVAL", 3*time.Second),
		RunBatchSize:   envIntOrDefault("VENDORMAIL_RUN_BATCH", 10),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDurationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envIntOrDefault(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
