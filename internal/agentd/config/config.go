package config

import (
	"os"
	"strings"

	"github.com/opsdesk/vendormail/internal/domain"
)

type Config struct {
	HTTPAddr    string
	StoreDriver string
	DataFile    string
	DatabaseURL string
	GmailMode   string
	GeminiMode  string
}

func Load() Config {
	return Config{
		HTTPAddr:    envOrDefault("HTTP_ADDR", "127.0.0.1:8787"),
		StoreDriver: envOrDefault("STORE_DRIVER", "file"),
		DataFile:    envOrDefault("DATA_FILE", "./data/vendormail.logs.json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		GmailMode:   normalizeMode(os.Getenv("GMAIL_MODE")),
		GeminiMode:  normalizeMode(os.Getenv("GEMINI_MODE")),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func normalizeMode(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), domain.ModeLive) {
		return domain.ModeLive
	}
	return domain.ModeMock
}
