package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath         string
	Category       string
	CategoriesFile string
	Log            LogConfig
	FlushTimeout   time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (if present) and the environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBPath:         getEnv("TASTEMAP_DB", defaultDBPath()),
		Category:       getEnv("TASTEMAP_CATEGORY", "wagashi"),
		CategoriesFile: getEnv("TASTEMAP_CATEGORIES_FILE", ""),
		Log: LogConfig{
			Level:  getEnv("TASTEMAP_LOG_LEVEL", "info"),
			Format: getEnv("TASTEMAP_LOG_FORMAT", "console"),
		},
		FlushTimeout: parseDuration(getEnv("TASTEMAP_FLUSH_TIMEOUT", "5s"), 5*time.Second),
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tastemap.db"
	}
	return filepath.Join(home, ".tastemap", "tastemap.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
