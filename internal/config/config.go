package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string
	DBPath           string
	LogLevel         string
	MaxNewCards      int
	MaxLearningCards int
	MaxReviewCards   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid. The card
// quotas seed training settings for collections that have no row yet.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBPath:           envOr("DB_PATH", "file:flashdeck.db"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		MaxNewCards:      envIntOr("MAX_NEW_CARDS", 10),
		MaxLearningCards: envIntOr("MAX_LEARNING_CARDS", 50),
		MaxReviewCards:   envIntOr("MAX_REVIEW_CARDS", 100),
	}
}

// Validate checks the loaded configuration and reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a known level", c.LogLevel))
	}
	if c.MaxNewCards < 0 {
		problems = append(problems, "MAX_NEW_CARDS cannot be negative")
	}
	if c.MaxLearningCards < 1 {
		problems = append(problems, "MAX_LEARNING_CARDS must be at least 1")
	}
	if c.MaxReviewCards < 1 {
		problems = append(problems, "MAX_REVIEW_CARDS must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
