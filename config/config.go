package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all environment-driven settings. The auth secret is
// provisioned externally; there is no in-process rotation.
type Config struct {
	ServerPort    int
	DatabaseDSN   string
	AuthSecret    string
	TokenTTL      time.Duration
	MigrationsDir string
	SeedsDir      string
}

// Load reads configuration from the environment, with an optional .env file
// in development.
func Load() Config {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}
	return Config{
		ServerPort:    getEnvInt("SERVER_PORT", 8080),
		DatabaseDSN:   getEnv("SUVIDHA_PG_DSN", ""),
		AuthSecret:    getEnv("SUVIDHA_AUTH_SECRET", ""),
		TokenTTL:      getEnvDuration("SUVIDHA_TOKEN_TTL", 24*time.Hour),
		MigrationsDir: getEnv("SUVIDHA_MIGRATIONS_DIR", "migrations"),
		SeedsDir:      getEnv("SUVIDHA_SEEDS_DIR", "seeds"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if raw, exists := os.LookupEnv(key); exists {
		var value int
		if _, err := fmt.Sscanf(raw, "%d", &value); err == nil {
			return value
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if raw, exists := os.LookupEnv(key); exists {
		if value, err := time.ParseDuration(raw); err == nil && value > 0 {
			return value
		}
	}
	return fallback
}
