package config

import (
	"os"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	MapPath       string
	RulesPath     string
	LogPath       string
	DatabaseURL   string
	RedisURL      string
	PhaseDeadline time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults. DATABASE_URL and REDIS_URL default to empty: persistence
// and session caching are enabled only when they are set.
func Load() *Config {
	return &Config{
		MapPath:       envOrDefault("MAP_PATH", "map.json"),
		RulesPath:     envOrDefault("RULES_PATH", "rules.json"),
		LogPath:       envOrDefault("LOG_PATH", "log.json"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		PhaseDeadline: envDuration("PHASE_DEADLINE", 0),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envDuration parses a Go duration from the environment; zero means no
// deadline, the barrier waits for every player.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
