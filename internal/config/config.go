package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// ForecastBaseURL is the upstream hourly forecast endpoint.
	ForecastBaseURL string

	// HTTPTimeout bounds each individual upstream call so one slow
	// location cannot stall a whole batch.
	HTTPTimeout time.Duration

	// RedisURL selects the shared Redis cache; empty means in-memory.
	RedisURL string

	// CacheTTL is how long successful results are served from cache.
	CacheTTL time.Duration

	// DistrictsFile is the static district reference table.
	DistrictsFile string

	// PrewarmInterval controls periodic cache pre-warming; 0 disables it.
	PrewarmInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.ForecastBaseURL = getenvDefault("FORECAST_BASE_URL", "https://api.open-meteo.com/v1/forecast")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.DistrictsFile = getenvDefault("DISTRICTS_FILE", "bd-districts.json")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", 600*time.Second); err != nil {
		return nil, err
	}
	if cfg.PrewarmInterval, err = getenvDuration("PREWARM_INTERVAL", 0); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
