package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service settings read from the environment.
type Config struct {
	Port        string
	DBPath      string
	DatabaseURL string
	RedisURL    string
	SeedPath    string
	MapID       string

	DepartHour     int
	SpeedKmh       float64
	DeliveryTime   time.Duration
	WindowSize     time.Duration
	PermutationMax int
	SearchBudget   time.Duration
	ComputeWorkers int
	PathCacheTTL   time.Duration
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv loads a .env file when present. Missing files are not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load reads the configuration from the environment. Malformed numeric
// values are reported instead of silently replaced by defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        Get("PORT", "8080"),
		DBPath:      Get("DB_PATH", "data/app.db"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),
		SeedPath:    Get("SEED_PATH", "data/seeds/lyon_small.json"),
		MapID:       Get("MAP_ID", "lyon-small"),
	}

	var err error
	if cfg.DepartHour, err = getInt("DEPART_HOUR", 8); err != nil {
		return nil, err
	}
	if cfg.DepartHour < 0 || cfg.DepartHour > 23 {
		return nil, fmt.Errorf("load config: DEPART_HOUR must be between 0 and 23, got %d", cfg.DepartHour)
	}

	if cfg.SpeedKmh, err = getFloat("SPEED_KMH", 15); err != nil {
		return nil, err
	}
	if cfg.SpeedKmh <= 0 {
		return nil, fmt.Errorf("load config: SPEED_KMH must be positive, got %v", cfg.SpeedKmh)
	}

	minutes, err := getInt("DELIVERY_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	if minutes < 0 {
		return nil, fmt.Errorf("load config: DELIVERY_MINUTES must not be negative, got %d", minutes)
	}
	cfg.DeliveryTime = time.Duration(minutes) * time.Minute

	if minutes, err = getInt("WINDOW_MINUTES", 60); err != nil {
		return nil, err
	}
	if minutes <= 0 {
		return nil, fmt.Errorf("load config: WINDOW_MINUTES must be positive, got %d", minutes)
	}
	cfg.WindowSize = time.Duration(minutes) * time.Minute

	if cfg.PermutationMax, err = getInt("PERMUTATION_LIMIT", 8); err != nil {
		return nil, err
	}

	if cfg.SearchBudget, err = getDuration("SEARCH_BUDGET", 10*time.Second); err != nil {
		return nil, err
	}

	if cfg.ComputeWorkers, err = getInt("COMPUTE_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.ComputeWorkers < 1 {
		cfg.ComputeWorkers = 1
	}

	if cfg.PathCacheTTL, err = getDuration("PATH_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("load config: parse %s=%q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("load config: parse %s=%q: %w", key, v, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("load config: parse %s=%q: %w", key, v, err)
	}
	return d, nil
}
