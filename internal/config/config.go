package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/crisismap/crisis-data-api/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir         string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// RateLimitRPS caps request throughput across all clients; 0 disables
	// the limiter. RateLimitBurst defaults to the RPS value.
	RateLimitRPS   int
	RateLimitBurst int

	// Dataset response cache. Off by default; each request re-reads the
	// CSV files from disk, which is cheap at the dataset sizes involved.
	CacheEnabled bool
	CacheTTL     time.Duration
	CacheSize    int

	Region domain.Region
}

// Load reads configuration from environment variables, applying defaults
// where unset. Malformed values are errors, never silently replaced by the
// default.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := envDuration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	rateLimitRPS, err := envInt("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, err
	}
	rateLimitBurst, err := envInt("RATE_LIMIT_BURST", rateLimitRPS)
	if err != nil {
		return nil, err
	}
	cacheSize, err := envInt("CACHE_SIZE", 16)
	if err != nil {
		return nil, err
	}

	box, err := loadBoundingBox()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         envOrDefault("DATA_DIR", "./data"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		RateLimitRPS:    rateLimitRPS,
		RateLimitBurst:  rateLimitBurst,
		CacheEnabled:    os.Getenv("CACHE_ENABLED") == "true",
		CacheTTL:        cacheTTL,
		CacheSize:       cacheSize,
		Region: domain.Region{
			Box: box,
			DefaultBounds: domain.Bounds{
				North: 32.6,
				South: 31.2,
				East:  35.6,
				West:  34.2,
			},
			Country:        envOrDefault("TARGET_COUNTRY", "Palestine"),
			SubregionToken: envOrDefault("SUBREGION_TOKEN", "gaza"),
		},
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.RateLimitRPS < 0 {
		return nil, errors.New("RATE_LIMIT_RPS must not be negative")
	}
	if cfg.RateLimitBurst < 0 {
		return nil, errors.New("RATE_LIMIT_BURST must not be negative")
	}
	if cfg.CacheEnabled && cfg.CacheSize <= 0 {
		return nil, errors.New("CACHE_SIZE must be positive when CACHE_ENABLED is true")
	}
	if cfg.CacheEnabled && cfg.CacheTTL <= 0 {
		return nil, errors.New("CACHE_TTL must be positive when CACHE_ENABLED is true")
	}
	if cfg.Region.Country == "" {
		return nil, errors.New("TARGET_COUNTRY is required")
	}
	if cfg.Region.SubregionToken == "" {
		return nil, errors.New("SUBREGION_TOKEN is required")
	}

	return cfg, nil
}

func loadBoundingBox() (domain.BoundingBox, error) {
	minLat, err := envFloat("REGION_MIN_LAT", 29.0)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	maxLat, err := envFloat("REGION_MAX_LAT", 33.5)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	minLng, err := envFloat("REGION_MIN_LNG", 34.0)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	maxLng, err := envFloat("REGION_MAX_LNG", 36.0)
	if err != nil {
		return domain.BoundingBox{}, err
	}

	box := domain.BoundingBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
	if box.MinLat >= box.MaxLat {
		return domain.BoundingBox{}, fmt.Errorf("invalid latitude band: %g >= %g", box.MinLat, box.MaxLat)
	}
	if box.MinLng >= box.MaxLng {
		return domain.BoundingBox{}, fmt.Errorf("invalid longitude band: %g >= %g", box.MinLng, box.MaxLng)
	}
	return box, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}
