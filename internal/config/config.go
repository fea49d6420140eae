// Package config loads service configuration from .env files and environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the service.
type AppConfig struct {
	// Primary provider (Tavily). An empty key does not fail startup: provider
	// calls fail fast into the fallback path instead.
	TavilyAPIKey string
	TavilyAPIURL string

	// Fallback provider (DuckDuckGo Instant Answer API).
	DuckDuckGoAPIURL string

	Port string

	// Insight cache tuning.
	CacheCapacity int
	CacheTTL      time.Duration
	NewsCacheTTL  time.Duration
	CacheGrace    time.Duration

	// Provider call handling.
	ProviderTimeout  time.Duration
	ProviderPoolSize int

	// Content processing.
	EnrichTopResults int
	ContentCacheTTL  time.Duration
	SummaryBudget    int
	MaxKeywords      int
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*AppConfig, error) {
	// Attempt to load .env file. If it doesn't exist, that's fine,
	// environment variables can still be used.
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Info: Could not load .env file: %v (this is ok if using environment variables)\n", err)
	}

	config := &AppConfig{
		TavilyAPIKey:     os.Getenv("TAVILY_API_KEY"),
		TavilyAPIURL:     getEnv("TAVILY_API_URL", "https://api.tavily.com/search"),
		DuckDuckGoAPIURL: getEnv("DUCKDUCKGO_API_URL", "https://api.duckduckgo.com/"),
		Port:             getEnv("PORT", "8080"),
		CacheCapacity:    getEnvInt("CACHE_CAPACITY", 512),
		CacheTTL:         getEnvDuration("CACHE_TTL", 10*time.Minute),
		NewsCacheTTL:     getEnvDuration("NEWS_CACHE_TTL", 5*time.Minute),
		CacheGrace:       getEnvDuration("CACHE_STALE_GRACE", 2*time.Minute),
		ProviderTimeout:  getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),
		ProviderPoolSize: getEnvInt("PROVIDER_POOL_SIZE", 8),
		EnrichTopResults: getEnvInt("ENRICH_TOP_RESULTS", 3),
		ContentCacheTTL:  getEnvDuration("CONTENT_CACHE_TTL", 15*time.Minute),
		SummaryBudget:    getEnvInt("SUMMARY_BUDGET", 300),
		MaxKeywords:      getEnvInt("MAX_KEYWORDS", 5),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *AppConfig) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port number: %s", c.Port)
	}

	if c.CacheCapacity < 1 {
		return fmt.Errorf("cache capacity must be positive, got %d", c.CacheCapacity)
	}
	if c.ProviderPoolSize < 1 {
		return fmt.Errorf("provider pool size must be positive, got %d", c.ProviderPoolSize)
	}
	if c.CacheTTL <= 0 || c.NewsCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive (cache=%s news=%s)", c.CacheTTL, c.NewsCacheTTL)
	}
	if c.CacheGrace < 0 {
		return fmt.Errorf("cache stale grace must not be negative, got %s", c.CacheGrace)
	}
	if c.SummaryBudget < 50 {
		return fmt.Errorf("summary budget too small: %d", c.SummaryBudget)
	}
	if c.MaxKeywords < 1 {
		return fmt.Errorf("max keywords must be positive, got %d", c.MaxKeywords)
	}

	// Warn about missing optional configurations.
	if c.TavilyAPIKey == "" {
		fmt.Println("Warning: TAVILY_API_KEY not set - all searches will use the fallback provider")
	}

	return nil
}

// GetPort returns the port as an integer.
func (c *AppConfig) GetPort() int {
	port, _ := strconv.Atoi(c.Port) // Already validated in Validate()
	return port
}

// HasTavilyConfig returns true if the primary provider credential is set.
func (c *AppConfig) HasTavilyConfig() bool {
	return c.TavilyAPIKey != ""
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an integer environment variable or returns a default value.
// Unparseable values fall back to the default with a warning.
func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Printf("Warning: %s=%q is not an integer, using %d\n", key, raw, fallback)
		return fallback
	}
	return value
}

// getEnvDuration gets a duration environment variable (e.g. "10m", "30s") or
// returns a default value.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		fmt.Printf("Warning: %s=%q is not a duration, using %s\n", key, raw, fallback)
		return fallback
	}
	return value
}
