package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Market-data API configuration
	Finnhub FinnhubConfig

	// Auth configuration
	Auth AuthConfig

	// Search configuration
	Search SearchConfig

	// HTTP configuration
	HTTP HTTPConfig

	// Background maintenance configuration
	Maintenance MaintenanceConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// FinnhubConfig holds Finnhub API configuration
type FinnhubConfig struct {
	APIKey  string
	BaseURL string
}

// AuthConfig holds session configuration
type AuthConfig struct {
	SessionTTL time.Duration
	CookieName string
}

// SearchConfig holds stock search configuration
type SearchConfig struct {
	MaxResults     int      // cap on search results returned to the client
	PopularLimit   int      // how many popular symbols to resolve for an empty query
	PopularSymbols []string // curated symbols shown when the query is empty
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
	TimeoutSeconds     int
}

// MaintenanceConfig holds background job configuration
type MaintenanceConfig struct {
	CacheSweepSchedule   string // cron spec for purging expired response-cache entries
	SessionSweepSchedule string // cron spec for deleting expired sessions
}

// defaultPopularSymbols is the curated list used when no override file is
// configured. Order matters: the first PopularLimit entries are shown for an
// empty search query.
var defaultPopularSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"TSLA", "META", "NFLX", "AMD", "INTC",
	"JPM", "V", "UNH", "XOM", "JNJ",
	"WMT", "PG", "KO", "DIS", "BAC",
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Finnhub: FinnhubConfig{
			APIKey:  os.Getenv("FINNHUB_API_KEY"),
			BaseURL: getEnvString("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
		},
		Auth: AuthConfig{
			SessionTTL: time.Duration(getEnvInt("AUTH_SESSION_TTL_HOURS", 24*7)) * time.Hour,
			CookieName: getEnvString("AUTH_COOKIE_NAME", "insidex_session"),
		},
		Search: SearchConfig{
			MaxResults:     getEnvInt("SEARCH_MAX_RESULTS", 15),
			PopularLimit:   getEnvInt("SEARCH_POPULAR_LIMIT", 10),
			PopularSymbols: defaultPopularSymbols,
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("PORT", "8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			TimeoutSeconds:     getEnvInt("HTTP_TIMEOUT_SECONDS", 30),
		},
		Maintenance: MaintenanceConfig{
			CacheSweepSchedule:   getEnvString("CACHE_SWEEP_SCHEDULE", "@every 10m"),
			SessionSweepSchedule: getEnvString("SESSION_SWEEP_SCHEDULE", "@every 1h"),
		},
	}

	if path := os.Getenv("POPULAR_SYMBOLS_FILE"); path != "" {
		symbols, err := loadPopularSymbols(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load popular symbols from %s: %w", path, err)
		}
		cfg.Search.PopularSymbols = symbols
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// popularSymbolsFile is the YAML shape of an external popular-symbols list
type popularSymbolsFile struct {
	Symbols []string `yaml:"symbols"`
}

// loadPopularSymbols reads a YAML file of the form `symbols: [AAPL, MSFT, ...]`
func loadPopularSymbols(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file popularSymbolsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if len(file.Symbols) == 0 {
		return nil, fmt.Errorf("no symbols listed")
	}

	return file.Symbols, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("SEARCH_MAX_RESULTS must be positive, got %d", c.Search.MaxResults)
	}
	if c.Search.PopularLimit <= 0 {
		return fmt.Errorf("SEARCH_POPULAR_LIMIT must be positive, got %d", c.Search.PopularLimit)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("AUTH_SESSION_TTL_HOURS must be positive, got %s", c.Auth.SessionTTL)
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTP.TimeoutSeconds)
	}
	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasFinnhub returns true if a Finnhub API key is configured
func (c *Config) HasFinnhub() bool {
	return c.Finnhub.APIKey != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL: "",
		},
		Finnhub: FinnhubConfig{
			APIKey:  "test-key",
			BaseURL: "https://finnhub.io/api/v1",
		},
		Auth: AuthConfig{
			SessionTTL: 24 * time.Hour,
			CookieName: "insidex_session",
		},
		Search: SearchConfig{
			MaxResults:     15,
			PopularLimit:   10,
			PopularSymbols: defaultPopularSymbols,
		},
		HTTP: HTTPConfig{
			Port:               "8080",
			CORSAllowedOrigins: "*",
			TimeoutSeconds:     30,
		},
		Maintenance: MaintenanceConfig{
			CacheSweepSchedule:   "@every 10m",
			SessionSweepSchedule: "@every 1h",
		},
	}
}
