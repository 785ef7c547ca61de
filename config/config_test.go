package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Finnhub.BaseURL != "https://finnhub.io/api/v1" {
		t.Errorf("Finnhub.BaseURL = %v, want default", cfg.Finnhub.BaseURL)
	}
	if cfg.Auth.SessionTTL != 7*24*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want 168h", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.CookieName != "insidex_session" {
		t.Errorf("Auth.CookieName = %v, want insidex_session", cfg.Auth.CookieName)
	}
	if cfg.Search.MaxResults != 15 {
		t.Errorf("Search.MaxResults = %v, want 15", cfg.Search.MaxResults)
	}
	if cfg.Search.PopularLimit != 10 {
		t.Errorf("Search.PopularLimit = %v, want 10", cfg.Search.PopularLimit)
	}
	if len(cfg.Search.PopularSymbols) != 20 {
		t.Errorf("PopularSymbols length = %v, want 20", len(cfg.Search.PopularSymbols))
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("HTTP.Port = %v, want 8080", cfg.HTTP.Port)
	}
	if cfg.Maintenance.CacheSweepSchedule != "@every 10m" {
		t.Errorf("CacheSweepSchedule = %v, want '@every 10m'", cfg.Maintenance.CacheSweepSchedule)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "env-key")
	t.Setenv("SEARCH_MAX_RESULTS", "25")
	t.Setenv("PORT", "9000")
	t.Setenv("AUTH_SESSION_TTL_HOURS", "48")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Finnhub.APIKey != "env-key" {
		t.Errorf("Finnhub.APIKey = %v, want env-key", cfg.Finnhub.APIKey)
	}
	if cfg.Search.MaxResults != 25 {
		t.Errorf("Search.MaxResults = %v, want 25", cfg.Search.MaxResults)
	}
	if cfg.HTTP.Port != "9000" {
		t.Errorf("HTTP.Port = %v, want 9000", cfg.HTTP.Port)
	}
	if cfg.Auth.SessionTTL != 48*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want 48h", cfg.Auth.SessionTTL)
	}
	if !cfg.HasFinnhub() {
		t.Error("HasFinnhub() = false, want true")
	}
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("SEARCH_MAX_RESULTS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Search.MaxResults != 15 {
		t.Errorf("Search.MaxResults = %v, want default 15", cfg.Search.MaxResults)
	}
}

func TestLoad_PopularSymbolsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yaml")
	content := "symbols:\n  - aapl\n  - MSFT\n  - NVDA\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write symbols file: %v", err)
	}
	t.Setenv("POPULAR_SYMBOLS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(cfg.Search.PopularSymbols) != 3 {
		t.Fatalf("PopularSymbols length = %v, want 3", len(cfg.Search.PopularSymbols))
	}
	if cfg.Search.PopularSymbols[0] != "aapl" {
		t.Errorf("PopularSymbols[0] = %v, want aapl", cfg.Search.PopularSymbols[0])
	}
}

func TestLoad_PopularSymbolsFileMissing(t *testing.T) {
	t.Setenv("POPULAR_SYMBOLS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("Load should fail when the symbols file cannot be read")
	}
}

func TestLoad_PopularSymbolsFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yaml")
	if err := os.WriteFile(path, []byte("symbols: []\n"), 0o644); err != nil {
		t.Fatalf("failed to write symbols file: %v", err)
	}
	t.Setenv("POPULAR_SYMBOLS_FILE", path)

	if _, err := Load(); err == nil {
		t.Error("Load should fail when the symbols file lists no symbols")
	}
}

func TestValidate(t *testing.T) {
	cfg := NewTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate on test config returned error: %v", err)
	}

	cfg.Search.MaxResults = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should reject non-positive MaxResults")
	}

	cfg = NewTestConfig()
	cfg.Auth.SessionTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should reject non-positive SessionTTL")
	}

	cfg = NewTestConfig()
	cfg.HTTP.TimeoutSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should reject non-positive TimeoutSeconds")
	}
}

func TestNewTestConfig(t *testing.T) {
	cfg := NewTestConfig()

	if !cfg.HasFinnhub() {
		t.Error("test config should carry an API key")
	}
	if cfg.HasDatabase() {
		t.Error("test config should not carry a database URL")
	}
}
