package stocks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/l1emant/insidex-web/services"
)

func TestSearchStocks_MapsResults(t *testing.T) {
	finnhub := &fakeFinnhub{
		searchFn: func(query string) ([]services.SearchResult, error) {
			return []services.SearchResult{
				{Symbol: "aapl", Description: "APPLE INC", DisplaySymbol: "AAPL", Type: "Common Stock"},
				{Symbol: "APLE", Description: "", DisplaySymbol: "", Type: ""},
			}, nil
		},
	}
	service := newTestService(finnhub, nil)

	results := service.SearchStocks(context.Background(), "apple", "")

	if len(results) != 2 {
		t.Fatalf("results length = %v, want 2", len(results))
	}

	first := results[0]
	if first.Symbol != "AAPL" {
		t.Errorf("Symbol = %v, want AAPL (uppercased)", first.Symbol)
	}
	if first.Name != "APPLE INC" {
		t.Errorf("Name = %v, want APPLE INC", first.Name)
	}
	if first.Exchange != "AAPL" {
		t.Errorf("Exchange = %v, want display symbol AAPL", first.Exchange)
	}

	second := results[1]
	if second.Name != "APLE" {
		t.Errorf("Name = %v, want symbol fallback APLE", second.Name)
	}
	if second.Exchange != "US" {
		t.Errorf("Exchange = %v, want default US", second.Exchange)
	}
	if second.Type != "Stock" {
		t.Errorf("Type = %v, want default Stock", second.Type)
	}
}

func TestSearchStocks_AnnotatesWatchlistMembership(t *testing.T) {
	finnhub := &fakeFinnhub{
		searchFn: func(query string) ([]services.SearchResult, error) {
			return []services.SearchResult{
				{Symbol: "AAPL", Description: "APPLE INC"},
				{Symbol: "MSFT", Description: "MICROSOFT CORP"},
			}, nil
		},
	}
	repo := &fakeRepo{symbolsByEmail: map[string][]string{
		"jordan@example.com": {"AAPL"},
	}}
	service := newTestService(finnhub, repo)

	results := service.SearchStocks(context.Background(), "a", "jordan@example.com")

	if len(results) != 2 {
		t.Fatalf("results length = %v, want 2", len(results))
	}
	if !results[0].IsInWatchlist {
		t.Error("AAPL should be marked as in watchlist")
	}
	if results[1].IsInWatchlist {
		t.Error("MSFT should not be marked as in watchlist")
	}
}

func TestSearchStocks_UpstreamErrorDegradesToEmpty(t *testing.T) {
	finnhub := &fakeFinnhub{
		searchFn: func(query string) ([]services.SearchResult, error) {
			return nil, errors.New("upstream failed")
		},
	}
	service := newTestService(finnhub, nil)

	results := service.SearchStocks(context.Background(), "apple", "")

	if results == nil {
		t.Fatal("results should be an empty slice, not nil")
	}
	if len(results) != 0 {
		t.Errorf("results length = %v, want 0", len(results))
	}
}

func TestSearchStocks_CapsResults(t *testing.T) {
	finnhub := &fakeFinnhub{
		searchFn: func(query string) ([]services.SearchResult, error) {
			results := make([]services.SearchResult, 30)
			for i := range results {
				results[i] = services.SearchResult{
					Symbol:      fmt.Sprintf("SYM%d", i),
					Description: fmt.Sprintf("Company %d", i),
				}
			}
			return results, nil
		},
	}
	service := newTestService(finnhub, nil)

	results := service.SearchStocks(context.Background(), "sym", "")

	if len(results) != 15 {
		t.Errorf("results length = %v, want 15", len(results))
	}
}

func TestSearchStocks_EmptyQueryReturnsPopular(t *testing.T) {
	finnhub := &fakeFinnhub{
		profileFn: func(symbol string) (*services.Profile, error) {
			return &services.Profile{
				Name:     symbol + " Inc",
				Ticker:   symbol,
				Exchange: "NASDAQ",
			}, nil
		},
	}
	service := newTestService(finnhub, nil)

	results := service.SearchStocks(context.Background(), "   ", "")

	if len(results) != 10 {
		t.Fatalf("results length = %v, want popular limit 10", len(results))
	}
	if results[0].Symbol != "AAPL" {
		t.Errorf("first popular symbol = %v, want AAPL", results[0].Symbol)
	}
	if results[0].Name != "AAPL Inc" {
		t.Errorf("Name = %v, want 'AAPL Inc'", results[0].Name)
	}
	if results[0].Type != "Common Stock" {
		t.Errorf("Type = %v, want 'Common Stock'", results[0].Type)
	}
}

func TestSearchStocks_PopularDropsFailedProfiles(t *testing.T) {
	finnhub := &fakeFinnhub{
		profileFn: func(symbol string) (*services.Profile, error) {
			if symbol == "AAPL" {
				return nil, errors.New("upstream failed")
			}
			if symbol == "MSFT" {
				return &services.Profile{}, nil
			}
			return &services.Profile{Name: symbol + " Inc"}, nil
		},
	}
	service := newTestService(finnhub, nil)

	results := service.SearchStocks(context.Background(), "", "")

	// AAPL fails outright, MSFT resolves to an empty name; both drop
	if len(results) != 8 {
		t.Fatalf("results length = %v, want 8", len(results))
	}
	for _, r := range results {
		if r.Symbol == "AAPL" || r.Symbol == "MSFT" {
			t.Errorf("symbol %v should have been dropped", r.Symbol)
		}
	}
}
