package stocks

import (
	"context"
	"strings"

	"github.com/l1emant/insidex-web/models"
	"github.com/l1emant/insidex-web/observability"
	"github.com/l1emant/insidex-web/services"

	"golang.org/x/sync/errgroup"
)

// searchCandidate pairs a raw search result with the exchange resolved from
// a company profile, so the mapping stage has every field it needs without
// bolting data onto the raw result
type searchCandidate struct {
	result   services.SearchResult
	exchange string
}

// SearchStocks resolves a search query to stocks annotated with the caller's
// watchlist membership. An empty query returns the curated popular symbols
// instead of searching. Search is deliberately lenient: every failure is
// logged and degrades to an empty (or shorter) result list so a transient
// upstream problem never breaks the search box.
func (s *Service) SearchStocks(ctx context.Context, query, userEmail string) []models.StockWithWatchlistStatus {
	watchlistSymbols := s.repo.GetWatchlistSymbolsByEmail(ctx, userEmail)
	inWatchlist := make(map[string]bool, len(watchlistSymbols))
	for _, sym := range watchlistSymbols {
		inWatchlist[sym] = true
	}

	trimmed := strings.TrimSpace(query)

	var candidates []searchCandidate
	if trimmed == "" {
		candidates = s.popularCandidates(ctx)
	} else {
		results, err := s.finnhub.SearchSymbols(ctx, trimmed)
		if err != nil {
			observability.Error("stock search failed", "query", trimmed, "error", err)
			return []models.StockWithWatchlistStatus{}
		}
		candidates = make([]searchCandidate, 0, len(results))
		for _, r := range results {
			candidates = append(candidates, searchCandidate{result: r})
		}
	}

	mapped := make([]models.StockWithWatchlistStatus, 0, s.cfg.Search.MaxResults)
	for _, c := range candidates {
		if len(mapped) >= s.cfg.Search.MaxResults {
			break
		}

		upper := strings.ToUpper(c.result.Symbol)

		name := c.result.Description
		if name == "" {
			name = upper
		}

		// Exchange fallback chain: display symbol, then profile-derived
		// exchange, then the default market
		exchange := c.result.DisplaySymbol
		if exchange == "" {
			exchange = c.exchange
		}
		if exchange == "" {
			exchange = "US"
		}

		resultType := c.result.Type
		if resultType == "" {
			resultType = "Stock"
		}

		mapped = append(mapped, models.StockWithWatchlistStatus{
			Symbol:        upper,
			Name:          name,
			Exchange:      exchange,
			Type:          resultType,
			IsInWatchlist: inWatchlist[upper],
		})
	}

	return mapped
}

// popularCandidates fetches profiles for the curated popular symbols
// concurrently. A symbol whose profile fetch fails or resolves to an empty
// name is dropped rather than failing the batch.
func (s *Service) popularCandidates(ctx context.Context) []searchCandidate {
	top := s.cfg.Search.PopularSymbols
	if len(top) > s.cfg.Search.PopularLimit {
		top = top[:s.cfg.Search.PopularLimit]
	}

	profiles := make([]*services.Profile, len(top))

	g, gctx := errgroup.WithContext(ctx)
	for i, sym := range top {
		i, sym := i, sym
		g.Go(func() error {
			profile, err := s.finnhub.GetProfile(gctx, sym)
			if err != nil {
				observability.WithSymbol(sym).Error("failed to fetch profile", "error", err)
				return nil
			}
			profiles[i] = profile
			return nil
		})
	}
	// Per-symbol failures are absorbed above, so Wait cannot fail
	_ = g.Wait()

	candidates := make([]searchCandidate, 0, len(top))
	for i, sym := range top {
		profile := profiles[i]
		if profile == nil {
			continue
		}

		name := profile.Name
		if name == "" {
			name = profile.Ticker
		}
		if name == "" {
			continue
		}

		upper := strings.ToUpper(sym)
		candidates = append(candidates, searchCandidate{
			result: services.SearchResult{
				Symbol:        upper,
				Description:   name,
				DisplaySymbol: upper,
				Type:          "Common Stock",
			},
			exchange: profile.Exchange,
		})
	}

	return candidates
}
