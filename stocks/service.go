// Package stocks contains the data-aggregation core: it fans out requests to
// the market-data API, merges the heterogeneous responses, and degrades
// per-item on partial failure.
package stocks

import (
	"context"
	"errors"

	"github.com/l1emant/insidex-web/config"
	"github.com/l1emant/insidex-web/models"
	"github.com/l1emant/insidex-web/services"
)

// Errors surfaced to callers. Partial per-symbol and per-item failures are
// absorbed and logged; these cover the operation-level failures.
var (
	ErrFailedToFetchNews         = errors.New("failed to fetch news")
	ErrFailedToFetchStockDetails = errors.New("failed to fetch stock details")
	ErrFailedToFetchWatchlist    = errors.New("failed to fetch watchlist")
	ErrInvalidStockData          = errors.New("invalid stock data received from API")
)

// WatchlistRepo is the subset of repository operations the aggregators need
type WatchlistRepo interface {
	GetWatchlist(ctx context.Context, userID string) ([]models.WatchlistItem, error)
	GetWatchlistSymbolsByEmail(ctx context.Context, email string) []string
}

// Service aggregates market data from the upstream API and the user's
// persisted watchlist
type Service struct {
	finnhub services.FinnhubServiceInterface
	repo    WatchlistRepo
	cfg     *config.Config
}

// NewService creates a new stocks Service
func NewService(finnhub services.FinnhubServiceInterface, repo WatchlistRepo, cfg *config.Config) *Service {
	return &Service{
		finnhub: finnhub,
		repo:    repo,
		cfg:     cfg,
	}
}
