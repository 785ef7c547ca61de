package stocks

import (
	"context"

	"github.com/l1emant/insidex-web/models"
	"github.com/l1emant/insidex-web/observability"

	"golang.org/x/sync/errgroup"
)

// GetUserWatchlist returns the user's persisted watchlist entries,
// newest-first
func (s *Service) GetUserWatchlist(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	items, err := s.repo.GetWatchlist(ctx, userID)
	if err != nil {
		observability.WithUser(userID).Error("failed to load watchlist", "error", err)
		return nil, ErrFailedToFetchWatchlist
	}
	return items, nil
}

// GetWatchlistWithData joins the user's watchlist entries with freshly
// fetched market data. Entries whose detail fetch fails are kept as degraded
// records carrying only the persisted fields; the batch fails only if the
// watchlist read itself fails.
func (s *Service) GetWatchlistWithData(ctx context.Context, userID string) ([]models.WatchlistStock, error) {
	items, err := s.repo.GetWatchlist(ctx, userID)
	if err != nil {
		observability.WithUser(userID).Error("failed to load watchlist", "error", err)
		return nil, ErrFailedToFetchWatchlist
	}

	if len(items) == 0 {
		return []models.WatchlistStock{}, nil
	}

	stocks := make([]models.WatchlistStock, len(items))

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			stock := models.WatchlistStock{
				UserID:  item.UserID,
				Symbol:  item.Symbol,
				Company: item.Company,
				AddedAt: item.AddedAt,
			}

			details, err := s.GetStockDetails(gctx, item.Symbol)
			if err != nil {
				observability.WithSymbol(item.Symbol).Warn("failed to fetch data for watchlist entry", "error", err)
				stocks[i] = stock
				return nil
			}

			if stock.Company == "" {
				stock.Company = details.Company
			}
			stock.CurrentPrice = details.CurrentPrice
			stock.ChangePercent = details.ChangePercent
			stock.PriceFormatted = details.PriceFormatted
			stock.ChangeFormatted = details.ChangeFormatted
			stock.MarketCap = details.MarketCapFormatted
			stock.PERatio = details.PERatio

			stocks[i] = stock
			return nil
		})
	}
	// Per-item failures are absorbed above, so Wait cannot fail
	_ = g.Wait()

	return stocks, nil
}
