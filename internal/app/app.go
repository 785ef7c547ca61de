package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/l1emant/insidex-web/config"
	"github.com/l1emant/insidex-web/models"
	"github.com/l1emant/insidex-web/observability"
	"github.com/l1emant/insidex-web/repository"

	"github.com/robfig/cron/v3"
)

// RepositoryInterface defines the repository operations needed by App
type RepositoryInterface interface {
	Close()
	Health(ctx context.Context) error
	AddToWatchlist(ctx context.Context, item *models.WatchlistItem) error
	RemoveFromWatchlist(ctx context.Context, userID, symbol string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// StocksService defines the aggregation operations needed by App
type StocksService interface {
	GetNews(ctx context.Context, symbols []string) ([]models.NewsArticle, error)
	SearchStocks(ctx context.Context, query, userEmail string) []models.StockWithWatchlistStatus
	GetStockDetails(ctx context.Context, symbol string) (*models.StockDetails, error)
	GetUserWatchlist(ctx context.Context, userID string) ([]models.WatchlistItem, error)
	GetWatchlistWithData(ctx context.Context, userID string) ([]models.WatchlistStock, error)
}

// AuthService defines the session operations needed by App
type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (*models.User, string, error)
	SignIn(ctx context.Context, email, password string) (*models.User, string, error)
	SignOut(ctx context.Context, token string) error
	SessionFromRequest(r *http.Request) (*models.User, error)
	CookieName() string
}

// CachePurger drops expired response-cache entries
type CachePurger interface {
	PurgeExpiredCache() int
}

// App holds application dependencies behind interfaces for testability
type App struct {
	cfg    *config.Config
	repo   RepositoryInterface
	stocks StocksService
	auth   AuthService
	cache  CachePurger
	cron   *cron.Cron
}

// New creates a new App
func New(cfg *config.Config, repo RepositoryInterface, stocks StocksService, auth AuthService, cache CachePurger) *App {
	return &App{
		cfg:    cfg,
		repo:   repo,
		stocks: stocks,
		auth:   auth,
		cache:  cache,
	}
}

// Startup schedules background maintenance and starts the scheduler
func (a *App) Startup(ctx context.Context) error {
	a.cron = cron.New()

	if a.cache != nil {
		_, err := a.cron.AddFunc(a.cfg.Maintenance.CacheSweepSchedule, func() {
			if purged := a.cache.PurgeExpiredCache(); purged > 0 {
				observability.Debug("purged expired cache entries", "count", purged)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule cache sweep: %w", err)
		}
	}

	if a.repo != nil {
		_, err := a.cron.AddFunc(a.cfg.Maintenance.SessionSweepSchedule, func() {
			deleted, err := a.repo.DeleteExpiredSessions(context.Background())
			if err != nil {
				observability.Error("failed to delete expired sessions", "error", err)
				return
			}
			if deleted > 0 {
				observability.Debug("deleted expired sessions", "count", deleted)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule session sweep: %w", err)
		}
	}

	a.cron.Start()
	return nil
}

// Shutdown stops the scheduler and closes the repository
func (a *App) Shutdown(ctx context.Context) {
	if a.cron != nil {
		a.cron.Stop()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// Repo returns the repository interface for API handlers
func (a *App) Repo() RepositoryInterface {
	return a.repo
}

// Stocks returns the aggregation service
func (a *App) Stocks() StocksService {
	return a.stocks
}

// Auth returns the auth service
func (a *App) Auth() AuthService {
	return a.auth
}

// AddToWatchlist stores a watchlist entry for the user. Duplicates surface as
// repository.ErrAlreadyInWatchlist for the boundary layer to translate.
func (a *App) AddToWatchlist(ctx context.Context, userID, symbol, company string) error {
	if a.repo == nil {
		return fmt.Errorf("database not initialized")
	}
	return a.repo.AddToWatchlist(ctx, models.NewWatchlistItem(userID, symbol, company))
}

// RemoveFromWatchlist removes a watchlist entry for the user
func (a *App) RemoveFromWatchlist(ctx context.Context, userID, symbol string) error {
	if a.repo == nil {
		return fmt.Errorf("database not initialized")
	}
	return a.repo.RemoveFromWatchlist(ctx, userID, symbol)
}

// Compile-time interface verification for the production repository
var _ RepositoryInterface = (*repository.Repository)(nil)
