package repository

import (
	"context"

	"github.com/l1emant/insidex-web/models"
)

// RepositoryInterface defines all repository operations
type RepositoryInterface interface {
	// Health and lifecycle
	Close()
	Health(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Sessions
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	// Watchlist
	GetWatchlist(ctx context.Context, userID string) ([]models.WatchlistItem, error)
	GetWatchlistSymbols(ctx context.Context, userID string) ([]string, error)
	GetWatchlistSymbolsByEmail(ctx context.Context, email string) []string
	AddToWatchlist(ctx context.Context, item *models.WatchlistItem) error
	RemoveFromWatchlist(ctx context.Context, userID, symbol string) error
}

// Compile-time interface verification
var _ RepositoryInterface = (*Repository)(nil)
