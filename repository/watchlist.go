package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/l1emant/insidex-web/models"
	"github.com/l1emant/insidex-web/observability"

	"github.com/jackc/pgx/v5"
)

// ErrAlreadyInWatchlist is returned when adding a symbol the user already tracks
var ErrAlreadyInWatchlist = errors.New("stock already in watchlist")

// GetWatchlist returns all watchlist entries for a user, newest-first
func (r *Repository) GetWatchlist(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "watchlist")

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, symbol, company, added_at
		FROM watchlist
		WHERE user_id = $1
		ORDER BY added_at DESC
	`, userID)
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "watchlist")
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var items []models.WatchlistItem
	for rows.Next() {
		var item models.WatchlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.Symbol, &item.Company, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

// GetWatchlistSymbols returns the set of symbols a user tracks
func (r *Repository) GetWatchlistSymbols(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT symbol FROM watchlist WHERE user_id = $1`, userID)
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "watchlist")
		return nil, fmt.Errorf("failed to query watchlist symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}

// GetWatchlistSymbolsByEmail resolves a user by email and returns their
// watchlist symbols. Missing users and lookup failures both yield an empty
// list: the callers use this for membership marking, where an empty set is
// the correct degraded answer.
func (r *Repository) GetWatchlistSymbolsByEmail(ctx context.Context, email string) []string {
	if email == "" {
		return nil
	}

	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		observability.Error("failed to look up user for watchlist symbols", "error", err)
		return nil
	}
	if user == nil {
		return nil
	}

	symbols, err := r.GetWatchlistSymbols(ctx, user.ID)
	if err != nil {
		observability.WithUser(user.ID).Error("failed to load watchlist symbols", "error", err)
		return nil
	}

	return symbols
}

// AddToWatchlist inserts a watchlist entry. Returns ErrAlreadyInWatchlist if
// the user already tracks the symbol.
func (r *Repository) AddToWatchlist(ctx context.Context, item *models.WatchlistItem) error {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("insert", "watchlist")

	var existing string
	err := r.db.QueryRow(ctx, `
		SELECT symbol FROM watchlist WHERE user_id = $1 AND symbol = $2
	`, item.UserID, item.Symbol).Scan(&existing)

	if err == nil {
		return ErrAlreadyInWatchlist
	}
	if err != pgx.ErrNoRows {
		observability.GetMetrics().RecordDBError("insert", "watchlist")
		return fmt.Errorf("failed to check watchlist: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO watchlist (id, user_id, symbol, company, added_at)
		VALUES ($1, $2, $3, $4, $5)
	`, item.ID, item.UserID, item.Symbol, item.Company, item.AddedAt)

	if err != nil {
		observability.GetMetrics().RecordDBError("insert", "watchlist")
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}

	return nil
}

// RemoveFromWatchlist deletes a watchlist entry by user and symbol
func (r *Repository) RemoveFromWatchlist(ctx context.Context, userID, symbol string) error {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("delete", "watchlist")

	_, err := r.db.Exec(ctx, `
		DELETE FROM watchlist WHERE user_id = $1 AND symbol = $2
	`, userID, models.NormalizeSymbol(symbol))

	if err != nil {
		observability.GetMetrics().RecordDBError("delete", "watchlist")
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}

	return nil
}
