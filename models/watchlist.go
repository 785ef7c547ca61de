package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// WatchlistItem is a persisted watchlist entry
type WatchlistItem struct {
	ID      uuid.UUID `json:"id"`
	UserID  string    `json:"userId"`
	Symbol  string    `json:"symbol"`
	Company string    `json:"company"`
	AddedAt time.Time `json:"addedAt"`
}

// NewWatchlistItem creates a watchlist entry with a fresh id and timestamp.
// Symbols are stored uppercase; the company name is stored trimmed.
func NewWatchlistItem(userID, symbol, company string) *WatchlistItem {
	return &WatchlistItem{
		ID:      uuid.New(),
		UserID:  userID,
		Symbol:  NormalizeSymbol(symbol),
		Company: strings.TrimSpace(company),
		AddedAt: time.Now().UTC(),
	}
}

// WatchlistStock is a watchlist entry joined with freshly fetched market
// data. When the per-item fetch fails, only the persisted fields are set and
// the enriched fields stay at their zero values (omitted from JSON).
type WatchlistStock struct {
	UserID  string    `json:"userId"`
	Symbol  string    `json:"symbol"`
	Company string    `json:"company"`
	AddedAt time.Time `json:"addedAt"`

	CurrentPrice    float64 `json:"currentPrice,omitempty"`
	ChangePercent   float64 `json:"changePercent,omitempty"`
	PriceFormatted  string  `json:"priceFormatted,omitempty"`
	ChangeFormatted string  `json:"changeFormatted,omitempty"`
	MarketCap       string  `json:"marketCap,omitempty"`
	PERatio         string  `json:"peRatio,omitempty"`
}

// Enriched reports whether the entry carries fetched market data
func (w WatchlistStock) Enriched() bool {
	return w.PriceFormatted != ""
}
