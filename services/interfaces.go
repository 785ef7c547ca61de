package services

import (
	"context"
	"time"

	"github.com/l1emant/insidex-web/models"
)

// FinnhubServiceInterface defines the market-data operations this
// application consumes
type FinnhubServiceInterface interface {
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.RawNewsArticle, error)
	MarketNews(ctx context.Context) ([]models.RawNewsArticle, error)
	SearchSymbols(ctx context.Context, query string) ([]SearchResult, error)
	GetProfile(ctx context.Context, symbol string) (*Profile, error)
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	GetMetrics(ctx context.Context, symbol string) (*Financials, error)
}

// Compile-time interface verification
var _ FinnhubServiceInterface = (*FinnhubService)(nil)
