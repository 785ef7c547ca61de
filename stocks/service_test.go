package stocks

import (
	"context"
	"errors"
	"time"

	"github.com/l1emant/insidex-web/config"
	"github.com/l1emant/insidex-web/models"
	"github.com/l1emant/insidex-web/services"
)

// fakeFinnhub implements services.FinnhubServiceInterface with per-method
// hooks so tests can script upstream behavior per symbol
type fakeFinnhub struct {
	companyNewsFn func(symbol string) ([]models.RawNewsArticle, error)
	marketNewsFn  func() ([]models.RawNewsArticle, error)
	searchFn      func(query string) ([]services.SearchResult, error)
	profileFn     func(symbol string) (*services.Profile, error)
	quoteFn       func(symbol string) (*services.Quote, error)
	metricsFn     func(symbol string) (*services.Financials, error)
}

func (f *fakeFinnhub) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.RawNewsArticle, error) {
	if f.companyNewsFn == nil {
		return nil, errors.New("companyNewsFn not set")
	}
	return f.companyNewsFn(symbol)
}

func (f *fakeFinnhub) MarketNews(ctx context.Context) ([]models.RawNewsArticle, error) {
	if f.marketNewsFn == nil {
		return nil, errors.New("marketNewsFn not set")
	}
	return f.marketNewsFn()
}

func (f *fakeFinnhub) SearchSymbols(ctx context.Context, query string) ([]services.SearchResult, error) {
	if f.searchFn == nil {
		return nil, errors.New("searchFn not set")
	}
	return f.searchFn(query)
}

func (f *fakeFinnhub) GetProfile(ctx context.Context, symbol string) (*services.Profile, error) {
	if f.profileFn == nil {
		return nil, errors.New("profileFn not set")
	}
	return f.profileFn(symbol)
}

func (f *fakeFinnhub) GetQuote(ctx context.Context, symbol string) (*services.Quote, error) {
	if f.quoteFn == nil {
		return nil, errors.New("quoteFn not set")
	}
	return f.quoteFn(symbol)
}

func (f *fakeFinnhub) GetMetrics(ctx context.Context, symbol string) (*services.Financials, error) {
	if f.metricsFn == nil {
		return nil, errors.New("metricsFn not set")
	}
	return f.metricsFn(symbol)
}

var _ services.FinnhubServiceInterface = (*fakeFinnhub)(nil)

// fakeRepo implements WatchlistRepo backed by fixed data
type fakeRepo struct {
	items          []models.WatchlistItem
	itemsErr       error
	symbolsByEmail map[string][]string
}

func (r *fakeRepo) GetWatchlist(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	if r.itemsErr != nil {
		return nil, r.itemsErr
	}
	return r.items, nil
}

func (r *fakeRepo) GetWatchlistSymbolsByEmail(ctx context.Context, email string) []string {
	return r.symbolsByEmail[email]
}

var _ WatchlistRepo = (*fakeRepo)(nil)

func newTestService(finnhub *fakeFinnhub, repo *fakeRepo) *Service {
	if repo == nil {
		repo = &fakeRepo{}
	}
	return NewService(finnhub, repo, config.NewTestConfig())
}
