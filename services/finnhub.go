package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/l1emant/insidex-web/models"
)

// Revalidation windows per endpoint. Quotes are always fetched fresh.
const (
	newsRevalidate    = 5 * time.Minute
	profileRevalidate = time.Hour
	searchRevalidate  = 30 * time.Minute
	metricsRevalidate = 30 * time.Minute
)

// ErrAPIKeyMissing is returned when no Finnhub API key is configured.
// Every operation needs the key; only the search layer degrades gracefully.
var ErrAPIKeyMissing = errors.New("finnhub API key is not configured")

// FinnhubService handles communication with the Finnhub market-data API
type FinnhubService struct {
	apiKey  string
	baseURL string
	fetcher *fetcher
}

// NewFinnhubService creates a new FinnhubService instance
func NewFinnhubService(apiKey, baseURL string) *FinnhubService {
	if baseURL == "" {
		baseURL = "https://finnhub.io/api/v1"
	}
	return &FinnhubService{
		apiKey:  apiKey,
		baseURL: baseURL,
		fetcher: newFetcher(),
	}
}

// Quote represents real-time quote data for a symbol
type Quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
}

// Profile represents a company profile
type Profile struct {
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	Exchange             string  `json:"exchange"`
	Country              string  `json:"country"`
	Currency             string  `json:"currency"`
	Industry             string  `json:"finnhubIndustry"`
	IPO                  string  `json:"ipo"`
	Logo                 string  `json:"logo"`
	WebURL               string  `json:"weburl"`
	MarketCapitalization float64 `json:"marketCapitalization"`
	ShareOutstanding     float64 `json:"shareOutstanding"`
}

// Financials represents the basic-financials metric payload
type Financials struct {
	Symbol     string             `json:"symbol"`
	MetricType string             `json:"metricType"`
	Metric     map[string]float64 `json:"metric"`
}

// SearchResult is a single symbol-search match
type SearchResult struct {
	Symbol        string `json:"symbol"`
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Type          string `json:"type"`
}

// searchResponse is the envelope of the symbol-search endpoint
type searchResponse struct {
	Count  int            `json:"count"`
	Result []SearchResult `json:"result"`
}

// CompanyNews returns news articles for a symbol within a date range.
// Responses are reused for a few minutes.
func (s *FinnhubService) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.RawNewsArticle, error) {
	if s.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	return WithCircuitBreaker(ctx, BreakerFinnhub, func() ([]models.RawNewsArticle, error) {
		reqURL := fmt.Sprintf("%s/company-news?symbol=%s&from=%s&to=%s&token=%s",
			s.baseURL, url.QueryEscape(symbol), from.Format("2006-01-02"), to.Format("2006-01-02"), s.apiKey)

		var articles []models.RawNewsArticle
		if err := s.fetcher.getJSON(ctx, "company_news", reqURL, newsRevalidate, &articles); err != nil {
			return nil, err
		}
		return articles, nil
	})
}

// MarketNews returns general market news. Responses are reused for a few minutes.
func (s *FinnhubService) MarketNews(ctx context.Context) ([]models.RawNewsArticle, error) {
	if s.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	return WithCircuitBreaker(ctx, BreakerFinnhub, func() ([]models.RawNewsArticle, error) {
		reqURL := fmt.Sprintf("%s/news?category=general&token=%s", s.baseURL, s.apiKey)

		var articles []models.RawNewsArticle
		if err := s.fetcher.getJSON(ctx, "market_news", reqURL, newsRevalidate, &articles); err != nil {
			return nil, err
		}
		return articles, nil
	})
}

// SearchSymbols performs a free-text symbol search
func (s *FinnhubService) SearchSymbols(ctx context.Context, query string) ([]SearchResult, error) {
	if s.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	return WithCircuitBreaker(ctx, BreakerFinnhub, func() ([]SearchResult, error) {
		reqURL := fmt.Sprintf("%s/search?q=%s&token=%s", s.baseURL, url.QueryEscape(query), s.apiKey)

		var resp searchResponse
		if err := s.fetcher.getJSON(ctx, "symbol_search", reqURL, searchRevalidate, &resp); err != nil {
			return nil, err
		}
		return resp.Result, nil
	})
}

// GetProfile returns the company profile for a symbol. Profiles rarely change,
// so responses are reused for an hour.
func (s *FinnhubService) GetProfile(ctx context.Context, symbol string) (*Profile, error) {
	if s.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	return WithCircuitBreaker(ctx, BreakerFinnhub, func() (*Profile, error) {
		reqURL := fmt.Sprintf("%s/stock/profile2?symbol=%s&token=%s", s.baseURL, url.QueryEscape(symbol), s.apiKey)

		var profile Profile
		if err := s.fetcher.getJSON(ctx, "profile", reqURL, profileRevalidate, &profile); err != nil {
			return nil, err
		}
		return &profile, nil
	})
}

// GetQuote returns the real-time quote for a symbol. Quotes are never cached:
// price freshness matters more than the extra upstream call.
func (s *FinnhubService) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if s.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	return WithCircuitBreaker(ctx, BreakerFinnhub, func() (*Quote, error) {
		reqURL := fmt.Sprintf("%s/quote?symbol=%s&token=%s", s.baseURL, url.QueryEscape(symbol), s.apiKey)

		var quote Quote
		if err := s.fetcher.getJSON(ctx, "quote", reqURL, 0, &quote); err != nil {
			return nil, err
		}
		return &quote, nil
	})
}

// GetMetrics returns basic financial metrics (P/E and friends) for a symbol
func (s *FinnhubService) GetMetrics(ctx context.Context, symbol string) (*Financials, error) {
	if s.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	return WithCircuitBreaker(ctx, BreakerFinnhub, func() (*Financials, error) {
		reqURL := fmt.Sprintf("%s/stock/metric?symbol=%s&metric=all&token=%s", s.baseURL, url.QueryEscape(symbol), s.apiKey)

		var financials Financials
		if err := s.fetcher.getJSON(ctx, "financials", reqURL, metricsRevalidate, &financials); err != nil {
			return nil, err
		}
		return &financials, nil
	})
}

// PurgeExpiredCache drops expired cached responses and reports how many were
// removed. Called periodically by the maintenance scheduler.
func (s *FinnhubService) PurgeExpiredCache() int {
	return s.fetcher.cache.PurgeExpired()
}

// ResetCache drops all cached responses (useful for testing)
func (s *FinnhubService) ResetCache() {
	s.fetcher.cache.Reset()
}
