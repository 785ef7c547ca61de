package stocks

import (
	"context"
	"fmt"

	"github.com/l1emant/insidex-web/models"
	"github.com/l1emant/insidex-web/observability"
	"github.com/l1emant/insidex-web/services"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// peRatioMetric is the basic-financials field the P/E ratio is read from
const peRatioMetric = "peNormalizedAnnual"

// peRatioPlaceholder is shown when no P/E value is available
const peRatioPlaceholder = "—"

// GetStockDetails fetches quote, profile, and financial metrics for one
// symbol concurrently and formats the display fields. Unlike news and search
// this operation is strict: a failed fetch or a quote without a price fails
// the whole call rather than returning a partial record.
func (s *Service) GetStockDetails(ctx context.Context, symbol string) (*models.StockDetails, error) {
	cleanSymbol := models.NormalizeSymbol(symbol)

	var (
		quote      *services.Quote
		profile    *services.Profile
		financials *services.Financials
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, err = s.finnhub.GetQuote(gctx, cleanSymbol)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = s.finnhub.GetProfile(gctx, cleanSymbol)
		return err
	})
	g.Go(func() error {
		var err error
		financials, err = s.finnhub.GetMetrics(gctx, cleanSymbol)
		return err
	})

	if err := g.Wait(); err != nil {
		observability.WithSymbol(cleanSymbol).Error("failed to fetch stock details", "error", err)
		return nil, ErrFailedToFetchStockDetails
	}

	if quote.Current == 0 || profile.Name == "" {
		observability.WithSymbol(cleanSymbol).Error("incomplete stock data", "error", ErrInvalidStockData)
		return nil, fmt.Errorf("%w: %v", ErrFailedToFetchStockDetails, ErrInvalidStockData)
	}

	changePercent := quote.ChangePercent

	peRatio := peRatioPlaceholder
	if pe, ok := financials.Metric[peRatioMetric]; ok && pe != 0 {
		peRatio = decimal.NewFromFloat(pe).StringFixed(1)
	}

	return &models.StockDetails{
		Symbol:             cleanSymbol,
		Company:            profile.Name,
		CurrentPrice:       quote.Current,
		ChangePercent:      changePercent,
		PriceFormatted:     models.FormatPrice(quote.Current),
		ChangeFormatted:    models.FormatChangePercent(changePercent),
		PERatio:            peRatio,
		MarketCapFormatted: models.FormatMarketCap(profile.MarketCapitalization),
	}, nil
}
