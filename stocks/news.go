package stocks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/l1emant/insidex-web/models"
	"github.com/l1emant/insidex-web/observability"

	"golang.org/x/sync/errgroup"
)

const (
	// maxArticles caps every news response
	maxArticles = 6
	// newsLookbackDays is the trailing window for company news
	newsLookbackDays = 5
	// dedupeLimit caps general-news candidates before the final slice
	dedupeLimit = 20
)

// GetNews returns up to six articles. With symbols it fetches company news
// per symbol concurrently and round-robins across them so every symbol gets
// a turn; without symbols, or when no symbol yields a valid article, it falls
// back to deduplicated general market news. A failing symbol contributes an
// empty list instead of aborting the batch.
func (s *Service) GetNews(ctx context.Context, symbols []string) ([]models.NewsArticle, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -newsLookbackDays)

	cleanSymbols := models.NormalizeSymbols(symbols)

	if len(cleanSymbols) > 0 {
		perSymbol := make([][]models.RawNewsArticle, len(cleanSymbols))

		g, gctx := errgroup.WithContext(ctx)
		for i, sym := range cleanSymbols {
			i, sym := i, sym
			g.Go(func() error {
				articles, err := s.finnhub.CompanyNews(gctx, sym, from, to)
				if err != nil {
					observability.WithSymbol(sym).Error("failed to fetch company news", "error", err)
					return nil
				}

				valid := make([]models.RawNewsArticle, 0, len(articles))
				for _, a := range articles {
					if a.Valid() {
						valid = append(valid, a)
					}
				}
				perSymbol[i] = valid
				return nil
			})
		}
		// Per-symbol failures are absorbed above, so Wait cannot fail
		_ = g.Wait()

		collected := roundRobin(cleanSymbols, perSymbol)
		if len(collected) > 0 {
			sort.Slice(collected, func(i, j int) bool {
				return collected[i].Datetime > collected[j].Datetime
			})
			if len(collected) > maxArticles {
				collected = collected[:maxArticles]
			}
			return collected, nil
		}
		// No symbol produced a valid article; fall through to general news
	}

	general, err := s.finnhub.MarketNews(ctx)
	if err != nil {
		observability.Error("failed to fetch general market news", "error", err)
		return nil, ErrFailedToFetchNews
	}

	seen := make(map[string]struct{})
	unique := make([]models.RawNewsArticle, 0, dedupeLimit)
	for _, art := range general {
		if !art.Valid() {
			continue
		}
		key := fmt.Sprintf("%d-%s-%s", art.ID, art.URL, art.Headline)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, art)
		if len(unique) >= dedupeLimit {
			break
		}
	}

	formatted := make([]models.NewsArticle, 0, maxArticles)
	for idx, art := range unique {
		if idx >= maxArticles {
			break
		}
		formatted = append(formatted, models.FormatArticle(art, false, "", idx))
	}

	return formatted, nil
}

// roundRobin picks at most one article per symbol per pass, consuming each
// symbol's list in upstream order, until every list is exhausted or the
// article cap is reached
func roundRobin(symbols []string, perSymbol [][]models.RawNewsArticle) []models.NewsArticle {
	collected := make([]models.NewsArticle, 0, maxArticles)

	for round := 0; round < maxArticles; round++ {
		for i, sym := range symbols {
			list := perSymbol[i]
			if len(list) == 0 {
				continue
			}

			article := list[0]
			perSymbol[i] = list[1:]
			if !article.Valid() {
				continue
			}

			collected = append(collected, models.FormatArticle(article, true, sym, round))
			if len(collected) >= maxArticles {
				return collected
			}
		}
		if len(collected) >= maxArticles {
			break
		}
	}

	return collected
}
