package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/l1emant/insidex-web/observability"

	"golang.org/x/sync/singleflight"
)

// FetchError is returned for non-2xx upstream responses. It carries the
// status code and response body so callers can log the upstream's complaint.
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed %d: %s", e.StatusCode, e.Body)
}

// fetcher issues outbound GETs with an optional revalidation window. A zero
// window bypasses the cache entirely (no-store); a positive window serves the
// cached body until it expires. Concurrent misses for the same URL are
// coalesced into a single upstream request.
type fetcher struct {
	httpClient *http.Client
	cache      *responseCache
	group      singleflight.Group
}

func newFetcher() *fetcher {
	return &fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      newResponseCache(),
	}
}

// getJSON fetches url and decodes the JSON body into v. The operation label
// is used for metrics only.
func (f *fetcher) getJSON(ctx context.Context, operation, url string, revalidate time.Duration, v any) error {
	body, err := f.fetch(ctx, operation, url, revalidate)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

func (f *fetcher) fetch(ctx context.Context, operation, url string, revalidate time.Duration) ([]byte, error) {
	if revalidate <= 0 {
		return f.doGet(ctx, operation, url)
	}

	metrics := observability.GetMetrics()
	if body, ok := f.cache.Get(url); ok {
		metrics.RecordCacheHit(operation)
		return body, nil
	}
	metrics.RecordCacheMiss(operation)

	result, err, _ := f.group.Do(url, func() (any, error) {
		// Another flight may have filled the cache while we waited
		if body, ok := f.cache.Get(url); ok {
			return body, nil
		}

		body, err := f.doGet(ctx, operation, url)
		if err != nil {
			return nil, err
		}
		f.cache.Set(url, body, revalidate)
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

func (f *fetcher) doGet(ctx context.Context, operation, url string) ([]byte, error) {
	metrics := observability.GetMetrics()
	metrics.RecordUpstreamRequest(operation)
	timer := metrics.NewTimer()
	defer timer.ObserveUpstream(operation)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", operation, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamError(operation, "transport")
		return nil, fmt.Errorf("failed to fetch %s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamError(operation, "read")
		return nil, fmt.Errorf("failed to read %s response: %w", operation, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.RecordUpstreamError(operation, "status")
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
