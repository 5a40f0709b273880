package crawler

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sjsage522/gramrelay/helpers"
	"sjsage522/gramrelay/logger"
	"sjsage522/gramrelay/pkg/errors"
	"sjsage522/gramrelay/services/cache"
)

// PageFetcher fetches pages and stops requesting a host for BlockTime after it
// answers with a rate-limit status
type PageFetcher struct {
	Client    *http.Client
	CacheSvc  cache.CacheService
	BlockTime time.Duration
}

// NewPageFetcher creates a page fetcher. cacheSvc may be nil to disable blocking.
func NewPageFetcher(client *http.Client, cacheSvc cache.CacheService, blockTime time.Duration) *PageFetcher {
	return &PageFetcher{
		Client:    client,
		CacheSvc:  cacheSvc,
		BlockTime: blockTime,
	}
}

// Fetch fetches a URL with rate-limit blocking
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (io.Reader, error) {
	key := blockKey(pageURL)

	// Check if the host is rate limited
	if f.CacheSvc != nil {
		if _, err := f.CacheSvc.Get(key); err == nil {
			return nil, errors.NewRateLimit(pageURL, f.BlockTime)
		}
	}

	body, err := helpers.FetchWithRandomHeaders(ctx, f.Client, pageURL)
	if err != nil {
		if f.CacheSvc != nil && stderrors.Is(err, helpers.ErrRateLimited) {
			value := []byte(fmt.Sprintf("%d", f.BlockTime/time.Second))
			if setErr := f.CacheSvc.Set(key, value, f.BlockTime); setErr != nil {
				logger.ForCache().Warn().Err(setErr).Str("key", key).Msg("Failed to set rate limit block")
			}
		}
		return nil, errors.NewFetch(pageURL, "failed to fetch page", err)
	}

	return body, nil
}

// blockKey returns the cache key blocking the host of pageURL
func blockKey(pageURL string) string {
	host := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return "gramrelay_block:" + host
}
