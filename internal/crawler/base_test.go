package crawler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/gramrelay/helpers"
	"sjsage522/gramrelay/pkg/errors"
)

func TestPageFetcherFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(sharedDataPage(`{"ok":true}`)))
	}))
	defer server.Close()

	fetcher := NewPageFetcher(helpers.NewClient(time.Second), NewMockCacheService(), time.Minute)

	body, err := fetcher.Fetch(context.Background(), server.URL+"/natgeo/")
	require.NoError(t, err)

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "window._sharedData")
}

func TestPageFetcherBlocksRateLimitedHost(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	mockCache := NewMockCacheService()
	fetcher := NewPageFetcher(helpers.NewClient(time.Second), mockCache, 500*time.Second)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/a/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeFetch))
	assert.ErrorIs(t, err, helpers.ErrRateLimited)

	key := blockKey(server.URL + "/a/")
	value, err := mockCache.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "500", string(value))

	// A second profile on the same host is not requested while blocked
	_, err = fetcher.Fetch(context.Background(), server.URL+"/b/")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeRateLimit, errors.TypeOf(err))
	assert.Equal(t, 1, calls)
}

func TestPageFetcherWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	fetcher := NewPageFetcher(helpers.NewClient(time.Second), nil, time.Minute)

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeFetch, errors.TypeOf(err))
}

func TestBlockKey(t *testing.T) {
	assert.Equal(t, "gramrelay_block:www.instagram.com", blockKey("https://www.instagram.com/natgeo/"))
	assert.Equal(t, "gramrelay_block:not a url", blockKey("not a url"))
}
