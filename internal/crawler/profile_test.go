package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/gramrelay/helpers"
	"sjsage522/gramrelay/pkg/errors"
)

func TestProfileCrawlerFetchLatest(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/alice/":
			w.Write([]byte(sharedDataPage(profileBlob("alice",
				`{"id":"500","__typename":"GraphSidecar","shortcode":"Gal"}`))))
		case "/p/Gal":
			w.Write([]byte(sharedDataPage(galleryBlob(
				server.URL+"/img/1.jpg",
				server.URL+"/img/2.jpg",
			))))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	fetcher := NewPageFetcher(helpers.NewClient(time.Second), nil, time.Minute)
	crawlers := CreateCrawlers([]string{server.URL + "/alice/"}, DefaultSchema(), server.URL, fetcher)
	require.Len(t, crawlers, 1)

	item, err := crawlers[0].FetchLatest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "500", item.ItemID)
	assert.Equal(t, "alice", item.OwnerUsername)
	assert.Equal(t, []string{server.URL + "/img/1.jpg", server.URL + "/img/2.jpg"}, item.DisplayImageURLs)
}

func TestProfileCrawlerFetchError(t *testing.T) {
	fetcher := NewMockFetcher()
	fetcher.errs["https://www.instagram.com/alice/"] = errors.NewFetch("https://www.instagram.com/alice/", "failed to fetch page", nil)

	c := CreateCrawlers([]string{"https://www.instagram.com/alice/"}, DefaultSchema(), baseURL, fetcher)[0]

	_, err := c.FetchLatest(context.Background())
	assert.Equal(t, errors.ErrorTypeFetch, errors.TypeOf(err))
}

func TestProfileCrawlerNoBlob(t *testing.T) {
	fetcher := NewMockFetcher()
	fetcher.pages["https://www.instagram.com/alice/"] = "<html><body>login required</body></html>"

	c := CreateCrawlers([]string{"https://www.instagram.com/alice/"}, DefaultSchema(), baseURL, fetcher)[0]

	_, err := c.FetchLatest(context.Background())
	assert.Equal(t, errors.ErrorTypeBlobNotFound, errors.TypeOf(err))
}

func TestProfileCrawlerNames(t *testing.T) {
	tests := []struct {
		url  string
		name string
	}{
		{"https://www.instagram.com/natgeo/", "natgeo"},
		{"https://www.instagram.com/natgeo", "natgeo"},
		{"https://www.instagram.com/", "www.instagram.com"},
	}

	for _, tt := range tests {
		c := NewProfileCrawler(tt.url, nil, nil, nil)
		assert.Equal(t, tt.name, c.GetName())
		assert.Equal(t, tt.url, c.GetSource())
	}
}
