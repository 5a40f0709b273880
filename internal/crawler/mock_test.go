package crawler

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"sjsage522/gramrelay/services/cache"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	cache map[string][]byte
}

var _ cache.CacheService = (*MockCacheService)(nil)

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.cache[key] = value
	return nil
}

// MockFetcher serves canned pages keyed by URL
type MockFetcher struct {
	pages    map[string]string
	errs     map[string]error
	requests []string
}

var _ Fetcher = (*MockFetcher)(nil)

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (io.Reader, error) {
	m.requests = append(m.requests, url)
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	page, ok := m.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return strings.NewReader(page), nil
}

// sharedDataPage wraps a JSON object in a profile-like HTML page
func sharedDataPage(blobJSON string) string {
	return `<!DOCTYPE html>
<html>
<head>
    <title>Profile</title>
    <script type="text/javascript">window.config = {"csrf": "x"};</script>
</head>
<body>
    <span id="react-root"></span>
    <script type="text/javascript">window._sharedData = ` + blobJSON + `;</script>
</body>
</html>`
}

// profileBlob builds a profile blob whose latest item is nodeJSON
func profileBlob(username, nodeJSON string) string {
	return `{"entry_data":{"ProfilePage":[{"graphql":{"user":{"username":"` + username + `",` +
		`"edge_owner_to_timeline_media":{"edges":[{"node":` + nodeJSON + `},{"node":{"id":"1"}}]}}}}]}}`
}

// galleryBlob builds a permalink page blob with the given child image URLs
func galleryBlob(urls ...string) string {
	edges := make([]string, 0, len(urls))
	for _, u := range urls {
		edges = append(edges, `{"node":{"display_url":"`+u+`"}}`)
	}
	return `{"entry_data":{"PostPage":[{"graphql":{"shortcode_media":{"edge_sidecar_to_children":{"edges":[` +
		strings.Join(edges, ",") + `]}}}}]}}`
}
