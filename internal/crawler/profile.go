package crawler

import (
	"context"
	"net/url"
	"strings"
)

// ProfileCrawler follows one profile page and resolves its latest item
type ProfileCrawler struct {
	URL       string
	fetcher   Fetcher
	extractor *Extractor
	resolver  *Resolver
}

// NewProfileCrawler creates a crawler for a profile URL
func NewProfileCrawler(profileURL string, fetcher Fetcher, extractor *Extractor, resolver *Resolver) *ProfileCrawler {
	return &ProfileCrawler{
		URL:       profileURL,
		fetcher:   fetcher,
		extractor: extractor,
		resolver:  resolver,
	}
}

// FetchLatest fetches the profile page, extracts its blob and resolves the latest item
func (c *ProfileCrawler) FetchLatest(ctx context.Context) (*ResolvedItem, error) {
	body, err := c.fetcher.Fetch(ctx, c.URL)
	if err != nil {
		return nil, err
	}

	blob, err := c.extractor.Extract(body)
	if err != nil {
		return nil, err
	}

	return c.resolver.Resolve(ctx, blob)
}

// GetName returns the last path segment of the profile URL
func (c *ProfileCrawler) GetName() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return c.URL
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if name := parts[len(parts)-1]; name != "" {
		return name
	}
	return u.Host
}

// GetSource returns the profile URL
func (c *ProfileCrawler) GetSource() string {
	return c.URL
}
