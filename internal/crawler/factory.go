package crawler

import (
	"sjsage522/gramrelay/logger"
)

// CreateCrawlers creates one profile crawler per source URL, in order.
// All crawlers share the fetcher, extractor and resolver.
func CreateCrawlers(sources []string, schema Schema, baseURL string, fetcher Fetcher) []Crawler {
	extractor := NewExtractor(schema.Marker)
	resolver := NewResolver(schema, baseURL, extractor, fetcher)

	crawlers := make([]Crawler, 0, len(sources))
	for i, source := range sources {
		c := NewProfileCrawler(source, fetcher, extractor, resolver)
		logger.Debug("Crawler %d: %s with URL %s", i, c.GetName(), source)
		crawlers = append(crawlers, c)
	}

	return crawlers
}
