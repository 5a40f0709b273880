package post

import (
	"fmt"

	"sjsage522/gramrelay/internal/crawler"
)

// Classifier turns resolved items into posts
type Classifier struct {
	baseURL string
	schema  crawler.Schema
}

// NewClassifier creates a classifier building links against baseURL
func NewClassifier(baseURL string, schema crawler.Schema) *Classifier {
	return &Classifier{baseURL: baseURL, schema: schema}
}

// Classify picks the media variant of item. First match wins:
// video, then carousel, then single image or text.
func (c *Classifier) Classify(item *crawler.ResolvedItem) Post {
	p := Post{
		Username: item.OwnerUsername,
		ItemID:   item.ItemID,
	}

	switch {
	case item.IsVideo:
		// Left for the destination to unfurl
		p.Message = c.schema.Permalink(c.baseURL, item.ShortCode)
		return p
	case item.GalleryType == crawler.GalleryCarousel:
		p.ImageURLs = append([]string(nil), item.DisplayImageURLs...)
	default:
		if len(item.DisplayImageURLs) > 0 {
			p.ImageURLs = []string{item.DisplayImageURLs[0]}
		}
	}

	p.Message = fmt.Sprintf("A new post from %s", ProfileLink(c.baseURL, item.OwnerUsername))
	p.Caption = LinkMentions(c.baseURL, item.Caption)
	return p
}
