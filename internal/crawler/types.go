package crawler

import (
	"context"
	"io"
)

// Blob is the decoded shared data object embedded in a page.
// It is treated as a read-only tree of map[string]any, []any and scalars.
type Blob map[string]any

// GalleryType classifies how many images an item carries
type GalleryType int

const (
	// GalleryNone is an item without a display image
	GalleryNone GalleryType = iota
	// GallerySingle is an item with exactly one display image
	GallerySingle
	// GalleryCarousel is a multi-image item whose images live on its permalink page
	GalleryCarousel
)

// String returns the name of the gallery type
func (g GalleryType) String() string {
	switch g {
	case GallerySingle:
		return "single"
	case GalleryCarousel:
		return "carousel"
	default:
		return "none"
	}
}

// ResolvedItem is the latest post recovered from a profile page
type ResolvedItem struct {
	ItemID           string
	OwnerUsername    string
	IsVideo          bool
	ShortCode        string
	TypeName         string
	GalleryType      GalleryType
	DisplayImageURLs []string
	Caption          *string
}

// Crawler interface defines the contract for a monitored profile
type Crawler interface {
	// FetchLatest retrieves the latest item of the profile
	FetchLatest(ctx context.Context) (*ResolvedItem, error)

	// GetName returns the crawler's name for logging and identification
	GetName() string

	// GetSource returns the profile URL the crawler follows
	GetSource() string
}

// Fetcher retrieves a page as UTF-8 HTML
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.Reader, error)
}
