package crawler

import (
	"context"

	"sjsage522/gramrelay/pkg/errors"
)

// Resolver navigates a profile blob to its latest item
type Resolver struct {
	schema    Schema
	baseURL   string
	extractor *Extractor
	fetcher   Fetcher
}

// NewResolver creates a resolver. The fetcher and extractor are used for the
// permalink page of carousel items.
func NewResolver(schema Schema, baseURL string, extractor *Extractor, fetcher Fetcher) *Resolver {
	return &Resolver{
		schema:    schema,
		baseURL:   baseURL,
		extractor: extractor,
		fetcher:   fetcher,
	}
}

// Resolve returns the first timeline item of the profile in blob.
// Any missing required path fails the whole resolution; no partial item is returned.
func (r *Resolver) Resolve(ctx context.Context, blob Blob) (*ResolvedItem, error) {
	s := r.schema

	profile, seg, ok := lookup(blob, s.ProfilePath)
	if !ok {
		return nil, errors.NewSchemaMismatch("", seg, nil)
	}

	username, err := requiredString(profile, s.UsernameKey)
	if err != nil {
		return nil, err
	}

	edges, seg, ok := lookup(profile, s.TimelineEdgesPath)
	if !ok {
		return nil, errors.NewSchemaMismatch("", seg, nil)
	}

	// The upstream ordering is trusted: the first edge is the latest item.
	node, seg, ok := lookup(edges, []string{"0", s.NodeKey})
	if !ok {
		return nil, errors.NewSchemaMismatch("", seg, nil)
	}

	id, err := requiredString(node, s.IDKey)
	if err != nil {
		return nil, err
	}

	item := &ResolvedItem{
		ItemID:        id,
		OwnerUsername: username,
		IsVideo:       optionalBool(node, s.IsVideoKey),
		ShortCode:     optionalString(node, s.ShortCodeKey),
		TypeName:      optionalString(node, s.TypeNameKey),
	}

	if caption, _, ok := lookup(node, s.CaptionPath); ok {
		if text, ok := scalarString(caption); ok {
			item.Caption = &text
		}
	}

	displayURL := optionalString(node, s.DisplayURLKey)
	switch {
	case item.TypeName == s.CarouselTypeName:
		item.GalleryType = GalleryCarousel
	case displayURL != "":
		item.GalleryType = GallerySingle
		item.DisplayImageURLs = []string{displayURL}
	default:
		item.GalleryType = GalleryNone
	}

	if (item.IsVideo || item.GalleryType == GalleryCarousel) && item.ShortCode == "" {
		return nil, errors.NewSchemaMismatch("", s.ShortCodeKey, nil)
	}

	// A video is relayed as its permalink, so its gallery is never needed
	if item.GalleryType == GalleryCarousel && !item.IsVideo {
		urls, err := r.resolveGallery(ctx, item.ShortCode)
		if err != nil {
			return nil, err
		}
		item.DisplayImageURLs = urls
	}

	return item, nil
}

// resolveGallery fetches the item's permalink page and collects every child image in order
func (r *Resolver) resolveGallery(ctx context.Context, shortCode string) ([]string, error) {
	s := r.schema
	permalink := s.Permalink(r.baseURL, shortCode)

	body, err := r.fetcher.Fetch(ctx, permalink)
	if err != nil {
		return nil, errors.NewGalleryUnavailable(permalink, err)
	}

	page, err := r.extractor.Extract(body)
	if err != nil {
		return nil, errors.NewGalleryUnavailable(permalink, err)
	}

	edges, seg, ok := lookup(page, s.GalleryEdgesPath)
	if !ok {
		return nil, errors.NewSchemaMismatch(permalink, seg, nil)
	}

	list, ok := edges.([]any)
	if !ok || len(list) == 0 {
		return nil, errors.NewSchemaMismatch(permalink, s.GalleryEdgesPath[len(s.GalleryEdgesPath)-1], nil)
	}

	urls := make([]string, 0, len(list))
	for _, edge := range list {
		v, seg, ok := lookup(edge, []string{s.NodeKey, s.DisplayURLKey})
		if !ok {
			return nil, errors.NewSchemaMismatch(permalink, seg, nil)
		}
		u, ok := scalarString(v)
		if !ok || u == "" {
			return nil, errors.NewSchemaMismatch(permalink, s.DisplayURLKey, nil)
		}
		urls = append(urls, u)
	}

	return urls, nil
}

func requiredString(v any, key string) (string, error) {
	val, seg, ok := lookup(v, []string{key})
	if !ok {
		return "", errors.NewSchemaMismatch("", seg, nil)
	}
	s, ok := scalarString(val)
	if !ok || s == "" {
		return "", errors.NewSchemaMismatch("", key, nil)
	}
	return s, nil
}

func optionalString(v any, key string) string {
	val, _, ok := lookup(v, []string{key})
	if !ok {
		return ""
	}
	s, _ := scalarString(val)
	return s
}

func optionalBool(v any, key string) bool {
	val, _, ok := lookup(v, []string{key})
	if !ok {
		return false
	}
	b, _ := val.(bool)
	return b
}
