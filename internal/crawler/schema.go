package crawler

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Schema holds every key and path the resolver reads from a shared data blob.
// The page layout is an unversioned third-party contract, so all of it lives here.
type Schema struct {
	// Marker is the script prefix that assigns the blob
	Marker string

	// ProfilePath leads from the page root to the profile object
	ProfilePath []string
	// UsernameKey is read from the profile object
	UsernameKey string
	// TimelineEdgesPath leads from the profile object to its timeline edge list
	TimelineEdgesPath []string
	// NodeKey holds the item inside an edge
	NodeKey string

	IDKey         string
	IsVideoKey    string
	ShortCodeKey  string
	TypeNameKey   string
	DisplayURLKey string
	// CaptionPath leads from an item node to its caption text
	CaptionPath []string

	// CarouselTypeName is the type tag of a multi-image gallery
	CarouselTypeName string
	// GalleryEdgesPath leads from a permalink page root to the gallery children
	GalleryEdgesPath []string
	// PermalinkPrefix is joined between the base URL and a short code
	PermalinkPrefix string
}

// DefaultSchema returns the layout of the profile page's _sharedData blob
func DefaultSchema() Schema {
	return Schema{
		Marker:            "window._sharedData = {",
		ProfilePath:       []string{"entry_data", "ProfilePage", "0", "graphql", "user"},
		UsernameKey:       "username",
		TimelineEdgesPath: []string{"edge_owner_to_timeline_media", "edges"},
		NodeKey:           "node",
		IDKey:             "id",
		IsVideoKey:        "is_video",
		ShortCodeKey:      "shortcode",
		TypeNameKey:       "__typename",
		DisplayURLKey:     "display_url",
		CaptionPath:       []string{"edge_media_to_caption", "edges", "0", "node", "text"},
		CarouselTypeName:  "GraphSidecar",
		GalleryEdgesPath:  []string{"entry_data", "PostPage", "0", "graphql", "shortcode_media", "edge_sidecar_to_children", "edges"},
		PermalinkPrefix:   "/p/",
	}
}

// Permalink builds the item page URL for a short code
func (s Schema) Permalink(baseURL, shortCode string) string {
	return strings.TrimRight(baseURL, "/") + s.PermalinkPrefix + shortCode
}

// lookup walks path from v. Numeric segments index into lists.
// On failure it returns the first segment that could not be resolved.
func lookup(v any, path []string) (any, string, bool) {
	cur := v
	for _, seg := range path {
		switch node := cur.(type) {
		case Blob:
			next, ok := node[seg]
			if !ok || next == nil {
				return nil, seg, false
			}
			cur = next
		case map[string]any:
			next, ok := node[seg]
			if !ok || next == nil {
				return nil, seg, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, seg, false
			}
			cur = node[idx]
			if cur == nil {
				return nil, seg, false
			}
		default:
			return nil, seg, false
		}
	}
	return cur, "", true
}

// scalarString renders a string or JSON number as a string
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}
