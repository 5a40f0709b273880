package crawler

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/gramrelay/pkg/errors"
)

// Extractor finds the shared data blob inside an HTML document
type Extractor struct {
	Marker string
}

// NewExtractor creates an extractor for the given script marker
func NewExtractor(marker string) *Extractor {
	return &Extractor{Marker: marker}
}

// Extract returns the blob assigned by the first script containing the marker.
//
// The JSON is sliced from the first '{' at or after the marker to the last '}'
// in the script. This assumes no unbalanced braces appear in the script outside
// the assigned object literal; it is not a balanced-brace parse.
func (e *Extractor) Extract(r io.Reader) (Blob, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.NewMalformedBlob("", "failed to parse HTML", err)
	}

	var (
		text  string
		found bool
	)
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := s.Text()
		if strings.Contains(t, e.Marker) {
			text = t
			found = true
			return false
		}
		return true
	})
	if !found {
		return nil, errors.NewBlobNotFound("", e.Marker)
	}

	return decodeAssignment(text, e.Marker)
}

func decodeAssignment(text, marker string) (Blob, error) {
	at := strings.Index(text, marker)
	start := strings.IndexByte(text[at:], '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < at+start {
		return nil, errors.NewMalformedBlob("", "no object literal after marker", nil)
	}

	dec := json.NewDecoder(strings.NewReader(text[at+start : end+1]))
	dec.UseNumber()

	var blob Blob
	if err := dec.Decode(&blob); err != nil {
		return nil, errors.NewMalformedBlob("", "invalid JSON in shared data", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.NewMalformedBlob("", "trailing data after shared data object", err)
	}
	return blob, nil
}
