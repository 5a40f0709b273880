package post

import (
	"bytes"
	"encoding/json"
)

type attachment struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}

type payload struct {
	Text        string       `json:"text"`
	UnfurlMedia bool         `json:"unfurl_media,omitempty"`
	UnfurlLinks bool         `json:"unfurl_links,omitempty"`
	Attachments []attachment `json:"attachments,omitempty"`
}

// BuildPayload serializes a post into the webhook body.
// Without images the destination is asked to unfurl links in the message;
// otherwise every image becomes an attachment carrying the caption.
func BuildPayload(p Post) ([]byte, error) {
	body := payload{Text: p.Message}

	if len(p.ImageURLs) == 0 {
		body.UnfurlMedia = true
		body.UnfurlLinks = true
	} else {
		caption := ""
		if p.Caption != nil {
			caption = *p.Caption
		}
		body.Attachments = make([]attachment, 0, len(p.ImageURLs))
		for _, u := range p.ImageURLs {
			body.Attachments = append(body.Attachments, attachment{Text: caption, ImageURL: u})
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Link markup uses < and >; keep them literal
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
