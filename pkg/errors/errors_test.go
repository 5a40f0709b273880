package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewFetch("https://example.com/a", "failed to fetch page", stderrors.New("timeout"))
	assert.Equal(t, "[fetch] https://example.com/a: failed to fetch page - timeout", err.Error())

	err = NewBlobNotFound("https://example.com/a", "window._sharedData = {")
	assert.Contains(t, err.Error(), "[blob_not_found]")
	assert.Contains(t, err.Error(), "window._sharedData")
}

func TestSchemaMismatchNamesSegment(t *testing.T) {
	err := NewSchemaMismatch("src", "graphql", nil)
	assert.Equal(t, ErrorTypeSchemaMismatch, err.Type)
	assert.Contains(t, err.Error(), `"graphql"`)
}

func TestTypeOfAndIs(t *testing.T) {
	inner := NewFetch("gallery", "failed to fetch page", stderrors.New("boom"))
	outer := NewSchemaMismatch("src", "edge_sidecar_to_children", inner)
	wrapped := fmt.Errorf("resolve: %w", outer)

	assert.Equal(t, ErrorTypeSchemaMismatch, TypeOf(wrapped))
	assert.True(t, Is(wrapped, ErrorTypeSchemaMismatch))
	assert.True(t, Is(wrapped, ErrorTypeFetch))
	assert.False(t, Is(wrapped, ErrorTypeDelivery))

	assert.Equal(t, ErrorType(""), TypeOf(stderrors.New("plain")))
	assert.False(t, Is(nil, ErrorTypeFetch))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewFetch("s", "m", nil).IsRetryable())
	assert.True(t, NewDelivery("s", "m", nil).IsRetryable())
	assert.False(t, NewMalformedBlob("s", "m", nil).IsRetryable())
	assert.False(t, NewRateLimit("s", 0).IsRetryable())
	assert.False(t, NewConfiguration("m", nil).IsRetryable())
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewLedgerWrite("ledger.json", cause)
	assert.ErrorIs(t, err, cause)
}

func TestErrorFormattingWithoutSource(t *testing.T) {
	err := NewConfiguration("invalid webhook URL", stderrors.New("missing host"))
	assert.Equal(t, "[configuration] invalid webhook URL - missing host", err.Error())

	err = NewSchemaMismatch("", "user", nil)
	assert.Equal(t, `[schema_mismatch] missing path segment "user"`, err.Error())
}

func TestIsRetryableChain(t *testing.T) {
	cause := NewFetch("https://www.instagram.com/p/Gal", "failed to fetch page", stderrors.New("timeout"))
	gallery := NewGalleryUnavailable("https://www.instagram.com/p/Gal", cause)

	assert.True(t, IsRetryable(fmt.Errorf("resolve: %w", gallery)), "a transport failure under a schema error can recover")
	assert.False(t, IsRetryable(NewSchemaMismatch("src", "graphql", nil)))
	assert.False(t, IsRetryable(stderrors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestGalleryUnavailable(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewGalleryUnavailable("https://www.instagram.com/p/Gal", cause)

	assert.Equal(t, ErrorTypeSchemaMismatch, err.Type)
	assert.Equal(t, "[schema_mismatch] https://www.instagram.com/p/Gal: gallery page unavailable - boom", err.Error())
	assert.NotContains(t, err.Error(), "missing path segment")
	assert.ErrorIs(t, err, cause)
}
