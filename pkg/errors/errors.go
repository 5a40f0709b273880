package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents transport or timeout errors on a page fetch
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeRateLimit represents a fetch refused because the host is blocked
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeBlobNotFound represents a page without the shared data script
	ErrorTypeBlobNotFound ErrorType = "blob_not_found"
	// ErrorTypeMalformedBlob represents a shared data script that is not valid JSON
	ErrorTypeMalformedBlob ErrorType = "malformed_blob"
	// ErrorTypeSchemaMismatch represents a required path missing from the blob
	ErrorTypeSchemaMismatch ErrorType = "schema_mismatch"
	// ErrorTypeLedgerLoad represents a ledger that could not be read
	ErrorTypeLedgerLoad ErrorType = "ledger_load"
	// ErrorTypeLedgerWrite represents a ledger that could not be persisted
	ErrorTypeLedgerWrite ErrorType = "ledger_write"
	// ErrorTypeDelivery represents a failed webhook delivery
	ErrorTypeDelivery ErrorType = "delivery"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// Error is the error type shared by every stage of the relay pipeline
type Error struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Source == "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the same call may succeed on a later run
func (e *Error) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeFetch, ErrorTypeDelivery, ErrorTypeLedgerWrite:
		return true
	case ErrorTypeRateLimit:
		return false
	case ErrorTypeBlobNotFound, ErrorTypeMalformedBlob, ErrorTypeSchemaMismatch:
		return false
	default:
		return false
	}
}

// New creates a new Error
func New(errType ErrorType, source, message string, err error) *Error {
	return &Error{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewFetch creates a new fetch error
func NewFetch(source, message string, err error) *Error {
	return New(ErrorTypeFetch, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *Error {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewBlobNotFound creates a new blob-not-found error
func NewBlobNotFound(source, marker string) *Error {
	return New(ErrorTypeBlobNotFound, source, fmt.Sprintf("no script contains %q", marker), nil)
}

// NewMalformedBlob creates a new malformed blob error
func NewMalformedBlob(source, message string, err error) *Error {
	return New(ErrorTypeMalformedBlob, source, message, err)
}

// NewSchemaMismatch creates a schema error naming the first missing path segment
func NewSchemaMismatch(source, segment string, err error) *Error {
	return New(ErrorTypeSchemaMismatch, source, fmt.Sprintf("missing path segment %q", segment), err)
}

// NewGalleryUnavailable creates a schema error for a gallery page that could
// not be fetched or parsed. The cause is kept.
func NewGalleryUnavailable(permalink string, err error) *Error {
	return New(ErrorTypeSchemaMismatch, permalink, "gallery page unavailable", err)
}

// NewLedgerLoad creates a new ledger load error
func NewLedgerLoad(store string, err error) *Error {
	return New(ErrorTypeLedgerLoad, store, "failed to load ledger", err)
}

// NewLedgerWrite creates a new ledger write error
func NewLedgerWrite(store string, err error) *Error {
	return New(ErrorTypeLedgerWrite, store, "failed to write ledger", err)
}

// NewDelivery creates a new delivery error
func NewDelivery(source, message string, err error) *Error {
	return New(ErrorTypeDelivery, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *Error {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the ErrorType of the first *Error in err's chain, or "" if none
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// Is reports whether err's chain contains an *Error of the given type
func Is(err error, errType ErrorType) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == errType {
			return true
		}
		err = e.Err
	}
	return false
}

// IsRetryable reports whether any *Error in err's chain may succeed on a later run
func IsRetryable(err error) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.IsRetryable() {
			return true
		}
		err = e.Err
	}
	return false
}
