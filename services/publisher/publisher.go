package publisher

import "context"

// Publisher delivers a serialized post to its destination
type Publisher interface {
	// Publish sends one payload. A nil error means the destination accepted it.
	Publish(ctx context.Context, payload []byte) error

	// Close releases the publisher's resources
	Close() error
}
