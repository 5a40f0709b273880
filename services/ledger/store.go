package ledger

import (
	"strings"
)

const (
	redisScheme  = "redis://"
	sqliteScheme = "sqlite://"
)

// OpenStore picks a store from the ledger location.
//
//	redis://host:port/db?key=name  one Redis hash
//	sqlite:///path/to/ledger.db    key/value table
//	anything else                  JSON file path
func OpenStore(location string) (Store, error) {
	switch {
	case strings.HasPrefix(location, redisScheme):
		return NewRedisStoreFromURL(location)
	case strings.HasPrefix(location, sqliteScheme):
		return NewSQLiteStore(strings.TrimPrefix(location, sqliteScheme))
	default:
		return NewFileStore(location), nil
	}
}
