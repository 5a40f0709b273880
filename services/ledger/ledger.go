package ledger

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"maps"
	"sync"
	"time"

	"sjsage522/gramrelay/logger"
	"sjsage522/gramrelay/pkg/errors"
)

const (
	// LatestPostKey holds the time of the most recent delivery in this ledger
	LatestPostKey = "latest_post"
	// UpdatedKey holds the time of the last flush
	UpdatedKey = "updated"
	// TimeLayout formats both timestamps
	TimeLayout = "2006-01-02 15:04:05"
)

// Store persists the flat ledger mapping
type Store interface {
	// Load returns the persisted mapping. A store that has never been written
	// returns an error matching fs.ErrNotExist or an empty mapping.
	Load(ctx context.Context) (map[string]string, error)

	// Save replaces the persisted mapping
	Save(ctx context.Context, entries map[string]string) error

	// String names the store in logs and errors
	String() string

	Close() error
}

// Ledger maps a username to the id of the last item delivered for it.
// It is safe for concurrent use; IsNew and Record are each atomic.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]string
	now     func() time.Time
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{
		entries: make(map[string]string),
		now:     time.Now,
	}
}

// Load reads the ledger from store. It always returns a usable ledger:
// a store that cannot be read or decoded yields an empty one together with a
// ledger_load error for the caller to report.
func Load(ctx context.Context, store Store) (*Ledger, error) {
	l := New()

	entries, err := store.Load(ctx)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			logger.ForLedger().Info().Str("store", store.String()).Msg("No ledger yet, starting empty")
			return l, nil
		}
		return l, errors.NewLedgerLoad(store.String(), err)
	}

	maps.Copy(l.entries, entries)
	logger.ForLedger().Debug().
		Str("store", store.String()).
		Int("entries", len(l.usernamesLocked())).
		Msg("Ledger loaded")
	return l, nil
}

// IsNew reports whether itemID differs from the last item recorded for username.
// Ids are compared as exact strings.
func (l *Ledger) IsNew(username, itemID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.entries[username]
	return !ok || last != itemID
}

// LastItem returns the last item recorded for username
func (l *Ledger) LastItem(username string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.entries[username]
	return last, ok
}

// Record stores itemID as the last item delivered for username
func (l *Ledger) Record(username, itemID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[username] = itemID
	l.entries[LatestPostKey] = l.now().Format(TimeLayout)
}

// Flush stamps the ledger and writes the whole mapping to store
func (l *Ledger) Flush(ctx context.Context, store Store) error {
	l.mu.Lock()
	l.entries[UpdatedKey] = l.now().Format(TimeLayout)
	snapshot := maps.Clone(l.entries)
	l.mu.Unlock()

	if err := store.Save(ctx, snapshot); err != nil {
		return errors.NewLedgerWrite(store.String(), err)
	}

	logger.ForLedger().Debug().
		Str("store", store.String()).
		Int("entries", len(snapshot)).
		Msg("Ledger flushed")
	return nil
}

// Entries returns a copy of the full mapping, timestamps included
func (l *Ledger) Entries() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return maps.Clone(l.entries)
}

// usernamesLocked returns the username keys. Callers hold mu or own l exclusively.
func (l *Ledger) usernamesLocked() []string {
	names := make([]string, 0, len(l.entries))
	for k := range l.entries {
		if k == LatestPostKey || k == UpdatedKey {
			continue
		}
		names = append(names, k)
	}
	return names
}

// decodeEntries reads a flat JSON object. Numeric values are kept in their
// literal form; nested values are skipped.
func decodeEntries(data []byte) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	entries := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			entries[k] = s
			continue
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil {
			entries[k] = n.String()
		}
	}
	return entries, nil
}
