package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the ledger as a JSON object in a single file
type FileStore struct {
	Path string
}

// NewFileStore creates a file store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads and decodes the ledger file
func (s *FileStore) Load(_ context.Context) (map[string]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	entries, err := decodeEntries(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return entries, nil
}

// Save writes entries to a temporary file next to the ledger and renames it
// over the old one, so a crash leaves either the old or the new ledger.
func (s *FileStore) Save(_ context.Context, entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return err
	}

	// Persist the rename itself
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}

func (s *FileStore) String() string {
	return s.Path
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}
