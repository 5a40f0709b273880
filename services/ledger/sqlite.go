package ledger

import (
	"context"
	"database/sql"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// SQLiteStore keeps the ledger as rows of a key/value table
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore prepares a store for the database at path. The file is not
// touched until the first Load or Save, so a corrupt database surfaces as a
// load error instead of failing here.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Load creates the table if needed and reads every row
func (s *SQLiteStore) Load(ctx context.Context) (map[string]string, error) {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM ledger")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		entries[k] = v
	}
	return entries, rows.Err()
}

// Save replaces the table contents in one transaction
func (s *SQLiteStore) Save(ctx context.Context, entries map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM ledger"); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO ledger (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for k, v := range entries {
		if _, err := stmt.ExecContext(ctx, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) String() string {
	return "sqlite://" + s.path
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
