package ledger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/gramrelay/pkg/errors"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.Save(ctx, map[string]string{"alice": "1", "bob": "2"}))
	require.NoError(t, store.Save(ctx, map[string]string{"alice": "3", UpdatedKey: "2024-05-01 12:00:00"}))
	require.NoError(t, store.Close())

	// Reopen to check the rows survive the process
	store, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": "3", UpdatedKey: "2024-05-01 12:00:00"}, loaded)
}

func TestSQLiteStoreWithLedger(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer store.Close()

	l, err := Load(ctx, store)
	require.NoError(t, err)
	l.Record("A", "200")
	require.NoError(t, l.Flush(ctx, store))

	reloaded, err := Load(ctx, store)
	require.NoError(t, err)
	assert.False(t, reloaded.IsNew("A", "200"))
}

func TestSQLiteStoreCorruptDatabaseLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("not a database "), 512), 0o644))

	store, err := OpenStore("sqlite://" + path)
	require.NoError(t, err, "opening does not read the file")
	defer store.Close()

	l, err := Load(ctx, store)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeLedgerLoad))
	require.NotNil(t, l)
	assert.Empty(t, l.Entries())
	assert.True(t, l.IsNew("A", "1"))
}
