package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/catalogsync/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSourceReturnsNewestExtract(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFSObjectStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "feed/stock/old.tsv", []byte("old"), "text/plain"))
	require.NoError(t, store.Upload(ctx, "feed/stock/new.tsv", []byte("new"), "text/plain"))

	// List returns ModTime; make the ordering deterministic.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "feed", "stock", "old.tsv"), past, past))

	source := NewStoreSource(store, "feed")
	data, name, err := source.Latest(ctx, CategoryStock)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.Equal(t, "new.tsv", name)
}

func TestStoreSourceEmptyCategory(t *testing.T) {
	store, err := storage.NewFSObjectStore(t.TempDir())
	require.NoError(t, err)

	source := NewStoreSource(store, "feed")
	_, _, err = source.Latest(context.Background(), CategoryMapping)

	var noFile *ErrNoFile
	require.ErrorAs(t, err, &noFile)
	assert.Equal(t, CategoryMapping, noFile.Category)
}

func TestStoreSourceUnknownCategory(t *testing.T) {
	store, err := storage.NewFSObjectStore(t.TempDir())
	require.NoError(t, err)

	source := NewStoreSource(store, "feed")
	_, _, err = source.Latest(context.Background(), Category("invoices"))
	assert.Error(t, err)
}
