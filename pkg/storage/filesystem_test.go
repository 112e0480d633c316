package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorePutOpenRemove(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("grades.csv", []byte("a,b\n")))
	file, err := store.Open("grades.csv")
	require.NoError(t, err)
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, "a,b\n", string(body))

	require.NoError(t, store.Remove("grades.csv"))
	require.NoError(t, store.Remove("grades.csv"))
	_, err = store.Open("grades.csv")
	assert.Error(t, err)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, store.Put("../escape.csv", nil), ErrInvalidName)
	assert.ErrorIs(t, store.Put("", nil), ErrInvalidName)
	_, err = store.Open("nested/file.csv")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestFileStoreSweep(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put("old.pdf", []byte("old")))
	require.NoError(t, store.Put("new.pdf", []byte("new")))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.pdf"), past, past))

	removed, err := store.Sweep(time.Now(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.pdf"}, removed)

	_, err = os.Stat(filepath.Join(dir, "new.pdf"))
	assert.NoError(t, err)
}
