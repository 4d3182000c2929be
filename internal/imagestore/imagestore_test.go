package imagestore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := NewFileStore(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return store, dir
}

func TestFileStorePut(t *testing.T) {
	store, dir := newTestStore(t)

	ref, err := store.Put(context.Background(), []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".jpg"), "ref %q", ref)

	data, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestFileStoreExtensions(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	testCases := []struct {
		contentType string
		wantSuffix  string
	}{
		{"image/png", ".png"},
		{"image/webp", ".webp"},
		{"image/jpeg", ".jpg"},
		{"application/octet-stream", ".jpg"},
	}

	for _, tc := range testCases {
		ref, err := store.Put(ctx, []byte{1}, tc.contentType)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(ref, tc.wantSuffix), "content type %s gave %q", tc.contentType, ref)
	}
}

func TestFileStorePutRejectsEmptyPayload(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Put(context.Background(), nil, "image/jpeg")
	assert.Error(t, err)
}

func TestFileStorePutHonorsContext(t *testing.T) {
	store, dir := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Put(ctx, []byte{1}, "image/jpeg")
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStoreRefsAreUnique(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		ref, err := store.Put(ctx, []byte{1}, "image/jpeg")
		require.NoError(t, err)
		assert.False(t, seen[ref])
		seen[ref] = true
	}
}
