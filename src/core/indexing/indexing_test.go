package indexing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsearch/src/core/document"
	"docsearch/src/core/knowledgebase"
	"docsearch/src/core/knowledgebase/kbtest"
)

func newTestIndexer(store *kbtest.MemoryStore) *Indexer {
	return NewIndexer(store, document.NewSplitter(document.DefaultSplitConfig()))
}

func TestIndexBytes(t *testing.T) {
	ctx := context.Background()
	long := strings.Repeat("Vector stores keep embeddings close to their text. ", 60)

	tests := []struct {
		name       string
		filename   string
		content    string
		wantChunks bool
	}{
		{name: "text", filename: "notes.txt", content: "Go is a programming language.", wantChunks: true},
		{name: "markdown", filename: "readme.md", content: "# Heading\n\n" + long, wantChunks: true},
		{name: "fallback extension", filename: "data.log", content: "line one\nline two", wantChunks: true},
		{name: "empty file", filename: "empty.txt", content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := kbtest.NewMemoryStore()
			report, err := newTestIndexer(store).IndexBytes(ctx, tt.filename, []byte(tt.content))
			require.NoError(t, err)

			count, _ := store.Count(ctx)
			assert.Equal(t, report.Chunks, count)
			if tt.wantChunks {
				assert.GreaterOrEqual(t, count, 1)
				for _, doc := range store.Documents() {
					assert.Equal(t, tt.filename, doc.Metadata[knowledgebase.MetaSource])
				}
			} else {
				assert.Zero(t, count)
			}
		})
	}
}

func TestIndexBytesStoreError(t *testing.T) {
	store := kbtest.NewMemoryStore()
	store.AddErr = errors.New("connection refused")

	_, err := newTestIndexer(store).IndexBytes(context.Background(), "a.txt", []byte("content"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIndexFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello from disk"), 0o644))

	store := kbtest.NewMemoryStore()
	report, err := newTestIndexer(store).IndexFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 1, report.Chunks)
	assert.Equal(t, 4, report.Tokens)

	_, err = newTestIndexer(store).IndexFile(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestWatcherScanSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("beta"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.exe"), []byte("binary"), 0o644))

	store := kbtest.NewMemoryStore()
	w := NewWatcher(newTestIndexer(store))

	require.NoError(t, w.Scan(context.Background(), dir))
	count, _ := store.Count(context.Background())
	assert.Equal(t, 2, count)

	require.NoError(t, w.Scan(context.Background(), dir))
	count, _ = store.Count(context.Background())
	assert.Equal(t, 2, count)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha, revised"), 0o644))
	require.NoError(t, w.Scan(context.Background(), dir))
	count, _ = store.Count(context.Background())
	assert.Equal(t, 3, count)
}

func TestWatcherPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	store := kbtest.NewMemoryStore()
	w := NewWatcher(newTestIndexer(store))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, dir) }()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("fresh content"), 0o644))

	assert.Eventually(t, func() bool {
		count, _ := store.Count(context.Background())
		return count >= 1
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
