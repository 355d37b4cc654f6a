package fsutil

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalFileStore(filepath.Join(t.TempDir(), "uploaded_files"))
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "1_report.pdf", []byte("pdf bytes")))
	data, err := store.Get(ctx, "1_report.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), data)

	_, err = store.Get(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, key := range []string{"", "../escape.txt", "a/b.txt", ".."} {
		assert.ErrorIs(t, store.Put(ctx, key, nil), ErrInvalidKey, key)
	}

	count, size, err := store.GetFileStats()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, int64(len("pdf bytes")), size)
}

func TestKeyGenerator(t *testing.T) {
	gen, err := NewKeyGenerator(1)
	require.NoError(t, err)

	a := gen.Key("docs/notes.txt")
	b := gen.Key("notes.txt")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_notes.txt"))
	assert.Equal(t, "notes.txt", OriginalName(a))

	_, err = NewKeyGenerator(-1)
	assert.Error(t, err)
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"notes.txt":            "notes.txt",
		"../../etc/passwd":     "passwd",
		`C:\Users\me\plan.md`:  "plan.md",
		"":                     "upload",
		"..":                   "upload",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeName(in), in)
	}
}
