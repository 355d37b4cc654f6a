package enrichment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsearch/src/core/document"
	"docsearch/src/core/knowledgebase"
	"docsearch/src/core/knowledgebase/kbtest"
)

type fakeTool struct {
	reply string
	err   error
	calls int
}

func (f *fakeTool) Name() string        { return "Wikipedia" }
func (f *fakeTool) Description() string { return "fake encyclopedia" }
func (f *fakeTool) Call(context.Context, string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func TestEnrich(t *testing.T) {
	article := "Page: Paris\nSummary: " + strings.Repeat("Paris is the capital and largest city of France. ", 40)

	tests := []struct {
		name      string
		tool      *fakeTool
		addErr    error
		want      bool
		wantAdded bool
	}{
		{name: "article found", tool: &fakeTool{reply: article}, want: true, wantAdded: true},
		{name: "no pages", tool: &fakeTool{reply: "no wikipedia pages found"}},
		{name: "no good results", tool: &fakeTool{reply: "No good Wikipedia Search Results was found"}},
		{name: "empty reply", tool: &fakeTool{reply: "  "}},
		{name: "lookup error", tool: &fakeTool{err: errors.New("timeout")}},
		{name: "store error", tool: &fakeTool{reply: article}, addErr: errors.New("disk full")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := kbtest.NewMemoryStore()
			store.AddErr = tt.addErr
			f := NewFetcher(tt.tool, store, document.NewSplitter(document.DefaultSplitConfig()))

			got := f.Enrich(context.Background(), "capital of France")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, tt.tool.calls)

			count, err := store.Count(context.Background())
			require.NoError(t, err)
			if tt.wantAdded {
				assert.Greater(t, count, 1)
				for _, doc := range store.Documents() {
					assert.Equal(t, SourceWikipedia, doc.Metadata[knowledgebase.MetaSource])
					assert.LessOrEqual(t, len([]rune(doc.PageContent)), document.DefaultChunkSize)
				}
			} else {
				assert.Zero(t, count)
			}
		})
	}
}

func TestEnrichRateLimitHonoursContext(t *testing.T) {
	tool := &fakeTool{reply: "Page: X\nSummary: something"}
	f := NewFetcher(tool, kbtest.NewMemoryStore(), document.NewSplitter(document.DefaultSplitConfig()),
		WithRateLimit(0.001, 1))

	assert.True(t, f.Enrich(context.Background(), "first"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, f.Enrich(ctx, "second"))
	assert.Equal(t, 1, tool.calls)
}

func TestNewWikipediaDefaults(t *testing.T) {
	tool := NewWikipedia(WikipediaConfig{})
	assert.Equal(t, "Wikipedia", tool.Name())
}
