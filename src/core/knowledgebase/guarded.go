package knowledgebase

import (
	"context"
	"sync"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// Guarded serialises writes against a Store while letting reads run
// concurrently. Indexing and enrichment take the write side, retrieval and
// counting take the read side.
type Guarded struct {
	mu    sync.RWMutex
	store Store
}

var _ Store = (*Guarded)(nil)

// NewGuarded wraps store with a single-writer/many-reader lock.
func NewGuarded(store Store) *Guarded {
	return &Guarded{store: store}
}

// AddDocuments implements vectorstores.VectorStore
func (g *Guarded) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.AddDocuments(ctx, docs, options...)
}

// SimilaritySearch implements vectorstores.VectorStore
func (g *Guarded) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.SimilaritySearch(ctx, query, numDocuments, options...)
}

// Count implements Store
func (g *Guarded) Count(ctx context.Context) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.Count(ctx)
}
