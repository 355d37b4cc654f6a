// Package kbtest provides an in-memory knowledgebase.Store for tests.
package kbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// MemoryStore keeps documents in a slice. Similarity is approximated by the
// number of query words found in a document, ties broken by insertion order.
type MemoryStore struct {
	mu   sync.Mutex
	docs []schema.Document

	// AddErr and SearchErr, when set, are returned by the matching method.
	AddErr    error
	SearchErr error
}

func NewMemoryStore(docs ...schema.Document) *MemoryStore {
	return &MemoryStore{docs: docs}
}

func (m *MemoryStore) AddDocuments(_ context.Context, docs []schema.Document, _ ...vectorstores.Option) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AddErr != nil {
		return nil, m.AddErr
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = fmt.Sprintf("doc-%d", len(m.docs))
		m.docs = append(m.docs, doc)
	}
	return ids, nil
}

func (m *MemoryStore) SimilaritySearch(_ context.Context, query string, numDocuments int, _ ...vectorstores.Option) ([]schema.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	words := strings.Fields(strings.ToLower(query))
	type scored struct {
		doc   schema.Document
		score int
	}
	ranked := make([]scored, 0, len(m.docs))
	for _, doc := range m.docs {
		content := strings.ToLower(doc.PageContent)
		score := 0
		for _, w := range words {
			if strings.Contains(content, w) {
				score++
			}
		}
		ranked = append(ranked, scored{doc: doc, score: score})
	}

	// stable insertion sort keeps equal scores in insertion order
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].score > ranked[j-1].score; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	if numDocuments > len(ranked) {
		numDocuments = len(ranked)
	}
	out := make([]schema.Document, numDocuments)
	for i := range out {
		out[i] = ranked[i].doc
	}
	return out, nil
}

func (m *MemoryStore) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs), nil
}

// Documents returns a copy of everything stored so far.
func (m *MemoryStore) Documents() []schema.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]schema.Document(nil), m.docs...)
}
