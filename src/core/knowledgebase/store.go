package knowledgebase

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/vectorstores"
)

var (
	ErrEmptyEmbedding = errors.New("embedder returned no vectors")
)

// Store persists chunk text together with its embedding and metadata and
// answers nearest-neighbour queries. Entries are only ever appended.
type Store interface {
	vectorstores.VectorStore

	// Count returns the number of entries currently held by the store.
	Count(ctx context.Context) (int, error)
}

// Metadata keys shared by every backend.
const (
	MetaSource     = "source"
	MetaFilename   = "filename"
	MetaFormat     = "format"
	MetaPage       = "page"
	MetaChunkIndex = "chunk_index"
)
