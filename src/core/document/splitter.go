package document

import (
	"fmt"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"docsearch/src/core/knowledgebase"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// SplitConfig controls chunking. Sizes are measured in characters.
type SplitConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// DefaultSplitConfig returns the chunking used when nothing is configured.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap}
}

// NewSplitter builds the recursive character splitter shared by indexing and
// enrichment.
func NewSplitter(cfg SplitConfig) textsplitter.TextSplitter {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = DefaultChunkOverlap
		if cfg.ChunkOverlap >= cfg.ChunkSize {
			cfg.ChunkOverlap = 0
		}
	}

	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(cfg.ChunkSize),
		textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
	)
}

// Split cuts every document into chunks. Each chunk inherits a copy of its
// parent's metadata plus its position within that parent.
func Split(splitter textsplitter.TextSplitter, docs []schema.Document) ([]schema.Document, error) {
	var chunks []schema.Document
	for _, doc := range docs {
		parts, err := splitter.SplitText(doc.PageContent)
		if err != nil {
			return nil, fmt.Errorf("failed to split text: %w", err)
		}

		for i, part := range parts {
			meta := knowledgebase.CloneMetadata(doc.Metadata)
			meta[knowledgebase.MetaChunkIndex] = i
			chunks = append(chunks, schema.Document{PageContent: part, Metadata: meta})
		}
	}
	return chunks, nil
}
