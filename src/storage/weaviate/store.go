package weaviate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/weaviate/weaviate/entities/models"

	"docsearch/src/core/knowledgebase"
	"docsearch/src/log"
)

const (
	DefaultClassName = "DocumentChunk"

	propContent  = "content"
	propSource   = "source"
	propMetadata = "metadata"
)

var chunkProperties = []*models.Property{
	{Name: propContent, DataType: []string{"text"}},
	{Name: propSource, DataType: []string{"text"}},
	{Name: propMetadata, DataType: []string{"text"}},
}

// Store keeps chunks in a single Weaviate class. Vectors come from the
// configured embedder.
type Store struct {
	sdk       *SDK
	embedder  embeddings.Embedder
	className string
}

var _ knowledgebase.Store = (*Store)(nil)

// NewStore makes sure className exists and returns a store bound to it.
func NewStore(ctx context.Context, sdk *SDK, embedder embeddings.Embedder, className string) (*Store, error) {
	if className == "" {
		className = DefaultClassName
	}
	if err := sdk.EnsureClass(ctx, className, chunkProperties); err != nil {
		return nil, err
	}
	return &Store{
		sdk:       sdk,
		embedder:  embedder,
		className: className,
	}, nil
}

// AddDocuments implements vectorstores.VectorStore
func (s *Store) AddDocuments(ctx context.Context, docs []schema.Document, _ ...vectorstores.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	vectors, err := knowledgebase.EmbedDocuments(ctx, s.embedder, docs)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	objects := make([]VectorObject, len(docs))
	for i, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata: %w", err)
		}
		source, _ := doc.Metadata[knowledgebase.MetaSource].(string)

		ids[i] = uuid.NewString()
		objects[i] = VectorObject{
			ID:     ids[i],
			Vector: vectors[i],
			Properties: map[string]interface{}{
				propContent:  doc.PageContent,
				propSource:   source,
				propMetadata: string(meta),
			},
		}
	}

	if err := s.sdk.BatchAddVectors(ctx, s.className, objects); err != nil {
		return nil, err
	}
	return ids, nil
}

// SimilaritySearch implements vectorstores.VectorStore
func (s *Store) SimilaritySearch(ctx context.Context, query string, numDocuments int, _ ...vectorstores.Option) ([]schema.Document, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.sdk.QueryVectors(ctx, s.className, vector, QueryConfig{
		Fields: []string{propContent, propSource, propMetadata},
		Limit:  numDocuments,
	})
	if err != nil {
		return nil, err
	}

	return toDocuments(results), nil
}

// Count implements knowledgebase.Store
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.sdk.Count(ctx, s.className)
}

// Ping reports whether Weaviate is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.sdk.Ping(ctx)
}

func toDocuments(results []QueryResult) []schema.Document {
	docs := make([]schema.Document, 0, len(results))
	for _, r := range results {
		content, _ := r.Properties[propContent].(string)

		raw, _ := r.Properties[propMetadata].(string)
		meta := decodeMetadata(raw, r.ID)
		if source, ok := r.Properties[propSource].(string); ok && source != "" {
			meta[knowledgebase.MetaSource] = source
		}

		docs = append(docs, schema.Document{
			PageContent: content,
			Metadata:    meta,
			Score:       float32(1 - r.Distance),
		})
	}
	return docs
}

// decodeMetadata parses the JSON metadata property. Undecodable metadata is
// logged and replaced with an empty map.
func decodeMetadata(raw, id string) map[string]any {
	meta := map[string]any{}
	if raw == "" {
		return meta
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil || meta == nil {
		if err != nil {
			log.Error(err, "could not decode weaviate metadata", "id", id)
		}
		return map[string]any{}
	}
	return meta
}
