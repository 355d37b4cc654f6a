package chroma

import (
	"context"
	"encoding/json"
	"fmt"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	chromaemb "github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"docsearch/src/core/knowledgebase"
	"docsearch/src/log"
)

const (
	DefaultCollection = "documents"

	metaContent = "metadata_json"
)

// Store keeps chunks in a Chroma collection. Embeddings are computed locally
// and passed in, so the collection's own embedding function is never used.
type Store struct {
	client     chromago.Client
	collection chromago.Collection
	embedder   embeddings.Embedder
}

var _ knowledgebase.Store = (*Store)(nil)

// New connects to Chroma at baseURL and opens (or creates) the collection.
func New(ctx context.Context, baseURL, collection string, embedder embeddings.Embedder) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	var opts []chromago.ClientOption
	if baseURL != "" {
		opts = append(opts, chromago.WithBaseURL(baseURL))
	}
	client, err := chromago.NewHTTPClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	col, err := client.GetOrCreateCollection(ctx, collection,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "uploaded document chunks"),
				chromago.NewStringAttribute("created_by", "docsearch"),
			),
		),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to get or create collection %s: %w", collection, err)
	}

	return &Store{
		client:     client,
		collection: col,
		embedder:   embedder,
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
	docIDs := make([]chromago.DocumentID, len(docs))
	texts := make([]string, len(docs))
	embs := make([]chromaemb.Embedding, len(docs))
	metas := make([]chromago.DocumentMetadata, len(docs))
	for i, doc := range docs {
		raw, err := json.Marshal(doc.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata: %w", err)
		}
		source, _ := doc.Metadata[knowledgebase.MetaSource].(string)
		chunk, _ := doc.Metadata[knowledgebase.MetaChunkIndex].(int)

		ids[i] = uuid.NewString()
		docIDs[i] = chromago.DocumentID(ids[i])
		texts[i] = doc.PageContent
		embs[i] = chromaemb.NewEmbeddingFromFloat32(vectors[i])
		metas[i] = chromago.NewDocumentMetadata(
			chromago.NewStringAttribute(knowledgebase.MetaSource, source),
			chromago.NewIntAttribute(knowledgebase.MetaChunkIndex, int64(chunk)),
			chromago.NewStringAttribute(metaContent, string(raw)),
		)
	}

	err = s.collection.Add(ctx,
		chromago.WithIDs(docIDs...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add documents to chroma: %w", err)
	}
	return ids, nil
}

// SimilaritySearch implements vectorstores.VectorStore
func (s *Store) SimilaritySearch(ctx context.Context, query string, numDocuments int, _ ...vectorstores.Option) ([]schema.Document, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.collection.Query(ctx,
		chromago.WithQueryEmbeddings(chromaemb.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(numDocuments),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chroma: %w", err)
	}

	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	if len(documentGroups) == 0 {
		return nil, nil
	}

	docs := make([]schema.Document, 0, len(documentGroups[0]))
	for i, doc := range documentGroups[0] {
		if doc == nil || doc.ContentString() == "" {
			continue
		}
		var meta map[string]any
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			meta = metadataToMap(metadataGroups[0][i])
		}
		docs = append(docs, schema.Document{PageContent: doc.ContentString(), Metadata: meta})
	}
	return docs, nil
}

// Count implements knowledgebase.Store
func (s *Store) Count(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count chroma documents: %w", err)
	}
	return int(count), nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// metadataToMap flattens Chroma metadata into a plain map. The original
// chunk metadata is restored from its JSON copy when present.
func metadataToMap(metadata chromago.DocumentMetadata) map[string]any {
	out := map[string]any{}
	if metadata == nil {
		return out
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		log.Error(err, "could not marshal chroma metadata")
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Error(err, "could not unmarshal chroma metadata")
		return map[string]any{}
	}

	if encoded, ok := out[metaContent].(string); ok {
		delete(out, metaContent)
		var original map[string]any
		if err := json.Unmarshal([]byte(encoded), &original); err == nil {
			for k, v := range original {
				out[k] = v
			}
		}
	}
	return out
}
