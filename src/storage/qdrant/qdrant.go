package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"docsearch/src/core/knowledgebase"
	"docsearch/src/log"
)

const (
	DefaultCollection = "documents"

	payloadContent  = "content"
	payloadSource   = "source"
	payloadMetadata = "metadata"
)

// Store keeps chunks as Qdrant points. The collection is created on the
// first write, once the embedding size is known.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	embedder    embeddings.Embedder

	mu    sync.Mutex
	ready bool
}

var _ knowledgebase.Store = (*Store)(nil)

// New creates a Store connected to Qdrant at the given gRPC address.
func New(addr, collection string, embedder embeddings.Embedder) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial qdrant %s: %w", addr, err)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		embedder:    embedder,
	}, nil
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) exists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return true, nil
	}

	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return false, fmt.Errorf("list qdrant collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			s.ready = true
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection creates the collection with cosine distance if missing.
func (s *Store) ensureCollection(ctx context.Context, dims int) error {
	ok, err := s.exists(ctx)
	if err != nil || ok {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create qdrant collection %s: %w", s.collection, err)
	}
	s.ready = true
	return nil
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
	if err := s.ensureCollection(ctx, len(vectors[0])); err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	points := make([]*pb.PointStruct, len(docs))
	for i, doc := range docs {
		payload, err := toPayload(doc)
		if err != nil {
			return nil, err
		}
		ids[i] = uuid.NewString()
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: ids[i]},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vectors[i]},
				},
			},
			Payload: payload,
		}
	}

	wait := true
	_, err = s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return ids, nil
}

// SimilaritySearch implements vectorstores.VectorStore
func (s *Store) SimilaritySearch(ctx context.Context, query string, numDocuments int, _ ...vectorstores.Option) ([]schema.Document, error) {
	ok, err := s.exists(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(numDocuments),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	docs := make([]schema.Document, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		doc := fromPayload(r.GetPayload())
		doc.Score = r.GetScore()
		docs = append(docs, doc)
	}
	return docs, nil
}

// Count implements knowledgebase.Store
func (s *Store) Count(ctx context.Context) (int, error) {
	ok, err := s.exists(ctx)
	if err != nil || !ok {
		return 0, err
	}

	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

func toPayload(doc schema.Document) (map[string]*pb.Value, error) {
	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	source, _ := doc.Metadata[knowledgebase.MetaSource].(string)

	return map[string]*pb.Value{
		payloadContent:  {Kind: &pb.Value_StringValue{StringValue: doc.PageContent}},
		payloadSource:   {Kind: &pb.Value_StringValue{StringValue: source}},
		payloadMetadata: {Kind: &pb.Value_StringValue{StringValue: string(meta)}},
	}, nil
}

func fromPayload(payload map[string]*pb.Value) schema.Document {
	doc := schema.Document{Metadata: map[string]any{}}
	if raw := payload[payloadMetadata].GetStringValue(); raw != "" {
		meta := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			log.Error(err, "could not decode qdrant metadata")
		} else if meta != nil {
			doc.Metadata = meta
		}
	}
	if source := payload[payloadSource].GetStringValue(); source != "" {
		doc.Metadata[knowledgebase.MetaSource] = source
	}
	doc.PageContent = payload[payloadContent].GetStringValue()
	return doc
}
