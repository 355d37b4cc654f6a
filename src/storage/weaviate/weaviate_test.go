package weaviate

import (
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"

	"docsearch/src/core/knowledgebase"
	"docsearch/src/log"
)

func TestParseGetResult(t *testing.T) {
	data := map[string]models.JSONObject{
		"Get": map[string]interface{}{
			"DocumentChunk": []interface{}{
				map[string]interface{}{
					"content":  "first chunk",
					"source":   "a.txt",
					"metadata": `{"chunk_index":0,"filename":"a.txt"}`,
					"_additional": map[string]interface{}{
						"id":       "8c0e2f1e-6f2c-4b8a-9a7e-1d2f3a4b5c6d",
						"distance": 0.25,
					},
				},
				map[string]interface{}{
					"content": "no additional block",
				},
				"garbage",
			},
		},
	}

	results := parseGetResult(data, "DocumentChunk")
	require.Len(t, results, 2)
	assert.Equal(t, "8c0e2f1e-6f2c-4b8a-9a7e-1d2f3a4b5c6d", results[0].ID)
	assert.Equal(t, 0.25, results[0].Distance)
	assert.NotContains(t, results[0].Properties, "_additional")

	docs := toDocuments(results)
	require.Len(t, docs, 2)
	assert.Equal(t, "first chunk", docs[0].PageContent)
	assert.Equal(t, "a.txt", docs[0].Metadata[knowledgebase.MetaSource])
	assert.Equal(t, "a.txt", docs[0].Metadata[knowledgebase.MetaFilename])
	assert.InDelta(t, 0.75, docs[0].Score, 1e-6)
	assert.Empty(t, docs[1].Metadata)
}

func TestToDocumentsBadMetadata(t *testing.T) {
	var logged []string
	prev := log.Logger()
	log.SetLogger(funcr.New(func(prefix, args string) { logged = append(logged, args) }, funcr.Options{}))
	t.Cleanup(func() { log.SetLogger(prev) })

	docs := toDocuments([]QueryResult{
		{ID: "bad", Properties: map[string]interface{}{"content": "x", "source": "a.txt", "metadata": "{not json"}},
		{ID: "null", Properties: map[string]interface{}{"content": "y", "source": "b.txt", "metadata": "null"}},
	})

	require.Len(t, docs, 2)
	assert.Equal(t, map[string]any{knowledgebase.MetaSource: "a.txt"}, docs[0].Metadata)
	assert.Equal(t, map[string]any{knowledgebase.MetaSource: "b.txt"}, docs[1].Metadata)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "could not decode weaviate metadata")
	assert.Contains(t, logged[0], `"id"="bad"`)
}

func TestParseGetResultMissingClass(t *testing.T) {
	assert.Empty(t, parseGetResult(map[string]models.JSONObject{}, "DocumentChunk"))
	assert.Empty(t, parseGetResult(map[string]models.JSONObject{"Get": map[string]interface{}{}}, "DocumentChunk"))
}

func TestParseAggregateCount(t *testing.T) {
	data := map[string]models.JSONObject{
		"Aggregate": map[string]interface{}{
			"DocumentChunk": []interface{}{
				map[string]interface{}{
					"meta": map[string]interface{}{"count": float64(42)},
				},
			},
		},
	}
	assert.Equal(t, 42, parseAggregateCount(data, "DocumentChunk"))
	assert.Equal(t, 0, parseAggregateCount(data, "Other"))
	assert.Equal(t, 0, parseAggregateCount(map[string]models.JSONObject{}, "DocumentChunk"))
}

func TestGraphQLError(t *testing.T) {
	assert.NoError(t, graphQLError(nil))
	assert.NoError(t, graphQLError(&models.GraphQLResponse{}))

	err := graphQLError(&models.GraphQLResponse{Errors: []*models.GraphQLError{{Message: "class not found"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class not found")
}
