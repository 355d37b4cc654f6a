package chroma

import (
	"testing"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/stretchr/testify/assert"

	"docsearch/src/core/knowledgebase"
)

func TestMetadataToMap(t *testing.T) {
	meta := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute(knowledgebase.MetaSource, "guide.md"),
		chromago.NewIntAttribute(knowledgebase.MetaChunkIndex, 3),
		chromago.NewStringAttribute(metaContent, `{"filename":"guide.md","format":"md"}`),
	)

	got := metadataToMap(meta)
	assert.Equal(t, "guide.md", got[knowledgebase.MetaSource])
	assert.Equal(t, "guide.md", got[knowledgebase.MetaFilename])
	assert.Equal(t, "md", got[knowledgebase.MetaFormat])
	assert.NotContains(t, got, metaContent)
}

func TestMetadataToMapNil(t *testing.T) {
	assert.Empty(t, metadataToMap(nil))
}
