package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/schema"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \n\t ", 0},
		{"short words", "the cat sat", 3},
		{"long word", "internationalization", 5},
		{"number", "2024", 4},
		{"decimal", "3.14", 4},
		{"punctuation", "hi !", 2},
		{"dots only are a word", "...", 1},
		{"mixed", "Paris is 42 kilometres", 2 + 1 + 2 + 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTokens(tt.text))
		})
	}
}

func TestEstimateDocumentTokens(t *testing.T) {
	docs := []schema.Document{
		{PageContent: "one two"},
		{PageContent: "three"},
		{PageContent: ""},
	}
	assert.Equal(t, 4, EstimateDocumentTokens(docs))
}
