package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Result
		wantErr bool
	}{
		{
			name: "plain object",
			raw:  `{"answer": "42", "confidence": 0.75, "missing_info": "", "enrichment_suggestion": ""}`,
			want: Result{Answer: "42", Confidence: 0.75},
		},
		{
			name: "fenced",
			raw:  "```json\n{\"answer\": \"42\", \"confidence\": 1, \"missing_info\": \"\", \"enrichment_suggestion\": \"\"}\n```",
			want: Result{Answer: "42", Confidence: 1},
		},
		{
			name: "surrounding prose",
			raw:  "Here you go: {\"answer\": \"a\", \"confidence\": 0.1, \"missing_info\": \"b\", \"enrichment_suggestion\": \"c\"} Thanks",
			want: Result{Answer: "a", Confidence: 0.1, MissingInfo: "b", EnrichmentSuggestion: "c"},
		},
		{
			name: "string confidence",
			raw:  `{"answer": "a", "confidence": "0.3", "missing_info": null, "enrichment_suggestion": null}`,
			want: Result{Answer: "a", Confidence: 0.3},
		},
		{
			name: "out of range confidence is clamped",
			raw:  `{"answer": "a", "confidence": 7}`,
			want: Result{Answer: "a", Confidence: 1},
		},
		{
			name: "list of missing items",
			raw:  `{"answer": "a", "confidence": 0, "missing_info": ["budget", "timeline"]}`,
			want: Result{Answer: "a", MissingInfo: "budget; timeline"},
		},
		{
			name: "fenced object followed by prose with braces",
			raw:  "```json\n{\"answer\": \"Paris\", \"confidence\": 0.9, \"missing_info\": \"\", \"enrichment_suggestion\": \"\"}\n```\nHope this helps {:}",
			want: Result{Answer: "Paris", Confidence: 0.9},
		},
		{
			name: "prose braces before the object",
			raw:  "Format {as asked}: {\"answer\": \"a\", \"confidence\": 0.6}",
			want: Result{Answer: "a", Confidence: 0.6},
		},
		{
			name: "false missing info is empty",
			raw:  `{"answer": "a", "confidence": 0.1, "missing_info": false, "enrichment_suggestion": true}`,
			want: Result{Answer: "a", Confidence: 0.1},
		},
		{
			name: "zero missing info is empty",
			raw:  `{"answer": "a", "confidence": 0.1, "missing_info": 0}`,
			want: Result{Answer: "a", Confidence: 0.1},
		},
		{name: "no object", raw: "nothing here", wantErr: true},
		{name: "broken object", raw: `{"answer": }`, wantErr: true},
		{name: "bad confidence", raw: `{"answer": "a", "confidence": "high"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnswer(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsedBooleanMissingInfoIsNotAGap(t *testing.T) {
	got, err := parseAnswer(`{"answer": "a", "confidence": 0.1, "missing_info": false}`)
	require.NoError(t, err)
	assert.False(t, DefaultGapPolicy().IsGap(got))
}
