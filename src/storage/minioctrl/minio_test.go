package minioctrl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"1_report.PDF": "application/pdf",
		"2_notes.txt":  "text/plain",
		"3_readme.md":  "text/markdown",
		"4_blob":       "application/octet-stream",
	}
	for key, want := range tests {
		assert.Equal(t, want, contentTypeFor(key), key)
	}
}

func TestNewMinioService(t *testing.T) {
	svc, err := NewMinioService("localhost:9000", "minioadmin", "minioadmin", false)
	require.NoError(t, err)
	assert.NotNil(t, svc.client)
}
