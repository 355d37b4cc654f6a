package feedbackctrl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsearch/src/core/feedback"
)

func TestToRow(t *testing.T) {
	svc, err := NewFeedbackService(nil)
	require.NoError(t, err)
	fixed := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	row := svc.toRow(feedback.Record{SearchID: "abc", Rating: 9, Query: "q", Answer: "a", Comment: "great"})
	assert.NotZero(t, row.ID)
	assert.Equal(t, fixed, row.Timestamp)
	assert.Equal(t, "abc", row.SearchID)
	assert.Equal(t, 9, row.Rating)
	assert.Equal(t, "great", row.Comment)

	other := svc.toRow(feedback.Record{SearchID: "abc", Rating: 1})
	assert.NotEqual(t, row.ID, other.ID)
}

func TestLogRejectsInvalidRating(t *testing.T) {
	// a nil db proves validation happens before any query
	svc, err := NewFeedbackService(nil)
	require.NoError(t, err)

	err = svc.Log(context.Background(), feedback.Record{Rating: 0})
	assert.ErrorIs(t, err, feedback.ErrInvalidRating)
}
