package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	MinRating = 1
	MaxRating = 10
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 10")
)

// Record is one user judgement of a search result.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	SearchID  string    `json:"search_id"`
	Rating    int       `json:"rating"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Comment   string    `json:"comment"`
}

// Validate checks a record before it is persisted.
func (r Record) Validate() error {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, r.Rating)
	}
	return nil
}

// Logger appends feedback records. Records are never updated or removed.
type Logger interface {
	Log(ctx context.Context, record Record) error
}
