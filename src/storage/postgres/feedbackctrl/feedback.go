package feedbackctrl

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"docsearch/src/core/feedback"
)

type Feedback struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	SearchID  string    `gorm:"not null;index" json:"search_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Query     string    `gorm:"type:text;not null" json:"query"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (Feedback) TableName() string {
	return "search_feedback"
}

// FeedbackService appends feedback rows to Postgres. Rows are never updated.
type FeedbackService struct {
	db        *gorm.DB
	snowflake *snowflake.Node
	now       func() time.Time
}

var _ feedback.Logger = (*FeedbackService)(nil)

func NewFeedbackService(db *gorm.DB) (*FeedbackService, error) {
	node, err := snowflake.NewNode(3) // Node number 3 for feedback
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}

	return &FeedbackService{
		db:        db,
		snowflake: node,
		now:       time.Now,
	}, nil
}

// Migrate creates the feedback table when missing.
func (s *FeedbackService) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Feedback{}); err != nil {
		return fmt.Errorf("failed to migrate feedback table: %w", err)
	}
	return nil
}

func (s *FeedbackService) Log(ctx context.Context, record feedback.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	row := s.toRow(record)
	if result := s.db.WithContext(ctx).Create(row); result.Error != nil {
		return fmt.Errorf("failed to create feedback: %w", result.Error)
	}
	return nil
}

func (s *FeedbackService) toRow(record feedback.Record) *Feedback {
	ts := record.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	return &Feedback{
		ID:        s.snowflake.Generate().Int64(),
		Timestamp: ts,
		SearchID:  record.SearchID,
		Rating:    record.Rating,
		Query:     record.Query,
		Answer:    record.Answer,
		Comment:   record.Comment,
	}
}
