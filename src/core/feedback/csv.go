package feedback

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Header is the first row of every feedback file.
var Header = []string{"timestamp", "search_id", "rating", "query", "answer", "comment"}

// CSVLogger appends records to a CSV file, writing the header when the file
// is created.
type CSVLogger struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

var _ Logger = (*CSVLogger)(nil)

func NewCSVLogger(path string) (*CSVLogger, error) {
	l := &CSVLogger{path: path, now: time.Now}
	if err := l.ensureHeader(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *CSVLogger) ensureHeader() error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create feedback directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create feedback file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write feedback header: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Log appends one row. Invalid records are rejected before the file is
// touched. A zero Timestamp is replaced with the current time.
func (l *CSVLogger) Log(_ context.Context, record Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := os.Stat(l.path); errors.Is(err, fs.ErrNotExist) {
		if err := l.ensureHeader(); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open feedback file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		record.Timestamp.Format(time.RFC3339Nano),
		record.SearchID,
		strconv.Itoa(record.Rating),
		record.Query,
		record.Answer,
		record.Comment,
	}); err != nil {
		return fmt.Errorf("failed to write feedback: %w", err)
	}
	w.Flush()
	return w.Error()
}
