package job

import (
	"context"
	"encoding/json"
	"fmt"

	"docsearch/src/core/indexing"
	"docsearch/src/fsutil"
	"docsearch/src/log"
)

const TaskTypeIndexDocument = "index_document"

type IndexPayload struct {
	Filename   string `json:"filename"`
	ArchiveKey string `json:"archive_key"`
}

// Indexer is the part of indexing.Indexer the task needs
type Indexer interface {
	IndexBytes(ctx context.Context, filename string, data []byte) (indexing.Report, error)
}

// IndexTask indexes a file previously saved to the upload archive
type IndexTask struct {
	archive fsutil.Archive
	indexer Indexer
}

func NewIndexTask(archive fsutil.Archive, indexer Indexer) *IndexTask {
	return &IndexTask{
		archive: archive,
		indexer: indexer,
	}
}

func (task *IndexTask) HandleIndexTask(ctx context.Context, payload json.RawMessage) error {
	var p IndexPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to unmarshal index payload: %w", err)
	}
	if p.ArchiveKey == "" {
		return fmt.Errorf("index payload has no archive key")
	}

	data, err := task.archive.Get(ctx, p.ArchiveKey)
	if err != nil {
		return err
	}

	filename := p.Filename
	if filename == "" {
		filename = fsutil.OriginalName(p.ArchiveKey)
	}

	report, err := task.indexer.IndexBytes(ctx, filename, data)
	if err != nil {
		return err
	}
	log.Info("index job finished", "filename", filename, "chunks", report.Chunks)
	return nil
}
