package indexing

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/textsplitter"

	"docsearch/src/core/document"
	"docsearch/src/core/knowledgebase"
	"docsearch/src/log"
)

// Report summarises one indexing run.
type Report struct {
	Filename  string `json:"filename"`
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
	Tokens    int    `json:"tokens"`
}

// Indexer turns files into chunks and appends them to the store.
type Indexer struct {
	store    knowledgebase.Store
	splitter textsplitter.TextSplitter
}

func NewIndexer(store knowledgebase.Store, splitter textsplitter.TextSplitter) *Indexer {
	return &Indexer{
		store:    store,
		splitter: splitter,
	}
}

// IndexFile reads path from disk and indexes it.
func (i *Indexer) IndexFile(ctx context.Context, path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{Filename: path}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return i.IndexBytes(ctx, path, data)
}

// IndexBytes indexes the content of filename. A file with no extractable
// text is not an error and leaves the store untouched. A failed store write
// is returned as is; chunks written before the failure are not removed.
func (i *Indexer) IndexBytes(ctx context.Context, filename string, data []byte) (Report, error) {
	report := Report{Filename: filename}

	docs, err := document.Load(ctx, filename, data)
	if err != nil {
		return report, err
	}
	report.Documents = len(docs)
	if len(docs) == 0 {
		log.Info("no text extracted, nothing to index", "filename", filename)
		return report, nil
	}

	chunks, err := document.Split(i.splitter, docs)
	if err != nil {
		return report, err
	}
	if len(chunks) == 0 {
		return report, nil
	}

	if _, err := i.store.AddDocuments(ctx, chunks); err != nil {
		return report, fmt.Errorf("failed to add chunks to vector store: %w", err)
	}
	report.Chunks = len(chunks)
	report.Tokens = document.EstimateDocumentTokens(chunks)

	total, err := i.store.Count(ctx)
	if err != nil {
		log.Error(err, "failed to count vector store entries")
		total = -1
	}
	log.Info("indexed document", "filename", filename, "documents", report.Documents, "chunks", report.Chunks, "tokens", report.Tokens, "total", total)

	return report, nil
}
