package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"

	"docsearch/src/core/knowledgebase"
	"docsearch/src/log"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// AllowedExtensions lists the file types accepted for upload.
var AllowedExtensions = []string{".pdf", ".txt", ".md"}

// Ext returns the lower-cased extension of filename including the dot.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsAllowed reports whether filename carries one of AllowedExtensions.
func IsAllowed(filename string) bool {
	ext := Ext(filename)
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// UnsupportedError describes a rejected upload in a user-facing way.
func UnsupportedError(filename string) error {
	return fmt.Errorf("%w: File type '%s' is not allowed. Allowed types: %s",
		ErrUnsupportedFileType, Ext(filename), strings.Join(AllowedExtensions, ", "))
}

// Load extracts text documents from raw file content. PDFs yield one
// document per page, text and markdown yield a single document with
// markdown reduced to its plain text. Any other
// extension is read as plain text after logging a warning. Documents with no
// text are dropped.
func Load(ctx context.Context, filename string, data []byte) ([]schema.Document, error) {
	ext := Ext(filename)

	var loader documentloaders.Loader
	format := strings.TrimPrefix(ext, ".")
	switch ext {
	case ".pdf":
		loader = documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	case ".txt":
		loader = documentloaders.NewText(bytes.NewReader(data))
	case ".md":
		loader = documentloaders.NewText(strings.NewReader(markdownText(data)))
	default:
		log.Info("unsupported file type, falling back to plain text", "filename", filename, "ext", ext)
		loader = documentloaders.NewText(bytes.NewReader(data))
		format = "text"
	}

	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}

	out := make([]schema.Document, 0, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.PageContent) == "" {
			continue
		}
		meta := knowledgebase.CloneMetadata(doc.Metadata)
		meta[knowledgebase.MetaSource] = filename
		meta[knowledgebase.MetaFilename] = filepath.Base(filename)
		meta[knowledgebase.MetaFormat] = format
		out = append(out, schema.Document{PageContent: doc.PageContent, Metadata: meta})
	}

	return out, nil
}
