package enrichment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/wikipedia"
	"github.com/tmc/langchaingo/vectorstores"
	"golang.org/x/time/rate"

	"docsearch/src/core/document"
	"docsearch/src/core/knowledgebase"
	"docsearch/src/log"
)

const (
	SourceWikipedia = "wikipedia"

	DefaultTopK        = 2
	DefaultLanguage    = "en"
	DefaultDocMaxChars = 20000
	DefaultUserAgent   = "docsearch/1.0 (knowledge base enrichment)"
)

var (
	ErrNotFound = errors.New("no external document found")
)

// Replies the wikipedia tool gives instead of an error when nothing matched.
var notFoundReplies = []string{
	"no wikipedia pages found",
	"no good wikipedia search results",
}

// WikipediaConfig configures the external lookup.
type WikipediaConfig struct {
	UserAgent   string
	TopK        int
	Language    string
	DocMaxChars int
}

// NewWikipedia builds the encyclopedia lookup tool.
func NewWikipedia(cfg WikipediaConfig) tools.Tool {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	tool := wikipedia.New(cfg.UserAgent)
	tool.TopK = DefaultTopK
	if cfg.TopK > 0 {
		tool.TopK = cfg.TopK
	}
	tool.LanguageCode = DefaultLanguage
	if cfg.Language != "" {
		tool.LanguageCode = cfg.Language
	}
	tool.DocMaxChars = DefaultDocMaxChars
	if cfg.DocMaxChars > 0 {
		tool.DocMaxChars = cfg.DocMaxChars
	}
	return tool
}

type Option func(*Fetcher)

// WithRateLimit caps external lookups at r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(f *Fetcher) {
		if r <= 0 {
			f.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// Fetcher looks a query up in an external source and appends what it finds
// to the vector store.
type Fetcher struct {
	source   tools.Tool
	store    vectorstores.VectorStore
	splitter textsplitter.TextSplitter
	limiter  *rate.Limiter
	logger   logr.Logger
}

func NewFetcher(source tools.Tool, store vectorstores.VectorStore, splitter textsplitter.TextSplitter, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:   source,
		store:    store,
		splitter: splitter,
		logger:   log.WithName("enrichment"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Enrich reports whether new content was added. Failures are logged and
// reported as false.
func (f *Fetcher) Enrich(ctx context.Context, query string) bool {
	added, err := f.fetch(ctx, query)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			f.logger.Info("no external content found", "query", query)
		} else {
			f.logger.Error(err, "enrichment failed", "query", query)
		}
		return false
	}

	f.logger.Info("knowledge base enriched", "query", query, "chunks", added)
	return true
}

func (f *Fetcher) fetch(ctx context.Context, query string) (int, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("rate limiter: %w", err)
		}
	}

	text, err := f.source.Call(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to query %s: %w", f.source.Name(), err)
	}
	if isNotFound(text) {
		return 0, ErrNotFound
	}

	doc := schema.Document{
		PageContent: text,
		Metadata: map[string]any{
			knowledgebase.MetaSource: SourceWikipedia,
			"query":                  query,
		},
	}
	chunks, err := document.Split(f.splitter, []schema.Document{doc})
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, ErrNotFound
	}

	if _, err := f.store.AddDocuments(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to store enrichment: %w", err)
	}
	return len(chunks), nil
}

func isNotFound(text string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return true
	}
	for _, reply := range notFoundReplies {
		if strings.HasPrefix(trimmed, reply) {
			return true
		}
	}
	return false
}
