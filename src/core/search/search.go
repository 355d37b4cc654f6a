package search

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"docsearch/src/log"
)

const (
	DefaultTopK         = 4
	DefaultGapThreshold = 0.5

	EnrichmentStatusAuto = "Knowledge base was automatically enriched from Wikipedia to answer this query."

	degradedAnswer     = "An error occurred while processing your request."
	degradedSuggestion = "The system may be experiencing an issue. Please try again later."
)

// Result is the structured answer returned for a query.
type Result struct {
	SearchID             string  `json:"search_id,omitempty"`
	Answer               string  `json:"answer"`
	Confidence           float64 `json:"confidence"`
	MissingInfo          string  `json:"missing_info"`
	EnrichmentSuggestion string  `json:"enrichment_suggestion"`
	EnrichmentStatus     string  `json:"enrichment_status,omitempty"`
}

// Degraded converts err into a well-formed result.
func Degraded(err error) Result {
	return Result{
		Answer:               degradedAnswer,
		Confidence:           0,
		MissingInfo:          err.Error(),
		EnrichmentSuggestion: degradedSuggestion,
	}
}

// GapPolicy decides whether an answer reveals a hole in the knowledge base.
type GapPolicy struct {
	Threshold float64
}

// DefaultGapPolicy returns the policy used when nothing is configured.
func DefaultGapPolicy() GapPolicy {
	return GapPolicy{Threshold: DefaultGapThreshold}
}

// IsGap reports whether r is both unconfident and names what is missing.
func (p GapPolicy) IsGap(r Result) bool {
	return r.Confidence < p.Threshold && r.MissingInfo != ""
}

// Enricher pulls outside content into the store. It reports whether anything
// was added.
type Enricher interface {
	Enrich(ctx context.Context, query string) bool
}

type Option func(*Service)

func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

func WithGapPolicy(p GapPolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithEnricher enables auto-enrichment. A nil enricher disables it.
func WithEnricher(e Enricher) Option {
	return func(s *Service) {
		s.enricher = e
	}
}

// Service answers questions from the contents of a vector store.
type Service struct {
	store    vectorstores.VectorStore
	llm      llms.Model
	enricher Enricher
	policy   GapPolicy
	prompt   prompts.PromptTemplate
	topK     int
}

func NewService(store vectorstores.VectorStore, llm llms.Model, opts ...Option) *Service {
	s := &Service{
		store:  store,
		llm:    llm,
		policy: DefaultGapPolicy(),
		prompt: newAnswerPrompt(),
		topK:   DefaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search never fails: any error along the way is folded into a degraded
// result. When the first answer exposes a knowledge gap and enrichment adds
// content, the query is answered a second time and that answer is returned.
func (s *Service) Search(ctx context.Context, query string) Result {
	result, err := s.answer(ctx, query)
	if err != nil {
		log.Error(err, "search failed", "query", query)
		return Degraded(err)
	}

	if s.enricher == nil || !s.policy.IsGap(result) {
		return result
	}

	log.Info("knowledge gap detected, attempting enrichment", "query", query, "confidence", result.Confidence)
	if !s.enricher.Enrich(ctx, query) {
		return result
	}

	enriched, err := s.answer(ctx, query)
	if err != nil {
		log.Error(err, "search after enrichment failed", "query", query)
		return Degraded(err)
	}
	enriched.EnrichmentStatus = EnrichmentStatusAuto
	return enriched
}

func (s *Service) answer(ctx context.Context, query string) (Result, error) {
	docs, err := s.store.SimilaritySearch(ctx, query, s.topK)
	if err != nil {
		return Result{}, fmt.Errorf("failed to retrieve documents: %w", err)
	}
	log.Debug("retrieved documents", "query", query, "count", len(docs))

	prompt, err := s.renderPrompt(docs, query)
	if err != nil {
		return Result{}, err
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	return parseAnswer(completion)
}

func (s *Service) renderPrompt(docs []schema.Document, query string) (string, error) {
	prompt, err := s.prompt.Format(map[string]any{
		"context":  joinContext(docs),
		"question": query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return prompt, nil
}
