package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docsearch/src/core/document"
	"docsearch/src/core/feedback"
	"docsearch/src/core/indexing"
	"docsearch/src/core/search"
	"docsearch/src/core/system"
	"docsearch/src/fsutil"
	"docsearch/src/infrastructure/job"
)

const DefaultMaxFileSize = 10 << 20

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrMissingFile  = errors.New("no file in request")
)

type Indexer interface {
	IndexBytes(ctx context.Context, filename string, data []byte) (indexing.Report, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) search.Result
}

type JobQueue interface {
	EnqueueIndex(ctx context.Context, payload job.IndexPayload) (*job.Job, error)
	Get(ctx context.Context, id int) (*job.Job, error)
}

type HealthChecker interface {
	CheckHealth(ctx context.Context) *system.HealthStatus
}

type Option func(*Handler)

// WithJobQueue makes uploads asynchronous: files are archived and an index
// job is queued instead of indexing inline.
func WithJobQueue(q JobQueue) Option {
	return func(h *Handler) {
		h.jobs = q
	}
}

func WithMaxFileSize(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxFileSize = n
		}
	}
}

type Handler struct {
	indexer     Indexer
	searcher    Searcher
	feedback    feedback.Logger
	archive     fsutil.Archive
	keys        *fsutil.KeyGenerator
	health      HealthChecker
	jobs        JobQueue
	maxFileSize int64
}

func NewHandler(
	indexer Indexer,
	searcher Searcher,
	feedbackLog feedback.Logger,
	archive fsutil.Archive,
	keys *fsutil.KeyGenerator,
	health HealthChecker,
	opts ...Option,
) *Handler {
	h := &Handler{
		indexer:     indexer,
		searcher:    searcher,
		feedback:    feedbackLog,
		archive:     archive,
		keys:        keys,
		health:      health,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/upload/document", h.UploadDocument)
	r.POST("/search/doc", h.SearchDocuments)
	r.POST("/feedback", h.SubmitFeedback)

	r.GET("/health", h.Health)
	r.GET("/health/components", h.CheckComponents)

	r.GET("/jobs/:id", h.GetJob)
}

// Common error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendError(c *gin.Context, status int, err error) {
	var code string
	switch {
	case errors.Is(err, document.ErrUnsupportedFileType):
		code = "UNSUPPORTED_FILE_TYPE"
		status = http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		code = "FILE_TOO_LARGE"
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, feedback.ErrInvalidRating):
		code = "INVALID_RATING"
		status = http.StatusBadRequest
	case errors.Is(err, job.ErrJobNotFound):
		code = "NOT_FOUND"
		status = http.StatusNotFound
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		code = "BAD_REQUEST"
	default:
		code = "INTERNAL_ERROR"
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
