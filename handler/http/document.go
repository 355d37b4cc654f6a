package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docsearch/src/core/document"
	"docsearch/src/fsutil"
	"docsearch/src/infrastructure/job"
	"docsearch/src/log"
)

// multipart framing allowance on top of the file itself
const multipartOverhead = 1 << 20

type uploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	JobID    int    `json:"job_id,omitempty"`
}

// UploadDocument godoc
// @Summary Upload a document and add it to the search index
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF, text or markdown file"
// @Success 200 {object} uploadResponse
// @Success 202 {object} uploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /upload/document [post]
func (h *Handler) UploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(c, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, h.maxFileSize))
			return
		}
		sendError(c, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrMissingFile, err))
		return
	}

	filename := fsutil.SafeName(header.Filename)
	if !document.IsAllowed(filename) {
		sendError(c, http.StatusBadRequest, document.UnsupportedError(filename))
		return
	}
	if header.Size > h.maxFileSize {
		sendError(c, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, h.maxFileSize))
		return
	}

	f, err := header.Open()
	if err != nil {
		sendError(c, http.StatusInternalServerError, fmt.Errorf("error while processing file: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
	if err != nil {
		sendError(c, http.StatusInternalServerError, fmt.Errorf("error while processing file: %w", err))
		return
	}
	if int64(len(data)) > h.maxFileSize {
		sendError(c, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, h.maxFileSize))
		return
	}

	ctx := c.Request.Context()
	key := h.keys.Key(filename)
	if err := h.archive.Put(ctx, key, data); err != nil {
		sendError(c, http.StatusInternalServerError, fmt.Errorf("error while processing file: %w", err))
		return
	}

	if h.jobs != nil {
		j, err := h.jobs.EnqueueIndex(ctx, job.IndexPayload{Filename: filename, ArchiveKey: key})
		if err != nil {
			sendError(c, http.StatusInternalServerError, fmt.Errorf("error while processing file: %w", err))
			return
		}
		sendJSON(c, http.StatusAccepted, uploadResponse{
			Message:  "File uploaded and queued for indexing",
			Filename: filename,
			JobID:    j.ID,
		})
		return
	}

	if _, err := h.indexer.IndexBytes(ctx, filename, data); err != nil {
		log.Error(err, "indexing upload failed", "filename", filename, "archive_key", key)
		sendError(c, http.StatusInternalServerError, fmt.Errorf("error while processing file: %w", err))
		return
	}

	sendJSON(c, http.StatusOK, uploadResponse{
		Message:  "File uploaded and indexed successfully",
		Filename: filename,
	})
}
