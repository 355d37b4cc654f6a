package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docsearch/src/core/feedback"
)

type feedbackRequest struct {
	SearchID string `json:"search_id" binding:"required"`
	Query    string `json:"query" binding:"required"`
	Answer   string `json:"answer"`
	Rating   *int   `json:"rating" binding:"required"`
	Comment  string `json:"comment"`
}

// SubmitFeedback godoc
// @Summary Rate a search result
// @Tags feedback
// @Accept json
// @Produce json
// @Param body body feedbackRequest true "Feedback"
// @Success 201 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /feedback [post]
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	record := feedback.Record{
		SearchID: req.SearchID,
		Rating:   *req.Rating,
		Query:    req.Query,
		Answer:   req.Answer,
		Comment:  req.Comment,
	}
	if err := record.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	if err := h.feedback.Log(c.Request.Context(), record); err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusCreated, gin.H{
		"message":   "Feedback recorded",
		"search_id": req.SearchID,
	})
}
