package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type searchRequest struct {
	Query string `json:"query" binding:"required"`
}

// SearchDocuments godoc
// @Summary Answer a question from the indexed documents
// @Tags search
// @Accept json
// @Produce json
// @Param body body searchRequest true "Question"
// @Success 200 {object} search.Result
// @Failure 400 {object} ErrorResponse
// @Router /search/doc [post]
func (h *Handler) SearchDocuments(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	result := h.searcher.Search(c.Request.Context(), req.Query)
	result.SearchID = uuid.NewString()

	sendJSON(c, http.StatusOK, result)
}
