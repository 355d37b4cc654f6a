package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	sendJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// CheckComponents godoc
// @Summary Check the status of every backing service
// @Tags system
// @Produce json
// @Success 200 {object} system.HealthStatus
// @Failure 503 {object} system.HealthStatus
// @Router /health/components [get]
func (h *Handler) CheckComponents(c *gin.Context) {
	status := h.health.CheckHealth(c.Request.Context())
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	sendJSON(c, code, status)
}

// GetJob godoc
// @Summary Get the status of an index job
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} job.Job
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{id} [get]
func (h *Handler) GetJob(c *gin.Context) {
	if h.jobs == nil {
		sendJSON(c, http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: "async indexing is disabled"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	j, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	sendJSON(c, http.StatusOK, j)
}
