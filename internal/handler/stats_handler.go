package handler

import (
	"github.com/gin-gonic/gin"

	"packslip/internal/domain"
	"packslip/internal/service"
)

// StatsHandler handles stats endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats handles GET /api/v1/stats
// @Summary Get document and order queue statistics
// @Description Aggregate counts of document parse states and order queue workflow states, optionally for one platform.
// @Tags stats
// @Produce json
// @Param platform query string false "Marketplace filter"
// @Success 200 {object} Response{data=domain.Stats} "Aggregate statistics"
// @Failure 422 {object} ErrorResponseBody "Unknown platform"
// @Router /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetStats(c.Request.Context(), domain.Platform(c.Query("platform")))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, stats)
}
