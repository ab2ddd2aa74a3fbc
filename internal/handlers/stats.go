package handlers

import (
	"net/http"

	"docqa-ai/internal/service"
)

// StatsHandler handles HTTP requests for index statistics.
type StatsHandler struct {
	qaService *service.QAService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(qaService *service.QAService) *StatsHandler {
	return &StatsHandler{qaService: qaService}
}

// ServeHTTP handles stats requests.
//
// swagger:route GET /api/v1/stats indexStats
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.qaService.Stats(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to collect stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
