package handler

import (
	"net/http"

	"delicioso/internal/service"

	"github.com/rs/zerolog"
)

// DashboardHandler serves the ledger summary.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("handler", "dashboard").Logger(),
	}
}

// Summary handles GET /api/dashboard requests. Without dateFrom and dateTo
// the whole ledger is summarized.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	summary, err := h.service.Summarize(r.Context(), rng)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
