package handler

import (
	"net/http"

	"delicioso/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler handles administrative requests.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// Reset handles POST /api/admin/reset requests.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetAll(r.Context()); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	h.logger.Warn().Str("remote_addr", r.RemoteAddr).Msg("ledgers reset via API")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
