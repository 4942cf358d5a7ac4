package handler

import (
	"net/http"

	"delicioso/internal/model"
	"delicioso/internal/service"

	"github.com/rs/zerolog"
)

// StockHandler handles packaging stock requests.
type StockHandler struct {
	service service.StockService
	logger  zerolog.Logger
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(service service.StockService, logger zerolog.Logger) *StockHandler {
	return &StockHandler{
		service: service,
		logger:  logger.With().Str("handler", "stock").Logger(),
	}
}

// Restock handles POST /api/stock/restock requests.
func (h *StockHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req model.RestockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	level, err := h.service.Restock(r.Context(), req.Name, req.Quantity)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, level)
}

// Adjust handles POST /api/stock/adjust requests.
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req model.AdjustStockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	level, err := h.service.Adjust(r.Context(), req.EntryID, req.Quantity)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, level)
}

// List handles GET /api/stock requests.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
