package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"delicioso/internal/middleware"
	"delicioso/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to tell the client.
		return
	}
}

// writeError maps err to a status code and writes a standard error body.
// Validation errors become 400, not-found 404 and everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status := http.StatusInternalServerError
	resp := model.ErrorResponse{
		Error:         model.ErrCodeInternalError,
		Message:       "internal server error",
		CorrelationID: middleware.RequestIDFromContext(r.Context()),
	}

	var de *model.DomainError
	if errors.As(err, &de) {
		resp.Error = de.Code
		resp.Message = de.Message
		switch de.Kind {
		case model.KindValidation:
			status = http.StatusBadRequest
		case model.KindNotFound:
			status = http.StatusNotFound
		case model.KindPersistence:
			status = http.StatusInternalServerError
		}
	}

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("code", resp.Error).
		Int("status", status).
		Str("request_id", resp.CorrelationID).
		Msg("handler error")

	writeJSON(w, status, resp)
}

// decodeJSON decodes the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewValidationError(model.ErrCodeInvalidJSON, "Request body must be valid JSON")
	}
	return nil
}

// pathID parses the {id} path value as a positive integer.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError(model.ErrCodeInvalidID, "id must be a positive integer")
	}
	return id, nil
}

// dateRange reads the optional dateFrom and dateTo query parameters.
func dateRange(r *http.Request) (model.DateRange, error) {
	q := r.URL.Query()
	return model.ParseDateRange(q.Get("dateFrom"), q.Get("dateTo"))
}
