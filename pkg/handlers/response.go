package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// errorMapping ties an error kind to the response it produces.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: the first match wins.
var errorMappings = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "Resource not found"},
	{apperrors.ErrReadOnly, http.StatusConflict, "read_only", "Session is read-only"},
	{apperrors.ErrBusy, http.StatusConflict, "busy", "A request of this kind is already in progress"},
	{apperrors.ErrNotFinalizeStep, http.StatusConflict, "not_finalize_step", "Finalize is only available on the last step"},
	{apperrors.ErrInvalidTransition, http.StatusConflict, "invalid_transition", "Record status does not allow this action"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "Record was already submitted"},
	{apperrors.ErrStore, http.StatusServiceUnavailable, "store_unavailable", "Storage is unavailable"},
	{apperrors.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized", "Admin session required"},
	{apperrors.ErrAuth, http.StatusUnauthorized, "unauthorized", "Invalid credentials"},
	{apperrors.ErrNotConfigured, http.StatusServiceUnavailable, "narration_not_configured", "Narration service is not configured"},
	{apperrors.ErrService, http.StatusBadGateway, "narration_failed", "Narration service failed"},
	{apperrors.ErrRender, http.StatusBadGateway, "render_failed", "Diagram renderer failed"},
}

// WriteServiceError maps a service error to its HTTP response. Unknown errors
// are logged and reported as 500.
func WriteServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				logger.Warn("Collaborator failure", zap.String("code", m.code), zap.Error(err))
			}
			if werr := ErrorResponse(w, m.status, m.code, m.message); werr != nil {
				logger.Error("Failed to write error response", zap.Error(werr))
			}
			return
		}
	}

	logger.Error("Unhandled service error", zap.Error(err))
	if werr := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error"); werr != nil {
		logger.Error("Failed to write error response", zap.Error(werr))
	}
}
