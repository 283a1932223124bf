package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tayloree/bonuscli/internal/feed"
	"github.com/tayloree/bonuscli/internal/service"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}}, logger)
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, service.ErrEmptyUser):
		writeError(w, http.StatusBadRequest, "invalid_user", err.Error(), logger)
	case errors.Is(err, feed.ErrNoSource):
		writeError(w, http.StatusConflict, "no_source", "no feed source configured for auto-import", logger)
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error", logger)
	}
}
