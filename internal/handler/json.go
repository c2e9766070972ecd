package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lozanotech/task-manager-api/internal/repository"
	"github.com/lozanotech/task-manager-api/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service/repository failures to the HTTP error
// taxonomy: client-correctable input problems are 400, missing or not-owned
// entities are 404, anything else is an opaque 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var invalid *service.InvalidInputError

	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Reason)
	case errors.Is(err, service.ErrInvalidField):
		writeError(w, http.StatusBadRequest, "Invalid updates!")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		writeError(w, http.StatusBadRequest, "email already exists")
	case errors.Is(err, repository.ErrTaskNotFound), errors.Is(err, repository.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
