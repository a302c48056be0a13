package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/DevishMittal/eljay-console/internal/model"
)

var tracer = otel.Tracer("github.com/DevishMittal/eljay-console/internal/handler")

// Health returns a health check response.
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps a domain error to its HTTP status and client message.
// Unexpected errors are not echoed to the client.
func statusFor(err error) (int, string) {
	if model.IsValidation(err) {
		return http.StatusBadRequest, err.Error()
	}
	if errors.Is(err, model.ErrTaskNotFound) {
		return http.StatusNotFound, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}
