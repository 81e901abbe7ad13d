package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/daria-hk/contacts-api/internal/apperrors"
)

type Payload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSONResponse sends a JSON response with given status, success flag, and payload
func JSONResponse(w http.ResponseWriter, status int, payload Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// ErrorResponse maps a service error onto its HTTP status and writes a short
// human-readable message. Internal detail never leaves the server.
func ErrorResponse(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, apperrors.ErrBadRequest):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperrors.ErrRateLimited):
		status = http.StatusTooManyRequests
		message = "Request limit exceeded. Try again later."
	case errors.Is(err, apperrors.ErrUpstream):
		status = http.StatusBadGateway
		message = "Upstream service failed"
	}

	JSONResponse(w, status, Payload{
		Success: false,
		Message: message,
	})
}
