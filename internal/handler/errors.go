package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ecosnap/ecosnap/internal/httpx"
	"github.com/ecosnap/ecosnap/internal/service"
)

// writeError maps a service error to its status and client message.
// Anything unrecognised is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		httpx.JSONError(w, http.StatusBadRequest, validationErr.Msg)
	case errors.Is(err, httpx.ErrBodyTooLarge):
		httpx.JSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		httpx.JSONError(w, http.StatusBadRequest, "Email already in use")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.JSONError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrInvalidOrExpiredCode):
		httpx.JSONError(w, http.StatusBadRequest, "Invalid or expired code")
	case errors.Is(err, service.ErrAlreadyVerified):
		httpx.JSONError(w, http.StatusBadRequest, "Email is already verified")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.JSONError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrPromptNotFound):
		httpx.JSONError(w, http.StatusNotFound, "Prompt not found")
	case errors.Is(err, service.ErrUploadFailed):
		httpx.JSONError(w, http.StatusBadRequest, "Failed to upload image")
	case errors.Is(err, service.ErrClassificationFailed):
		httpx.JSONError(w, http.StatusInternalServerError, "Failed to classify image")
	case errors.Is(err, service.ErrPersistFailed):
		httpx.JSONError(w, http.StatusInternalServerError, "Failed to save classification")
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		httpx.JSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decode reads the JSON body and writes a 400 (or 413) on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := httpx.DecodeJSON(r, dst)
	if err == nil {
		return true
	}
	if errors.Is(err, httpx.ErrBodyTooLarge) {
		writeError(w, r, err)
		return false
	}
	httpx.JSONError(w, http.StatusBadRequest, err.Error())
	return false
}
