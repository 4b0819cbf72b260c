// Package response writes the JSON envelope every endpoint uses:
// {"success":bool, "message":..., "data":..., "error":...}.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/vanijya/pkg/apperr"
)

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"error,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Created sends a 201 with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Success: true, Data: data})
}

// Message sends a 200 with a message and no data.
func Message(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, envelope{Success: true, Message: message})
}

// Error sends a failure envelope with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: false, Message: message})
}

// ValidationError sends a 422 with the field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// statusFor pins each error kind to one HTTP status. Conflict maps to 400
// because the duplicate-email contract predates this rewrite.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation, apperr.Conflict:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Auth:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// FromError maps a service error to its status and failure envelope.
func FromError(w http.ResponseWriter, err error) {
	Error(w, statusFor(apperr.KindOf(err)), apperr.MessageOf(err))
}
