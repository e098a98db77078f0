package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/shortscore/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps pipeline error kinds to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrPrecondition):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrDivisionHazard):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrParse), errors.Is(err, contracts.ErrRetrieval):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
