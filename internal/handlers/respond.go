package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"usina-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// serviceError maps the service error taxonomy to HTTP statuses
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrPhoneMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrDuplicateGoal):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrNoDistributionTarget),
		errors.Is(err, services.ErrNoActivePhones):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
