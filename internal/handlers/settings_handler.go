package handlers

import (
	"encoding/json"
	"net/http"

	"usina-backend/internal/middleware"
	"usina-backend/internal/models"
	"usina-backend/internal/services"
)

// SettingsHandler manages the active-franchise distribution override
type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get handles GET /api/distribution/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// SetActiveFranchise handles PUT /api/distribution/settings/active-franchise
func (h *SettingsHandler) SetActiveFranchise(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.SetActiveFranchiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	settings, err := h.settings.SetActiveFranchise(r.Context(), &req, userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
