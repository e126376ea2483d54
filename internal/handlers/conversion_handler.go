package handlers

import (
	"encoding/json"
	"net/http"

	"usina-backend/internal/models"
	"usina-backend/internal/services"
)

// ConversionHandler handles ad-hoc conversion registration
type ConversionHandler struct {
	conversions *services.ConversionService
}

func NewConversionHandler(conversions *services.ConversionService) *ConversionHandler {
	return &ConversionHandler{conversions: conversions}
}

// Create handles POST /api/conversions
func (h *ConversionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conversion, result, err := h.conversions.Create(r.Context(), &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"conversion": conversion,
		"assignment": result,
	})
}

// List handles GET /api/conversions?date=YYYY-MM-DD
func (h *ConversionHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	conversions, err := h.conversions.ListByDate(r.Context(), date)
	if err != nil {
		serviceError(w, err)
		return
	}
	if conversions == nil {
		conversions = []*models.Conversion{}
	}
	writeJSON(w, http.StatusOK, conversions)
}
