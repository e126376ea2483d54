package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"usina-backend/internal/models"
	"usina-backend/internal/services"
	"usina-backend/internal/timeutil"
)

// DistributionHandler exposes the daily ledger and the manual assignment
// override
type DistributionHandler struct {
	distribution *services.DistributionService
}

func NewDistributionHandler(distribution *services.DistributionService) *DistributionHandler {
	return &DistributionHandler{distribution: distribution}
}

// dateParam parses ?date=YYYY-MM-DD, defaulting to today
func dateParam(r *http.Request) (time.Time, error) {
	value := r.URL.Query().Get("date")
	if value == "" {
		return timeutil.Today(), nil
	}
	return timeutil.ParseDate(value)
}

// List handles GET /api/distribution
func (h *DistributionHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	rows, err := h.distribution.ListByDate(r.Context(), date)
	if err != nil {
		serviceError(w, err)
		return
	}
	if rows == nil {
		rows = []*models.DailyDistribution{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// Progress handles GET /api/distribution/progress
func (h *DistributionHandler) Progress(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	progress, err := h.distribution.Progress(r.Context(), date)
	if err != nil {
		serviceError(w, err)
		return
	}
	if progress == nil {
		progress = []*models.FranchiseProgress{}
	}
	writeJSON(w, http.StatusOK, progress)
}

// Assign handles POST /api/distribution/assign (manual override)
func (h *DistributionHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req models.ManualAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.distribution.AssignManual(r.Context(), &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
