package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"usina-backend/internal/models"
	"usina-backend/internal/services"

	"github.com/gorilla/mux"
)

// LeadHandler handles manual lead registration and the lead lifecycle
type LeadHandler struct {
	leads *services.LeadService
}

func NewLeadHandler(leads *services.LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// Create handles POST /api/leads
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.leads.Create(r.Context(), &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

// List handles GET /api/leads?date=YYYY-MM-DD&franchise_id=N
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var franchiseID *int
	if raw := r.URL.Query().Get("franchise_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid franchise_id", http.StatusBadRequest)
			return
		}
		franchiseID = &id
	}

	leads, err := h.leads.ListByDate(r.Context(), date, franchiseID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if leads == nil {
		leads = []*models.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

// Get handles GET /api/leads/{id}
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid lead ID", http.StatusBadRequest)
		return
	}

	lead, err := h.leads.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// UpdateStatus handles PATCH /api/leads/{id}/status
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid lead ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateLeadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.leads.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}
