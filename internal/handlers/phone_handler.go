package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"usina-backend/internal/models"
	"usina-backend/internal/services"

	"github.com/gorilla/mux"
)

// PhoneHandler handles franchise phone line management
type PhoneHandler struct {
	phones *services.PhoneService
}

func NewPhoneHandler(phones *services.PhoneService) *PhoneHandler {
	return &PhoneHandler{phones: phones}
}

// Create handles POST /api/franchises/{id}/phones
func (h *PhoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	franchiseID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid franchise ID", http.StatusBadRequest)
		return
	}

	var req models.CreateFranchisePhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PhoneNumber == "" {
		http.Error(w, "Phone number is required", http.StatusBadRequest)
		return
	}

	phone, err := h.phones.Create(r.Context(), franchiseID, &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, phone)
}

// ListByFranchise handles GET /api/franchises/{id}/phones
func (h *PhoneHandler) ListByFranchise(w http.ResponseWriter, r *http.Request) {
	franchiseID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid franchise ID", http.StatusBadRequest)
		return
	}

	phones, err := h.phones.ListByFranchise(r.Context(), franchiseID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if phones == nil {
		phones = []*models.FranchisePhone{}
	}
	writeJSON(w, http.StatusOK, phones)
}

// Get handles GET /api/phones/{id}
func (h *PhoneHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid phone ID", http.StatusBadRequest)
		return
	}

	phone, err := h.phones.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, phone)
}

// Update handles PUT /api/phones/{id}
func (h *PhoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid phone ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateFranchisePhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	phone, err := h.phones.Update(r.Context(), id, &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, phone)
}

// ToggleActive handles PATCH /api/phones/{id}/toggle
func (h *PhoneHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid phone ID", http.StatusBadRequest)
		return
	}

	phone, err := h.phones.ToggleActive(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, phone)
}

// Reorder handles PATCH /api/phones/{id}/reorder
func (h *PhoneHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid phone ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.phones.Reorder(r.Context(), id, req.Direction); err != nil {
		serviceError(w, err)
		return
	}

	phone, err := h.phones.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, phone)
}
