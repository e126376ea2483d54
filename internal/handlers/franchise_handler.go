package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"usina-backend/internal/models"
	"usina-backend/internal/repositories"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
)

// FranchiseHandler handles franchise CRUD
type FranchiseHandler struct {
	franchises *repositories.FranchiseRepository
}

func NewFranchiseHandler(franchises *repositories.FranchiseRepository) *FranchiseHandler {
	return &FranchiseHandler{franchises: franchises}
}

// Create handles POST /api/franchises
func (h *FranchiseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	franchise := &models.Franchise{Name: req.Name, Status: "active"}
	if err := h.franchises.Create(r.Context(), franchise); err != nil {
		http.Error(w, "Failed to create franchise", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, franchise)
}

// List handles GET /api/franchises
func (h *FranchiseHandler) List(w http.ResponseWriter, r *http.Request) {
	franchises, err := h.franchises.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to list franchises", http.StatusInternalServerError)
		return
	}
	if franchises == nil {
		franchises = []*models.Franchise{}
	}
	writeJSON(w, http.StatusOK, franchises)
}

// Get handles GET /api/franchises/{id}
func (h *FranchiseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid franchise ID", http.StatusBadRequest)
		return
	}

	franchise, err := h.franchises.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "Franchise not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load franchise", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, franchise)
}

// Update handles PUT /api/franchises/{id}
func (h *FranchiseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid franchise ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if req.Status != "active" && req.Status != "inactive" {
		http.Error(w, "Status must be 'active' or 'inactive'", http.StatusBadRequest)
		return
	}

	if _, err := h.franchises.Get(r.Context(), id); err != nil {
		http.Error(w, "Franchise not found", http.StatusNotFound)
		return
	}
	if err := h.franchises.Update(r.Context(), id, req.Name, req.Status); err != nil {
		http.Error(w, "Failed to update franchise", http.StatusInternalServerError)
		return
	}

	franchise, err := h.franchises.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load franchise", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, franchise)
}

// ToggleStatus handles PATCH /api/franchises/{id}/toggle
func (h *FranchiseHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid franchise ID", http.StatusBadRequest)
		return
	}

	if _, err := h.franchises.Get(r.Context(), id); err != nil {
		http.Error(w, "Franchise not found", http.StatusNotFound)
		return
	}
	if err := h.franchises.ToggleStatus(r.Context(), id); err != nil {
		http.Error(w, "Failed to toggle franchise", http.StatusInternalServerError)
		return
	}

	franchise, err := h.franchises.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load franchise", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, franchise)
}
