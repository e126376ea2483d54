package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"usina-backend/internal/models"
	"usina-backend/internal/services"

	"github.com/gorilla/mux"
)

// GoalHandler handles the distribution goal registry
type GoalHandler struct {
	goals *services.GoalService
}

func NewGoalHandler(goals *services.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// Create handles POST /api/goals
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDistributionGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	goal, err := h.goals.Create(r.Context(), &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// List handles GET /api/goals; ?active=true narrows to the allocator's view
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	var goals []*models.DistributionGoal
	var err error
	if r.URL.Query().Get("active") == "true" {
		goals, err = h.goals.ListActive(r.Context())
	} else {
		goals, err = h.goals.List(r.Context())
	}
	if err != nil {
		serviceError(w, err)
		return
	}
	if goals == nil {
		goals = []*models.DistributionGoal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

// Get handles GET /api/goals/{id}
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}

	goal, err := h.goals.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// Update handles PUT /api/goals/{id}
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateDistributionGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	goal, err := h.goals.Update(r.Context(), id, &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// Delete handles DELETE /api/goals/{id}
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}

	if err := h.goals.Delete(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reorder handles PATCH /api/goals/{id}/reorder
func (h *GoalHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.goals.Reorder(r.Context(), id, req.Direction); err != nil {
		serviceError(w, err)
		return
	}

	goal, err := h.goals.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}
