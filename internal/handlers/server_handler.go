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

// ServerHandler handles ad-server registration
type ServerHandler struct {
	servers *repositories.ServerRepository
}

func NewServerHandler(servers *repositories.ServerRepository) *ServerHandler {
	return &ServerHandler{servers: servers}
}

// Create handles POST /api/servers
func (h *ServerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.ExternalID == "" {
		http.Error(w, "Name and external_id are required", http.StatusBadRequest)
		return
	}

	server := &models.Server{Name: req.Name, ExternalID: req.ExternalID, Status: "active"}
	if err := h.servers.Create(r.Context(), server); err != nil {
		http.Error(w, "Failed to create server", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, server)
}

// List handles GET /api/servers
func (h *ServerHandler) List(w http.ResponseWriter, r *http.Request) {
	servers, err := h.servers.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to list servers", http.StatusInternalServerError)
		return
	}
	if servers == nil {
		servers = []*models.Server{}
	}
	writeJSON(w, http.StatusOK, servers)
}

// Get handles GET /api/servers/{id}
func (h *ServerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid server ID", http.StatusBadRequest)
		return
	}

	server, err := h.servers.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "Server not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load server", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, server)
}

// Update handles PUT /api/servers/{id}
func (h *ServerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid server ID", http.StatusBadRequest)
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

	if _, err := h.servers.Get(r.Context(), id); err != nil {
		http.Error(w, "Server not found", http.StatusNotFound)
		return
	}
	if err := h.servers.Update(r.Context(), id, req.Name, req.Status); err != nil {
		http.Error(w, "Failed to update server", http.StatusInternalServerError)
		return
	}

	server, err := h.servers.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load server", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, server)
}
