package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"usina-backend/internal/models"
	"usina-backend/internal/services"
	"usina-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

// ServerAdHandler handles per-ad daily counters
type ServerAdHandler struct {
	ads *services.ServerAdService
}

func NewServerAdHandler(ads *services.ServerAdService) *ServerAdHandler {
	return &ServerAdHandler{ads: ads}
}

// Create handles POST /api/servers/{id}/ads
func (h *ServerAdHandler) Create(w http.ResponseWriter, r *http.Request) {
	serverID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid server ID", http.StatusBadRequest)
		return
	}

	var req models.CreateServerAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date := timeutil.Today()
	if req.Date != "" {
		date, err = timeutil.ParseDate(req.Date)
		if err != nil {
			http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	ad := &models.ServerAd{AdID: req.AdID, Spent: req.Spent, Date: date}
	created, err := h.ads.Create(r.Context(), serverID, ad)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListByServer handles GET /api/servers/{id}/ads?date=YYYY-MM-DD
func (h *ServerAdHandler) ListByServer(w http.ResponseWriter, r *http.Request) {
	serverID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid server ID", http.StatusBadRequest)
		return
	}

	date, err := dateParam(r)
	if err != nil {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ads, err := h.ads.ListByServer(r.Context(), serverID, date)
	if err != nil {
		serviceError(w, err)
		return
	}
	if ads == nil {
		ads = []*models.ServerAd{}
	}
	writeJSON(w, http.StatusOK, ads)
}

// UpdateCounters handles PATCH /api/ads/{id}/counters
func (h *ServerAdHandler) UpdateCounters(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ad ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateServerAdCountersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ad, err := h.ads.UpdateCounters(r.Context(), id, &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}
