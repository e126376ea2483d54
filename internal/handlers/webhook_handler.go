package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"usina-backend/internal/models"
	"usina-backend/internal/services"
)

// WebhookHandler receives capture-bot events. The endpoint is unauthenticated
// and always answers with a structured JSON body so the bot can log outcomes.
type WebhookHandler struct {
	webhooks *services.WebhookService
}

func NewWebhookHandler(webhooks *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// Receive handles POST /api/webhook/leads
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var payload models.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, models.WebhookResponse{
			Success: false,
			Message: "invalid payload",
			Error:   "request body is not valid JSON",
		})
		return
	}

	result, err := h.webhooks.Process(r.Context(), &payload)
	if err != nil {
		status := http.StatusInternalServerError
		message := "processing failed"
		switch {
		case errors.Is(err, services.ErrValidation):
			status = http.StatusBadRequest
			message = "invalid payload"
		case errors.Is(err, services.ErrNotFound):
			status = http.StatusNotFound
			message = "unknown reference"
		}
		writeJSON(w, status, models.WebhookResponse{
			Success: false,
			Message: message,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, models.WebhookResponse{
		Success: true,
		Message: result.Message,
		Details: result.Details,
	})
}
