package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"usina-backend/internal/models"
	"usina-backend/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal stubs for wiring a WebhookService behind the handler.

type stubServers struct{ server *models.Server }

func (s *stubServers) GetByExternalID(ctx context.Context, externalID string) (*models.Server, error) {
	if s.server != nil && s.server.ExternalID == externalID {
		return s.server, nil
	}
	return nil, pgx.ErrNoRows
}

type stubAds struct{ ad *models.ServerAd }

func (s *stubAds) ResolveForDate(ctx context.Context, serverID int, adID string, date time.Time) (*models.ServerAd, error) {
	if s.ad != nil && s.ad.ServerID == serverID && s.ad.AdID == adID {
		return s.ad, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubAds) IncrementCounters(ctx context.Context, id, leadsDelta, loadsDelta int, spentDelta float64) (*models.ServerAd, error) {
	s.ad.Leads += leadsDelta
	s.ad.Loads += loadsDelta
	return s.ad, nil
}

type stubEvents struct{}

func (stubEvents) MarkSeen(ctx context.Context, eventID, eventType string) (bool, error) {
	return true, nil
}

func (stubEvents) Forget(ctx context.Context, eventID string) error { return nil }

type stubFranchises struct{}

func (stubFranchises) Get(ctx context.Context, id int) (*models.Franchise, error) {
	return nil, pgx.ErrNoRows
}

type stubPhones struct{}

func (stubPhones) FindByNumber(ctx context.Context, franchiseID int, e164 string) (*models.FranchisePhone, error) {
	return nil, pgx.ErrNoRows
}

func (stubPhones) ListActive(ctx context.Context, franchiseID int) ([]*models.FranchisePhone, error) {
	return nil, nil
}

type stubAssigner struct{}

func (stubAssigner) AssignAuto(ctx context.Context, kind string, count int, serverID *int) (*models.AssignmentResult, error) {
	return &models.AssignmentResult{FranchiseID: 10, PhoneID: 1, PhoneNumber: "+5511999990001", NewCount: count}, nil
}

func (stubAssigner) AssignToFranchise(ctx context.Context, kind string, count, franchiseID int, serverID *int) (*models.AssignmentResult, error) {
	return &models.AssignmentResult{FranchiseID: franchiseID, PhoneID: 1, NewCount: count}, nil
}

func (stubAssigner) AssignToPhone(ctx context.Context, kind string, count, franchiseID, phoneID int, serverID *int) (*models.AssignmentResult, error) {
	return &models.AssignmentResult{FranchiseID: franchiseID, PhoneID: phoneID, NewCount: count}, nil
}

type stubSelector struct{}

func (stubSelector) SelectTarget(ctx context.Context) (int, error) { return 10, nil }

type stubLeads struct{ created []*models.Lead }

func (s *stubLeads) Create(ctx context.Context, lead *models.Lead) error {
	lead.ID = len(s.created) + 1
	s.created = append(s.created, lead)
	return nil
}

func (s *stubLeads) Get(ctx context.Context, id int) (*models.Lead, error) { return nil, pgx.ErrNoRows }

func (s *stubLeads) ListByDate(ctx context.Context, date time.Time, franchiseID *int) ([]*models.Lead, error) {
	return s.created, nil
}

func (s *stubLeads) UpdateStatus(ctx context.Context, id int, status string) error { return nil }

func (s *stubLeads) SetAssignment(ctx context.Context, id, franchiseID, phoneID int) error {
	return nil
}

type stubConversions struct{}

func (stubConversions) Create(ctx context.Context, conv *models.Conversion) error { return nil }

func (stubConversions) ExistsForLead(ctx context.Context, leadID int) (bool, error) {
	return false, nil
}

func (stubConversions) ListByDate(ctx context.Context, date time.Time) ([]*models.Conversion, error) {
	return nil, nil
}

func newWebhookHandler() (*WebhookHandler, *stubLeads) {
	leads := &stubLeads{}
	svc := services.NewWebhookService(
		&stubServers{server: &models.Server{ID: 1, Name: "Main", ExternalID: "srv-abc", Status: "active"}},
		&stubAds{ad: &models.ServerAd{ID: 100, ServerID: 1, AdID: "🔥", Status: "active"}},
		stubEvents{},
		stubFranchises{},
		stubPhones{},
		stubAssigner{},
		stubSelector{},
		leads,
		stubConversions{},
		"BR",
	)
	return NewWebhookHandler(svc), leads
}

func postWebhook(t *testing.T, h *WebhookHandler, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/leads", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)
	return rec
}

func decodeWebhookResponse(t *testing.T, rec *httptest.ResponseRecorder) models.WebhookResponse {
	t.Helper()
	var resp models.WebhookResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWebhookEndpointRegistersLead(t *testing.T) {
	h, leads := newWebhookHandler()

	rec := postWebhook(t, h, models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc", AdID: "🔥",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeWebhookResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Len(t, leads.created, 1)
}

func TestWebhookEndpointMissingAdID(t *testing.T) {
	h, _ := newWebhookHandler()

	rec := postWebhook(t, h, models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeWebhookResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "ad_id")
}

func TestWebhookEndpointUnknownServer(t *testing.T) {
	h, _ := newWebhookHandler()

	rec := postWebhook(t, h, models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "nope", AdID: "🔥",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeWebhookResponse(t, rec)
	assert.False(t, resp.Success)
}

func TestWebhookEndpointMalformedBody(t *testing.T) {
	h, _ := newWebhookHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/leads", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeWebhookResponse(t, rec)
	assert.False(t, resp.Success)
}
