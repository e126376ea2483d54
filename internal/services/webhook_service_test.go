package services

import (
	"context"
	"testing"
	"time"

	"usina-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookFixture() (*WebhookService, *fakeAssigner, *fakeLeadStore, *fakeConversionStore, *fakeAdStore, *fakeEventDeduper) {
	assigner := &fakeAssigner{}
	leads := newFakeLeadStore()
	conversions := &fakeConversionStore{}
	events := &fakeEventDeduper{}
	ads := &fakeAdStore{
		ads: map[string]*models.ServerAd{
			adKey(1, "🔥"): {ID: 100, ServerID: 1, AdID: "🔥", Status: "active"},
		},
		known: map[string]string{
			adKey(1, "🎰"): "active", // registered on an earlier day, no row today
		},
	}
	phone7 := &models.FranchisePhone{ID: 7, FranchiseID: 10, PhoneNumber: "+5511999990001", IsActive: true}
	phone8 := &models.FranchisePhone{ID: 8, FranchiseID: 10, PhoneNumber: "+5511999990002", IsActive: true}
	svc := NewWebhookService(
		&fakeServerResolver{servers: map[string]*models.Server{
			"srv-abc": {ID: 1, Name: "Main", ExternalID: "srv-abc", Status: "active"},
		}},
		ads,
		events,
		&fakeFranchiseReader{franchises: map[int]*models.Franchise{
			10: {ID: 10, Name: "North", Status: "active"},
			30: {ID: 30, Name: "Closed", Status: "inactive"},
		}},
		&fakePhoneMatcher{
			byNumber: map[string]*models.FranchisePhone{
				"10/+5511999990001": phone7,
			},
			active: map[int][]*models.FranchisePhone{
				10: {phone7, phone8},
			},
		},
		assigner,
		&fakeSelector{franchiseID: 10},
		leads,
		conversions,
		"BR",
	)
	return svc, assigner, leads, conversions, ads, events
}

func TestWebhookValidatesPayload(t *testing.T) {
	svc, _, _, _, _, _ := newWebhookFixture()
	ctx := context.Background()

	cases := []models.WebhookPayload{
		{Type: "unknown", ServerID: "srv-abc", AdID: "🔥"},
		{Type: models.WebhookEventNewLead, AdID: "🔥"},
		{Type: models.WebhookEventNewLead, ServerID: "srv-abc"},
	}
	for _, payload := range cases {
		_, err := svc.Process(ctx, &payload)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestWebhookUnknownServerAndAd(t *testing.T) {
	svc, _, _, _, _, _ := newWebhookFixture()
	ctx := context.Background()

	_, err := svc.Process(ctx, &models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "nope", AdID: "🔥",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Process(ctx, &models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc", AdID: "❄️",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWebhookNewLeadAssignsAndRecords(t *testing.T) {
	svc, assigner, leads, _, ads, _ := newWebhookFixture()

	result, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc", AdID: "🔥",
	})
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, 10, result.Details["franchise_id"])

	// The ad counter moved and the lead landed assigned
	ad, _ := ads.GetByAd(context.Background(), 1, "🔥", time.Now())
	assert.Equal(t, 1, ad.Leads)

	lead, err := leads.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, lead.FranchiseID)
	assert.Equal(t, 10, *lead.FranchiseID)
	assert.Equal(t, models.LeadStatusPending, lead.Status)
	assert.Equal(t, "auto", assigner.lastCall().method)
}

func TestWebhookNewLeadDegradesWithoutCapacity(t *testing.T) {
	svc, assigner, leads, _, _, _ := newWebhookFixture()
	assigner.err = ErrNoDistributionTarget

	result, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc", AdID: "🔥",
	})
	require.NoError(t, err)
	assert.Contains(t, result.Details, "assignment")

	// The event is still recorded, just unassigned
	lead, err := leads.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, lead.FranchiseID)
}

func TestWebhookNewLeadHonorsAgency(t *testing.T) {
	svc, assigner, _, _, _, _ := newWebhookFixture()
	agency := 10

	_, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc", AdID: "🔥", AgencyID: &agency,
	})
	require.NoError(t, err)
	call := assigner.lastCall()
	assert.Equal(t, "franchise", call.method)
	assert.Equal(t, 10, call.franchiseID)
}

func TestWebhookUnknownAgencyRecordsUnassigned(t *testing.T) {
	svc, assigner, leads, _, _, _ := newWebhookFixture()
	agency := 404

	result, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc", AdID: "🔥", AgencyID: &agency,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Details["agency"], "unknown agency")
	assert.Contains(t, result.Details["assignment"], "agency unresolved")

	// The bot named a franchise we cannot honor: record the lead, never
	// reroute it to another franchise.
	assert.Empty(t, assigner.calls)
	lead, err := leads.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, lead.FranchiseID)
}

func TestWebhookInactiveAgencyRecordsUnassigned(t *testing.T) {
	svc, assigner, leads, _, _, _ := newWebhookFixture()
	agency := 30

	result, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc", AdID: "🔥", AgencyID: &agency,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Details["agency"], "inactive")
	assert.Empty(t, assigner.calls)

	lead, err := leads.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, lead.FranchiseID)
}

func TestWebhookUnknownAgencyLoadSkipsDistribution(t *testing.T) {
	svc, assigner, _, conversions, ads, _ := newWebhookFixture()
	agency := 404

	result, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type: models.WebhookEventNewLoad, ServerID: "srv-abc", AdID: "🔥", AgencyID: &agency,
	})
	require.NoError(t, err)
	assert.Equal(t, "load recorded without assignment", result.Message)
	assert.Empty(t, assigner.calls)
	assert.Len(t, conversions.conversions, 0)

	// The load itself still counts against the ad
	ad, _ := ads.GetByAd(context.Background(), 1, "🔥", time.Now())
	assert.Equal(t, 1, ad.Loads)
}

func TestWebhookNewLoadExactPhoneMatch(t *testing.T) {
	svc, assigner, _, conversions, ads, _ := newWebhookFixture()
	agency := 10

	result, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type:         models.WebhookEventNewLoad,
		ServerID:     "srv-abc",
		AdID:         "🔥",
		AgencyID:     &agency,
		CashierPhone: "+55 11 99999-0001",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PhoneMatchExact, result.Details["phone_match"])

	call := assigner.lastCall()
	assert.Equal(t, "phone", call.method)
	assert.Equal(t, 7, call.phoneID)
	assert.Equal(t, KindConversion, call.kind)

	assert.Len(t, conversions.conversions, 1)
	ad, _ := ads.GetByAd(context.Background(), 1, "🔥", time.Now())
	assert.Equal(t, 1, ad.Loads)
}

func TestWebhookNewLoadFallbackRotation(t *testing.T) {
	svc, assigner, _, conversions, _, _ := newWebhookFixture()
	agency := 10

	result, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type:         models.WebhookEventNewLoad,
		ServerID:     "srv-abc",
		AdID:         "🔥",
		AgencyID:     &agency,
		CashierPhone: "+55 11 98888-7777", // not a registered line
	})
	require.NoError(t, err)
	assert.Equal(t, models.PhoneMatchFallback, result.Details["phone_match"])
	assert.Equal(t, "franchise", assigner.lastCall().method)
	assert.Len(t, conversions.conversions, 1)
}

func TestWebhookNewLoadNoActivePhones(t *testing.T) {
	svc, assigner, _, conversions, _, _ := newWebhookFixture()
	assigner.err = ErrNoActivePhones
	agency := 10

	result, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type:     models.WebhookEventNewLoad,
		ServerID: "srv-abc",
		AdID:     "🔥",
		AgencyID: &agency,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PhoneMatchNone, result.Details["phone_match"])
	assert.Len(t, conversions.conversions, 0)
}

func TestWebhookDuplicateEventSkipsProcessing(t *testing.T) {
	svc, _, leads, _, ads, _ := newWebhookFixture()
	payload := &models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc", AdID: "🔥", EventID: "evt-1",
	}

	first, err := svc.Process(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := svc.Process(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	// Exactly one lead and one counter bump
	all, _ := leads.ListByDate(context.Background(), time.Now(), nil)
	assert.Len(t, all, 1)
	ad, _ := ads.GetByAd(context.Background(), 1, "🔥", time.Now())
	assert.Equal(t, 1, ad.Leads)
}

func TestWebhookLooseMatchFindsUnindexedLine(t *testing.T) {
	svc, assigner, _, _, _, _ := newWebhookFixture()
	agency := 10

	// Line 8 is active but has no exact-lookup entry; the loose comparison
	// against the franchise's active lines still resolves it.
	result, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type:         models.WebhookEventNewLoad,
		ServerID:     "srv-abc",
		AdID:         "🔥",
		AgencyID:     &agency,
		CashierPhone: "+55 11 99999-0002",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PhoneMatchExact, result.Details["phone_match"])

	call := assigner.lastCall()
	assert.Equal(t, "phone", call.method)
	assert.Equal(t, 8, call.phoneID)
}

func TestWebhookAdRollsOverToNewDay(t *testing.T) {
	svc, _, _, _, ads, _ := newWebhookFixture()

	// "🎰" was registered on an earlier day and has no row for today yet.
	// The event must open today's counter row instead of failing.
	result, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc", AdID: "🎰",
	})
	require.NoError(t, err)
	assert.Equal(t, "lead registered", result.Message)

	ad, err := ads.GetByAd(context.Background(), 1, "🎰", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "active", ad.Status)
	assert.Equal(t, 1, ad.Leads)
}

func TestWebhookFailedDeliveryAcceptsRetry(t *testing.T) {
	svc, assigner, leads, _, _, _ := newWebhookFixture()
	payload := &models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc", AdID: "🔥", EventID: "evt-retry",
	}

	// First delivery fails after the dedupe mark
	assigner.err = assert.AnError
	_, err := svc.Process(context.Background(), payload)
	require.Error(t, err)

	// The retry must not be rejected as a duplicate, or the event is lost
	assigner.err = nil
	result, err := svc.Process(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, result.Duplicate)

	lead, err := leads.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, lead.FranchiseID)
	assert.Equal(t, 10, *lead.FranchiseID)
}

func TestWebhookDedupeStoreFailureDoesNotBlock(t *testing.T) {
	svc, _, leads, _, _, events := newWebhookFixture()
	events.err = assert.AnError

	_, err := svc.Process(context.Background(), &models.WebhookPayload{
		Type: models.WebhookEventNewLead, ServerID: "srv-abc", AdID: "🔥", EventID: "evt-2",
	})
	require.NoError(t, err)
	all, _ := leads.ListByDate(context.Background(), time.Now(), nil)
	assert.Len(t, all, 1)
}
