package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"usina-backend/internal/cache"
	"usina-backend/internal/metrics"
	"usina-backend/internal/models"
	"usina-backend/internal/phoneutil"
	"usina-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// ServerResolver maps the webhook's external server identifier to a row
type ServerResolver interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.Server, error)
}

// AdCounterStore resolves and bumps per-ad daily counters
type AdCounterStore interface {
	ResolveForDate(ctx context.Context, serverID int, adID string, date time.Time) (*models.ServerAd, error)
	IncrementCounters(ctx context.Context, id, leadsDelta, loadsDelta int, spentDelta float64) (*models.ServerAd, error)
}

// EventDeduper is the authoritative processed-event record. Forget releases
// an event whose processing failed so the sender's retry is accepted.
type EventDeduper interface {
	MarkSeen(ctx context.Context, eventID, eventType string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// FranchiseReader validates agency references on inbound events
type FranchiseReader interface {
	Get(ctx context.Context, id int) (*models.Franchise, error)
}

// PhoneMatcher resolves a cashier number against a franchise's lines
type PhoneMatcher interface {
	FindByNumber(ctx context.Context, franchiseID int, e164 string) (*models.FranchisePhone, error)
	ListActive(ctx context.Context, franchiseID int) ([]*models.FranchisePhone, error)
}

// TargetSelector previews the allocator's franchise choice
type TargetSelector interface {
	SelectTarget(ctx context.Context) (int, error)
}

// WebhookResult is what a processed event produced
type WebhookResult struct {
	Message   string
	Details   map[string]interface{}
	Duplicate bool
}

// WebhookService ingests bot events. Design rule: once the server and ad are
// known the event is always recorded, even when distribution cannot place it.
// Capacity problems degrade to an unassigned record, they never drop data.
type WebhookService struct {
	servers     ServerResolver
	ads         AdCounterStore
	events      EventDeduper
	franchises  FranchiseReader
	phones      PhoneMatcher
	assigner    Assigner
	selector    TargetSelector
	leads       LeadStore
	conversions ConversionStore
	region      string
}

func NewWebhookService(
	servers ServerResolver,
	ads AdCounterStore,
	events EventDeduper,
	franchises FranchiseReader,
	phones PhoneMatcher,
	assigner Assigner,
	selector TargetSelector,
	leads LeadStore,
	conversions ConversionStore,
	region string,
) *WebhookService {
	if region == "" {
		region = phoneutil.DefaultRegion
	}
	return &WebhookService{
		servers:     servers,
		ads:         ads,
		events:      events,
		franchises:  franchises,
		phones:      phones,
		assigner:    assigner,
		selector:    selector,
		leads:       leads,
		conversions: conversions,
		region:      region,
	}
}

// Process handles one inbound event end to end: validate, dedupe, resolve
// server and ad, bump the ad counters, then distribute. When processing
// fails after the dedupe mark the event id is released so a retry can land.
func (s *WebhookService) Process(ctx context.Context, payload *models.WebhookPayload) (*WebhookResult, error) {
	if err := validatePayload(payload); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(payload.Type, "invalid").Inc()
		return nil, err
	}

	if payload.EventID != "" {
		if dup, err := s.isDuplicate(ctx, payload); err != nil {
			return nil, err
		} else if dup {
			metrics.WebhookEventsTotal.WithLabelValues(payload.Type, "duplicate").Inc()
			return &WebhookResult{
				Message:   "event already processed",
				Duplicate: true,
				Details:   map[string]interface{}{"event_id": payload.EventID},
			}, nil
		}
	}

	result, err := s.dispatch(ctx, payload)
	if err != nil {
		if payload.EventID != "" {
			s.releaseEvent(ctx, payload.EventID)
		}
		return nil, err
	}

	metrics.WebhookEventsTotal.WithLabelValues(payload.Type, "processed").Inc()
	return result, nil
}

func (s *WebhookService) dispatch(ctx context.Context, payload *models.WebhookPayload) (*WebhookResult, error) {
	server, err := s.servers.GetByExternalID(ctx, payload.ServerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.WebhookEventsTotal.WithLabelValues(payload.Type, "unknown_server").Inc()
			return nil, fmt.Errorf("%w: server %q", ErrNotFound, payload.ServerID)
		}
		return nil, err
	}

	today := timeutil.Today()
	ad, err := s.ads.ResolveForDate(ctx, server.ID, payload.AdID, today)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.WebhookEventsTotal.WithLabelValues(payload.Type, "unknown_ad").Inc()
			return nil, fmt.Errorf("%w: ad %q on server %q", ErrNotFound, payload.AdID, payload.ServerID)
		}
		return nil, err
	}

	switch payload.Type {
	case models.WebhookEventNewLead:
		return s.processNewLead(ctx, payload, server, ad)
	default:
		return s.processNewLoad(ctx, payload, server, ad)
	}
}

func (s *WebhookService) processNewLead(ctx context.Context, payload *models.WebhookPayload, server *models.Server, ad *models.ServerAd) (*WebhookResult, error) {
	if _, err := s.ads.IncrementCounters(ctx, ad.ID, 1, 0, 0); err != nil {
		return nil, fmt.Errorf("bump ad lead counter: %w", err)
	}

	details := map[string]interface{}{
		"server": server.Name,
		"ad_id":  ad.AdID,
	}

	lead := &models.Lead{
		ServerID: &server.ID,
		Status:   models.LeadStatusPending,
		Date:     timeutil.Today(),
	}

	franchiseID, note := s.resolveAgency(ctx, payload.AgencyID)
	if note != "" {
		details["agency"] = note
	}

	var result *models.AssignmentResult
	var err error
	switch {
	case franchiseID != nil:
		result, err = s.assigner.AssignToFranchise(ctx, KindLead, 1, *franchiseID, &server.ID)
	case payload.AgencyID != nil:
		// The bot named an agency we cannot honor. Keep the lead but do
		// not reroute it to another franchise behind the bot's back.
		details["assignment"] = "skipped: agency unresolved"
	default:
		result, err = s.assigner.AssignAuto(ctx, KindLead, 1, &server.ID)
	}
	switch {
	case result != nil:
		lead.FranchiseID = &result.FranchiseID
		lead.FranchisePhoneID = &result.PhoneID
		details["franchise_id"] = result.FranchiseID
		details["phone_number"] = result.PhoneNumber
	case err == nil:
		// recorded unassigned by decision above
	case errors.Is(err, ErrNoDistributionTarget), errors.Is(err, ErrNoActivePhones):
		details["assignment"] = "skipped: " + err.Error()
	default:
		return nil, err
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("persist lead: %w", err)
	}
	details["lead_id"] = lead.ID

	return &WebhookResult{Message: "lead registered", Details: details}, nil
}

func (s *WebhookService) processNewLoad(ctx context.Context, payload *models.WebhookPayload, server *models.Server, ad *models.ServerAd) (*WebhookResult, error) {
	if _, err := s.ads.IncrementCounters(ctx, ad.ID, 0, 1, 0); err != nil {
		return nil, fmt.Errorf("bump ad load counter: %w", err)
	}

	details := map[string]interface{}{
		"server": server.Name,
		"ad_id":  ad.AdID,
	}

	franchiseID, note := s.resolveAgency(ctx, payload.AgencyID)
	if note != "" {
		details["agency"] = note
	}
	if franchiseID == nil {
		if payload.AgencyID != nil {
			// Same rule as leads: a named but unresolvable agency records
			// the event without distribution.
			details["assignment"] = "skipped: agency unresolved"
			return &WebhookResult{Message: "load recorded without assignment", Details: details}, nil
		}
		id, err := s.selector.SelectTarget(ctx)
		switch {
		case err == nil:
			franchiseID = &id
		case errors.Is(err, ErrNoDistributionTarget):
			details["assignment"] = "skipped: " + err.Error()
			return &WebhookResult{Message: "load recorded without assignment", Details: details}, nil
		default:
			return nil, err
		}
	}

	result, matchTag, err := s.assignLoad(ctx, *franchiseID, payload.CashierPhone, &server.ID)
	details["phone_match"] = matchTag
	if err != nil {
		if errors.Is(err, ErrNoActivePhones) {
			details["assignment"] = "skipped: " + err.Error()
			return &WebhookResult{Message: "load recorded without assignment", Details: details}, nil
		}
		return nil, err
	}

	conv := &models.Conversion{
		FranchiseID:      &result.FranchiseID,
		FranchisePhoneID: &result.PhoneID,
		Date:             timeutil.Today(),
		Description:      fmt.Sprintf("webhook load, server %s ad %s", server.Name, ad.AdID),
	}
	if err := s.conversions.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("persist conversion: %w", err)
	}

	details["franchise_id"] = result.FranchiseID
	details["phone_number"] = result.PhoneNumber
	details["new_count"] = result.NewCount

	return &WebhookResult{Message: "load registered", Details: details}, nil
}

// assignLoad picks the phone for a conversion: cashier-phone match first,
// rotation as fallback. The tag in the response tells the bot which path was
// taken.
func (s *WebhookService) assignLoad(ctx context.Context, franchiseID int, cashierPhone string, serverID *int) (*models.AssignmentResult, string, error) {
	if cashierPhone != "" {
		if phone := s.matchPhone(ctx, franchiseID, cashierPhone); phone != nil {
			result, err := s.assigner.AssignToPhone(ctx, KindConversion, 1, franchiseID, phone.ID, serverID)
			return result, models.PhoneMatchExact, err
		}
	}

	result, err := s.assigner.AssignToFranchise(ctx, KindConversion, 1, franchiseID, serverID)
	if errors.Is(err, ErrNoActivePhones) {
		return nil, models.PhoneMatchNone, err
	}
	return result, models.PhoneMatchFallback, err
}

// matchPhone resolves the cashier number to one of the franchise's lines:
// exact E.164 lookup first, then a loose comparison for numbers the parser
// rejects or legacy rows with loose formatting. A nil return means rotation
// decides.
func (s *WebhookService) matchPhone(ctx context.Context, franchiseID int, cashierPhone string) *models.FranchisePhone {
	if e164, err := phoneutil.Normalize(cashierPhone, s.region); err == nil {
		phone, err := s.phones.FindByNumber(ctx, franchiseID, e164)
		if err == nil {
			return phone
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("[Webhook] phone lookup failed for franchise %d: %v", franchiseID, err)
			return nil
		}
	}

	phones, err := s.phones.ListActive(ctx, franchiseID)
	if err != nil {
		log.Printf("[Webhook] phone list failed for franchise %d: %v", franchiseID, err)
		return nil
	}
	for _, p := range phones {
		if phoneutil.Same(p.PhoneNumber, cashierPhone, s.region) {
			return p
		}
	}
	return nil
}

// resolveAgency maps an optional agency reference to an active franchise.
// Unknown or inactive agencies degrade to nil with a note; the callers then
// record the event without distribution.
func (s *WebhookService) resolveAgency(ctx context.Context, agencyID *int) (*int, string) {
	if agencyID == nil {
		return nil, ""
	}
	franchise, err := s.franchises.Get(ctx, *agencyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Sprintf("unknown agency %d", *agencyID)
		}
		log.Printf("[Webhook] agency lookup failed for %d: %v", *agencyID, err)
		return nil, fmt.Sprintf("agency %d lookup failed", *agencyID)
	}
	if franchise.Status != "active" {
		return nil, fmt.Sprintf("agency %d inactive", *agencyID)
	}
	return &franchise.ID, ""
}

// isDuplicate consults the Redis fast path first, then the authoritative
// webhook_events table. A failing dedupe store is treated as not-seen; a
// duplicate slipping through is preferable to rejecting live events.
func (s *WebhookService) isDuplicate(ctx context.Context, payload *models.WebhookPayload) (bool, error) {
	if !cache.MarkWebhookEvent(ctx, payload.EventID) {
		return true, nil
	}
	inserted, err := s.events.MarkSeen(ctx, payload.EventID, payload.Type)
	if err != nil {
		log.Printf("[Webhook] dedupe store unavailable for event %s: %v", payload.EventID, err)
		return false, nil
	}
	return !inserted, nil
}

// releaseEvent undoes the dedupe mark after a failed delivery so the bot's
// retry is not rejected as a duplicate
func (s *WebhookService) releaseEvent(ctx context.Context, eventID string) {
	cache.UnmarkWebhookEvent(ctx, eventID)
	if err := s.events.Forget(ctx, eventID); err != nil {
		log.Printf("[Webhook] could not release event %s for retry: %v", eventID, err)
	}
}

func validatePayload(p *models.WebhookPayload) error {
	if p.Type != models.WebhookEventNewLead && p.Type != models.WebhookEventNewLoad {
		return fmt.Errorf("%w: unsupported event type %q", ErrValidation, p.Type)
	}
	if p.ServerID == "" {
		return fmt.Errorf("%w: server_id is required", ErrValidation)
	}
	if p.AdID == "" {
		return fmt.Errorf("%w: ad_id is required", ErrValidation)
	}
	return nil
}
