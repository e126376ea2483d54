package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"usina-backend/internal/models"
	"usina-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// LeadStore is the persistence surface the lead lifecycle needs
type LeadStore interface {
	Create(ctx context.Context, lead *models.Lead) error
	Get(ctx context.Context, id int) (*models.Lead, error)
	ListByDate(ctx context.Context, date time.Time, franchiseID *int) ([]*models.Lead, error)
	UpdateStatus(ctx context.Context, id int, status string) error
	SetAssignment(ctx context.Context, id, franchiseID, phoneID int) error
}

// ConversionStore persists immutable conversion records
type ConversionStore interface {
	Create(ctx context.Context, conv *models.Conversion) error
	ExistsForLead(ctx context.Context, leadID int) (bool, error)
	ListByDate(ctx context.Context, date time.Time) ([]*models.Conversion, error)
}

// Assigner is the allocator surface used by ingestion paths
type Assigner interface {
	AssignAuto(ctx context.Context, kind string, count int, serverID *int) (*models.AssignmentResult, error)
	AssignToFranchise(ctx context.Context, kind string, count, franchiseID int, serverID *int) (*models.AssignmentResult, error)
	AssignToPhone(ctx context.Context, kind string, count, franchiseID, phoneID int, serverID *int) (*models.AssignmentResult, error)
}

// Allowed lifecycle transitions. Converted and lost are terminal.
var leadTransitions = map[string][]string{
	models.LeadStatusPending:   {models.LeadStatusContacted, models.LeadStatusLost},
	models.LeadStatusContacted: {models.LeadStatusConverted, models.LeadStatusLost},
}

// LeadService runs the lead lifecycle. Registration feeds the allocator;
// a capacity shortage never rejects the lead, it is recorded unassigned.
type LeadService struct {
	leads       LeadStore
	conversions ConversionStore
	assigner    Assigner
}

func NewLeadService(leads LeadStore, conversions ConversionStore, assigner Assigner) *LeadService {
	return &LeadService{leads: leads, conversions: conversions, assigner: assigner}
}

// Create registers a lead and routes it through the allocator. When no
// franchise can take it the lead is stored without an assignment so the
// event is never lost.
func (s *LeadService) Create(ctx context.Context, req *models.CreateLeadRequest) (*models.Lead, error) {
	lead := &models.Lead{
		ServerID: req.ServerID,
		Status:   models.LeadStatusPending,
		Date:     timeutil.Today(),
	}

	var result *models.AssignmentResult
	var err error
	if req.FranchiseID != nil {
		result, err = s.assigner.AssignToFranchise(ctx, KindLead, 1, *req.FranchiseID, req.ServerID)
	} else {
		result, err = s.assigner.AssignAuto(ctx, KindLead, 1, req.ServerID)
	}
	switch {
	case err == nil:
		lead.FranchiseID = &result.FranchiseID
		lead.FranchisePhoneID = &result.PhoneID
	case errors.Is(err, ErrNoDistributionTarget), errors.Is(err, ErrNoActivePhones):
		log.Printf("[Leads] no capacity, recording lead unassigned: %v", err)
	default:
		return nil, err
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("persist lead: %w", err)
	}
	return lead, nil
}

func (s *LeadService) Get(ctx context.Context, id int) (*models.Lead, error) {
	lead, err := s.leads.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: lead %d", ErrNotFound, id)
	}
	return lead, err
}

func (s *LeadService) ListByDate(ctx context.Context, date time.Time, franchiseID *int) ([]*models.Lead, error) {
	return s.leads.ListByDate(ctx, date, franchiseID)
}

// UpdateStatus moves a lead through its lifecycle. Transitioning to converted
// registers the conversion: one immutable conversion row plus a conversions
// counter bump on the lead's phone. A lead converts at most once.
func (s *LeadService) UpdateStatus(ctx context.Context, id int, req *models.UpdateLeadStatusRequest) (*models.Lead, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(lead.Status, req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, lead.Status, req.Status)
	}

	if req.Status == models.LeadStatusConverted {
		if err := s.convert(ctx, lead, req); err != nil {
			return nil, err
		}
	}

	if err := s.leads.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}
	lead.Status = req.Status
	return lead, nil
}

func (s *LeadService) convert(ctx context.Context, lead *models.Lead, req *models.UpdateLeadStatusRequest) error {
	exists, err := s.conversions.ExistsForLead(ctx, lead.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: lead %d already converted", ErrValidation, lead.ID)
	}

	// Leads recorded without capacity get assigned now, at conversion time
	var result *models.AssignmentResult
	if lead.FranchiseID != nil && lead.FranchisePhoneID != nil {
		result, err = s.assigner.AssignToPhone(ctx, KindConversion, 1, *lead.FranchiseID, *lead.FranchisePhoneID, lead.ServerID)
	} else {
		result, err = s.assigner.AssignAuto(ctx, KindConversion, 1, lead.ServerID)
		if err == nil {
			if aerr := s.leads.SetAssignment(ctx, lead.ID, result.FranchiseID, result.PhoneID); aerr != nil {
				return aerr
			}
			lead.FranchiseID = &result.FranchiseID
			lead.FranchisePhoneID = &result.PhoneID
		}
	}
	if err != nil {
		return err
	}

	conv := &models.Conversion{
		LeadID:           &lead.ID,
		FranchiseID:      lead.FranchiseID,
		FranchisePhoneID: lead.FranchisePhoneID,
		Date:             timeutil.Today(),
		Amount:           req.Amount,
		Description:      req.Description,
	}
	return s.conversions.Create(ctx, conv)
}

func transitionAllowed(from, to string) bool {
	for _, next := range leadTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
