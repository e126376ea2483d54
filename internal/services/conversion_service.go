package services

import (
	"context"
	"fmt"
	"time"

	"usina-backend/internal/models"
	"usina-backend/internal/timeutil"
)

// ConversionService registers ad-hoc conversions: units reported directly by
// an operator against a chosen franchise and phone, without a prior lead.
type ConversionService struct {
	conversions ConversionStore
	assigner    Assigner
}

func NewConversionService(conversions ConversionStore, assigner Assigner) *ConversionService {
	return &ConversionService{conversions: conversions, assigner: assigner}
}

// Create validates the target phone, bumps the daily conversion counter by
// Count in a single ledger write, and stores one conversion record. A bulk
// registration of N units is one row with the total amount, not N rows.
func (s *ConversionService) Create(ctx context.Context, req *models.CreateConversionRequest) (*models.Conversion, *models.AssignmentResult, error) {
	count := req.Count
	if count == 0 {
		count = 1
	}
	if count < 1 {
		return nil, nil, fmt.Errorf("%w: count must be at least 1", ErrValidation)
	}
	if req.Amount < 0 {
		return nil, nil, fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	}

	result, err := s.assigner.AssignToPhone(ctx, KindConversion, count, req.FranchiseID, req.PhoneID, nil)
	if err != nil {
		return nil, nil, err
	}

	conv := &models.Conversion{
		FranchiseID:      &result.FranchiseID,
		FranchisePhoneID: &result.PhoneID,
		Date:             timeutil.Today(),
		Amount:           req.Amount,
		Description:      req.Description,
	}
	if err := s.conversions.Create(ctx, conv); err != nil {
		return nil, nil, fmt.Errorf("persist conversion: %w", err)
	}
	return conv, result, nil
}

func (s *ConversionService) ListByDate(ctx context.Context, date time.Time) ([]*models.Conversion, error) {
	return s.conversions.ListByDate(ctx, date)
}
