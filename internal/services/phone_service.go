package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"usina-backend/internal/cache"
	"usina-backend/internal/models"
	"usina-backend/internal/phoneutil"
	"usina-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// PhoneService manages franchise phone lines. Numbers are normalized to E.164
// on the way in so rotation and webhook matching always compare like with like.
type PhoneService struct {
	phones        *repositories.FranchisePhoneRepository
	franchises    *repositories.FranchiseRepository
	defaultRegion string
}

func NewPhoneService(phones *repositories.FranchisePhoneRepository, franchises *repositories.FranchiseRepository, defaultRegion string) *PhoneService {
	if defaultRegion == "" {
		defaultRegion = phoneutil.DefaultRegion
	}
	return &PhoneService{phones: phones, franchises: franchises, defaultRegion: defaultRegion}
}

func (s *PhoneService) Create(ctx context.Context, franchiseID int, req *models.CreateFranchisePhoneRequest) (*models.FranchisePhone, error) {
	if _, err := s.franchises.Get(ctx, franchiseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: franchise %d", ErrNotFound, franchiseID)
		}
		return nil, err
	}

	number, err := phoneutil.Normalize(req.PhoneNumber, s.defaultRegion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	phone := &models.FranchisePhone{
		FranchiseID: franchiseID,
		PhoneNumber: number,
		OrderNumber: req.OrderNumber,
		IsActive:    true,
		DailyGoal:   req.DailyGoal,
		Category:    req.Category,
		Tags:        req.Tags,
		Notes:       req.Notes,
	}
	if err := s.phones.Create(ctx, phone); err != nil {
		return nil, err
	}

	cache.InvalidateFranchisePhones(ctx, franchiseID)
	return phone, nil
}

func (s *PhoneService) Get(ctx context.Context, id int) (*models.FranchisePhone, error) {
	phone, err := s.phones.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: phone %d", ErrNotFound, id)
	}
	return phone, err
}

// ListByFranchise serves the dashboard's phone list through the short-TTL
// cache; rotation queries bypass it and hit the repository directly.
func (s *PhoneService) ListByFranchise(ctx context.Context, franchiseID int) ([]*models.FranchisePhone, error) {
	if data, ok := cache.GetFranchisePhones(ctx, franchiseID); ok {
		var phones []*models.FranchisePhone
		if err := json.Unmarshal(data, &phones); err == nil {
			return phones, nil
		}
	}

	phones, err := s.phones.ListByFranchise(ctx, franchiseID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(phones); err == nil {
		cache.SetFranchisePhones(ctx, franchiseID, data)
	}
	return phones, nil
}

func (s *PhoneService) Update(ctx context.Context, id int, req *models.UpdateFranchisePhoneRequest) (*models.FranchisePhone, error) {
	phone, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PhoneNumber != "" {
		number, err := phoneutil.Normalize(req.PhoneNumber, s.defaultRegion)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		phone.PhoneNumber = number
	}
	if req.IsActive != nil {
		phone.IsActive = *req.IsActive
	}
	if req.DailyGoal != nil {
		phone.DailyGoal = req.DailyGoal
	}
	phone.Category = req.Category
	phone.Tags = req.Tags
	phone.Notes = req.Notes

	if err := s.phones.Update(ctx, phone); err != nil {
		return nil, err
	}

	cache.InvalidateFranchisePhones(ctx, phone.FranchiseID)
	return phone, nil
}

// ToggleActive flips a phone in or out of the rotation
func (s *PhoneService) ToggleActive(ctx context.Context, id int) (*models.FranchisePhone, error) {
	phone, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.phones.ToggleActive(ctx, id); err != nil {
		return nil, err
	}
	cache.InvalidateFranchisePhones(ctx, phone.FranchiseID)
	return s.Get(ctx, id)
}

// Reorder moves a phone one step up or down in the rotation order
func (s *PhoneService) Reorder(ctx context.Context, id int, direction string) error {
	if direction != "up" && direction != "down" {
		return fmt.Errorf("%w: direction must be 'up' or 'down'", ErrValidation)
	}
	phone, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.phones.SwapOrder(ctx, id, direction); err != nil {
		return err
	}
	cache.InvalidateFranchisePhones(ctx, phone.FranchiseID)
	return nil
}
