package services

import (
	"context"
	"errors"
	"fmt"

	"usina-backend/internal/models"
	"usina-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// SettingsService manages the active-franchise override. Switching is
// last-write-wins; the version counter lets operators audit which switch an
// assignment observed.
type SettingsService struct {
	settings   *repositories.DistributionSettingsRepository
	franchises *repositories.FranchiseRepository
}

func NewSettingsService(settings *repositories.DistributionSettingsRepository, franchises *repositories.FranchiseRepository) *SettingsService {
	return &SettingsService{settings: settings, franchises: franchises}
}

func (s *SettingsService) Get(ctx context.Context) (*models.DistributionSettings, error) {
	return s.settings.Get(ctx)
}

// SetActiveFranchise switches the distribution target. A nil franchise id
// clears the override and hands selection back to the goal registry.
func (s *SettingsService) SetActiveFranchise(ctx context.Context, req *models.SetActiveFranchiseRequest, userID int) (*models.DistributionSettings, error) {
	name := ""
	if req.FranchiseID != nil {
		franchise, err := s.franchises.Get(ctx, *req.FranchiseID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: franchise %d", ErrNotFound, *req.FranchiseID)
			}
			return nil, err
		}
		if franchise.Status != "active" {
			return nil, fmt.Errorf("%w: franchise %d is inactive", ErrValidation, *req.FranchiseID)
		}
		name = franchise.Name
	}
	return s.settings.SetActiveFranchise(ctx, req.FranchiseID, name, userID)
}
