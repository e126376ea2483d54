package repositories

import (
	"context"

	"usina-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DistributionSettingsRepository struct {
	DB *pgxpool.Pool
}

func NewDistributionSettingsRepository(db *pgxpool.Pool) *DistributionSettingsRepository {
	return &DistributionSettingsRepository{DB: db}
}

// Get returns the current active-franchise record (single row, id=1)
func (r *DistributionSettingsRepository) Get(ctx context.Context) (*models.DistributionSettings, error) {
	query := `
		SELECT id, active_franchise_id, COALESCE(active_franchise_name, ''),
		       version, updated_by_user_id, updated_at
		FROM distribution_settings
		WHERE id = 1
	`
	s := &models.DistributionSettings{}
	err := r.DB.QueryRow(ctx, query).Scan(
		&s.ID, &s.ActiveFranchiseID, &s.ActiveFranchiseName,
		&s.Version, &s.UpdatedByUserID, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SetActiveFranchise switches the distribution target and bumps the version.
// Last writer wins; the returned record carries the new version so callers
// can log which snapshot they acted under.
func (r *DistributionSettingsRepository) SetActiveFranchise(ctx context.Context, franchiseID *int, franchiseName string, userID int) (*models.DistributionSettings, error) {
	query := `
		UPDATE distribution_settings
		SET active_franchise_id = $1,
		    active_franchise_name = $2,
		    version = version + 1,
		    updated_by_user_id = $3,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
		RETURNING id, active_franchise_id, COALESCE(active_franchise_name, ''),
		          version, updated_by_user_id, updated_at
	`
	s := &models.DistributionSettings{}
	err := r.DB.QueryRow(ctx, query, franchiseID, franchiseName, userID).Scan(
		&s.ID, &s.ActiveFranchiseID, &s.ActiveFranchiseName,
		&s.Version, &s.UpdatedByUserID, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
