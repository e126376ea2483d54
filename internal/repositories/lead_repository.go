package repositories

import (
	"context"
	"time"

	"usina-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	DB *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	query := `
		INSERT INTO leads (server_id, franchise_id, franchise_phone_id, status, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		lead.ServerID, lead.FranchiseID, lead.FranchisePhoneID, lead.Status, lead.Date,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
}

func (r *LeadRepository) Get(ctx context.Context, id int) (*models.Lead, error) {
	query := `
		SELECT id, server_id, franchise_id, franchise_phone_id, status, date, created_at, updated_at
		FROM leads
		WHERE id = $1
	`
	lead := &models.Lead{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&lead.ID, &lead.ServerID, &lead.FranchiseID, &lead.FranchisePhoneID,
		&lead.Status, &lead.Date, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// ListByDate returns leads for a date, optionally filtered by franchise
func (r *LeadRepository) ListByDate(ctx context.Context, date time.Time, franchiseID *int) ([]*models.Lead, error) {
	query := `
		SELECT id, server_id, franchise_id, franchise_phone_id, status, date, created_at, updated_at
		FROM leads
		WHERE date = $1 AND ($2::int IS NULL OR franchise_id = $2)
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.DB.Query(ctx, query, date, franchiseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead := &models.Lead{}
		err := rows.Scan(
			&lead.ID, &lead.ServerID, &lead.FranchiseID, &lead.FranchisePhoneID,
			&lead.Status, &lead.Date, &lead.CreatedAt, &lead.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	query := `
		UPDATE leads
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`
	_, err := r.DB.Exec(ctx, query, status, id)
	return err
}

// SetAssignment records the franchise and phone a lead was distributed to
func (r *LeadRepository) SetAssignment(ctx context.Context, id, franchiseID, phoneID int) error {
	query := `
		UPDATE leads
		SET franchise_id = $1, franchise_phone_id = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	_, err := r.DB.Exec(ctx, query, franchiseID, phoneID, id)
	return err
}
