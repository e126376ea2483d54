package repositories

import (
	"context"
	"time"

	"usina-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversionRepository struct {
	DB *pgxpool.Pool
}

func NewConversionRepository(db *pgxpool.Pool) *ConversionRepository {
	return &ConversionRepository{DB: db}
}

func (r *ConversionRepository) Create(ctx context.Context, conv *models.Conversion) error {
	query := `
		INSERT INTO conversions (lead_id, franchise_id, franchise_phone_id, date, amount, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.DB.QueryRow(ctx, query,
		conv.LeadID, conv.FranchiseID, conv.FranchisePhoneID,
		conv.Date, conv.Amount, conv.Description,
	).Scan(&conv.ID, &conv.CreatedAt)
}

// ExistsForLead reports whether a conversion was already registered for a
// lead; conversions are immutable and created at most once per lead
func (r *ConversionRepository) ExistsForLead(ctx context.Context, leadID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM conversions WHERE lead_id = $1)`,
		leadID,
	).Scan(&exists)
	return exists, err
}

func (r *ConversionRepository) ListByDate(ctx context.Context, date time.Time) ([]*models.Conversion, error) {
	query := `
		SELECT id, lead_id, franchise_id, franchise_phone_id, date, amount,
		       COALESCE(description, ''), created_at
		FROM conversions
		WHERE date = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.DB.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversions []*models.Conversion
	for rows.Next() {
		c := &models.Conversion{}
		err := rows.Scan(
			&c.ID, &c.LeadID, &c.FranchiseID, &c.FranchisePhoneID,
			&c.Date, &c.Amount, &c.Description, &c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		conversions = append(conversions, c)
	}
	return conversions, rows.Err()
}
