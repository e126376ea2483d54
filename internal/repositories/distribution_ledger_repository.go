package repositories

import (
	"context"
	"fmt"
	"log"
	"time"

	"usina-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DistributionLedgerRepository struct {
	DB *pgxpool.Pool
}

func NewDistributionLedgerRepository(db *pgxpool.Pool) *DistributionLedgerRepository {
	return &DistributionLedgerRepository{DB: db}
}

// Increment adds the deltas to the (date, franchise, phone) ledger row,
// creating it when absent. The whole operation is one atomic upsert so
// concurrent assignments never lose updates; callers must not split this into
// separate select/update calls.
//
// Returns the new total (conversions + leads) for the row.
func (r *DistributionLedgerRepository) Increment(ctx context.Context, date time.Time, serverID *int, franchiseID, phoneID, convDelta, leadDelta int) (int, error) {
	query := `
		INSERT INTO daily_distribution (date, server_id, franchise_id, franchise_phone_id, conversions_count, leads_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date, franchise_id, franchise_phone_id)
		DO UPDATE SET
			conversions_count = daily_distribution.conversions_count + EXCLUDED.conversions_count,
			leads_count = daily_distribution.leads_count + EXCLUDED.leads_count,
			server_id = COALESCE(EXCLUDED.server_id, daily_distribution.server_id),
			updated_at = CURRENT_TIMESTAMP
		RETURNING conversions_count + leads_count
	`

	var newCount int
	err := r.DB.QueryRow(ctx, query, date, serverID, franchiseID, phoneID, convDelta, leadDelta).Scan(&newCount)
	if err != nil {
		return 0, fmt.Errorf("failed to increment distribution ledger: %w", err)
	}

	// Mirror lead assignments into the auxiliary tracking ledger.
	// Best-effort: a failure here must never fail the primary assignment.
	if leadDelta > 0 {
		if _, err := r.DB.Exec(ctx, `
			INSERT INTO lead_distributions (date, server_id, franchise_id, franchise_phone_id, leads_count)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (date, franchise_id, franchise_phone_id)
			DO UPDATE SET
				leads_count = lead_distributions.leads_count + EXCLUDED.leads_count,
				updated_at = CURRENT_TIMESTAMP
		`, date, serverID, franchiseID, phoneID, leadDelta); err != nil {
			log.Printf("[Ledger] lead_distributions mirror write failed: %v", err)
		}
	}

	return newCount, nil
}

// FranchiseTotal returns today's assigned total (conversions + leads) for a
// franchise across all its phone lines
func (r *DistributionLedgerRepository) FranchiseTotal(ctx context.Context, date time.Time, franchiseID int) (int, error) {
	query := `
		SELECT COALESCE(SUM(conversions_count + leads_count), 0)
		FROM daily_distribution
		WHERE date = $1 AND franchise_id = $2
	`
	var total int
	err := r.DB.QueryRow(ctx, query, date, franchiseID).Scan(&total)
	return total, err
}

// FranchiseTotals returns assigned totals for all franchises on a date in one
// query, keyed by franchise id
func (r *DistributionLedgerRepository) FranchiseTotals(ctx context.Context, date time.Time) (map[int]int, error) {
	query := `
		SELECT franchise_id, COALESCE(SUM(conversions_count + leads_count), 0)
		FROM daily_distribution
		WHERE date = $1
		GROUP BY franchise_id
	`
	rows, err := r.DB.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int]int)
	for rows.Next() {
		var franchiseID, total int
		if err := rows.Scan(&franchiseID, &total); err != nil {
			return nil, err
		}
		totals[franchiseID] = total
	}
	return totals, rows.Err()
}

// ListByDate returns all ledger rows for a date
func (r *DistributionLedgerRepository) ListByDate(ctx context.Context, date time.Time) ([]*models.DailyDistribution, error) {
	query := `
		SELECT id, date, server_id, franchise_id, franchise_phone_id,
		       conversions_count, leads_count, updated_at
		FROM daily_distribution
		WHERE date = $1
		ORDER BY franchise_id, franchise_phone_id
	`
	rows, err := r.DB.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.DailyDistribution
	for rows.Next() {
		d := &models.DailyDistribution{}
		err := rows.Scan(
			&d.ID, &d.Date, &d.ServerID, &d.FranchiseID, &d.FranchisePhoneID,
			&d.ConversionsCount, &d.LeadsCount, &d.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, d)
	}
	return entries, rows.Err()
}
