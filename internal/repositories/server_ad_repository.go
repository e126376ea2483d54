package repositories

import (
	"context"
	"errors"
	"time"

	"usina-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ServerAdRepository struct {
	DB *pgxpool.Pool
}

func NewServerAdRepository(db *pgxpool.Pool) *ServerAdRepository {
	return &ServerAdRepository{DB: db}
}

func (r *ServerAdRepository) Create(ctx context.Context, ad *models.ServerAd) error {
	query := `
		INSERT INTO server_ads (server_id, ad_id, leads, loads, spent, date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		ad.ServerID, ad.AdID, ad.Leads, ad.Loads, ad.Spent, ad.Date, ad.Status,
	).Scan(&ad.ID, &ad.CreatedAt, &ad.UpdatedAt)
}

func (r *ServerAdRepository) Get(ctx context.Context, id int) (*models.ServerAd, error) {
	query := `
		SELECT id, server_id, ad_id, leads, loads, spent, date, status, created_at, updated_at
		FROM server_ads
		WHERE id = $1
	`
	ad := &models.ServerAd{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&ad.ID, &ad.ServerID, &ad.AdID, &ad.Leads, &ad.Loads, &ad.Spent,
		&ad.Date, &ad.Status, &ad.CreatedAt, &ad.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ad, nil
}

// GetByAd resolves a (server, external ad id, date) triple to its counter row
func (r *ServerAdRepository) GetByAd(ctx context.Context, serverID int, adID string, date time.Time) (*models.ServerAd, error) {
	query := `
		SELECT id, server_id, ad_id, leads, loads, spent, date, status, created_at, updated_at
		FROM server_ads
		WHERE server_id = $1 AND ad_id = $2 AND date = $3
	`
	ad := &models.ServerAd{}
	err := r.DB.QueryRow(ctx, query, serverID, adID, date).Scan(
		&ad.ID, &ad.ServerID, &ad.AdID, &ad.Leads, &ad.Loads, &ad.Spent,
		&ad.Date, &ad.Status, &ad.CreatedAt, &ad.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ad, nil
}

// ResolveForDate returns the counter row for (server, ad) on the given day,
// creating a fresh one when the ad is known from an earlier day. Counters keep
// flowing after the midnight rollover without an operator re-registering each
// ad; an ad that was never registered at all stays pgx.ErrNoRows.
func (r *ServerAdRepository) ResolveForDate(ctx context.Context, serverID int, adID string, date time.Time) (*models.ServerAd, error) {
	ad, err := r.GetByAd(ctx, serverID, adID, date)
	if err == nil {
		return ad, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var status string
	err = r.DB.QueryRow(ctx, `
		SELECT status FROM server_ads
		WHERE server_id = $1 AND ad_id = $2
		ORDER BY date DESC
		LIMIT 1
	`, serverID, adID).Scan(&status)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO server_ads (server_id, ad_id, date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (server_id, ad_id, date)
		DO UPDATE SET updated_at = CURRENT_TIMESTAMP
		RETURNING id, server_id, ad_id, leads, loads, spent, date, status, created_at, updated_at
	`
	ad = &models.ServerAd{}
	err = r.DB.QueryRow(ctx, query, serverID, adID, date, status).Scan(
		&ad.ID, &ad.ServerID, &ad.AdID, &ad.Leads, &ad.Loads, &ad.Spent,
		&ad.Date, &ad.Status, &ad.CreatedAt, &ad.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ad, nil
}

func (r *ServerAdRepository) ListByServer(ctx context.Context, serverID int, date time.Time) ([]*models.ServerAd, error) {
	query := `
		SELECT id, server_id, ad_id, leads, loads, spent, date, status, created_at, updated_at
		FROM server_ads
		WHERE server_id = $1 AND date = $2
		ORDER BY ad_id
	`
	rows, err := r.DB.Query(ctx, query, serverID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ads []*models.ServerAd
	for rows.Next() {
		ad := &models.ServerAd{}
		err := rows.Scan(
			&ad.ID, &ad.ServerID, &ad.AdID, &ad.Leads, &ad.Loads, &ad.Spent,
			&ad.Date, &ad.Status, &ad.CreatedAt, &ad.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}

// IncrementCounters adds the deltas atomically and returns the updated row.
// The webhook path increments by 1; the admin counter screen sets absolute
// values whose delta the handler computes first.
func (r *ServerAdRepository) IncrementCounters(ctx context.Context, id, leadsDelta, loadsDelta int, spentDelta float64) (*models.ServerAd, error) {
	query := `
		UPDATE server_ads
		SET leads = leads + $1, loads = loads + $2, spent = spent + $3,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING id, server_id, ad_id, leads, loads, spent, date, status, created_at, updated_at
	`
	ad := &models.ServerAd{}
	err := r.DB.QueryRow(ctx, query, leadsDelta, loadsDelta, spentDelta, id).Scan(
		&ad.ID, &ad.ServerID, &ad.AdID, &ad.Leads, &ad.Loads, &ad.Spent,
		&ad.Date, &ad.Status, &ad.CreatedAt, &ad.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ad, nil
}
