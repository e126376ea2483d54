package repositories

import (
	"context"

	"usina-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FranchiseRepository struct {
	DB *pgxpool.Pool
}

func NewFranchiseRepository(db *pgxpool.Pool) *FranchiseRepository {
	return &FranchiseRepository{DB: db}
}

func (r *FranchiseRepository) Create(ctx context.Context, franchise *models.Franchise) error {
	query := `
		INSERT INTO franchises (name, status)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query, franchise.Name, franchise.Status).
		Scan(&franchise.ID, &franchise.CreatedAt, &franchise.UpdatedAt)
}

func (r *FranchiseRepository) Get(ctx context.Context, id int) (*models.Franchise, error) {
	query := `
		SELECT id, name, status, created_at, updated_at
		FROM franchises
		WHERE id = $1
	`
	f := &models.Franchise{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Name, &f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FranchiseRepository) List(ctx context.Context) ([]*models.Franchise, error) {
	query := `
		SELECT id, name, status, created_at, updated_at
		FROM franchises
		ORDER BY name
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var franchises []*models.Franchise
	for rows.Next() {
		f := &models.Franchise{}
		if err := rows.Scan(&f.ID, &f.Name, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		franchises = append(franchises, f)
	}
	return franchises, rows.Err()
}

func (r *FranchiseRepository) Update(ctx context.Context, id int, name, status string) error {
	query := `
		UPDATE franchises
		SET name = $1, status = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	_, err := r.DB.Exec(ctx, query, name, status, id)
	return err
}

func (r *FranchiseRepository) ToggleStatus(ctx context.Context, id int) error {
	query := `
		UPDATE franchises
		SET status = CASE WHEN status = 'active' THEN 'inactive' ELSE 'active' END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.DB.Exec(ctx, query, id)
	return err
}
