package repositories

import (
	"context"

	"usina-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ServerRepository struct {
	DB *pgxpool.Pool
}

func NewServerRepository(db *pgxpool.Pool) *ServerRepository {
	return &ServerRepository{DB: db}
}

func (r *ServerRepository) Create(ctx context.Context, server *models.Server) error {
	query := `
		INSERT INTO servers (name, external_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query, server.Name, server.ExternalID, server.Status).
		Scan(&server.ID, &server.CreatedAt, &server.UpdatedAt)
}

func (r *ServerRepository) Get(ctx context.Context, id int) (*models.Server, error) {
	query := `
		SELECT id, name, external_id, status, created_at, updated_at
		FROM servers
		WHERE id = $1
	`
	s := &models.Server{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.ExternalID, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByExternalID resolves the webhook server identifier to the internal row
func (r *ServerRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Server, error) {
	query := `
		SELECT id, name, external_id, status, created_at, updated_at
		FROM servers
		WHERE external_id = $1
	`
	s := &models.Server{}
	err := r.DB.QueryRow(ctx, query, externalID).Scan(
		&s.ID, &s.Name, &s.ExternalID, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *ServerRepository) List(ctx context.Context) ([]*models.Server, error) {
	query := `
		SELECT id, name, external_id, status, created_at, updated_at
		FROM servers
		ORDER BY name
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var servers []*models.Server
	for rows.Next() {
		s := &models.Server{}
		if err := rows.Scan(&s.ID, &s.Name, &s.ExternalID, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		servers = append(servers, s)
	}
	return servers, rows.Err()
}

func (r *ServerRepository) Update(ctx context.Context, id int, name, status string) error {
	query := `
		UPDATE servers
		SET name = $1, status = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	_, err := r.DB.Exec(ctx, query, name, status, id)
	return err
}
