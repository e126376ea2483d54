package repositories

import (
	"context"
	"errors"
	"fmt"

	"usina-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateActiveGoal is returned when a second active goal is inserted
// for a franchise; the partial unique index is the source of truth.
var ErrDuplicateActiveGoal = errors.New("franchise already has an active goal")

type DistributionGoalRepository struct {
	DB *pgxpool.Pool
}

func NewDistributionGoalRepository(db *pgxpool.Pool) *DistributionGoalRepository {
	return &DistributionGoalRepository{DB: db}
}

func (r *DistributionGoalRepository) Create(ctx context.Context, goal *models.DistributionGoal) error {
	// Default priority to the end of the active list
	if goal.Priority <= 0 {
		query := `SELECT COALESCE(MAX(priority), 0) + 1 FROM distribution_goals WHERE is_active`
		if err := r.DB.QueryRow(ctx, query).Scan(&goal.Priority); err != nil {
			return fmt.Errorf("failed to compute priority: %w", err)
		}
	}

	query := `
		INSERT INTO distribution_goals (franchise_id, daily_goal, priority, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(ctx, query,
		goal.FranchiseID, goal.DailyGoal, goal.Priority, goal.IsActive,
	).Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateActiveGoal
	}
	return err
}

func (r *DistributionGoalRepository) Get(ctx context.Context, id int) (*models.DistributionGoal, error) {
	query := `
		SELECT g.id, g.franchise_id, f.name, g.daily_goal, g.priority, g.is_active, g.created_at, g.updated_at
		FROM distribution_goals g
		JOIN franchises f ON f.id = g.franchise_id
		WHERE g.id = $1
	`
	return scanGoal(r.DB.QueryRow(ctx, query, id))
}

// ListActiveOrdered returns active goals of active franchises, priority
// ascending. Ties break by goal id (creation order) so the ordering is stable.
func (r *DistributionGoalRepository) ListActiveOrdered(ctx context.Context) ([]*models.DistributionGoal, error) {
	query := `
		SELECT g.id, g.franchise_id, f.name, g.daily_goal, g.priority, g.is_active, g.created_at, g.updated_at
		FROM distribution_goals g
		JOIN franchises f ON f.id = g.franchise_id
		WHERE g.is_active AND f.status = 'active'
		ORDER BY g.priority, g.id
	`
	return r.queryGoals(ctx, query)
}

func (r *DistributionGoalRepository) List(ctx context.Context) ([]*models.DistributionGoal, error) {
	query := `
		SELECT g.id, g.franchise_id, f.name, g.daily_goal, g.priority, g.is_active, g.created_at, g.updated_at
		FROM distribution_goals g
		JOIN franchises f ON f.id = g.franchise_id
		ORDER BY g.priority, g.id
	`
	return r.queryGoals(ctx, query)
}

func (r *DistributionGoalRepository) Update(ctx context.Context, goal *models.DistributionGoal) error {
	query := `
		UPDATE distribution_goals
		SET daily_goal = $1, priority = $2, is_active = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`
	_, err := r.DB.Exec(ctx, query, goal.DailyGoal, goal.Priority, goal.IsActive, goal.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateActiveGoal
	}
	return err
}

func (r *DistributionGoalRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM distribution_goals WHERE id = $1`, id)
	return err
}

// SwapPriority moves a goal up or down by exchanging priority with the
// adjacent goal, inside a transaction so ranks never duplicate.
func (r *DistributionGoalRepository) SwapPriority(ctx context.Context, goalID int, direction string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var priority int
	err = tx.QueryRow(ctx,
		`SELECT priority FROM distribution_goals WHERE id = $1 FOR UPDATE`,
		goalID,
	).Scan(&priority)
	if err != nil {
		return err
	}

	cmp, ord := "<", "DESC"
	if direction == "down" {
		cmp, ord = ">", "ASC"
	}

	var neighborID, neighborPriority int
	err = tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, priority FROM distribution_goals
		WHERE priority %s $1
		ORDER BY priority %s
		LIMIT 1
		FOR UPDATE
	`, cmp, ord), priority).Scan(&neighborID, &neighborPriority)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil // already at the edge
		}
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE distribution_goals SET priority = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		neighborPriority, goalID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE distribution_goals SET priority = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		priority, neighborID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanGoal(row pgx.Row) (*models.DistributionGoal, error) {
	g := &models.DistributionGoal{}
	err := row.Scan(
		&g.ID, &g.FranchiseID, &g.FranchiseName, &g.DailyGoal,
		&g.Priority, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *DistributionGoalRepository) queryGoals(ctx context.Context, query string, args ...interface{}) ([]*models.DistributionGoal, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*models.DistributionGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
