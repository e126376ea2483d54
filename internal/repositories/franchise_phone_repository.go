package repositories

import (
	"context"
	"fmt"
	"time"

	"usina-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FranchisePhoneRepository struct {
	DB *pgxpool.Pool
}

func NewFranchisePhoneRepository(db *pgxpool.Pool) *FranchisePhoneRepository {
	return &FranchisePhoneRepository{DB: db}
}

const phoneColumns = `
	id, franchise_id, phone_number, order_number, is_active, daily_goal,
	COALESCE(category, ''), COALESCE(tags, ''), COALESCE(notes, ''),
	created_at, updated_at
`

func scanPhone(row pgx.Row) (*models.FranchisePhone, error) {
	p := &models.FranchisePhone{}
	err := row.Scan(
		&p.ID, &p.FranchiseID, &p.PhoneNumber, &p.OrderNumber, &p.IsActive,
		&p.DailyGoal, &p.Category, &p.Tags, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *FranchisePhoneRepository) Create(ctx context.Context, phone *models.FranchisePhone) error {
	// Default the rotation rank to the end of the list
	if phone.OrderNumber <= 0 {
		query := `SELECT COALESCE(MAX(order_number), 0) + 1 FROM franchise_phones WHERE franchise_id = $1`
		if err := r.DB.QueryRow(ctx, query, phone.FranchiseID).Scan(&phone.OrderNumber); err != nil {
			return fmt.Errorf("failed to compute order number: %w", err)
		}
	}

	query := `
		INSERT INTO franchise_phones (franchise_id, phone_number, order_number, is_active, daily_goal, category, tags, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		phone.FranchiseID, phone.PhoneNumber, phone.OrderNumber, phone.IsActive,
		phone.DailyGoal, phone.Category, phone.Tags, phone.Notes,
	).Scan(&phone.ID, &phone.CreatedAt, &phone.UpdatedAt)
}

func (r *FranchisePhoneRepository) Get(ctx context.Context, id int) (*models.FranchisePhone, error) {
	query := `SELECT ` + phoneColumns + ` FROM franchise_phones WHERE id = $1`
	return scanPhone(r.DB.QueryRow(ctx, query, id))
}

// ListByFranchise returns all phone lines of a franchise ordered by rotation rank
func (r *FranchisePhoneRepository) ListByFranchise(ctx context.Context, franchiseID int) ([]*models.FranchisePhone, error) {
	query := `
		SELECT ` + phoneColumns + `
		FROM franchise_phones
		WHERE franchise_id = $1
		ORDER BY order_number, id
	`
	return r.queryPhones(ctx, query, franchiseID)
}

// ListActive returns the active phone lines of a franchise ordered by rotation rank
func (r *FranchisePhoneRepository) ListActive(ctx context.Context, franchiseID int) ([]*models.FranchisePhone, error) {
	query := `
		SELECT ` + phoneColumns + `
		FROM franchise_phones
		WHERE franchise_id = $1 AND is_active
		ORDER BY order_number, id
	`
	return r.queryPhones(ctx, query, franchiseID)
}

// NextAvailable picks the phone line for the next assignment on the given day:
// the active line with the lowest assigned total today, tie-broken by the
// lowest order_number. Returns pgx.ErrNoRows when the franchise has no active
// lines.
func (r *FranchisePhoneRepository) NextAvailable(ctx context.Context, franchiseID int, date time.Time) (*models.FranchisePhone, error) {
	query := `
		SELECT p.id, p.franchise_id, p.phone_number, p.order_number, p.is_active, p.daily_goal,
		       COALESCE(p.category, ''), COALESCE(p.tags, ''), COALESCE(p.notes, ''),
		       p.created_at, p.updated_at
		FROM franchise_phones p
		LEFT JOIN daily_distribution d
		       ON d.franchise_phone_id = p.id
		      AND d.franchise_id = p.franchise_id
		      AND d.date = $2
		WHERE p.franchise_id = $1 AND p.is_active
		ORDER BY COALESCE(d.conversions_count, 0) + COALESCE(d.leads_count, 0), p.order_number, p.id
		LIMIT 1
	`
	return scanPhone(r.DB.QueryRow(ctx, query, franchiseID, date))
}

// FindByNumber returns the active phone of a franchise matching the E.164
// number exactly, or pgx.ErrNoRows
func (r *FranchisePhoneRepository) FindByNumber(ctx context.Context, franchiseID int, e164 string) (*models.FranchisePhone, error) {
	query := `
		SELECT ` + phoneColumns + `
		FROM franchise_phones
		WHERE franchise_id = $1 AND phone_number = $2 AND is_active
		ORDER BY order_number
		LIMIT 1
	`
	return scanPhone(r.DB.QueryRow(ctx, query, franchiseID, e164))
}

func (r *FranchisePhoneRepository) Update(ctx context.Context, phone *models.FranchisePhone) error {
	query := `
		UPDATE franchise_phones
		SET phone_number = $1, is_active = $2, daily_goal = $3, category = $4,
		    tags = $5, notes = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7
	`
	_, err := r.DB.Exec(ctx, query,
		phone.PhoneNumber, phone.IsActive, phone.DailyGoal, phone.Category,
		phone.Tags, phone.Notes, phone.ID,
	)
	return err
}

func (r *FranchisePhoneRepository) ToggleActive(ctx context.Context, id int) error {
	query := `
		UPDATE franchise_phones
		SET is_active = NOT is_active, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.DB.Exec(ctx, query, id)
	return err
}

// SwapOrder moves a phone up or down within its franchise by swapping
// order_number with the adjacent line, inside a transaction so ranks are
// exchanged and never duplicated.
func (r *FranchisePhoneRepository) SwapOrder(ctx context.Context, phoneID int, direction string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var franchiseID, orderNumber int
	err = tx.QueryRow(ctx,
		`SELECT franchise_id, order_number FROM franchise_phones WHERE id = $1 FOR UPDATE`,
		phoneID,
	).Scan(&franchiseID, &orderNumber)
	if err != nil {
		return err
	}

	cmp, ord := "<", "DESC"
	if direction == "down" {
		cmp, ord = ">", "ASC"
	}

	var neighborID, neighborOrder int
	err = tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, order_number FROM franchise_phones
		WHERE franchise_id = $1 AND order_number %s $2
		ORDER BY order_number %s
		LIMIT 1
		FOR UPDATE
	`, cmp, ord), franchiseID, orderNumber).Scan(&neighborID, &neighborOrder)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil // already at the edge
		}
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE franchise_phones SET order_number = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		neighborOrder, phoneID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE franchise_phones SET order_number = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		orderNumber, neighborID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *FranchisePhoneRepository) queryPhones(ctx context.Context, query string, args ...interface{}) ([]*models.FranchisePhone, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phones []*models.FranchisePhone
	for rows.Next() {
		p, err := scanPhone(rows)
		if err != nil {
			return nil, err
		}
		phones = append(phones, p)
	}
	return phones, rows.Err()
}
