package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type WebhookEventRepository struct {
	DB *pgxpool.Pool
}

func NewWebhookEventRepository(db *pgxpool.Pool) *WebhookEventRepository {
	return &WebhookEventRepository{DB: db}
}

// MarkSeen records an external event id and reports whether it was new.
// The unique constraint makes this safe under concurrent deliveries: exactly
// one caller observes inserted=true for a given id.
func (r *WebhookEventRepository) MarkSeen(ctx context.Context, eventID, eventType string) (bool, error) {
	query := `
		INSERT INTO webhook_events (event_id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING
	`
	tag, err := r.DB.Exec(ctx, query, eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Forget removes an event id so the sender's retry is accepted. Called when
// processing failed after the event was marked; without this the retry would
// be rejected as a duplicate and the event lost.
func (r *WebhookEventRepository) Forget(ctx context.Context, eventID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM webhook_events WHERE event_id = $1`, eventID)
	return err
}
