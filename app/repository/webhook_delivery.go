package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-paynl/app/entity"
)

var ErrWebhookDeliveryNotFound = errors.New("webhook delivery not found")

const webhookDeliveryColumns = `id, provider, route, payload_hash, headers_json, content_type, payload,
			status, attempts, max_attempts, next_attempt_at, last_error, action,
			created_at, updated_at`

type WebhookDeliveryRepository struct {
	db DBTX
}

func NewWebhookDeliveryRepository(db DBTX) *WebhookDeliveryRepository {
	return &WebhookDeliveryRepository{db: db}
}

func (r *WebhookDeliveryRepository) Create(ctx context.Context, delivery *entity.WebhookDelivery) error {
	query := `
		INSERT INTO webhook_deliveries (
			provider, route, payload_hash, headers_json, content_type, payload,
			status, attempts, max_attempts, next_attempt_at, last_error, action,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		delivery.Provider,
		delivery.Route,
		delivery.PayloadHash,
		delivery.HeadersJSON,
		delivery.ContentType,
		delivery.Payload,
		delivery.Status,
		delivery.Attempts,
		delivery.MaxAttempts,
		delivery.NextAttemptAt,
		nullableStringValue(delivery.LastError),
		nullableStringValue(delivery.Action),
		delivery.CreatedAt,
		delivery.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	delivery.ID = uint64(id)
	return nil
}

func (r *WebhookDeliveryRepository) Update(ctx context.Context, delivery *entity.WebhookDelivery) error {
	query := `
		UPDATE webhook_deliveries SET
			status = ?,
			attempts = ?,
			next_attempt_at = ?,
			last_error = ?,
			action = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		delivery.Status,
		delivery.Attempts,
		delivery.NextAttemptAt,
		nullableStringValue(delivery.LastError),
		nullableStringValue(delivery.Action),
		delivery.UpdatedAt,
		delivery.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWebhookDeliveryNotFound
	}

	return nil
}

func (r *WebhookDeliveryRepository) FindByID(ctx context.Context, id uint64) (*entity.WebhookDelivery, error) {
	query := `
		SELECT ` + webhookDeliveryColumns + `
		FROM webhook_deliveries
		WHERE id = ?
	`

	delivery := &entity.WebhookDelivery{}
	if err := scanWebhookDelivery(r.db.QueryRowContext(ctx, query, id), delivery); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return delivery, nil
}

// FindPendingByPayloadHash finds an identical webhook that has not been
// dispatched yet.
func (r *WebhookDeliveryRepository) FindPendingByPayloadHash(ctx context.Context, provider, payloadHash string) (*entity.WebhookDelivery, error) {
	query := `
		SELECT ` + webhookDeliveryColumns + `
		FROM webhook_deliveries
		WHERE provider = ? AND payload_hash = ? AND status = ?
		ORDER BY id ASC
		LIMIT 1
	`

	delivery := &entity.WebhookDelivery{}
	row := r.db.QueryRowContext(ctx, query, provider, payloadHash, entity.WebhookDeliveryPending)
	if err := scanWebhookDelivery(row, delivery); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return delivery, nil
}

// ListDue returns pending deliveries whose delay has elapsed, oldest first so
// that webhooks for the same order are dispatched in arrival order.
func (r *WebhookDeliveryRepository) ListDue(ctx context.Context, now time.Time, limit int32) ([]*entity.WebhookDelivery, error) {
	query := `
		SELECT ` + webhookDeliveryColumns + `
		FROM webhook_deliveries
		WHERE status = ?
		  AND next_attempt_at <= ?
		ORDER BY next_attempt_at ASC, id ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, entity.WebhookDeliveryPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := make([]*entity.WebhookDelivery, 0)
	for rows.Next() {
		item, err := scanWebhookDeliveryFromRows(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return deliveries, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWebhookDelivery(scan rowScanner, delivery *entity.WebhookDelivery) error {
	var lastError sql.NullString
	var action sql.NullString

	err := scan.Scan(
		&delivery.ID,
		&delivery.Provider,
		&delivery.Route,
		&delivery.PayloadHash,
		&delivery.HeadersJSON,
		&delivery.ContentType,
		&delivery.Payload,
		&delivery.Status,
		&delivery.Attempts,
		&delivery.MaxAttempts,
		&delivery.NextAttemptAt,
		&lastError,
		&action,
		&delivery.CreatedAt,
		&delivery.UpdatedAt,
	)
	if err != nil {
		return err
	}

	delivery.LastError = stringPtrFromNull(lastError)
	delivery.Action = stringPtrFromNull(action)
	return nil
}

func scanWebhookDeliveryFromRows(rows *sql.Rows) (*entity.WebhookDelivery, error) {
	item := &entity.WebhookDelivery{}
	if err := scanWebhookDelivery(rows, item); err != nil {
		return nil, err
	}
	return item, nil
}
