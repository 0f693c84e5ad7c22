package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-paynl/app/entity"
)

type HostEventRepository struct {
	db DBTX
}

func NewHostEventRepository(db DBTX) *HostEventRepository {
	return &HostEventRepository{db: db}
}

func (r *HostEventRepository) Create(ctx context.Context, event *entity.HostEvent) error {
	query := `
		INSERT INTO host_events (
			delivery_id, name, payload_json, status, error, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullableUint64Value(event.DeliveryID),
		event.Name,
		event.PayloadJSON,
		event.Status,
		nullableStringValue(event.Error),
		event.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)

	return nil
}

// ListSentNames returns the names of the events already delivered for a
// webhook delivery.
func (r *HostEventRepository) ListSentNames(ctx context.Context, deliveryID uint64) ([]string, error) {
	query := `SELECT DISTINCT name FROM host_events WHERE delivery_id = ? AND status = ?`

	rows, err := r.db.QueryContext(ctx, query, deliveryID, entity.HostEventSent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
