package repository

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibast-solutions/ms-go-paynl/app/entity"
)

var deliveryColumns = []string{
	"id", "provider", "route", "payload_hash", "headers_json", "content_type", "payload",
	"status", "attempts", "max_attempts", "next_attempt_at", "last_error", "action",
	"created_at", "updated_at",
}

func TestWebhookDeliveryRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWebhookDeliveryRepository(db)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	delivery := &entity.WebhookDelivery{
		Provider:      "pay-ideal_pay",
		Route:         "payment",
		PayloadHash:   "abc",
		HeadersJSON:   "{}",
		ContentType:   "application/json",
		Payload:       []byte(`{"type":"order"}`),
		Status:        entity.WebhookDeliveryPending,
		MaxAttempts:   3,
		NextAttemptAt: now.Add(5 * time.Second),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO webhook_deliveries`).
			WithArgs(
				delivery.Provider, delivery.Route, delivery.PayloadHash, delivery.HeadersJSON,
				delivery.ContentType, delivery.Payload, delivery.Status, int32(0), int32(3),
				delivery.NextAttemptAt, nil, nil, now, now,
			).
			WillReturnResult(sqlmock.NewResult(42, 1))

		require.NoError(t, repo.Create(context.Background(), delivery))
		assert.Equal(t, uint64(42), delivery.ID)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO webhook_deliveries`).
			WillReturnError(errors.New("database error"))

		err := repo.Create(context.Background(), delivery)
		assert.EqualError(t, err, "database error")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookDeliveryRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWebhookDeliveryRepository(db)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	action := "successful"
	delivery := &entity.WebhookDelivery{
		ID:            7,
		Status:        entity.WebhookDeliveryProcessed,
		Attempts:      1,
		NextAttemptAt: now,
		Action:        &action,
		UpdatedAt:     now,
	}

	mock.ExpectExec(`UPDATE webhook_deliveries SET`).
		WithArgs(entity.WebhookDeliveryProcessed, int32(1), now, nil, "successful", now, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), delivery))

	mock.ExpectExec(`UPDATE webhook_deliveries SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), delivery), ErrWebhookDeliveryNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookDeliveryRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWebhookDeliveryRepository(db)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM webhook_deliveries\s+WHERE id = \?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(deliveryColumns).AddRow(
			3, "pay_pay", "pay", "hash", `{"Content-Type":"application/x-www-form-urlencoded"}`,
			"application/x-www-form-urlencoded", []byte("action=new_ppt&order_id=2001"),
			entity.WebhookDeliveryFailed, 3, 3, now, "gateway unavailable", nil, now, now,
		))

	delivery, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, delivery)
	assert.Equal(t, "pay_pay", delivery.Provider)
	assert.Equal(t, []byte("action=new_ppt&order_id=2001"), delivery.Payload)
	require.NotNil(t, delivery.LastError)
	assert.Equal(t, "gateway unavailable", *delivery.LastError)
	assert.Nil(t, delivery.Action)

	mock.ExpectQuery(`FROM webhook_deliveries`).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows(deliveryColumns))

	missing, err := repo.FindByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookDeliveryRepository_FindPendingByPayloadHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWebhookDeliveryRepository(db)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE provider = \? AND payload_hash = \? AND status = \?`).
		WithArgs("pay-ideal_pay", "h1", entity.WebhookDeliveryPending).
		WillReturnRows(sqlmock.NewRows(deliveryColumns).
			AddRow(11, "pay-ideal_pay", "payment", "h1", "{}", "application/json", []byte("{}"),
				entity.WebhookDeliveryPending, 0, 3, now, nil, nil, now, now))

	delivery, err := repo.FindPendingByPayloadHash(context.Background(), "pay-ideal_pay", "h1")
	require.NoError(t, err)
	require.NotNil(t, delivery)
	assert.Equal(t, uint64(11), delivery.ID)

	mock.ExpectQuery(`WHERE provider = \? AND payload_hash = \? AND status = \?`).
		WithArgs("pay-ideal_pay", "h2", entity.WebhookDeliveryPending).
		WillReturnRows(sqlmock.NewRows(deliveryColumns))

	delivery, err = repo.FindPendingByPayloadHash(context.Background(), "pay-ideal_pay", "h2")
	require.NoError(t, err)
	assert.Nil(t, delivery)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookDeliveryRepository_ListDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWebhookDeliveryRepository(db)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM webhook_deliveries\s+WHERE status = \?\s+AND next_attempt_at <= \?\s+ORDER BY next_attempt_at ASC`).
		WithArgs(entity.WebhookDeliveryPending, now, int32(10)).
		WillReturnRows(sqlmock.NewRows(deliveryColumns).
			AddRow(1, "pay-ideal_pay", "payment", "h1", "{}", "application/json", []byte("{}"),
				entity.WebhookDeliveryPending, 0, 3, now.Add(-time.Second), nil, nil, now, now).
			AddRow(2, "pay-ideal_pay", "payment", "h2", "{}", "application/json", []byte("{}"),
				entity.WebhookDeliveryPending, 1, 3, now, "timeout", nil, now, now))

	deliveries, err := repo.ListDue(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, deliveries, 2)
	assert.Equal(t, uint64(1), deliveries[0].ID)
	assert.Equal(t, int32(1), deliveries[1].Attempts)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHostEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewHostEventRepository(db)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	deliveryID := uint64(9)
	event := &entity.HostEvent{
		DeliveryID:  &deliveryID,
		Name:        "pay_payment.failed",
		PayloadJSON: `{"id":"1001"}`,
		Status:      entity.HostEventSent,
		CreatedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO host_events`).
		WithArgs(uint64(9), "pay_payment.failed", `{"id":"1001"}`, entity.HostEventSent, nil, now).
		WillReturnResult(sqlmock.NewResult(5, 1))

	require.NoError(t, repo.Create(context.Background(), event))
	assert.Equal(t, uint64(5), event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHostEventRepository_ListSentNames(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewHostEventRepository(db)
	rows := sqlmock.NewRows([]string{"name"}).
		AddRow("pay_payment.webhook_action").
		AddRow("pay_payment.canceled")

	mock.ExpectQuery(`SELECT DISTINCT name FROM host_events WHERE delivery_id = \? AND status = \?`).
		WithArgs(uint64(9), entity.HostEventSent).
		WillReturnRows(rows)

	names, err := repo.ListSentNames(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"pay_payment.webhook_action", "pay_payment.canceled"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHeadersRoundTrip(t *testing.T) {
	headers := http.Header{}
	headers.Set("signature", "abc")
	headers.Set("Signature-KeyID", "SL-1234-5678")

	raw, err := SerializeHeaders(headers)
	require.NoError(t, err)

	parsed, err := ParseHeaders(raw)
	require.NoError(t, err)
	assert.Equal(t, "abc", parsed.Get("Signature"))
	assert.Equal(t, "SL-1234-5678", parsed.Get("signature-keyid"))

	empty, err := ParseHeaders("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
