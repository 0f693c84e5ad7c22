package entity

import "time"

const (
	WebhookDeliveryPending   int32 = 1
	WebhookDeliveryProcessed int32 = 10
	WebhookDeliveryFailed    int32 = 20
)

// WebhookDelivery is a received gateway webhook waiting for delayed dispatch.
type WebhookDelivery struct {
	ID uint64

	Provider    string
	Route       string
	PayloadHash string
	HeadersJSON string
	ContentType string
	Payload     []byte

	Status        int32
	Attempts      int32
	MaxAttempts   int32
	NextAttemptAt time.Time
	LastError     *string
	Action        *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
