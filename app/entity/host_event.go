package entity

import "time"

const (
	HostEventSent    int32 = 10
	HostEventFailed  int32 = 20
	HostEventSkipped int32 = 30
)

type HostEvent struct {
	ID uint64

	DeliveryID *uint64

	Name        string
	PayloadJSON string
	Status      int32
	Error       *string

	CreatedAt time.Time
}
