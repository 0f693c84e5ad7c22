package provider

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
)

func TestMapStatus(t *testing.T) {
	cases := map[int]SessionStatus{
		20:  SessionPending,
		50:  SessionPending,
		85:  SessionPending,
		90:  SessionPending,
		98:  SessionPending,
		95:  SessionAuthorized,
		100: SessionCaptured,
		-90: SessionCanceled,
		-80: SessionCanceled,
		-64: SessionCanceled,
		-63: SessionCanceled,
		-61: SessionCanceled,
		-71: SessionCanceled,
		-60: SessionError,
		-51: SessionError,
		80:  SessionRequiresMore,
		97:  SessionRequiresMore,
		-72: SessionNotSupported,
		-81: SessionNotSupported,
		-82: SessionNotSupported,
		0:   SessionNotSupported,
		999: SessionNotSupported,
	}
	for code, want := range cases {
		assert.Equal(t, want, MapStatus(code), "code %d", code)
	}
}

func TestMapActionCoversStatusTable(t *testing.T) {
	for code := range sessionStatusTable {
		assert.NotEqual(t, ActionNotSupported, MapAction(code), "code %d has no webhook action", code)
	}
	assert.Equal(t, ActionNotSupported, MapAction(-82))
}

func TestMapWebhookActionPaid(t *testing.T) {
	order := &paynl.Order{
		Status:       paynl.Status{Code: paynl.StatusPaid},
		Amount:       paynl.Amount{Value: 2500, Currency: "EUR"},
		TransferData: paynl.TransferData{"session_id": "sess_1"},
	}

	result := MapWebhookAction(order)

	assert.Equal(t, ActionSuccessful, result.Action)
	assert.Equal(t, "sess_1", result.Data.SessionID)
	assert.True(t, decimal.RequireFromString("25.00").Equal(result.Data.Amount))
	assert.Equal(t, "25.00", result.Data.Amount.StringFixed(2))
	assert.Same(t, order, result.Order)
}

func TestMapWebhookActionNil(t *testing.T) {
	assert.Equal(t, ActionNotSupported, MapWebhookAction(nil).Action)
}

func TestMinorMajorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), MinorUnits(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(2500), MinorUnits(decimal.RequireFromString("25")))
	assert.Equal(t, int64(1), MinorUnits(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(-1050), MinorUnits(decimal.RequireFromString("-10.5")))

	assert.Equal(t, "19.99", MajorUnits(1999).StringFixed(2))
	assert.Equal(t, "25.00", MajorUnits(2500).StringFixed(2))
	assert.Equal(t, int64(4321), MinorUnits(MajorUnits(4321)))
}
