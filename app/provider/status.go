package provider

import (
	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
)

type SessionStatus string

const (
	SessionPending      SessionStatus = "pending"
	SessionAuthorized   SessionStatus = "authorized"
	SessionCaptured     SessionStatus = "captured"
	SessionCanceled     SessionStatus = "canceled"
	SessionError        SessionStatus = "error"
	SessionRequiresMore SessionStatus = "requires_more"
	SessionNotSupported SessionStatus = "not_supported"
)

type WebhookAction string

const (
	ActionAuthorized   WebhookAction = "authorized"
	ActionSuccessful   WebhookAction = "successful"
	ActionPending      WebhookAction = "pending"
	ActionCanceled     WebhookAction = "canceled"
	ActionFailed       WebhookAction = "failed"
	ActionRequiresMore WebhookAction = "requires_more"
	ActionNotSupported WebhookAction = "not_supported"
)

// StatusTableVersion identifies the revision of the gateway status tables
// below. Bump it whenever a mapping changes.
// See https://developer.pay.nl/docs/transaction-statuses
const StatusTableVersion = "2025-01"

var sessionStatusTable = map[int]SessionStatus{
	paynl.StatusInit:            SessionPending,
	paynl.StatusPending50:       SessionPending,
	paynl.StatusPending90:       SessionPending,
	paynl.StatusPending98:       SessionPending,
	paynl.StatusVerify:          SessionPending,
	paynl.StatusCancel:          SessionCanceled,
	paynl.StatusExpired:         SessionCanceled,
	paynl.StatusDenied64:        SessionCanceled,
	paynl.StatusDenied63:        SessionCanceled,
	paynl.StatusCancel61:        SessionCanceled,
	paynl.StatusChargeback:      SessionCanceled,
	paynl.StatusFailure:         SessionError,
	paynl.StatusPaidCheckAmount: SessionError,
	paynl.StatusPartialPayment:  SessionRequiresMore,
	paynl.StatusPartlyCaptured:  SessionRequiresMore,
	paynl.StatusAuthorize:       SessionAuthorized,
	paynl.StatusPaid:            SessionCaptured,
}

var webhookActionTable = map[int]WebhookAction{
	paynl.StatusPaid:            ActionSuccessful,
	paynl.StatusInit:            ActionPending,
	paynl.StatusPending50:       ActionPending,
	paynl.StatusPending90:       ActionPending,
	paynl.StatusPending98:       ActionPending,
	paynl.StatusVerify:          ActionPending,
	paynl.StatusCancel:          ActionCanceled,
	paynl.StatusExpired:         ActionCanceled,
	paynl.StatusDenied64:        ActionCanceled,
	paynl.StatusDenied63:        ActionCanceled,
	paynl.StatusCancel61:        ActionCanceled,
	paynl.StatusChargeback:      ActionCanceled,
	paynl.StatusFailure:         ActionFailed,
	paynl.StatusPaidCheckAmount: ActionFailed,
	paynl.StatusPartialPayment:  ActionRequiresMore,
	paynl.StatusPartlyCaptured:  ActionRequiresMore,
	paynl.StatusAuthorize:       ActionAuthorized,
}

// cancelledStatuses are the codes for which an abort is skipped.
var cancelledStatuses = map[int]struct{}{
	paynl.StatusCancel:     {},
	paynl.StatusExpired:    {},
	paynl.StatusDenied64:   {},
	paynl.StatusDenied63:   {},
	paynl.StatusCancel61:   {},
	paynl.StatusChargeback: {},
}

// MapStatus never fails: codes outside the table map to not_supported.
func MapStatus(code int) SessionStatus {
	if status, ok := sessionStatusTable[code]; ok {
		return status
	}
	return SessionNotSupported
}

func MapAction(code int) WebhookAction {
	if action, ok := webhookActionTable[code]; ok {
		return action
	}
	return ActionNotSupported
}

type WebhookActionData struct {
	SessionID string          `json:"session_id"`
	Amount    decimal.Decimal `json:"amount"`
}

type WebhookActionResult struct {
	Action WebhookAction     `json:"action"`
	Data   WebhookActionData `json:"data"`

	// Order is the gateway order the action was derived from.
	Order *paynl.Order `json:"-"`
}

func MapWebhookAction(order *paynl.Order) WebhookActionResult {
	if order == nil {
		return WebhookActionResult{Action: ActionNotSupported}
	}
	return WebhookActionResult{
		Action: MapAction(order.Status.Code),
		Data:   actionData(order),
		Order:  order,
	}
}

func actionData(order *paynl.Order) WebhookActionData {
	return WebhookActionData{
		SessionID: order.TransferData["session_id"],
		Amount:    MajorUnits(order.Amount.Value),
	}
}

// MinorUnits converts a major unit amount (12.34) into gateway minor units
// (1234), rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func MajorUnits(value int64) decimal.Decimal {
	return decimal.New(value, -2)
}
