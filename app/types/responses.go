package types

import (
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
	"github.com/vibast-solutions/ms-go-paynl/app/provider"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Type  string `json:"type,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

type StatusResponse struct {
	Status provider.SessionStatus `json:"status"`
}

type RetrieveResponse struct {
	Data *paynl.Order `json:"data"`
}

type OrderPayloadResponse struct {
	Payload paynl.CreateOrderRequest `json:"payload"`
}

type PaymentMethodsResponse struct {
	PaymentMethods   []paynl.CheckoutPaymentMethod     `json:"payment_methods"`
	CheckoutOptions  []paynl.CheckoutOption            `json:"checkout_options"`
	CheckoutSequence map[string]paynl.CheckoutSequence `json:"checkout_sequence"`
}

type MandateResponse struct {
	MandateID string `json:"mandate_id"`
}
