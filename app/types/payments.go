package types

import (
	"errors"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
	"github.com/vibast-solutions/ms-go-paynl/app/provider"
)

// maxWebhookBodyBytes bounds the webhook body read into memory.
const maxWebhookBodyBytes = 1 << 20

// PaymentRequest is the body of every lifecycle call made by the host.
type PaymentRequest struct {
	ProviderID   string               `json:"-"`
	Data         provider.SessionData `json:"data"`
	Amount       decimal.Decimal      `json:"amount"`
	CurrencyCode string               `json:"currency_code"`
}

func NewPaymentRequestFromContext(ctx echo.Context) (*PaymentRequest, error) {
	var body PaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.ProviderID = strings.TrimSpace(ctx.Param("provider"))
	body.CurrencyCode = strings.ToUpper(strings.TrimSpace(body.CurrencyCode))
	if body.Data == nil {
		body.Data = provider.SessionData{}
	}

	return &body, nil
}

func (r *PaymentRequest) Validate() error {
	if r.ProviderID == "" {
		return errors.New("provider is required")
	}
	if r.Amount.IsNegative() {
		return errors.New("amount must be >= 0")
	}
	if r.CurrencyCode != "" && len(r.CurrencyCode) != 3 {
		return errors.New("currency_code must be 3 letters")
	}
	return nil
}

func (r *PaymentRequest) ToInput() provider.PaymentInput {
	return provider.PaymentInput{Data: r.Data, Amount: r.Amount, CurrencyCode: r.CurrencyCode}
}

// SessionDataRequest carries only the session data bag, for status and
// retrieve lookups.
type SessionDataRequest struct {
	ProviderID string               `json:"-"`
	Data       provider.SessionData `json:"data"`
}

func NewSessionDataRequestFromContext(ctx echo.Context) (*SessionDataRequest, error) {
	var body SessionDataRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.ProviderID = strings.TrimSpace(ctx.Param("provider"))
	return &body, nil
}

func (r *SessionDataRequest) Validate() error {
	if r.ProviderID == "" {
		return errors.New("provider is required")
	}
	if r.Data.ID() == "" && r.Data.OrderID() == "" {
		return errors.New("data.id or data.orderId is required")
	}
	return nil
}

// OrderPayloadRequest asks for the gateway order body of a host order.
type OrderPayloadRequest struct {
	ProviderID string                  `json:"-"`
	Order      provider.Order          `json:"order"`
	Session    provider.PaymentSession `json:"session"`
}

func NewOrderPayloadRequestFromContext(ctx echo.Context) (*OrderPayloadRequest, error) {
	var body OrderPayloadRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.ProviderID = strings.TrimSpace(ctx.Param("provider"))
	body.Order.ID = strings.TrimSpace(body.Order.ID)
	body.Order.CurrencyCode = strings.ToUpper(strings.TrimSpace(body.Order.CurrencyCode))
	body.Session.CurrencyCode = strings.ToUpper(strings.TrimSpace(body.Session.CurrencyCode))
	return &body, nil
}

func (r *OrderPayloadRequest) Validate() error {
	if r.ProviderID == "" {
		return errors.New("provider is required")
	}
	if r.Order.ID == "" {
		return errors.New("order.id is required")
	}
	if len(r.Order.Items) == 0 {
		return errors.New("order.items must not be empty")
	}
	return nil
}

// WebhookRequest is an inbound gateway callback with its raw body.
type WebhookRequest struct {
	ProviderID string
	Payload    provider.WebhookPayload
}

func NewWebhookRequestFromContext(ctx echo.Context) (*WebhookRequest, error) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		return nil, err
	}

	return &WebhookRequest{
		ProviderID: strings.TrimSpace(ctx.Param("provider")),
		Payload: provider.WebhookPayload{
			Raw:         body,
			Headers:     ctx.Request().Header.Clone(),
			ContentType: ctx.Request().Header.Get(echo.HeaderContentType),
		},
	}, nil
}

func (r *WebhookRequest) Validate() error {
	if r.ProviderID == "" {
		return errors.New("provider is required")
	}
	if len(r.Payload.Raw) == 0 {
		return errors.New("empty webhook body")
	}
	return nil
}

// CreateMandateRequest opens a SEPA direct debit mandate.
type CreateMandateRequest struct {
	Reference         string `json:"reference"`
	AmountCents       int64  `json:"amount_cents"`
	BankAccountHolder string `json:"bank_account_holder"`
	BankAccountNumber string `json:"bank_account_number"`
	BankAccountBIC    string `json:"bank_account_bic"`
	ProcessDate       string `json:"process_date"`
	Description       string `json:"description"`
	Currency          string `json:"currency"`
	ExchangeURL       string `json:"exchange_url"`
	IPAddress         string `json:"ip_address"`
	Email             string `json:"email"`
}

func NewCreateMandateRequestFromContext(ctx echo.Context) (*CreateMandateRequest, error) {
	var body CreateMandateRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Reference = strings.TrimSpace(body.Reference)
	body.BankAccountHolder = strings.TrimSpace(body.BankAccountHolder)
	body.BankAccountNumber = provider.NormalizeIBAN(body.BankAccountNumber)
	body.BankAccountBIC = strings.ToUpper(strings.TrimSpace(body.BankAccountBIC))
	body.ProcessDate = strings.TrimSpace(body.ProcessDate)
	body.Description = strings.TrimSpace(body.Description)
	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	body.ExchangeURL = strings.TrimSpace(body.ExchangeURL)
	body.IPAddress = strings.TrimSpace(body.IPAddress)
	if body.IPAddress == "" {
		body.IPAddress = ctx.RealIP()
	}
	body.Email = strings.TrimSpace(body.Email)

	return &body, nil
}

func (r *CreateMandateRequest) Validate() error {
	if r.Reference == "" {
		return errors.New("reference is required")
	}
	if r.AmountCents <= 0 {
		return errors.New("amount_cents must be > 0")
	}
	if r.BankAccountHolder == "" {
		return errors.New("bank_account_holder is required")
	}
	if r.BankAccountNumber == "" {
		return errors.New("bank_account_number is required")
	}
	if r.Currency != "" && len(r.Currency) != 3 {
		return errors.New("currency must be 3 letters")
	}
	return nil
}

func (r *CreateMandateRequest) ToGatewayRequest() paynl.DirectDebitRequest {
	return paynl.DirectDebitRequest{
		Reference:         r.Reference,
		Amount:            r.AmountCents,
		BankAccountHolder: r.BankAccountHolder,
		BankAccountNumber: r.BankAccountNumber,
		BankAccountBIC:    r.BankAccountBIC,
		ProcessDate:       r.ProcessDate,
		Description:       r.Description,
		Currency:          r.Currency,
		ExchangeURL:       r.ExchangeURL,
		IPAddress:         r.IPAddress,
		Email:             r.Email,
	}
}

func NewMandateIDFromContext(ctx echo.Context) (string, error) {
	id := strings.TrimSpace(ctx.Param("mandateId"))
	if id == "" {
		return "", errors.New("mandate id is required")
	}
	return id, nil
}
