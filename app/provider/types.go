package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
)

// Order is the host platform order a gateway order is built from.
type Order struct {
	ID              string                 `json:"id"`
	DisplayID       int64                  `json:"display_id"`
	Email           string                 `json:"email"`
	CurrencyCode    string                 `json:"currency_code"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	Items           []LineItem             `json:"items"`
	DiscountTotal   decimal.Decimal        `json:"discount_total"`
	ShippingTotal   decimal.Decimal        `json:"shipping_total"`
	Customer        *Customer              `json:"customer,omitempty"`
	BillingAddress  *Address               `json:"billing_address,omitempty"`
	ShippingAddress *Address               `json:"shipping_address,omitempty"`
	SalesChannel    *SalesChannel          `json:"sales_channel,omitempty"`
}

func (o Order) metadataString(key string) string {
	if o.Metadata == nil {
		return ""
	}
	switch v := o.Metadata[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

type LineItem struct {
	ID            string          `json:"id"`
	VariantID     string          `json:"variant_id,omitempty"`
	VariantSKU    string          `json:"variant_sku,omitempty"`
	ProductTitle  string          `json:"product_title"`
	VariantTitle  string          `json:"variant_title"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	OriginalTotal decimal.Decimal `json:"original_total"`
	TaxLines      []TaxLine       `json:"tax_lines,omitempty"`
}

type TaxLine struct {
	Rate float64 `json:"rate"`
}

type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address_1,omitempty"`
	Address2    string `json:"address_2,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type SalesChannel struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// PaymentSession is the host's in-flight payment for an order.
type PaymentSession struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	Data         SessionData     `json:"data"`
}

// Keys the provider reads from and writes to the session data bag.
const (
	dataKeyID          = "id"
	dataKeyOrderID     = "orderId"
	dataKeySessionID   = "session_id"
	dataKeyMethodInput = "paymentMethodInput"
	dataKeyPayload     = "payload"
)

// SessionData is the opaque data bag the host stores on a payment session.
type SessionData map[string]interface{}

func (d SessionData) String(key string) string {
	if d == nil {
		return ""
	}
	switch v := d[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return decimal.NewFromFloat(v).String()
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (d SessionData) ID() string        { return d.String(dataKeyID) }
func (d SessionData) OrderID() string   { return d.String(dataKeyOrderID) }
func (d SessionData) SessionID() string { return d.String(dataKeySessionID) }

// MethodInput returns the stored paymentMethodInput as raw JSON.
func (d SessionData) MethodInput() json.RawMessage {
	return d.raw(dataKeyMethodInput)
}

// Payload decodes the order payload stored by BuildOrderPayload. ok is false
// when no payload is present.
func (d SessionData) Payload() (payload *paynl.CreateOrderRequest, ok bool, err error) {
	raw := d.raw(dataKeyPayload)
	if raw == nil {
		return nil, false, nil
	}
	var out paynl.CreateOrderRequest
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, true, err
	}
	return &out, true, nil
}

func (d SessionData) raw(key string) json.RawMessage {
	if d == nil {
		return nil
	}
	v, ok := d[key]
	if !ok || v == nil {
		return nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// toSessionData flattens a gateway object into a session data bag.
func toSessionData(v interface{}) (SessionData, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := SessionData{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PaymentInput is what the host passes to every lifecycle operation.
type PaymentInput struct {
	Data         SessionData     `json:"data"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code,omitempty"`
}

type PaymentOutput struct {
	ID     string        `json:"id,omitempty"`
	Data   SessionData   `json:"data"`
	Status SessionStatus `json:"status,omitempty"`
}

// PaymentCreateOptions are the per-provider settings attached to new orders.
type PaymentCreateOptions struct {
	WebhookURL string `json:"webhookUrl"`
	MethodID   int    `json:"methodId,omitempty"`
}

// WebhookPayload is an inbound gateway callback. Raw must be the unparsed
// request body: signatures are computed over it.
type WebhookPayload struct {
	Raw         []byte
	Headers     http.Header
	ContentType string
}
