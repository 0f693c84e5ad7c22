package paynl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type Amount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency,omitempty"`
}

type Status struct {
	Code   int    `json:"code"`
	Action string `json:"action,omitempty"`
	Phase  string `json:"phase,omitempty"`
}

type Address struct {
	FirstName             string `json:"firstName,omitempty"`
	LastName              string `json:"lastName,omitempty"`
	Street                string `json:"street,omitempty"`
	StreetNumber          string `json:"streetNumber,omitempty"`
	StreetNumberExtension string `json:"streetNumberExtension,omitempty"`
	ZipCode               string `json:"zipCode,omitempty"`
	City                  string `json:"city,omitempty"`
	Country               string `json:"country,omitempty"`
	Region                string `json:"region,omitempty"`
}

type Company struct {
	Name      string `json:"name,omitempty"`
	CocNumber string `json:"cocNumber,omitempty"`
	VATNumber string `json:"vatNumber,omitempty"`
	Country   string `json:"country,omitempty"`
}

type Customer struct {
	Email     string   `json:"email,omitempty"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	BirthDate string   `json:"birthDate,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Locale    string   `json:"locale,omitempty"`
	IPAddress string   `json:"ipAddress,omitempty"`
	Trust     *int     `json:"trust,omitempty"`
	Reference string   `json:"reference,omitempty"`
	Company   *Company `json:"company,omitempty"`
}

type Product struct {
	ID            string   `json:"id,omitempty"`
	Description   string   `json:"description,omitempty"`
	Type          string   `json:"type,omitempty"`
	Price         *Amount  `json:"price,omitempty"`
	Quantity      int      `json:"quantity,omitempty"`
	VATPercentage *float64 `json:"vatPercentage,omitempty"`
}

type PaymentMethod struct {
	ID    int             `json:"id"`
	Input json.RawMessage `json:"input,omitempty"`
}

type OrderDetails struct {
	CountryCode     string    `json:"countryCode,omitempty"`
	DeliveryDate    string    `json:"deliveryDate,omitempty"`
	InvoiceDate     string    `json:"invoiceDate,omitempty"`
	DeliveryAddress *Address  `json:"deliveryAddress,omitempty"`
	InvoiceAddress  *Address  `json:"invoiceAddress,omitempty"`
	Products        []Product `json:"products,omitempty"`
}

type Stats struct {
	Info   string `json:"info,omitempty"`
	Tool   string `json:"tool,omitempty"`
	Object string `json:"object,omitempty"`
	Extra1 string `json:"extra1,omitempty"`
	Extra2 string `json:"extra2,omitempty"`
	Extra3 string `json:"extra3,omitempty"`
}

// CreateOrderRequest is the TGU order payload. ServiceID and Stats are
// filled in by Client.CreateOrder.
type CreateOrderRequest struct {
	ServiceID     string            `json:"serviceId,omitempty"`
	Description   string            `json:"description,omitempty"`
	Reference     string            `json:"reference,omitempty"`
	Expire        string            `json:"expire,omitempty"`
	ReturnURL     string            `json:"returnUrl,omitempty"`
	ExchangeURL   string            `json:"exchangeUrl,omitempty"`
	Amount        Amount            `json:"amount"`
	PaymentMethod *PaymentMethod    `json:"paymentMethod,omitempty"`
	Customer      *Customer         `json:"customer,omitempty"`
	Order         *OrderDetails     `json:"order,omitempty"`
	TransferData  map[string]string `json:"transferData,omitempty"`
	Stats         *Stats            `json:"stats,omitempty"`
}

// UpdateOrderRequest only carries the fields the gateway allows to change on
// an existing order.
type UpdateOrderRequest struct {
	Description string `json:"description,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

type Integration struct {
	Test     bool `json:"test"`
	TestMode bool `json:"testMode,omitempty"`
}

type CheckoutData struct {
	Customer        *Customer `json:"customer,omitempty"`
	BillingAddress  *Address  `json:"billingAddress,omitempty"`
	ShippingAddress *Address  `json:"shippingAddress,omitempty"`
}

type OrderPayment struct {
	ID               string         `json:"id"`
	PaymentMethod    *PaymentMethod `json:"paymentMethod,omitempty"`
	CustomerType     string         `json:"customerType,omitempty"`
	CustomerKey      string         `json:"customerKey,omitempty"`
	CustomerName     string         `json:"customerName,omitempty"`
	IPAddress        string         `json:"ipAddress,omitempty"`
	SecureStatus     bool           `json:"secureStatus"`
	Status           Status         `json:"status"`
	Amount           *Amount        `json:"amount,omitempty"`
	AuthorizedAmount *Amount        `json:"authorizedAmount,omitempty"`
	CapturedAmount   *Amount        `json:"capturedAmount,omitempty"`
}

// Order is a TGU order as returned by create, status, capture and abort.
type Order struct {
	ID                 string            `json:"id"`
	OrderID            string            `json:"orderId,omitempty"`
	ServiceID          string            `json:"serviceId,omitempty"`
	Description        string            `json:"description,omitempty"`
	Reference          string            `json:"reference,omitempty"`
	ManualTransferCode string            `json:"manualTransferCode,omitempty"`
	UUID               string            `json:"uuid,omitempty"`
	CustomerKey        string            `json:"customerKey,omitempty"`
	Status             Status            `json:"status"`
	Receipt            string            `json:"receipt,omitempty"`
	Integration        *Integration      `json:"integration,omitempty"`
	Amount             Amount            `json:"amount"`
	AuthorizedAmount   *Amount           `json:"authorizedAmount,omitempty"`
	CapturedAmount     *Amount           `json:"capturedAmount,omitempty"`
	CheckoutData       *CheckoutData     `json:"checkoutData,omitempty"`
	Payments           []OrderPayment    `json:"payments,omitempty"`
	CreatedAt          string            `json:"createdAt,omitempty"`
	CreatedBy          string            `json:"createdBy,omitempty"`
	ModifiedAt         string            `json:"modifiedAt,omitempty"`
	ModifiedBy         string            `json:"modifiedBy,omitempty"`
	ExpiresAt          string            `json:"expiresAt,omitempty"`
	CompletedAt        string            `json:"completedAt,omitempty"`
	Links              map[string]string `json:"links,omitempty"`
	TransferData       TransferData      `json:"transferData,omitempty"`
}

// Transaction is a legacy REST transaction. Ids of legacy transactions start
// with "2".
type Transaction struct {
	ID              string          `json:"id"`
	OrderID         string          `json:"orderId,omitempty"`
	ServiceCode     string          `json:"serviceCode,omitempty"`
	Description     string          `json:"description,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	IPAddress       string          `json:"ipAddress,omitempty"`
	Amount          Amount          `json:"amount"`
	AmountConverted *Amount         `json:"amountConverted,omitempty"`
	AmountPaid      *Amount         `json:"amountPaid,omitempty"`
	AmountRefunded  *Amount         `json:"amountRefunded,omitempty"`
	Status          Status          `json:"status"`
	PaymentData     json.RawMessage `json:"paymentData,omitempty"`
	PaymentMethod   *PaymentMethod  `json:"paymentMethod,omitempty"`
	Integration     *Integration    `json:"integration,omitempty"`
	Customer        *Customer       `json:"customer,omitempty"`
	Order           json.RawMessage `json:"order,omitempty"`
	Stats           *Stats          `json:"stats,omitempty"`
	TransferData    TransferData    `json:"transferData,omitempty"`
	ExpiresAt       string          `json:"expiresAt,omitempty"`
	CreatedAt       string          `json:"createdAt,omitempty"`
	ModifiedAt      string          `json:"modifiedAt,omitempty"`
}

// AsOrder projects a legacy transaction onto the order shape used by the
// status mapping and the webhook dispatcher.
func (t *Transaction) AsOrder() *Order {
	if t == nil {
		return nil
	}
	order := &Order{
		ID:           t.ID,
		OrderID:      t.OrderID,
		ServiceID:    t.ServiceCode,
		Description:  t.Description,
		Reference:    t.Reference,
		Status:       t.Status,
		Integration:  t.Integration,
		Amount:       t.Amount,
		TransferData: t.TransferData,
		CreatedAt:    t.CreatedAt,
		ModifiedAt:   t.ModifiedAt,
		ExpiresAt:    t.ExpiresAt,
	}
	if t.AmountPaid != nil {
		paid := *t.AmountPaid
		order.CapturedAmount = &paid
	}
	return order
}

// TransferData is a flat string map. The REST API returns it as a list of
// name/value pairs, the TGU API as an object; both decode into the map.
type TransferData map[string]string

func (d *TransferData) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = nil
		return nil
	}

	out := TransferData{}
	switch trimmed[0] {
	case '{':
		var raw map[string]interface{}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		for k, v := range raw {
			out[k] = stringify(v)
		}
	case '[':
		var pairs []struct {
			Name  string      `json:"name"`
			Value interface{} `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &pairs); err != nil {
			return err
		}
		for _, p := range pairs {
			if p.Name == "" {
				continue
			}
			out[p.Name] = stringify(p.Value)
		}
	default:
		return fmt.Errorf("transferData: unsupported JSON value")
	}
	*d = out
	return nil
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

type Translations struct {
	Name map[string]string `json:"name,omitempty"`
}

type CheckoutMethodOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type CheckoutPaymentMethod struct {
	ID           int                    `json:"id"`
	Name         string                 `json:"name"`
	Translations *Translations          `json:"translations,omitempty"`
	Image        string                 `json:"image,omitempty"`
	Options      []CheckoutMethodOption `json:"options,omitempty"`
	Settings     json.RawMessage        `json:"settings,omitempty"`
}

type RequiredField struct {
	FieldName string `json:"fieldName"`
	Mandatory string `json:"mandatory"`
}

type CheckoutOption struct {
	Tag            string                  `json:"tag"`
	Name           string                  `json:"name"`
	Translations   *Translations           `json:"translations,omitempty"`
	Image          string                  `json:"image,omitempty"`
	PaymentMethods []CheckoutPaymentMethod `json:"paymentMethods"`
	RequiredFields []RequiredField         `json:"requiredFields,omitempty"`
}

type CheckoutSequence struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
}

// ServiceConfig is the sales location configuration. Only the fields used by
// the checkout are typed.
type ServiceConfig struct {
	Code             string                      `json:"code"`
	Name             string                      `json:"name"`
	TestMode         bool                        `json:"testMode"`
	Status           string                      `json:"status,omitempty"`
	CheckoutOptions  []CheckoutOption            `json:"checkoutOptions"`
	CheckoutSequence map[string]CheckoutSequence `json:"checkoutSequence"`
	CheckoutTexts    json.RawMessage             `json:"checkoutTexts,omitempty"`
}

type RefundRequest struct {
	Amount        *Amount   `json:"amount,omitempty"`
	Products      []Product `json:"products,omitempty"`
	Description   string    `json:"description,omitempty"`
	ProcessDate   string    `json:"processDate,omitempty"`
	VATPercentage *float64  `json:"vatPercentage,omitempty"`
}

type RefundedTransaction struct {
	AmountRefunded Amount `json:"amountRefunded"`
	Refund         struct {
		ID string `json:"id"`
	} `json:"refund"`
	CreatedAt string `json:"createdAt,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
}

type RefundResponse struct {
	OrderID              string                `json:"orderId"`
	TransactionID        string                `json:"transactionId"`
	Description          string                `json:"description,omitempty"`
	ProcessDate          string                `json:"processDate,omitempty"`
	Amount               Amount                `json:"amount"`
	AmountRefunded       Amount                `json:"amountRefunded"`
	RefundedTransactions []RefundedTransaction `json:"refundedTransactions,omitempty"`
	CreatedAt            string                `json:"createdAt,omitempty"`
	CreatedBy            string                `json:"createdBy,omitempty"`
}

type DirectDebitRequest struct {
	Reference         string
	Amount            int64
	BankAccountHolder string
	BankAccountNumber string
	BankAccountBIC    string
	ProcessDate       string
	Description       string
	Currency          string
	ExchangeURL       string
	IPAddress         string
	Email             string
}

type V3RequestResult struct {
	Result       string `json:"result"`
	ErrorID      string `json:"errorId"`
	ErrorMessage string `json:"errorMessage"`
}

type DirectDebitResponse struct {
	Request V3RequestResult `json:"request"`
	Result  string          `json:"result"`
}

type Mandate struct {
	MandateID         string `json:"mandateId"`
	Type              string `json:"type"`
	BankAccountNumber string `json:"bankaccountNumber"`
	BankAccountOwner  string `json:"bankaccounOwner"`
	BankAccountBIC    string `json:"bankaccountBic"`
	Amount            string `json:"amount"`
	Description       string `json:"description"`
	State             string `json:"state"`
	IPAddress         string `json:"ipAddress"`
	Email             string `json:"email"`
}

type DirectDebit struct {
	ReferenceID       string `json:"referenceId"`
	BankAccountNumber string `json:"bankaccountNumber"`
	BankAccountHolder string `json:"bankaccountHolder"`
	BankAccountBIC    string `json:"bankaccountBic"`
	PaymentSessionID  string `json:"paymentSessionId"`
	Amount            string `json:"amount"`
	Description       string `json:"description"`
	SendDate          string `json:"sendDate"`
	ReceiveDate       string `json:"receiveDate"`
	StatusCode        string `json:"statusCode"`
	StatusName        string `json:"statusName"`
	DeclineCode       string `json:"declineCode"`
	DeclineName       string `json:"declineName"`
	DeclineDate       string `json:"declineDate"`
}

type DirectDebitInfoResponse struct {
	Request V3RequestResult `json:"request"`
	Result  struct {
		Mandate     Mandate       `json:"mandate"`
		DirectDebit []DirectDebit `json:"directDebit"`
	} `json:"result"`
}
