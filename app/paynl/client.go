package paynl

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Client exposes the typed gateway operations. It holds no business logic;
// gateway errors are returned unchanged.
type Client struct {
	http      *HTTPClient
	serviceID string
}

func NewClient(httpClient *HTTPClient, serviceID string) *Client {
	return &Client{http: httpClient, serviceID: serviceID}
}

func (c *Client) ServiceID() string {
	return c.serviceID
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	req.ServiceID = c.serviceID
	req.Stats = &Stats{Object: StatsObject}

	resp, err := c.http.TGURequest(ctx, http.MethodPost, pathOrderCreate, req)
	if err != nil {
		return nil, err
	}
	var out Order
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrder(ctx context.Context, orderID string, req UpdateOrderRequest) (*Order, error) {
	resp, err := c.http.TGURequest(ctx, http.MethodPost, withID(pathOrderUpdate, orderID), req)
	if err != nil {
		return nil, err
	}
	var out Order
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return c.orderCall(ctx, http.MethodGet, withID(pathOrderStatus, orderID))
}

func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Order, error) {
	return c.orderCall(ctx, http.MethodPatch, withID(pathOrderCapture, orderID))
}

func (c *Client) AbortOrder(ctx context.Context, orderID string) (*Order, error) {
	return c.orderCall(ctx, http.MethodPatch, withID(pathOrderAbort, orderID))
}

func (c *Client) GetConfig(ctx context.Context) (*ServiceConfig, error) {
	resp, err := c.http.APIRequest(ctx, http.MethodGet, withID(pathGetConfig, c.serviceID), nil)
	if err != nil {
		return nil, err
	}
	var out ServiceConfig
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	resp, err := c.http.APIRequest(ctx, http.MethodGet, withID(pathGetTransaction, transactionID), nil)
	if err != nil {
		return nil, err
	}
	var out Transaction
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefundTransaction refunds a transaction. A request without amount refunds
// the full transaction.
func (c *Client) RefundTransaction(ctx context.Context, transactionID string, req RefundRequest) (*RefundResponse, error) {
	resp, err := c.http.APIRequest(ctx, http.MethodPatch, withID(pathTransactionRefund, transactionID), req)
	if err != nil {
		return nil, err
	}
	var out RefundResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateDirectDebit(ctx context.Context, req DirectDebitRequest) (*DirectDebitResponse, error) {
	form := map[string]interface{}{
		"serviceId":         c.serviceID,
		"reference":         req.Reference,
		"amount":            req.Amount,
		"bankaccountHolder": req.BankAccountHolder,
		"bankaccountNumber": req.BankAccountNumber,
	}
	optional := map[string]string{
		"bankaccountBic": req.BankAccountBIC,
		"processDate":    req.ProcessDate,
		"description":    req.Description,
		"currency":       req.Currency,
		"exchangeUrl":    req.ExchangeURL,
		"ipAddress":      req.IPAddress,
		"email":          req.Email,
	}
	for key, value := range optional {
		if strings.TrimSpace(value) != "" {
			form[key] = value
		}
	}

	resp, err := c.http.RestV3Request(ctx, http.MethodPost, pathDirectDebit, form)
	if err != nil {
		return nil, err
	}
	var out DirectDebitResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if err := v3ResultError(out.Request); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDirectDebitInfo(ctx context.Context, mandateID string) (*DirectDebitInfoResponse, error) {
	resp, err := c.http.RestV3Request(ctx, http.MethodPost, pathDirectDebitInfo, map[string]interface{}{
		"mandateId": mandateID,
	})
	if err != nil {
		return nil, err
	}
	var out DirectDebitInfoResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if err := v3ResultError(out.Request); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) orderCall(ctx context.Context, method, endpoint string) (*Order, error) {
	resp, err := c.http.TGURequest(ctx, method, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var out Order
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// v3ResultError reports failures the v3 API signals with a 200 response.
func v3ResultError(result V3RequestResult) error {
	if result.Result == "" || result.Result == "1" {
		return nil
	}
	message := result.ErrorMessage
	if message == "" {
		message = genericErrorMessage
	}
	return &Error{Type: ErrorTypeUnexpectedState, Code: result.ErrorID, Message: message}
}

func withID(path, id string) string {
	return strings.Replace(path, "{id}", url.PathEscape(id), 1)
}
