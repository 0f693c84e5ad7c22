package provider

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
)

type fakeGateway struct {
	mu sync.Mutex

	orders       map[string]*paynl.Order
	transactions map[string]*paynl.Transaction

	createErr  error
	captureErr error
	abortErr   error
	refundErr  error
	getErr     error

	// captureTo is the status code an order moves to after capture.
	captureTo int

	calls       []string
	created     []paynl.CreateOrderRequest
	refunds     []paynl.RefundRequest
	mutations   int
	refundReply *paynl.RefundResponse
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		orders:       map[string]*paynl.Order{},
		transactions: map[string]*paynl.Transaction{},
		captureTo:    paynl.StatusPaid,
	}
}

func (f *fakeGateway) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGateway) CreateOrder(ctx context.Context, req paynl.CreateOrderRequest) (*paynl.Order, error) {
	f.record("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	order := &paynl.Order{
		ID:           "ord_new",
		OrderID:      "51000000000X0001",
		Reference:    req.Reference,
		Amount:       req.Amount,
		Status:       paynl.Status{Code: paynl.StatusInit, Action: "PENDING"},
		TransferData: req.TransferData,
	}
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeGateway) GetOrder(ctx context.Context, orderID string) (*paynl.Order, error) {
	f.record("get_order:" + orderID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return nil, paynl.NewError(paynl.ErrorTypeUnexpectedState, "order %s not found", orderID)
	}
	copied := *order
	return &copied, nil
}

func (f *fakeGateway) CaptureOrder(ctx context.Context, orderID string) (*paynl.Order, error) {
	f.record("capture:" + orderID)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	if order, ok := f.orders[orderID]; ok {
		order.Status.Code = f.captureTo
	}
	if tx, ok := f.transactions[orderID]; ok {
		tx.Status.Code = f.captureTo
	}
	return f.orders[orderID], nil
}

func (f *fakeGateway) AbortOrder(ctx context.Context, orderID string) (*paynl.Order, error) {
	f.record("abort:" + orderID)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	if f.abortErr != nil {
		return nil, f.abortErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return nil, paynl.NewError(paynl.ErrorTypeUnexpectedState, "order %s not found", orderID)
	}
	order.Status.Code = paynl.StatusCancel
	copied := *order
	return &copied, nil
}

func (f *fakeGateway) GetTransaction(ctx context.Context, transactionID string) (*paynl.Transaction, error) {
	f.record("get_transaction:" + transactionID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	tx, ok := f.transactions[transactionID]
	if !ok {
		return nil, paynl.NewError(paynl.ErrorTypeUnexpectedState, "transaction %s not found", transactionID)
	}
	copied := *tx
	return &copied, nil
}

func (f *fakeGateway) RefundTransaction(ctx context.Context, transactionID string, req paynl.RefundRequest) (*paynl.RefundResponse, error) {
	f.record("refund:" + transactionID)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	f.refunds = append(f.refunds, req)
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	if f.refundReply != nil {
		return f.refundReply, nil
	}
	return &paynl.RefundResponse{TransactionID: transactionID}, nil
}

func (f *fakeGateway) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testOptions() Options {
	return Options{
		AccountCode:         "AT-1234-5678",
		APIToken:            "api-token",
		ServiceID:           "SL-1234-5678",
		ServiceSecret:       "sl-secret",
		OtherServiceSecrets: map[string]string{"SL-9999-0000": "other-secret"},
		ReturnURL:           "https://shop.example.com/checkout/return",
		WebhookBaseURL:      "https://api.example.com/",
		CaptureMode:         CaptureModeManual,
	}
}

func newTestProvider(t interface{ Helper() }, identifier string, gateway *fakeGateway) *Provider {
	t.Helper()
	for _, d := range Descriptors {
		if d.Identifier == identifier {
			return NewProvider(d, testOptions(), gateway, testLogger())
		}
	}
	panic("unknown descriptor " + identifier)
}
