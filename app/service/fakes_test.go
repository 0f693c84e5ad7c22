package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/entity"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
	"github.com/vibast-solutions/ms-go-paynl/app/provider"
)

type fakeGateway struct {
	mu sync.Mutex

	orders       map[string]*paynl.Order
	transactions map[string]*paynl.Transaction
	getErr       error
	calls        []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		orders:       map[string]*paynl.Order{},
		transactions: map[string]*paynl.Transaction{},
	}
}

func (f *fakeGateway) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGateway) CreateOrder(_ context.Context, req paynl.CreateOrderRequest) (*paynl.Order, error) {
	f.record("create")
	order := &paynl.Order{ID: "ord_new", Reference: req.Reference, Amount: req.Amount,
		Status: paynl.Status{Code: paynl.StatusInit}}
	f.mu.Lock()
	f.orders[order.ID] = order
	f.mu.Unlock()
	return order, nil
}

func (f *fakeGateway) GetOrder(_ context.Context, orderID string) (*paynl.Order, error) {
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

func (f *fakeGateway) CaptureOrder(_ context.Context, orderID string) (*paynl.Order, error) {
	f.record("capture:" + orderID)
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, paynl.NewError(paynl.ErrorTypeUnexpectedState, "order %s not found", orderID)
	}
	order.Status = paynl.Status{Code: paynl.StatusPaid}
	copied := *order
	return &copied, nil
}

func (f *fakeGateway) AbortOrder(_ context.Context, orderID string) (*paynl.Order, error) {
	f.record("abort:" + orderID)
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, paynl.NewError(paynl.ErrorTypeUnexpectedState, "order %s not found", orderID)
	}
	order.Status = paynl.Status{Code: paynl.StatusCancel}
	copied := *order
	return &copied, nil
}

func (f *fakeGateway) GetTransaction(_ context.Context, transactionID string) (*paynl.Transaction, error) {
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

func (f *fakeGateway) RefundTransaction(_ context.Context, transactionID string, _ paynl.RefundRequest) (*paynl.RefundResponse, error) {
	f.record("refund:" + transactionID)
	return &paynl.RefundResponse{TransactionID: transactionID}, nil
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeDeliveryRepo struct {
	deliveries map[uint64]*entity.WebhookDelivery
	nextID     uint64
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{deliveries: map[uint64]*entity.WebhookDelivery{}, nextID: 1}
}

func (r *fakeDeliveryRepo) Create(_ context.Context, delivery *entity.WebhookDelivery) error {
	delivery.ID = r.nextID
	r.nextID++
	copyItem := *delivery
	r.deliveries[delivery.ID] = &copyItem
	return nil
}

func (r *fakeDeliveryRepo) Update(_ context.Context, delivery *entity.WebhookDelivery) error {
	copyItem := *delivery
	r.deliveries[delivery.ID] = &copyItem
	return nil
}

func (r *fakeDeliveryRepo) FindPendingByPayloadHash(_ context.Context, providerID, payloadHash string) (*entity.WebhookDelivery, error) {
	for _, item := range r.deliveries {
		if item.Provider == providerID && item.PayloadHash == payloadHash && item.Status == entity.WebhookDeliveryPending {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (r *fakeDeliveryRepo) ListDue(_ context.Context, now time.Time, limit int32) ([]*entity.WebhookDelivery, error) {
	items := make([]*entity.WebhookDelivery, 0)
	for _, item := range r.deliveries {
		if item.Status == entity.WebhookDeliveryPending && !item.NextAttemptAt.After(now) {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	if int(limit) < len(items) {
		items = items[:limit]
	}
	return items, nil
}

type fakeHostEventRepo struct {
	events []*entity.HostEvent
}

func (r *fakeHostEventRepo) Create(_ context.Context, event *entity.HostEvent) error {
	copyItem := *event
	r.events = append(r.events, &copyItem)
	return nil
}

func (r *fakeHostEventRepo) ListSentNames(_ context.Context, deliveryID uint64) ([]string, error) {
	names := make([]string, 0)
	for _, event := range r.events {
		if event.DeliveryID != nil && *event.DeliveryID == deliveryID && event.Status == entity.HostEventSent {
			names = append(names, event.Name)
		}
	}
	return names, nil
}

type fakeNotifier struct {
	events []HostEvent
	err    error

	// callErrs overrides err for the call with the same 1-based index.
	callErrs map[int]error
}

func (n *fakeNotifier) Notify(_ context.Context, event HostEvent) error {
	n.events = append(n.events, event)
	if err, ok := n.callErrs[len(n.events)]; ok {
		return err
	}
	return n.err
}

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testOptions() provider.Options {
	return provider.Options{
		AccountCode:    "AT-1234-5678",
		APIToken:       "api-token",
		ServiceID:      "SL-1234-5678",
		ServiceSecret:  "sl-secret",
		ReturnURL:      "https://shop.example.com/checkout/return",
		WebhookBaseURL: "https://api.example.com",
		CaptureMode:    provider.CaptureModeManual,
	}
}

func newTestRegistry(t *testing.T, gateway provider.Gateway) *provider.Registry {
	t.Helper()
	registry, err := provider.NewRegistry(testOptions(), gateway, testLogger())
	if err != nil {
		t.Fatalf("expected registry, got error: %v", err)
	}
	return registry
}
