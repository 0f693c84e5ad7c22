package controller

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/cache"
	"github.com/vibast-solutions/ms-go-paynl/app/entity"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
	"github.com/vibast-solutions/ms-go-paynl/app/provider"
	"github.com/vibast-solutions/ms-go-paynl/app/service"
	"github.com/vibast-solutions/ms-go-paynl/config"
)

type controllerGateway struct {
	orders    map[string]*paynl.Order
	configErr error
	mandate   paynl.Mandate
}

func newControllerGateway() *controllerGateway {
	return &controllerGateway{orders: map[string]*paynl.Order{}}
}

func (g *controllerGateway) CreateOrder(_ context.Context, req paynl.CreateOrderRequest) (*paynl.Order, error) {
	order := &paynl.Order{ID: "ord_new", Reference: req.Reference, Amount: req.Amount, Status: paynl.Status{Code: paynl.StatusInit}}
	g.orders[order.ID] = order
	return order, nil
}

func (g *controllerGateway) GetOrder(_ context.Context, orderID string) (*paynl.Order, error) {
	order, ok := g.orders[orderID]
	if !ok {
		return nil, &paynl.Error{Type: paynl.ErrorTypeUnexpectedState, Code: "PAY-404", Message: "order not found"}
	}
	return order, nil
}

func (g *controllerGateway) CaptureOrder(ctx context.Context, orderID string) (*paynl.Order, error) {
	order, err := g.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Status = paynl.Status{Code: paynl.StatusPaid}
	return order, nil
}

func (g *controllerGateway) AbortOrder(ctx context.Context, orderID string) (*paynl.Order, error) {
	order, err := g.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Status = paynl.Status{Code: paynl.StatusCancel}
	return order, nil
}

func (g *controllerGateway) GetTransaction(_ context.Context, transactionID string) (*paynl.Transaction, error) {
	return nil, paynl.NewError(paynl.ErrorTypeUnexpectedState, "transaction %s not found", transactionID)
}

func (g *controllerGateway) RefundTransaction(_ context.Context, transactionID string, _ paynl.RefundRequest) (*paynl.RefundResponse, error) {
	return &paynl.RefundResponse{TransactionID: transactionID}, nil
}

func (g *controllerGateway) GetConfig(_ context.Context) (*paynl.ServiceConfig, error) {
	if g.configErr != nil {
		return nil, g.configErr
	}
	return &paynl.ServiceConfig{
		CheckoutOptions: []paynl.CheckoutOption{
			{Tag: "PM_10", PaymentMethods: []paynl.CheckoutPaymentMethod{{ID: 10, Name: "iDEAL"}}},
			{Tag: "PM_138", PaymentMethods: []paynl.CheckoutPaymentMethod{{ID: 138, Name: "PayPal"}}},
		},
		CheckoutSequence: map[string]paynl.CheckoutSequence{"default": {Primary: []string{"PM_138", "PM_10"}}},
	}, nil
}

func (g *controllerGateway) CreateDirectDebit(_ context.Context, _ paynl.DirectDebitRequest) (*paynl.DirectDebitResponse, error) {
	return &paynl.DirectDebitResponse{Result: "IO-1234-5678-9012"}, nil
}

func (g *controllerGateway) GetDirectDebitInfo(_ context.Context, _ string) (*paynl.DirectDebitInfoResponse, error) {
	info := &paynl.DirectDebitInfoResponse{}
	info.Result.Mandate = g.mandate
	return info, nil
}

type controllerDeliveryRepo struct {
	items  []*entity.WebhookDelivery
	nextID uint64
}

func (r *controllerDeliveryRepo) Create(_ context.Context, delivery *entity.WebhookDelivery) error {
	r.nextID++
	delivery.ID = r.nextID
	r.items = append(r.items, delivery)
	return nil
}

func (r *controllerDeliveryRepo) Update(context.Context, *entity.WebhookDelivery) error {
	return nil
}

func (r *controllerDeliveryRepo) FindPendingByPayloadHash(_ context.Context, providerID, payloadHash string) (*entity.WebhookDelivery, error) {
	for _, item := range r.items {
		if item.Provider == providerID && item.PayloadHash == payloadHash {
			return item, nil
		}
	}
	return nil, nil
}

func (r *controllerDeliveryRepo) ListDue(context.Context, time.Time, int32) ([]*entity.WebhookDelivery, error) {
	return nil, nil
}

type controllerEventRepo struct{}

func (r *controllerEventRepo) Create(context.Context, *entity.HostEvent) error {
	return nil
}

func (r *controllerEventRepo) ListSentNames(context.Context, uint64) ([]string, error) {
	return nil, nil
}

type controllerNotifier struct{}

func (n *controllerNotifier) Notify(context.Context, service.HostEvent) error {
	return nil
}

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestRegistry(t *testing.T, gateway provider.Gateway) *provider.Registry {
	t.Helper()
	registry, err := provider.NewRegistry(provider.Options{
		AccountCode:    "AT-1234-5678",
		APIToken:       "api-token",
		ServiceID:      "SL-1234-5678",
		ServiceSecret:  "sl-secret",
		ReturnURL:      "https://shop.example.com/checkout/return",
		WebhookBaseURL: "https://api.example.com",
		CaptureMode:    provider.CaptureModeManual,
	}, gateway, testLogger())
	if err != nil {
		t.Fatalf("expected registry, got error: %v", err)
	}
	return registry
}

func newPaymentControllerForTest(t *testing.T, gateway *controllerGateway) *PaymentController {
	return NewPaymentController(service.NewPaymentService(newTestRegistry(t, gateway), testLogger()))
}

func newWebhookControllerForTest(t *testing.T, repo *controllerDeliveryRepo) *WebhookController {
	svc := service.NewWebhookService(
		repo,
		&controllerEventRepo{},
		newTestRegistry(t, newControllerGateway()),
		&controllerNotifier{},
		config.WebhooksConfig{Delay: 5 * time.Second, MaxAttempts: 3},
		nil,
		testLogger(),
	)
	return NewWebhookController(svc)
}

func newCheckoutControllerForTest(gateway *controllerGateway) *CheckoutController {
	return NewCheckoutController(service.NewCheckoutService(gateway, cache.NewMemory(), "SL-1234-5678", time.Hour, nil, testLogger()))
}
