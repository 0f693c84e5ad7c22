package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-paynl/app/entity"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
	"github.com/vibast-solutions/ms-go-paynl/app/provider"
	"github.com/vibast-solutions/ms-go-paynl/config"
)

const canceledOrderBody = `{"type":"order","object":{"id":"ord_1","reference":"1001","status":{"code":-90,"action":"CANCEL"},"amount":{"value":2500,"currency":"EUR"},"transferData":{"session_id":"sess_1"}}}`

type webhookFixture struct {
	service  *WebhookService
	gateway  *fakeGateway
	repo     *fakeDeliveryRepo
	events   *fakeHostEventRepo
	notifier *fakeNotifier
	now      time.Time
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	f := &webhookFixture{
		gateway:  newFakeGateway(),
		repo:     newFakeDeliveryRepo(),
		events:   &fakeHostEventRepo{},
		notifier: &fakeNotifier{},
		now:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewWebhookService(f.repo, f.events, newTestRegistry(t, f.gateway), f.notifier, config.WebhooksConfig{
		Delay:         5 * time.Second,
		MaxAttempts:   3,
		RetryInterval: time.Minute,
		JobBatchSize:  10,
	}, nil, testLogger())
	f.service.now = func() time.Time { return f.now }
	return f
}

func signedPayload(t *testing.T, body string) provider.WebhookPayload {
	t.Helper()
	signature, err := provider.ComputeSignature("sha256", "sl-secret", []byte(body))
	if err != nil {
		t.Fatalf("expected signature, got error: %v", err)
	}
	headers := http.Header{}
	headers.Set(provider.HeaderSignatureMethod, "HMAC")
	headers.Set(provider.HeaderSignatureKeyID, "SL-1234-5678")
	headers.Set(provider.HeaderSignatureAlgorithm, "sha256")
	headers.Set(provider.HeaderSignature, signature)
	return provider.WebhookPayload{Raw: []byte(body), Headers: headers, ContentType: "application/json"}
}

func TestReceiveStoresDelayedDelivery(t *testing.T) {
	f := newWebhookFixture(t)

	delivery, err := f.service.Receive(context.Background(), "payment", "pay-ideal_pay", signedPayload(t, canceledOrderBody))
	if err != nil {
		t.Fatalf("expected receive to succeed, got %v", err)
	}
	if delivery.Status != entity.WebhookDeliveryPending {
		t.Fatalf("expected pending delivery, got %d", delivery.Status)
	}
	if !delivery.NextAttemptAt.Equal(f.now.Add(5 * time.Second)) {
		t.Fatalf("expected dispatch after delay, got %s", delivery.NextAttemptAt)
	}
	if delivery.MaxAttempts != 3 {
		t.Fatalf("expected 3 max attempts, got %d", delivery.MaxAttempts)
	}

	again, err := f.service.Receive(context.Background(), "payment", "pay-ideal_pay", signedPayload(t, canceledOrderBody))
	if err != nil {
		t.Fatalf("expected duplicate receive to succeed, got %v", err)
	}
	if again.ID != delivery.ID || len(f.repo.deliveries) != 1 {
		t.Fatalf("expected identical pending webhook to be coalesced")
	}
	if f.gateway.callCount() != 0 {
		t.Fatalf("expected no gateway calls while receiving")
	}
}

func TestReceiveRejectsUnknownProviderAndEmptyBody(t *testing.T) {
	f := newWebhookFixture(t)

	_, err := f.service.Receive(context.Background(), "payment", "stripe_default", signedPayload(t, canceledOrderBody))
	if !errors.Is(err, ErrProviderUnsupported) {
		t.Fatalf("expected ErrProviderUnsupported, got %v", err)
	}

	_, err = f.service.Receive(context.Background(), "pay", "pay_pay", provider.WebhookPayload{})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(f.repo.deliveries) != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestDispatchWaitsForDelayAndEmitsCanceledEvents(t *testing.T) {
	f := newWebhookFixture(t)

	delivery, err := f.service.Receive(context.Background(), "payment", "pay-ideal_pay", signedPayload(t, canceledOrderBody))
	if err != nil {
		t.Fatalf("expected receive to succeed, got %v", err)
	}

	if err := f.service.RunDispatchWebhooksBatch(context.Background()); err != nil {
		t.Fatalf("expected empty batch, got %v", err)
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("expected no dispatch before the delay elapsed")
	}

	f.now = f.now.Add(5 * time.Second)
	if err := f.service.RunDispatchWebhooksBatch(context.Background()); err != nil {
		t.Fatalf("expected dispatch to succeed, got %v", err)
	}

	if len(f.notifier.events) != 2 {
		t.Fatalf("expected 2 host events, got %d", len(f.notifier.events))
	}
	first, ok := f.notifier.events[0].Data.(WebhookActionEvent)
	if f.notifier.events[0].Name != EventWebhookAction || !ok {
		t.Fatalf("expected webhook action event first, got %+v", f.notifier.events[0])
	}
	if first.Action != provider.ActionCanceled || first.Data.SessionID != "sess_1" || first.Data.Amount.String() != "25" {
		t.Fatalf("unexpected webhook action data: %+v", first)
	}
	if f.notifier.events[1].Name != EventPaymentCanceled || f.notifier.events[1].Data != (OrderEvent{ID: "1001"}) {
		t.Fatalf("expected canceled event for order 1001, got %+v", f.notifier.events[1])
	}

	stored := f.repo.deliveries[delivery.ID]
	if stored.Status != entity.WebhookDeliveryProcessed || stored.Action == nil || *stored.Action != "canceled" {
		t.Fatalf("expected processed delivery with canceled action, got %+v", stored)
	}
	if len(f.events.events) != 2 || f.events.events[0].Status != entity.HostEventSent {
		t.Fatalf("expected both host events recorded as sent")
	}
	if f.gateway.callCount() != 0 {
		t.Fatalf("expected signed webhook to be handled without gateway calls")
	}
}

func TestDispatchRejectsTamperedSignatureWithoutRetry(t *testing.T) {
	f := newWebhookFixture(t)

	payload := signedPayload(t, canceledOrderBody)
	payload.Headers.Set(provider.HeaderSignature, "deadbeef")
	delivery, err := f.service.Receive(context.Background(), "payment", "pay-ideal_pay", payload)
	if err != nil {
		t.Fatalf("expected receive to succeed, got %v", err)
	}

	f.now = f.now.Add(time.Minute)
	err = f.service.RunDispatchWebhooksBatch(context.Background())
	if !errors.Is(err, paynl.ErrInvalidData) {
		t.Fatalf("expected invalid data error, got %v", err)
	}

	stored := f.repo.deliveries[delivery.ID]
	if stored.Status != entity.WebhookDeliveryFailed || stored.Attempts != 3 {
		t.Fatalf("expected delivery failed on first attempt, got status=%d attempts=%d", stored.Status, stored.Attempts)
	}
	if len(f.notifier.events) != 0 || f.gateway.callCount() != 0 {
		t.Fatalf("expected tampered webhook to have no side effects")
	}
}

func TestDispatchRetriesWhenHostIsUnavailable(t *testing.T) {
	f := newWebhookFixture(t)
	f.notifier.err = errors.New("host unavailable")

	delivery, err := f.service.Receive(context.Background(), "payment", "pay-ideal_pay", signedPayload(t, canceledOrderBody))
	if err != nil {
		t.Fatalf("expected receive to succeed, got %v", err)
	}

	for attempt := int32(1); attempt <= 3; attempt++ {
		f.now = f.now.Add(time.Minute)
		if err := f.service.RunDispatchWebhooksBatch(context.Background()); err == nil {
			t.Fatalf("expected dispatch error on attempt %d", attempt)
		}
		stored := f.repo.deliveries[delivery.ID]
		if stored.Attempts != attempt {
			t.Fatalf("expected %d attempts, got %d", attempt, stored.Attempts)
		}
		if attempt < 3 {
			if stored.Status != entity.WebhookDeliveryPending || !stored.NextAttemptAt.Equal(f.now.Add(time.Minute)) {
				t.Fatalf("expected retry scheduled one interval later, got %+v", stored)
			}
		} else if stored.Status != entity.WebhookDeliveryFailed {
			t.Fatalf("expected delivery failed after max attempts")
		}
	}

	if len(f.events.events) != 3 || f.events.events[0].Status != entity.HostEventFailed || f.events.events[0].Error == nil {
		t.Fatalf("expected failed host events to be recorded")
	}
}

func TestDispatchRetryDoesNotResendDeliveredEvents(t *testing.T) {
	f := newWebhookFixture(t)
	f.notifier.callErrs = map[int]error{2: errors.New("host unavailable")}

	delivery, err := f.service.Receive(context.Background(), "payment", "pay-ideal_pay", signedPayload(t, canceledOrderBody))
	if err != nil {
		t.Fatalf("expected receive to succeed, got %v", err)
	}

	f.now = f.now.Add(time.Minute)
	if err := f.service.RunDispatchWebhooksBatch(context.Background()); err == nil {
		t.Fatalf("expected the canceled event to fail on the first attempt")
	}
	if stored := f.repo.deliveries[delivery.ID]; stored.Status != entity.WebhookDeliveryPending || stored.Attempts != 1 {
		t.Fatalf("expected retry scheduled, got %+v", stored)
	}

	f.now = f.now.Add(time.Minute)
	if err := f.service.RunDispatchWebhooksBatch(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}

	counts := map[string]int{}
	for _, event := range f.notifier.events {
		counts[event.Name]++
	}
	if counts[EventWebhookAction] != 1 {
		t.Fatalf("expected webhook action delivered once, got %d", counts[EventWebhookAction])
	}
	if counts[EventPaymentCanceled] != 2 {
		t.Fatalf("expected canceled event attempted twice, got %d", counts[EventPaymentCanceled])
	}
	if stored := f.repo.deliveries[delivery.ID]; stored.Status != entity.WebhookDeliveryProcessed {
		t.Fatalf("expected processed delivery, got %+v", stored)
	}
}

func TestDispatchRecordsSkippedEventsWithoutEventsURL(t *testing.T) {
	f := newWebhookFixture(t)
	f.notifier.err = ErrHostEventsDisabled

	delivery, err := f.service.Receive(context.Background(), "payment", "pay-ideal_pay", signedPayload(t, canceledOrderBody))
	if err != nil {
		t.Fatalf("expected receive to succeed, got %v", err)
	}

	f.now = f.now.Add(time.Minute)
	if err := f.service.RunDispatchWebhooksBatch(context.Background()); err != nil {
		t.Fatalf("expected dispatch to succeed, got %v", err)
	}

	if len(f.events.events) != 2 {
		t.Fatalf("expected 2 host event records, got %d", len(f.events.events))
	}
	for _, event := range f.events.events {
		if event.Status != entity.HostEventSkipped || event.Error == nil {
			t.Fatalf("expected skipped host event with reason, got %+v", event)
		}
	}
	if f.repo.deliveries[delivery.ID].Status != entity.WebhookDeliveryProcessed {
		t.Fatalf("expected processed delivery")
	}
}

func TestDispatchLegacyWebhookRetrievesTransaction(t *testing.T) {
	f := newWebhookFixture(t)
	f.gateway.transactions["2001"] = &paynl.Transaction{
		ID:           "2001",
		Reference:    "1002",
		Status:       paynl.Status{Code: paynl.StatusPaid},
		Amount:       paynl.Amount{Value: 1250, Currency: "EUR"},
		TransferData: paynl.TransferData{"session_id": "sess_2"},
	}

	delivery, err := f.service.Receive(context.Background(), "pay", "pay_pay", provider.WebhookPayload{
		Raw:         []byte("action=new_ppt&order_id=2001"),
		Headers:     http.Header{},
		ContentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		t.Fatalf("expected receive to succeed, got %v", err)
	}

	f.now = f.now.Add(time.Minute)
	if err := f.service.RunDispatchWebhooksBatch(context.Background()); err != nil {
		t.Fatalf("expected dispatch to succeed, got %v", err)
	}

	if len(f.notifier.events) != 1 {
		t.Fatalf("expected only the webhook action event, got %d", len(f.notifier.events))
	}
	event := f.notifier.events[0].Data.(WebhookActionEvent)
	if event.Action != provider.ActionSuccessful || event.Data.SessionID != "sess_2" || event.Provider != "pay_pay" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if f.repo.deliveries[delivery.ID].Status != entity.WebhookDeliveryProcessed {
		t.Fatalf("expected processed delivery")
	}
}

func TestDispatchRetriesTransientGatewayErrors(t *testing.T) {
	f := newWebhookFixture(t)
	f.gateway.getErr = errors.New("connection reset")

	delivery, err := f.service.Receive(context.Background(), "pay", "pay_pay", provider.WebhookPayload{
		Raw:         []byte("action=new_ppt&order_id=2001"),
		ContentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		t.Fatalf("expected receive to succeed, got %v", err)
	}

	f.now = f.now.Add(time.Minute)
	if err := f.service.RunDispatchWebhooksBatch(context.Background()); err == nil {
		t.Fatalf("expected dispatch error")
	}

	stored := f.repo.deliveries[delivery.ID]
	if stored.Status != entity.WebhookDeliveryPending || stored.Attempts != 1 || stored.LastError == nil {
		t.Fatalf("expected delivery to be retried, got %+v", stored)
	}
}
