package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveGatewayRequest(t *testing.T) {
	m := New()

	m.ObserveGatewayRequest("tgu", "GET", 200, 50*time.Millisecond)
	m.ObserveGatewayRequest("tgu", "GET", 200, 10*time.Millisecond)
	m.ObserveGatewayRequest("rest", "PATCH", 0, time.Second)

	if got := testutil.ToFloat64(m.gatewayRequests.WithLabelValues("tgu", "GET", "200")); got != 2 {
		t.Fatalf("expected 2 tgu requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.gatewayRequests.WithLabelValues("rest", "PATCH", "error")); got != 1 {
		t.Fatalf("expected 1 failed rest request, got %v", got)
	}
}

func TestCounters(t *testing.T) {
	m := New()

	m.WebhookReceived("pay", true)
	m.WebhookReceived("pay", false)
	m.WebhookDispatched("pay-ideal", "successful")
	m.HostEventSent("pay_payment.canceled", true)
	m.ConfigCacheLookup(true)
	m.ConfigCacheLookup(false)
	m.ConfigCacheLookup(false)

	if got := testutil.ToFloat64(m.webhooksQueued.WithLabelValues("pay", "error")); got != 1 {
		t.Fatalf("expected 1 rejected webhook, got %v", got)
	}
	if got := testutil.ToFloat64(m.webhookActions.WithLabelValues("pay-ideal", "successful")); got != 1 {
		t.Fatalf("expected 1 dispatched webhook, got %v", got)
	}
	if got := testutil.ToFloat64(m.hostEvents.WithLabelValues("pay_payment.canceled", "ok")); got != 1 {
		t.Fatalf("expected 1 host event, got %v", got)
	}
	if got := testutil.ToFloat64(m.configCache.WithLabelValues("miss")); got != 2 {
		t.Fatalf("expected 2 cache misses, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveGatewayRequest("tgu", "GET", 200, time.Millisecond)
	m.WebhookReceived("pay", true)
	m.WebhookDispatched("pay", "failed")
	m.HostEventSent("x", false)
	m.ConfigCacheLookup(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.WebhookReceived("payment", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `paynl_webhooks_received_total{result="ok",route="payment"} 1`) {
		t.Fatalf("expected webhook counter in output, got:\n%s", rec.Body.String())
	}
}
