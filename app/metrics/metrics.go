package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "paynl"

// Metrics holds the service collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	gatewayRequests *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	webhooksQueued  *prometheus.CounterVec
	webhookActions  *prometheus.CounterVec
	hostEvents      *prometheus.CounterVec
	configCache     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Outbound Pay. API requests by API, method and HTTP status.",
		}, []string{"api", "method", "status"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Latency of outbound Pay. API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"api", "method"}),
		webhooksQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_received_total",
			Help:      "Inbound webhooks by route and result.",
		}, []string{"route", "result"}),
		webhookActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_dispatch_total",
			Help:      "Dispatched webhook deliveries by resulting action.",
		}, []string{"provider", "action"}),
		hostEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_events_total",
			Help:      "Events sent to the host platform by name and result.",
		}, []string{"event", "result"}),
		configCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_cache_lookups_total",
			Help:      "Merchant config cache lookups by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.gatewayRequests,
		m.gatewayDuration,
		m.webhooksQueued,
		m.webhookActions,
		m.hostEvents,
		m.configCache,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveGatewayRequest records one outbound gateway call. statusCode 0 means
// the request failed before a response was received.
func (m *Metrics) ObserveGatewayRequest(api, method string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	m.gatewayRequests.WithLabelValues(api, method, status).Inc()
	m.gatewayDuration.WithLabelValues(api, method).Observe(duration.Seconds())
}

func (m *Metrics) WebhookReceived(route string, accepted bool) {
	if m == nil {
		return
	}
	m.webhooksQueued.WithLabelValues(route, result(accepted)).Inc()
}

func (m *Metrics) WebhookDispatched(provider, action string) {
	if m == nil {
		return
	}
	m.webhookActions.WithLabelValues(provider, action).Inc()
}

func (m *Metrics) HostEventSent(event string, ok bool) {
	if m == nil {
		return
	}
	m.hostEvents.WithLabelValues(event, result(ok)).Inc()
}

func (m *Metrics) ConfigCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.configCache.WithLabelValues("hit").Inc()
		return
	}
	m.configCache.WithLabelValues("miss").Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
