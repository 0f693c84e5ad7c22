package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/entity"
	"github.com/vibast-solutions/ms-go-paynl/app/metrics"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
	"github.com/vibast-solutions/ms-go-paynl/app/provider"
	"github.com/vibast-solutions/ms-go-paynl/app/repository"
	"github.com/vibast-solutions/ms-go-paynl/config"
)

const (
	defaultWebhookDelay   = 5 * time.Second
	defaultWebhookRetries = int32(3)
	defaultRetryInterval  = 30 * time.Second
	defaultBatchSize      = int32(100)
)

type webhookDeliveryRepository interface {
	Create(ctx context.Context, delivery *entity.WebhookDelivery) error
	Update(ctx context.Context, delivery *entity.WebhookDelivery) error
	FindPendingByPayloadHash(ctx context.Context, provider, payloadHash string) (*entity.WebhookDelivery, error)
	ListDue(ctx context.Context, now time.Time, limit int32) ([]*entity.WebhookDelivery, error)
}

type hostEventRepository interface {
	Create(ctx context.Context, event *entity.HostEvent) error
	ListSentNames(ctx context.Context, deliveryID uint64) ([]string, error)
}

type hostNotifier interface {
	Notify(ctx context.Context, event HostEvent) error
}

// WebhookActionEvent is the data of a pay_payment.webhook_action event.
type WebhookActionEvent struct {
	Provider string                     `json:"provider"`
	Action   provider.WebhookAction     `json:"action"`
	Data     provider.WebhookActionData `json:"data"`
}

// OrderEvent is the data of the canceled and failed events. ID is the order
// reference set when the gateway order was created.
type OrderEvent struct {
	ID string `json:"id"`
}

// WebhookService stores incoming webhooks and dispatches them after a delay,
// so that the host has finished its own session bookkeeping first.
type WebhookService struct {
	deliveries webhookDeliveryRepository
	events     hostEventRepository
	registry   *provider.Registry
	notifier   hostNotifier
	cfg        config.WebhooksConfig
	metrics    *metrics.Metrics
	logger     logrus.FieldLogger
	now        func() time.Time
}

func NewWebhookService(
	deliveries webhookDeliveryRepository,
	events hostEventRepository,
	registry *provider.Registry,
	notifier hostNotifier,
	cfg config.WebhooksConfig,
	m *metrics.Metrics,
	logger logrus.FieldLogger,
) *WebhookService {
	return &WebhookService{
		deliveries: deliveries,
		events:     events,
		registry:   registry,
		notifier:   notifier,
		cfg:        cfg,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// IsPayProvider reports whether providerID belongs to one of the Pay. providers.
func (s *WebhookService) IsPayProvider(providerID string) bool {
	return s.registry.IsPayProvider(providerID)
}

// Receive enqueues a webhook for delayed dispatch. An identical webhook that
// is still pending is not stored twice.
func (s *WebhookService) Receive(ctx context.Context, route, providerID string, payload provider.WebhookPayload) (*entity.WebhookDelivery, error) {
	delivery, err := s.receive(ctx, route, providerID, payload)
	s.metrics.WebhookReceived(route, err == nil)
	return delivery, err
}

func (s *WebhookService) receive(ctx context.Context, route, providerID string, payload provider.WebhookPayload) (*entity.WebhookDelivery, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" || len(payload.Raw) == 0 {
		return nil, ErrInvalidRequest
	}
	if _, err := s.registry.Lookup(providerID); err != nil {
		if errors.Is(err, provider.ErrProviderNotSupported) {
			return nil, ErrProviderUnsupported
		}
		return nil, err
	}

	hash := payloadHash(payload.Raw)
	existing, err := s.deliveries.FindPendingByPayloadHash(ctx, providerID, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.WithFields(logrus.Fields{"provider": providerID, "delivery_id": existing.ID}).
			Debug("Identical webhook already pending")
		return existing, nil
	}

	headersJSON, err := repository.SerializeHeaders(payload.Headers)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	delivery := &entity.WebhookDelivery{
		Provider:      providerID,
		Route:         route,
		PayloadHash:   hash,
		HeadersJSON:   headersJSON,
		ContentType:   payload.ContentType,
		Payload:       payload.Raw,
		Status:        entity.WebhookDeliveryPending,
		MaxAttempts:   s.maxAttempts(),
		NextAttemptAt: now.Add(s.delay()),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.deliveries.Create(ctx, delivery); err != nil {
		return nil, err
	}

	return delivery, nil
}

func (s *WebhookService) RunDispatchWebhooksBatch(ctx context.Context) error {
	now := s.now().UTC()
	items, err := s.deliveries.ListDue(ctx, now, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, delivery := range items {
		if delivery == nil {
			continue
		}
		if err := s.dispatch(ctx, delivery, now); err != nil {
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	return firstErr
}

func (s *WebhookService) dispatch(ctx context.Context, delivery *entity.WebhookDelivery, now time.Time) error {
	logger := s.logger.WithFields(logrus.Fields{"provider": delivery.Provider, "delivery_id": delivery.ID})

	p, err := s.registry.Lookup(delivery.Provider)
	if err != nil {
		return s.recordPermanentFailure(ctx, delivery, now, err)
	}

	headers, err := repository.ParseHeaders(delivery.HeadersJSON)
	if err != nil {
		return s.recordPermanentFailure(ctx, delivery, now, err)
	}

	result, err := p.GetWebhookActionAndData(ctx, provider.WebhookPayload{
		Raw:         delivery.Payload,
		Headers:     headers,
		ContentType: delivery.ContentType,
	})
	if err != nil {
		// A rejected signature or malformed body fails the same way on retry.
		if errors.Is(err, paynl.ErrInvalidData) {
			logger.WithError(err).Warn("Webhook rejected")
			return s.recordPermanentFailure(ctx, delivery, now, err)
		}
		return s.recordDispatchFailure(ctx, delivery, now, err)
	}

	// Events delivered by an earlier attempt are not sent again.
	sentNames, err := s.events.ListSentNames(ctx, delivery.ID)
	if err != nil {
		return s.recordDispatchFailure(ctx, delivery, now, err)
	}
	sent := make(map[string]bool, len(sentNames))
	for _, name := range sentNames {
		sent[name] = true
	}

	for _, event := range hostEvents(delivery.Provider, result) {
		if sent[event.Name] {
			logger.WithField("event", event.Name).Debug("Host event already sent")
			continue
		}
		if err := s.emit(ctx, delivery, event, now); err != nil {
			return s.recordDispatchFailure(ctx, delivery, now, err)
		}
	}

	action := string(result.Action)
	delivery.Status = entity.WebhookDeliveryProcessed
	delivery.Attempts++
	delivery.Action = &action
	delivery.LastError = nil
	delivery.UpdatedAt = now
	if err := s.deliveries.Update(ctx, delivery); err != nil {
		return err
	}

	s.metrics.WebhookDispatched(delivery.Provider, action)
	logger.WithField("action", action).Info("Webhook dispatched")
	return nil
}

// hostEvents lists the events a webhook action produces, in emit order.
func hostEvents(providerID string, result provider.WebhookActionResult) []HostEvent {
	events := []HostEvent{{
		Name: EventWebhookAction,
		Data: WebhookActionEvent{Provider: providerID, Action: result.Action, Data: result.Data},
	}}

	reference := ""
	if result.Order != nil {
		reference = result.Order.Reference
	}
	if reference == "" {
		return events
	}

	switch result.Action {
	case provider.ActionCanceled:
		events = append(events, HostEvent{Name: EventPaymentCanceled, Data: OrderEvent{ID: reference}})
	case provider.ActionFailed:
		events = append(events, HostEvent{Name: EventPaymentFailed, Data: OrderEvent{ID: reference}})
	}
	return events
}

func (s *WebhookService) emit(ctx context.Context, delivery *entity.WebhookDelivery, event HostEvent, now time.Time) error {
	notifyErr := s.notifier.Notify(ctx, event)
	s.metrics.HostEventSent(event.Name, notifyErr == nil)

	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	deliveryID := delivery.ID
	record := &entity.HostEvent{
		DeliveryID:  &deliveryID,
		Name:        event.Name,
		PayloadJSON: string(payload),
		Status:      entity.HostEventSent,
		CreatedAt:   now,
	}
	switch {
	case errors.Is(notifyErr, ErrHostEventsDisabled):
		trimmed := notifyErr.Error()
		record.Status = entity.HostEventSkipped
		record.Error = &trimmed
		s.logger.WithFields(logrus.Fields{"event": event.Name, "delivery_id": delivery.ID}).
			Warn("Host event not delivered: host events url is not configured")
		notifyErr = nil
	case notifyErr != nil:
		trimmed := truncate(notifyErr.Error(), 1024)
		record.Status = entity.HostEventFailed
		record.Error = &trimmed
	}
	if err := s.events.Create(ctx, record); err != nil {
		s.logger.WithError(err).WithField("event", event.Name).Warn("Failed to record host event")
	}

	return notifyErr
}

func (s *WebhookService) recordDispatchFailure(ctx context.Context, delivery *entity.WebhookDelivery, now time.Time, dispatchErr error) error {
	delivery.Attempts++
	trimmed := truncate(dispatchErr.Error(), 1024)
	delivery.LastError = &trimmed

	maxAttempts := delivery.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	if delivery.Attempts >= maxAttempts {
		delivery.Status = entity.WebhookDeliveryFailed
	} else {
		delivery.Status = entity.WebhookDeliveryPending
		delivery.NextAttemptAt = now.Add(s.retryInterval())
	}
	delivery.UpdatedAt = now

	if err := s.deliveries.Update(ctx, delivery); err != nil {
		return err
	}

	s.logger.WithError(dispatchErr).WithFields(logrus.Fields{
		"provider":    delivery.Provider,
		"delivery_id": delivery.ID,
		"attempts":    delivery.Attempts,
	}).Warn("Webhook dispatch failed")

	return dispatchErr
}

func (s *WebhookService) recordPermanentFailure(ctx context.Context, delivery *entity.WebhookDelivery, now time.Time, dispatchErr error) error {
	delivery.Attempts = maxInt32(delivery.Attempts, delivery.MaxAttempts-1)
	return s.recordDispatchFailure(ctx, delivery, now, dispatchErr)
}

func (s *WebhookService) delay() time.Duration {
	if s.cfg.Delay <= 0 {
		return defaultWebhookDelay
	}
	return s.cfg.Delay
}

func (s *WebhookService) maxAttempts() int32 {
	if s.cfg.MaxAttempts <= 0 {
		return defaultWebhookRetries
	}
	return s.cfg.MaxAttempts
}

func (s *WebhookService) retryInterval() time.Duration {
	if s.cfg.RetryInterval <= 0 {
		return defaultRetryInterval
	}
	return s.cfg.RetryInterval
}

func (s *WebhookService) batchSize() int32 {
	if s.cfg.JobBatchSize <= 0 {
		return defaultBatchSize
	}
	return s.cfg.JobBatchSize
}

func payloadHash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
