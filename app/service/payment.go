package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
	"github.com/vibast-solutions/ms-go-paynl/app/provider"
)

// PaymentService routes host lifecycle calls to the provider registered for
// the host provider id.
type PaymentService struct {
	registry *provider.Registry
	logger   logrus.FieldLogger
}

func NewPaymentService(registry *provider.Registry, logger logrus.FieldLogger) *PaymentService {
	return &PaymentService{registry: registry, logger: logger}
}

func (s *PaymentService) Providers() []string {
	return s.registry.Identifiers()
}

func (s *PaymentService) InitiatePayment(ctx context.Context, providerID string, input provider.PaymentInput) (provider.PaymentOutput, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return provider.PaymentOutput{}, err
	}
	return p.InitiatePayment(ctx, input)
}

func (s *PaymentService) AuthorizePayment(ctx context.Context, providerID string, input provider.PaymentInput) (provider.PaymentOutput, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return provider.PaymentOutput{}, err
	}
	return p.AuthorizePayment(ctx, input)
}

func (s *PaymentService) CapturePayment(ctx context.Context, providerID string, input provider.PaymentInput) (provider.PaymentOutput, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return provider.PaymentOutput{}, err
	}
	return p.CapturePayment(ctx, input)
}

func (s *PaymentService) RefundPayment(ctx context.Context, providerID string, input provider.PaymentInput) (provider.PaymentOutput, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return provider.PaymentOutput{}, err
	}
	return p.RefundPayment(ctx, input)
}

func (s *PaymentService) CancelPayment(ctx context.Context, providerID string, input provider.PaymentInput) (provider.PaymentOutput, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return provider.PaymentOutput{}, err
	}
	return p.CancelPayment(ctx, input)
}

func (s *PaymentService) DeletePayment(ctx context.Context, providerID string, input provider.PaymentInput) (provider.PaymentOutput, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return provider.PaymentOutput{}, err
	}
	return p.DeletePayment(ctx, input)
}

func (s *PaymentService) UpdatePayment(ctx context.Context, providerID string, input provider.PaymentInput) (provider.PaymentOutput, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return provider.PaymentOutput{}, err
	}
	return p.UpdatePayment(ctx, input)
}

func (s *PaymentService) RetrievePayment(ctx context.Context, providerID string, data provider.SessionData) (*paynl.Order, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return nil, err
	}
	return p.RetrievePayment(ctx, data)
}

func (s *PaymentService) GetPaymentStatus(ctx context.Context, providerID string, data provider.SessionData) (provider.SessionStatus, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return "", err
	}
	return p.GetPaymentStatus(ctx, data)
}

func (s *PaymentService) BuildOrderPayload(providerID string, order provider.Order, session provider.PaymentSession) (paynl.CreateOrderRequest, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return paynl.CreateOrderRequest{}, err
	}
	return p.BuildOrderPayload(order, session)
}

func (s *PaymentService) PaymentCreateOptions(providerID string) (provider.PaymentCreateOptions, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return provider.PaymentCreateOptions{}, err
	}
	return p.PaymentCreateOptions(), nil
}

// GetWebhookActionAndData resolves a webhook synchronously. The HTTP webhook
// routes go through WebhookService instead, which delays processing.
func (s *PaymentService) GetWebhookActionAndData(ctx context.Context, providerID string, payload provider.WebhookPayload) (provider.WebhookActionResult, error) {
	p, err := s.lookup(providerID)
	if err != nil {
		return provider.WebhookActionResult{}, err
	}
	return p.GetWebhookActionAndData(ctx, payload)
}

func (s *PaymentService) lookup(providerID string) (*provider.Provider, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, ErrInvalidRequest
	}
	p, err := s.registry.Lookup(providerID)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotSupported) {
			s.logger.WithField("provider", providerID).Debug("Unknown payment provider")
			return nil, ErrProviderUnsupported
		}
		return nil, err
	}
	return p, nil
}
