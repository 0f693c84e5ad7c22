package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
	"github.com/vibast-solutions/ms-go-paynl/app/provider"
)

type directDebitGateway interface {
	CreateDirectDebit(ctx context.Context, req paynl.DirectDebitRequest) (*paynl.DirectDebitResponse, error)
	GetDirectDebitInfo(ctx context.Context, mandateID string) (*paynl.DirectDebitInfoResponse, error)
}

// DirectDebitService manages SEPA direct debit mandates on the legacy REST API.
type DirectDebitService struct {
	gateway directDebitGateway
	logger  logrus.FieldLogger
}

func NewDirectDebitService(gateway directDebitGateway, logger logrus.FieldLogger) *DirectDebitService {
	return &DirectDebitService{gateway: gateway, logger: logger}
}

// CreateMandate validates the account holder data the same way the checkout
// input is validated and returns the id of the new mandate.
func (s *DirectDebitService) CreateMandate(ctx context.Context, req paynl.DirectDebitRequest) (string, error) {
	if strings.TrimSpace(req.Reference) == "" || req.Amount <= 0 || strings.TrimSpace(req.BankAccountHolder) == "" {
		return "", ErrInvalidRequest
	}

	input := provider.DirectDebitInput{IBAN: provider.NormalizeIBAN(req.BankAccountNumber), BIC: req.BankAccountBIC}
	if err := input.Validate(); err != nil {
		return "", err
	}
	req.BankAccountNumber = input.IBAN

	resp, err := s.gateway.CreateDirectDebit(ctx, req)
	if err != nil {
		return "", err
	}

	s.logger.WithField("reference", req.Reference).Info("Direct debit mandate created")
	return resp.Result, nil
}

func (s *DirectDebitService) GetMandate(ctx context.Context, mandateID string) (*paynl.DirectDebitInfoResponse, error) {
	mandateID = strings.TrimSpace(mandateID)
	if mandateID == "" {
		return nil, ErrInvalidRequest
	}

	info, err := s.gateway.GetDirectDebitInfo(ctx, mandateID)
	if err != nil {
		return nil, err
	}
	if info.Result.Mandate.MandateID == "" {
		return nil, ErrMandateNotFound
	}
	return info, nil
}
