package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
)

// Gateway is the subset of the Pay. domain client the providers use.
type Gateway interface {
	CreateOrder(ctx context.Context, req paynl.CreateOrderRequest) (*paynl.Order, error)
	GetOrder(ctx context.Context, orderID string) (*paynl.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*paynl.Order, error)
	AbortOrder(ctx context.Context, orderID string) (*paynl.Order, error)
	GetTransaction(ctx context.Context, transactionID string) (*paynl.Transaction, error)
	RefundTransaction(ctx context.Context, transactionID string, req paynl.RefundRequest) (*paynl.RefundResponse, error)
}

// Provider implements the payment lifecycle for one Pay. payment method. All
// methods share this implementation and only differ by descriptor.
type Provider struct {
	descriptor Descriptor
	options    Options
	gateway    Gateway
	builder    *PayloadBuilder
	logger     logrus.FieldLogger
}

func NewProvider(descriptor Descriptor, options Options, gateway Gateway, logger logrus.FieldLogger) *Provider {
	p := &Provider{
		descriptor: descriptor,
		options:    options,
		gateway:    gateway,
		logger:     logger.WithField("provider", descriptor.Identifier),
	}
	p.builder = NewPayloadBuilder(options, descriptor, p.webhookURL())
	return p
}

func (p *Provider) Identifier() string {
	return p.descriptor.Identifier
}

func (p *Provider) Descriptor() Descriptor {
	return p.descriptor
}

func (p *Provider) PaymentCreateOptions() PaymentCreateOptions {
	return PaymentCreateOptions{
		WebhookURL: p.webhookURL(),
		MethodID:   p.descriptor.MethodID,
	}
}

func (p *Provider) webhookURL() string {
	return strings.TrimRight(p.options.WebhookBaseURL, "/") +
		"/hooks/" + p.descriptor.WebhookSegment + "/" + p.descriptor.Identifier + "_" + p.options.configID()
}

// BuildOrderPayload builds the gateway order request for an order. The host
// stores it on the session and hands it back through UpdatePayment.
func (p *Provider) BuildOrderPayload(order Order, session PaymentSession) (paynl.CreateOrderRequest, error) {
	req, err := p.builder.Build(order, session)
	if err != nil {
		return req, err
	}
	if p.options.debugEnabled() {
		p.logger.WithField("payload", req).Debug("built Pay. order payload")
	}
	return req, nil
}

// InitiatePayment only assigns a session id; the gateway order is created
// once the host order exists.
func (p *Provider) InitiatePayment(ctx context.Context, input PaymentInput) (PaymentOutput, error) {
	data := SessionData{dataKeySessionID: input.Data.SessionID()}

	methodInput, err := ParseMethodInput(p.descriptor.InputKind, input.Data.MethodInput())
	if err != nil {
		return PaymentOutput{}, err
	}
	if methodInput != nil {
		data[dataKeyMethodInput] = methodInput
	}

	return PaymentOutput{
		ID:     uuid.NewString(),
		Data:   data,
		Status: SessionPending,
	}, nil
}

func (p *Provider) AuthorizePayment(ctx context.Context, input PaymentInput) (PaymentOutput, error) {
	id := input.Data.OrderID()
	if id == "" {
		return PaymentOutput{Data: input.Data, Status: SessionAuthorized}, nil
	}

	status, err := p.GetPaymentStatus(ctx, input.Data)
	if err != nil {
		return PaymentOutput{}, err
	}

	if status == SessionAuthorized && p.options.CaptureMode == CaptureModeAutomatic {
		if _, err := p.gateway.CaptureOrder(ctx, id); err != nil {
			p.logger.WithError(err).Warnf("Could not capture Pay. payment %s after authorization", id)
		} else if status, err = p.GetPaymentStatus(ctx, input.Data); err != nil {
			return PaymentOutput{}, err
		}
	}

	return PaymentOutput{Data: input.Data, Status: status}, nil
}

// CapturePayment is idempotent: an order that is already paid is returned
// without calling capture again.
func (p *Provider) CapturePayment(ctx context.Context, input PaymentInput) (PaymentOutput, error) {
	id := input.Data.OrderID()
	if id == "" {
		return PaymentOutput{}, paynl.NewError(paynl.ErrorTypeInvalidData, "Payment ID is required")
	}

	order, err := p.retrieve(ctx, id)
	if err != nil {
		p.logger.WithError(err).Errorf("Error capturing payment %s", id)
		return PaymentOutput{}, err
	}

	switch order.Status.Code {
	case paynl.StatusPaid:
		return p.output(order, SessionCaptured)
	case paynl.StatusAuthorize:
		if _, err := p.gateway.CaptureOrder(ctx, id); err != nil {
			p.logger.WithError(err).Warnf("Could not capture Pay. payment %s", id)
			return p.fallbackSnapshot(ctx, id, err)
		}
	}

	current, err := p.retrieve(ctx, id)
	if err != nil {
		p.logger.WithError(err).Errorf("Error capturing payment %s", id)
		return PaymentOutput{}, err
	}
	status := MapStatus(current.Status.Code)
	if status != SessionCaptured {
		return PaymentOutput{}, paynl.NewError(paynl.ErrorTypeInvalidData,
			"Payment is not captured: current status is %s", status)
	}

	if p.options.debugEnabled() {
		p.logger.Infof("Pay. payment %s captured with amount %s %s",
			id, current.Amount.Currency, MajorUnits(current.Amount.Value).StringFixed(2))
	}
	return p.output(current, status)
}

// RefundPayment refunds input.Amount, or the full transaction when the
// amount is zero.
func (p *Provider) RefundPayment(ctx context.Context, input PaymentInput) (PaymentOutput, error) {
	id := input.Data.OrderID()
	if id == "" {
		return PaymentOutput{}, paynl.NewError(paynl.ErrorTypeInvalidData, "Payment ID is required")
	}
	if input.Amount.IsNegative() {
		return PaymentOutput{}, paynl.NewError(paynl.ErrorTypeInvalidData, "Refund amount must not be negative")
	}

	order, err := p.retrieve(ctx, id)
	if err != nil {
		p.logger.WithError(err).Errorf("Error refunding payment %s", id)
		return PaymentOutput{}, err
	}
	currency := strings.ToUpper(order.Amount.Currency)
	if currency == "" {
		return PaymentOutput{}, paynl.NewError(paynl.ErrorTypeInvalidData, "Currency information is missing from payment data")
	}

	var req paynl.RefundRequest
	if value := MinorUnits(input.Amount); value > 0 {
		req.Amount = &paynl.Amount{Value: value, Currency: currency}
	}

	refund, err := p.gateway.RefundTransaction(ctx, id, req)
	if err != nil {
		p.logger.WithError(err).Warnf("Could not refund Pay. payment %s", id)
		return p.fallbackSnapshot(ctx, id, err)
	}

	if p.options.debugEnabled() {
		p.logger.Infof("Refund for Pay. payment %s created with amount %s %s",
			id, currency, input.Amount.StringFixed(2))
	}

	data, err := toSessionData(refund)
	if err != nil {
		return PaymentOutput{}, err
	}
	return PaymentOutput{Data: data}, nil
}

// CancelPayment aborts the gateway order unless it is already in a final
// cancelled state. Sessions without a gateway order are a no-op.
func (p *Provider) CancelPayment(ctx context.Context, input PaymentInput) (PaymentOutput, error) {
	id := input.Data.OrderID()
	if id == "" {
		return PaymentOutput{Data: SessionData{}}, nil
	}

	order, err := p.retrieve(ctx, id)
	if err != nil {
		p.logger.WithError(err).Errorf("Error cancelling payment %s", id)
		return PaymentOutput{}, err
	}

	if _, done := cancelledStatuses[order.Status.Code]; done {
		if p.options.debugEnabled() {
			p.logger.Infof("Pay. payment %s is already canceled or expired, no need to cancel", id)
		}
		return PaymentOutput{Data: SessionData{dataKeyID: id}, Status: SessionCanceled}, nil
	}

	aborted, err := p.gateway.AbortOrder(ctx, id)
	if err != nil {
		p.logger.WithError(err).Warnf("Could not cancel Pay. payment %s", id)
		return p.output(order, MapStatus(order.Status.Code))
	}

	if p.options.debugEnabled() {
		p.logger.Infof("Pay. payment %s cancelled successfully", id)
	}
	return p.output(aborted, MapStatus(aborted.Status.Code))
}

// DeletePayment cancels: the gateway has no delete.
func (p *Provider) DeletePayment(ctx context.Context, input PaymentInput) (PaymentOutput, error) {
	return p.CancelPayment(ctx, input)
}

// GetPaymentStatus maps the gateway status of the session's order. The order
// is located by orderId, falling back to id.
func (p *Provider) GetPaymentStatus(ctx context.Context, data SessionData) (SessionStatus, error) {
	id := firstNonEmpty(data.OrderID(), data.ID())
	order, err := p.retrieve(ctx, id)
	if err != nil {
		p.logger.WithError(err).Errorf("Error retrieving payment status for %s", id)
		return "", err
	}

	status := MapStatus(order.Status.Code)
	if p.options.debugEnabled() {
		p.logger.Debugf("Pay. payment %s status: %d (mapped to: %s)", id, order.Status.Code, status)
	}
	return status, nil
}

// RetrievePayment fetches the gateway order by id, falling back to orderId.
func (p *Provider) RetrievePayment(ctx context.Context, data SessionData) (*paynl.Order, error) {
	id := firstNonEmpty(data.ID(), data.OrderID())
	order, err := p.retrieve(ctx, id)
	if err != nil {
		p.logger.WithError(err).Errorf("Error retrieving Pay. payment %s", id)
		return nil, err
	}
	return order, nil
}

// UpdatePayment creates the gateway order from the payload stored on the
// session. Without a payload nothing happens.
func (p *Provider) UpdatePayment(ctx context.Context, input PaymentInput) (PaymentOutput, error) {
	payload, ok, err := input.Data.Payload()
	if err != nil {
		return PaymentOutput{}, paynl.NewError(paynl.ErrorTypeInvalidData, "invalid order payload: %v", err)
	}
	if !ok {
		return PaymentOutput{Data: SessionData{}}, nil
	}

	order, err := p.gateway.CreateOrder(ctx, *payload)
	if err != nil {
		p.logger.WithError(err).Error("Pay. payment creation failed")
		return PaymentOutput{}, paynl.NewError(paynl.ErrorTypeInvalidData, "%s", err.Error())
	}

	if p.options.debugEnabled() {
		p.logger.Infof("Pay. payment %s successfully created with amount %s %d",
			order.ID, payload.Amount.Currency, payload.Amount.Value)
	}
	return p.output(order, MapStatus(order.Status.Code))
}

// GetWebhookActionAndData authenticates a webhook and maps the order it
// refers to onto a host action. Signature failures are never retried
// through the fallback lookup.
func (p *Provider) GetWebhookActionAndData(ctx context.Context, payload WebhookPayload) (WebhookActionResult, error) {
	body, err := parseWebhookBody(payload)
	if err != nil {
		return WebhookActionResult{}, err
	}

	var order *paynl.Order
	if body.legacy() {
		id := firstNonEmpty(body.OrderID, body.OrderIDAlt)
		order, err = p.retrieve(ctx, id)
		if err != nil {
			err = paynl.NewError(paynl.ErrorTypeNotFound, "%s", err.Error())
		}
	} else {
		if verr := VerifySignature(payload.Headers, payload.Raw, p.options.KeyMap()); verr != nil {
			p.logger.WithError(verr).Warn("Rejected Pay. webhook")
			return WebhookActionResult{}, verr
		}
		if p.options.debugEnabled() {
			p.logger.Debugf("Pay. webhook payload: %s", string(payload.Raw))
		}
		order, err = signedOrder(body)
	}

	if err == nil {
		result := MapWebhookAction(order)
		if p.options.debugEnabled() {
			p.logger.Debugf("PayPaymentStatus: %d action: %s", order.Status.Code, result.Action)
		}
		return result, nil
	}

	p.logger.WithError(err).Errorf("Error processing webhook for payment %s", body.ID)

	fallbackID := body.fallbackID()
	if fallbackID == "" {
		return WebhookActionResult{}, err
	}
	fallback, ferr := p.retrieve(ctx, fallbackID)
	if ferr != nil {
		return WebhookActionResult{}, err
	}
	return WebhookActionResult{
		Action: ActionFailed,
		Data:   actionData(fallback),
		Order:  fallback,
	}, nil
}

func signedOrder(body webhookBody) (*paynl.Order, error) {
	if body.Type != signedObjectOrder || len(body.Object) == 0 {
		return nil, paynl.NewError(paynl.ErrorTypeNotFound, "Payment not found")
	}
	var order paynl.Order
	if err := json.Unmarshal(body.Object, &order); err != nil {
		return nil, paynl.NewError(paynl.ErrorTypeInvalidData, "invalid order object: %v", err)
	}
	return &order, nil
}

// retrieve routes ids starting with "2" to the legacy transaction API.
func (p *Provider) retrieve(ctx context.Context, id string) (*paynl.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, paynl.NewError(paynl.ErrorTypeInvalidData, "Payment id not present")
	}
	if IsLegacyID(id) {
		transaction, err := p.gateway.GetTransaction(ctx, id)
		if err != nil {
			return nil, err
		}
		return transaction.AsOrder(), nil
	}
	return p.gateway.GetOrder(ctx, id)
}

func (p *Provider) fallbackSnapshot(ctx context.Context, id string, cause error) (PaymentOutput, error) {
	order, err := p.retrieve(ctx, id)
	if err != nil {
		return PaymentOutput{}, cause
	}
	return p.output(order, MapStatus(order.Status.Code))
}

func (p *Provider) output(order *paynl.Order, status SessionStatus) (PaymentOutput, error) {
	data, err := toSessionData(order)
	if err != nil {
		return PaymentOutput{}, err
	}
	return PaymentOutput{Data: data, Status: status}, nil
}

// IsLegacyID reports whether id refers to a legacy REST transaction.
func IsLegacyID(id string) bool {
	return strings.HasPrefix(id, "2")
}
