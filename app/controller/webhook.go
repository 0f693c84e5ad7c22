package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/factory"
	"github.com/vibast-solutions/ms-go-paynl/app/service"
	"github.com/vibast-solutions/ms-go-paynl/app/types"
)

const (
	routePayWebhook     = "pay"
	routePaymentWebhook = "payment"

	// Pay. retries a webhook until it sees this exact body.
	payAcknowledged = "TRUE"
	payRejected     = "FALSE"
)

type WebhookController struct {
	webhookService *service.WebhookService
	logger         logrus.FieldLogger
}

func NewWebhookController(webhookService *service.WebhookService) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
		logger:         factory.NewModuleLogger("webhooks-controller"),
	}
}

// HandlePayWebhook serves /hooks/pay/:provider, the route Pay. is configured
// to call directly.
func (c *WebhookController) HandlePayWebhook(ctx echo.Context) error {
	if err := c.receive(ctx, routePayWebhook); err != nil {
		return ctx.String(http.StatusBadRequest, payRejected)
	}
	return ctx.String(http.StatusOK, payAcknowledged)
}

// HandlePaymentWebhook serves the generic /hooks/payment/:provider route. Pay.
// providers get the TRUE/FALSE protocol, everything else a plain response.
func (c *WebhookController) HandlePaymentWebhook(ctx echo.Context) error {
	isPay := c.webhookService.IsPayProvider(ctx.Param("provider"))

	if err := c.receive(ctx, routePaymentWebhook); err != nil {
		if isPay {
			return ctx.String(http.StatusBadRequest, payRejected)
		}
		return ctx.String(http.StatusBadRequest, "Webhook Error: "+err.Error())
	}

	if isPay {
		return ctx.String(http.StatusOK, payAcknowledged)
	}
	return ctx.NoContent(http.StatusOK)
}

func (c *WebhookController) receive(ctx echo.Context, route string) error {
	logger := factory.LoggerWithContext(c.logger, ctx).WithField("route", route)

	req, err := types.NewWebhookRequestFromContext(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to read webhook body")
		return err
	}
	if err := req.Validate(); err != nil {
		logger.WithError(err).Warn("Invalid webhook")
		return err
	}

	delivery, err := c.webhookService.Receive(ctx.Request().Context(), route, req.ProviderID, req.Payload)
	if err != nil {
		logger.WithError(err).WithField("provider", req.ProviderID).Error("Webhook receive failed")
		return err
	}

	logger.WithFields(logrus.Fields{"provider": req.ProviderID, "delivery_id": delivery.ID}).Info("Webhook queued")
	return nil
}
