package controller

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/factory"
	"github.com/vibast-solutions/ms-go-paynl/app/provider"
	"github.com/vibast-solutions/ms-go-paynl/app/service"
	"github.com/vibast-solutions/ms-go-paynl/app/types"
)

type lifecycleFunc func(ctx context.Context, providerID string, input provider.PaymentInput) (provider.PaymentOutput, error)

type PaymentController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PaymentController) ListProviders(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.ProvidersResponse{Providers: c.paymentService.Providers()})
}

func (c *PaymentController) InitiatePayment(ctx echo.Context) error {
	return c.lifecycle(ctx, "Initiate payment", c.paymentService.InitiatePayment)
}

func (c *PaymentController) AuthorizePayment(ctx echo.Context) error {
	return c.lifecycle(ctx, "Authorize payment", c.paymentService.AuthorizePayment)
}

func (c *PaymentController) CapturePayment(ctx echo.Context) error {
	return c.lifecycle(ctx, "Capture payment", c.paymentService.CapturePayment)
}

func (c *PaymentController) RefundPayment(ctx echo.Context) error {
	return c.lifecycle(ctx, "Refund payment", c.paymentService.RefundPayment)
}

func (c *PaymentController) CancelPayment(ctx echo.Context) error {
	return c.lifecycle(ctx, "Cancel payment", c.paymentService.CancelPayment)
}

func (c *PaymentController) DeletePayment(ctx echo.Context) error {
	return c.lifecycle(ctx, "Delete payment", c.paymentService.DeletePayment)
}

func (c *PaymentController) UpdatePayment(ctx echo.Context) error {
	return c.lifecycle(ctx, "Update payment", c.paymentService.UpdatePayment)
}

func (c *PaymentController) lifecycle(ctx echo.Context, action string, fn lifecycleFunc) error {
	req, err := types.NewPaymentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	out, err := fn(ctx.Request().Context(), req.ProviderID, req.ToInput())
	if err != nil {
		return writeServiceError(ctx, c.requestLogger(ctx), action, err)
	}

	return ctx.JSON(http.StatusOK, &out)
}

func (c *PaymentController) GetPaymentStatus(ctx echo.Context) error {
	req, err := types.NewSessionDataRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	status, err := c.paymentService.GetPaymentStatus(ctx.Request().Context(), req.ProviderID, req.Data)
	if err != nil {
		return writeServiceError(ctx, c.requestLogger(ctx), "Get payment status", err)
	}

	return ctx.JSON(http.StatusOK, &types.StatusResponse{Status: status})
}

func (c *PaymentController) RetrievePayment(ctx echo.Context) error {
	req, err := types.NewSessionDataRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	order, err := c.paymentService.RetrievePayment(ctx.Request().Context(), req.ProviderID, req.Data)
	if err != nil {
		return writeServiceError(ctx, c.requestLogger(ctx), "Retrieve payment", err)
	}

	return ctx.JSON(http.StatusOK, &types.RetrieveResponse{Data: order})
}

func (c *PaymentController) BuildOrderPayload(ctx echo.Context) error {
	req, err := types.NewOrderPayloadRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	payload, err := c.paymentService.BuildOrderPayload(req.ProviderID, req.Order, req.Session)
	if err != nil {
		return writeServiceError(ctx, c.requestLogger(ctx), "Build order payload", err)
	}

	return ctx.JSON(http.StatusOK, &types.OrderPayloadResponse{Payload: payload})
}

func (c *PaymentController) GetPaymentCreateOptions(ctx echo.Context) error {
	opts, err := c.paymentService.PaymentCreateOptions(ctx.Param("provider"))
	if err != nil {
		return writeServiceError(ctx, c.requestLogger(ctx), "Get payment create options", err)
	}
	return ctx.JSON(http.StatusOK, &opts)
}

func (c *PaymentController) requestLogger(ctx echo.Context) logrus.FieldLogger {
	return factory.LoggerWithContext(c.logger, ctx)
}
