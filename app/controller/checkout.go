package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/factory"
	"github.com/vibast-solutions/ms-go-paynl/app/service"
	"github.com/vibast-solutions/ms-go-paynl/app/types"
)

type CheckoutController struct {
	checkoutService *service.CheckoutService
	logger          logrus.FieldLogger
}

func NewCheckoutController(checkoutService *service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		logger:          factory.NewModuleLogger("checkout-controller"),
	}
}

// ListPaymentMethods returns the sales location payment methods in checkout
// order. It is a storefront route and must stay cheap, so it reads through the
// config cache.
func (c *CheckoutController) ListPaymentMethods(ctx echo.Context) error {
	options, err := c.checkoutService.GetCheckoutOptions(ctx.Request().Context())
	if err != nil {
		return writeServiceError(ctx, factory.LoggerWithContext(c.logger, ctx), "List payment methods", err)
	}

	return ctx.JSON(http.StatusOK, &types.PaymentMethodsResponse{
		PaymentMethods:   options.SortedPaymentMethods(),
		CheckoutOptions:  options.CheckoutOptions,
		CheckoutSequence: options.CheckoutSequence,
	})
}

func (c *CheckoutController) ClearCache(ctx echo.Context) error {
	if err := c.checkoutService.ClearCache(ctx.Request().Context()); err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Clear checkout cache failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Cache cleared"})
}
