package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/factory"
	"github.com/vibast-solutions/ms-go-paynl/app/service"
	"github.com/vibast-solutions/ms-go-paynl/app/types"
)

type DirectDebitController struct {
	directDebitService *service.DirectDebitService
	logger             logrus.FieldLogger
}

func NewDirectDebitController(directDebitService *service.DirectDebitService) *DirectDebitController {
	return &DirectDebitController{
		directDebitService: directDebitService,
		logger:             factory.NewModuleLogger("direct-debit-controller"),
	}
}

func (c *DirectDebitController) CreateMandate(ctx echo.Context) error {
	req, err := types.NewCreateMandateRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	mandateID, err := c.directDebitService.CreateMandate(ctx.Request().Context(), req.ToGatewayRequest())
	if err != nil {
		return writeServiceError(ctx, factory.LoggerWithContext(c.logger, ctx), "Create mandate", err)
	}

	return ctx.JSON(http.StatusCreated, &types.MandateResponse{MandateID: mandateID})
}

func (c *DirectDebitController) GetMandate(ctx echo.Context) error {
	mandateID, err := types.NewMandateIDFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	info, err := c.directDebitService.GetMandate(ctx.Request().Context(), mandateID)
	if err != nil {
		return writeServiceError(ctx, factory.LoggerWithContext(c.logger, ctx), "Get mandate", err)
	}

	return ctx.JSON(http.StatusOK, info.Result)
}
