package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
	"github.com/vibast-solutions/ms-go-paynl/app/service"
	"github.com/vibast-solutions/ms-go-paynl/app/types"
)

func writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}

// writeServiceError maps service and gateway errors onto HTTP responses.
// Gateway errors keep their type and code so the host can tell them apart.
func writeServiceError(ctx echo.Context, logger logrus.FieldLogger, action string, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrProviderUnsupported):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMandateNotFound):
		return writeError(ctx, http.StatusNotFound, err.Error())
	}

	var payErr *paynl.Error
	if errors.As(err, &payErr) {
		status := http.StatusInternalServerError
		switch payErr.Type {
		case paynl.ErrorTypeInvalidData:
			status = http.StatusBadRequest
		case paynl.ErrorTypeNotFound:
			status = http.StatusNotFound
		case paynl.ErrorTypeUnexpectedState:
			status = http.StatusBadGateway
		}
		logger.WithError(err).Warn(action + " failed")
		return ctx.JSON(status, &types.ErrorResponse{
			Error: payErr.Message,
			Code:  payErr.Code,
			Type:  string(payErr.Type),
		})
	}

	logger.WithError(err).Error(action + " failed")
	return writeError(ctx, http.StatusInternalServerError, "internal server error")
}
