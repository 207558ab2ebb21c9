package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jlouissaint/tikepam_backend/models"
)

// respondError maps the service error taxonomy onto HTTP statuses. Unexpected
// errors are logged and surfaced as a generic 500 without leaking internals.
func respondError(c echo.Context, err error) error {
	var (
		validation   *models.ValidationError
		authz        *models.AuthorizationError
		notFound     *models.NotFoundError
		verification *models.VerificationRequiredError
		insufficient *models.InsufficientBalanceError
		notReady     *models.SettlementNotReadyError
		rail         *models.ExternalRailError
	)

	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: validation.Msg,
		})
	case errors.As(err, &authz):
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: authz.Msg,
		})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: notFound.Error(),
		})
	case errors.As(err, &verification):
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: verification.Msg,
			Data:    map[string]string{"code": verification.Code},
		})
	case errors.As(err, &insufficient):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Requested amount exceeds the available balance",
			Data:    map[string]int64{"availableToWithdraw": insufficient.Available},
		})
	case errors.As(err, &notReady):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: notReady.Error(),
		})
	case errors.As(err, &rail):
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "The payout rail rejected the transfer",
		})
	default:
		log.Printf("unexpected error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}
