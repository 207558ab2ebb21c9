package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jlouissaint/tikepam_backend/models"
	"github.com/jlouissaint/tikepam_backend/services"
)

// WithdrawalController handles the manual withdrawal endpoints. Both are
// exclusive to the haiti rail; the processor rejects organizers whose events
// settle through the card gateway.
type WithdrawalController struct {
	processor *services.WithdrawalProcessor
}

// NewWithdrawalController creates a new withdrawal controller
func NewWithdrawalController(processor *services.WithdrawalProcessor) *WithdrawalController {
	return &WithdrawalController{processor: processor}
}

// WithdrawBank creates a manual bank withdrawal for an event.
func (wc *WithdrawalController) WithdrawBank(c echo.Context) error {
	organizerID, err := organizerFromToken(c)
	if err != nil {
		return respondError(c, err)
	}
	eventID, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.BankWithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	result, err := wc.processor.WithdrawBank(c.Request().Context(), organizerID, eventID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal request created successfully",
		Data:    result,
	})
}

// WithdrawMoncash creates a MonCash withdrawal, instant when the prefunded
// pool and the organizer's opt-in allow it.
func (wc *WithdrawalController) WithdrawMoncash(c echo.Context) error {
	organizerID, err := organizerFromToken(c)
	if err != nil {
		return respondError(c, err)
	}
	eventID, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.MoncashWithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	result, err := wc.processor.WithdrawMoncash(c.Request().Context(), organizerID, eventID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal request created successfully",
		Data:    result,
	})
}

// GetWithdrawalHistory returns the organizer's withdrawal requests, newest
// first, for dashboard consumption.
func (wc *WithdrawalController) GetWithdrawalHistory(c echo.Context) error {
	organizerID, err := organizerFromToken(c)
	if err != nil {
		return respondError(c, err)
	}

	withdrawals, err := wc.processor.History(c.Request().Context(), organizerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal history retrieved successfully",
		Data:    map[string]interface{}{"withdrawals": withdrawals},
	})
}
