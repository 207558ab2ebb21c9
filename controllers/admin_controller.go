package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jlouissaint/tikepam_backend/models"
	"github.com/jlouissaint/tikepam_backend/services"
)

// AdminController carries the administrative settlement actions. A locked
// settlement is deliberately not auto-recoverable; these endpoints are the
// only way in and out of the locked state.
type AdminController struct {
	ledger  *services.Ledger
	moncash services.MoncashRail
}

// NewAdminController creates a new admin controller
func NewAdminController(ledger *services.Ledger, moncash services.MoncashRail) *AdminController {
	return &AdminController{ledger: ledger, moncash: moncash}
}

type settlementHoldRequest struct {
	Reason string `json:"reason"`
}

// PlaceSettlementHold freezes an event's settlement for fraud or compliance
// review. The hold is sticky across ledger recomputes.
func (ac *AdminController) PlaceSettlementHold(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req settlementHoldRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	earnings, err := ac.ledger.SetAdminHold(c.Request().Context(), eventID, true, req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Settlement hold placed",
		Data:    earnings,
	})
}

// ReleaseSettlementHold clears the administrative lock. The settlement
// status returns to whatever the hold window derives.
func (ac *AdminController) ReleaseSettlementHold(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	earnings, err := ac.ledger.SetAdminHold(c.Request().Context(), eventID, false, "")
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Settlement hold released",
		Data:    earnings,
	})
}

type moncashPoolResponse struct {
	Balance           models.MoncashBalanceData `json:"balance"`
	PrefundingEnabled bool                      `json:"prefundingEnabled"`
}

// GetMoncashPool reports the remaining prefunded MonCash pool balance so an
// admin can tell when instant payouts are about to drain it.
func (ac *AdminController) GetMoncashPool(c echo.Context) error {
	balance, err := ac.moncash.PoolBalance(c.Request().Context())
	if err != nil {
		return respondError(c, &models.ExternalRailError{Provider: "moncash", Reason: err.Error()})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "MonCash pool balance",
		Data: moncashPoolResponse{
			Balance:           models.MoncashBalanceData{BalanceCents: balance},
			PrefundingEnabled: ac.moncash.PrefundingEnabled(),
		},
	})
}
