package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jlouissaint/tikepam_backend/models"
	"github.com/jlouissaint/tikepam_backend/services"
)

// TicketController ingests ticket-confirmation events from the
// ticket-issuance service and feeds them into the earnings ledger.
type TicketController struct {
	ledger *services.Ledger
}

// NewTicketController creates a new ticket controller
func NewTicketController(ledger *services.Ledger) *TicketController {
	return &TicketController{ledger: ledger}
}

// ConfirmTicket records one ticket sale and recomputes the event's earnings.
// Tickets in any known status are persisted for the audit trail; only valid
// and confirmed tickets move the ledger.
func (tc *TicketController) ConfirmTicket(c echo.Context) error {
	var conf models.TicketConfirmation
	if err := c.Bind(&conf); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&conf); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}
	switch conf.Status {
	case models.TicketValid, models.TicketConfirmed, models.TicketPending, models.TicketRefunded:
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown ticket status: " + conf.Status,
		})
	}

	earnings, err := tc.ledger.RecordTicket(c.Request().Context(), &conf)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ticket recorded successfully",
		Data:    earnings,
	})
}
