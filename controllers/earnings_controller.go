package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jlouissaint/tikepam_backend/models"
	"github.com/jlouissaint/tikepam_backend/services"
)

// EarningsController exposes the per-event ledger aggregate and the audit
// export for dashboards and auditors.
type EarningsController struct {
	ledger   *services.Ledger
	exporter *services.AuditExporter
}

// NewEarningsController creates a new earnings controller
func NewEarningsController(ledger *services.Ledger, exporter *services.AuditExporter) *EarningsController {
	return &EarningsController{ledger: ledger, exporter: exporter}
}

// GetEarnings returns the event's earnings aggregate with a freshly derived
// settlement status.
func (ec *EarningsController) GetEarnings(c echo.Context) error {
	organizerID, err := organizerFromToken(c)
	if err != nil {
		return respondError(c, err)
	}
	eventID, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	earnings, err := ec.ledger.Get(c.Request().Context(), eventID)
	if err != nil {
		return respondError(c, err)
	}
	if earnings.OrganizerID != organizerID {
		return respondError(c, &models.AuthorizationError{Msg: "event does not belong to this organizer"})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Earnings retrieved successfully",
		Data:    earnings,
	})
}

// AuditExport streams the per-ticket reconciliation CSV as a download.
func (ec *EarningsController) AuditExport(c echo.Context) error {
	organizerID, err := organizerFromToken(c)
	if err != nil {
		return respondError(c, err)
	}
	eventID, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	earnings, err := ec.ledger.Get(c.Request().Context(), eventID)
	if err != nil {
		return respondError(c, err)
	}
	if earnings.OrganizerID != organizerID {
		return respondError(c, &models.AuthorizationError{Msg: "event does not belong to this organizer"})
	}

	filename := "audit-export-" + eventID.Hex() + "-" + uuid.New().String()[:8] + ".csv"
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)

	return ec.exporter.Stream(c.Request().Context(), eventID, c.Response())
}
