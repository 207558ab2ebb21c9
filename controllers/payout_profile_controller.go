package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jlouissaint/tikepam_backend/models"
	"github.com/jlouissaint/tikepam_backend/services"
)

// PayoutProfileController exposes the resolved payout profile view and the
// publish-time payout-readiness gate.
type PayoutProfileController struct {
	resolver *services.ProfileResolver
}

// NewPayoutProfileController creates a new payout profile controller
func NewPayoutProfileController(resolver *services.ProfileResolver) *PayoutProfileController {
	return &PayoutProfileController{resolver: resolver}
}

// GetProfile returns the profile for the rail the given country requires,
// with status and verification derived fresh from verification documents.
func (pc *PayoutProfileController) GetProfile(c echo.Context) error {
	organizerID, err := organizerFromToken(c)
	if err != nil {
		return respondError(c, err)
	}
	country := c.QueryParam("country")
	if country == "" {
		return respondError(c, &models.ValidationError{Msg: "country query parameter is required"})
	}

	profile, err := pc.resolver.Resolve(c.Request().Context(), organizerID, country)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout profile retrieved successfully",
		Data:    profile,
	})
}

// CheckPublishGate runs the server-side check an event must pass before it
// can be published as a paid event.
func (pc *PayoutProfileController) CheckPublishGate(c echo.Context) error {
	organizerID, err := organizerFromToken(c)
	if err != nil {
		return respondError(c, err)
	}
	country := c.QueryParam("country")
	if country == "" {
		return respondError(c, &models.ValidationError{Msg: "country query parameter is required"})
	}

	result, err := pc.resolver.CheckPublishGate(c.Request().Context(), organizerID, country)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Publish gate evaluated",
		Data:    result,
	})
}
