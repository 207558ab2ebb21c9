package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/models"
	"github.com/jlouissaint/tikepam_backend/services"
)

// DestinationController exposes the bank destination registry CRUD. Creation
// and mutation are gated on a fresh, one-shot OTP step-up.
type DestinationController struct {
	registry *services.DestinationRegistry
}

// NewDestinationController creates a new destination controller
func NewDestinationController(registry *services.DestinationRegistry) *DestinationController {
	return &DestinationController{registry: registry}
}

// ListDestinations returns the organizer's payout destinations with masked
// account numbers and resolved verification state.
func (dc *DestinationController) ListDestinations(c echo.Context) error {
	organizerID, err := organizerFromToken(c)
	if err != nil {
		return respondError(c, err)
	}

	destinations, err := dc.registry.List(c.Request().Context(), organizerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Destinations retrieved successfully",
		Data:    map[string]interface{}{"destinations": destinations},
	})
}

// CreateDestination registers a new bank destination.
func (dc *DestinationController) CreateDestination(c echo.Context) error {
	organizerID, err := organizerFromToken(c)
	if err != nil {
		return respondError(c, err)
	}

	var details models.BankDetails
	if err := c.Bind(&details); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&details); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	destination, err := dc.registry.Add(c.Request().Context(), organizerID, &details)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Destination added successfully",
		Data:    destination,
	})
}

// SetPrimaryDestination switches which destination is primary.
func (dc *DestinationController) SetPrimaryDestination(c echo.Context) error {
	organizerID, err := organizerFromToken(c)
	if err != nil {
		return respondError(c, err)
	}
	destinationID, err := primitive.ObjectIDFromHex(c.Param("destinationId"))
	if err != nil {
		return respondError(c, &models.ValidationError{Msg: "invalid destination ID"})
	}

	destination, err := dc.registry.SetPrimary(c.Request().Context(), organizerID, destinationID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Primary destination updated successfully",
		Data:    destination,
	})
}

// DeleteDestination removes a secondary destination.
func (dc *DestinationController) DeleteDestination(c echo.Context) error {
	organizerID, err := organizerFromToken(c)
	if err != nil {
		return respondError(c, err)
	}
	destinationID, err := primitive.ObjectIDFromHex(c.Param("destinationId"))
	if err != nil {
		return respondError(c, &models.ValidationError{Msg: "invalid destination ID"})
	}

	if err := dc.registry.Remove(c.Request().Context(), organizerID, destinationID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Destination removed successfully",
	})
}
