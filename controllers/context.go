package controllers

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/middleware"
	"github.com/jlouissaint/tikepam_backend/models"

	"github.com/labstack/echo/v4"
)

// organizerFromToken extracts the authenticated organizer's ID from the JWT
// claims set by the auth middleware.
func organizerFromToken(c echo.Context) (primitive.ObjectID, error) {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return primitive.NilObjectID, &models.AuthorizationError{Msg: "missing authentication"}
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, &models.AuthorizationError{Msg: "invalid user ID in token"}
	}
	return id, nil
}

// eventIDParam parses the :eventId path parameter.
func eventIDParam(c echo.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("eventId"))
	if err != nil {
		return primitive.NilObjectID, &models.ValidationError{Msg: "invalid event ID"}
	}
	return id, nil
}
