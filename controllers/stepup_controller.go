package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jlouissaint/tikepam_backend/models"
)

// StepUpRecorder marks an organizer as having completed an OTP challenge.
type StepUpRecorder interface {
	RecordStepUp(ctx context.Context, organizerID string) error
}

// StepUpController receives the OTP collaborator's completion callback. The
// recorded token authorizes one sensitive action within its TTL; the actions
// themselves consume it one-shot.
type StepUpController struct {
	recorder StepUpRecorder
}

// NewStepUpController creates a new step-up controller
func NewStepUpController(recorder StepUpRecorder) *StepUpController {
	return &StepUpController{recorder: recorder}
}

type stepUpConfirmation struct {
	OrganizerID string `json:"organizerId"`
}

// ConfirmStepUp records that the organizer completed an OTP challenge.
func (sc *StepUpController) ConfirmStepUp(c echo.Context) error {
	var req stepUpConfirmation
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if _, err := primitive.ObjectIDFromHex(req.OrganizerID); err != nil {
		return respondError(c, &models.ValidationError{Msg: "a valid organizer ID is required"})
	}

	if err := sc.recorder.RecordStepUp(c.Request().Context(), req.OrganizerID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Step-up verification recorded",
	})
}
