package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jlouissaint/tikepam_backend/controllers"
	"github.com/jlouissaint/tikepam_backend/middleware"
)

// RegisterPayoutRoutes sets up the organizer-facing payout endpoints and the
// inbound ticket-confirmation hook.
func RegisterPayoutRoutes(
	e *echo.Echo,
	ticketController *controllers.TicketController,
	earningsController *controllers.EarningsController,
	withdrawalController *controllers.WithdrawalController,
	destinationController *controllers.DestinationController,
	profileController *controllers.PayoutProfileController,
	stepUpController *controllers.StepUpController,
) {
	// Inbound collaborator hook: the ticket-issuance service authenticates
	// with a service token carrying userType "service".
	hooks := e.Group("/api/tickets")
	hooks.Use(middleware.JWTMiddleware())
	hooks.Use(middleware.RequireUserType("service", "admin"))
	hooks.POST("/confirmation", ticketController.ConfirmTicket)

	// Inbound collaborator hook: the OTP service reports completed challenges.
	stepup := e.Group("/api/step-up")
	stepup.Use(middleware.JWTMiddleware())
	stepup.Use(middleware.RequireUserType("service", "admin"))
	stepup.POST("/confirmation", stepUpController.ConfirmStepUp)

	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireUserType("organizer", "admin"))

	// Earnings and audit export
	r.GET("/events/:eventId/earnings", earningsController.GetEarnings)
	r.GET("/events/:eventId/earnings/audit-export", earningsController.AuditExport)

	// Withdrawals (manual rails only; rail exclusivity enforced server-side)
	r.POST("/events/:eventId/withdraw-bank", withdrawalController.WithdrawBank)
	r.POST("/events/:eventId/withdraw-moncash", withdrawalController.WithdrawMoncash)
	r.GET("/withdrawals", withdrawalController.GetWithdrawalHistory)

	// Payout profile
	r.GET("/payout-profile", profileController.GetProfile)
	r.GET("/payout-profile/publish-gate", profileController.CheckPublishGate)

	// Bank destination registry
	r.GET("/payout-destinations", destinationController.ListDestinations)
	r.POST("/payout-destinations", destinationController.CreateDestination)
	r.PUT("/payout-destinations/:destinationId/primary", destinationController.SetPrimaryDestination)
	r.DELETE("/payout-destinations/:destinationId", destinationController.DeleteDestination)
}
