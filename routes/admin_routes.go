package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jlouissaint/tikepam_backend/controllers"
	"github.com/jlouissaint/tikepam_backend/middleware"
)

// RegisterAdminRoutes sets up the administrative settlement endpoints.
func RegisterAdminRoutes(e *echo.Echo, adminController *controllers.AdminController) {
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireAdmin())

	admin.POST("/events/:eventId/settlement-hold", adminController.PlaceSettlementHold)
	admin.POST("/events/:eventId/settlement-release", adminController.ReleaseSettlementHold)
	admin.GET("/moncash-pool", adminController.GetMoncashPool)
}
