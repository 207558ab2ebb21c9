package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/jlouissaint/tikepam_backend/config"
	"github.com/jlouissaint/tikepam_backend/controllers"
	"github.com/jlouissaint/tikepam_backend/middleware"
	"github.com/jlouissaint/tikepam_backend/repositories"
	"github.com/jlouissaint/tikepam_backend/routes"
	"github.com/jlouissaint/tikepam_backend/security"
	"github.com/jlouissaint/tikepam_backend/services"
	"github.com/jlouissaint/tikepam_backend/utils"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (step-up token store)
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()
	db := client.Database(config.DatabaseName())

	// Bank account numbers are encrypted at rest
	cipherKey, err := security.AccountCipherKey()
	if err != nil {
		log.Fatal(err)
	}

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeaders())
	e.Use(httpsRedirect())

	// Initialize repositories
	earningsRepo := repositories.NewEarningsRepository(db)
	ticketRepo := repositories.NewTicketRepository(db)
	withdrawalRepo := repositories.NewWithdrawalRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	destinationRepo := repositories.NewDestinationRepository(db)

	// Initialize services
	ledger := services.NewLedger(earningsRepo, ticketRepo)
	exporter := services.NewAuditExporter(ticketRepo)
	moncash := services.NewMoncashService()
	gateway := services.NewStripeConnectService()
	resolver := services.NewProfileResolver(profileRepo, gateway)
	stepUp := utils.NewStepUpService(redisClient)
	registry := services.NewDestinationRegistry(destinationRepo, profileRepo, resolver, stepUp, cipherKey)
	processor := services.NewWithdrawalProcessor(ledger, withdrawalRepo, registry, resolver, moncash)

	// Initialize controllers
	ticketController := controllers.NewTicketController(ledger)
	earningsController := controllers.NewEarningsController(ledger, exporter)
	withdrawalController := controllers.NewWithdrawalController(processor)
	destinationController := controllers.NewDestinationController(registry)
	profileController := controllers.NewPayoutProfileController(resolver)
	stepUpController := controllers.NewStepUpController(stepUp)
	adminController := controllers.NewAdminController(ledger, moncash)

	// Register routes
	routes.SetupMainRoutes(e)
	routes.RegisterPayoutRoutes(e, ticketController, earningsController,
		withdrawalController, destinationController, profileController,
		stepUpController)
	routes.RegisterAdminRoutes(e, adminController)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(301, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
