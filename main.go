package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/config"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/middleware"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/repositories"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/routes"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/services"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/utils"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/websocket"
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
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (optional, the app degrades without it)
	redisClient := config.ConnectRedis()
	defer config.CloseRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Wire the notification engine
	notificationRepo := repositories.NewNotificationRepository(client, redisClient)
	userRepo := repositories.NewUserRepository(client)
	dispatcher := services.NewNotificationDispatcher(notificationRepo, userRepo, nil, wsHub)
	notificationService := services.NewNotificationService(notificationRepo)

	// Create a new Echo instance
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.CORSMiddleware())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "Maintenance backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Register routes
	routes.RegisterAuthRoutes(e, client)
	routes.RegisterUserRoutes(e, client)
	routes.RegisterTicketRoutes(e, client, dispatcher, notificationService)
	routes.RegisterEquipmentRoutes(e, client)
	routes.RegisterNotificationRoutes(e, client, notificationService, dispatcher)
	routes.RegisterPasswordRoutes(e, client, dispatcher)
	routes.RegisterExportRoutes(e, client)

	// Live notification stream
	wsGroup := e.Group("/api/ws")
	wsGroup.Use(middleware.JWTMiddleware())
	wsGroup.GET("", func(c echo.Context) error {
		userID, err := utils.GetUserIDFromToken(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		return websocket.HandleWebSocket(c, wsHub, userID)
	})

	// Expired blacklist entries are purged in the background
	go middleware.CleanupBlacklist()

	// Daily retention sweep over read notifications
	go func() {
		for {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			notificationService.CleanOldNotifications(ctx)
			cancel()
			time.Sleep(24 * time.Hour)
		}
	}()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
