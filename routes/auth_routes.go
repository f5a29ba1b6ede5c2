package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/controllers"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/middleware"
)

// RegisterAuthRoutes registers login, logout and the current-user endpoint
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client) {
	authController := controllers.NewAuthController(db)

	authGroup := e.Group("/api/auth")
	authGroup.POST("/login", authController.Login)

	protected := e.Group("/api/auth")
	protected.Use(middleware.JWTMiddleware())
	protected.POST("/logout", authController.Logout)
	protected.GET("/me", authController.Me)
}
