package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/controllers"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/middleware"
)

// RegisterUserRoutes registers user management routes. All of them are
// admin-only.
func RegisterUserRoutes(e *echo.Echo, db *mongo.Client) {
	userController := controllers.NewUserController(db)

	userGroup := e.Group("/api/users")
	userGroup.Use(middleware.JWTMiddleware())
	userGroup.Use(middleware.RequireAdmin())

	userGroup.GET("", userController.GetUsers)
	userGroup.POST("", userController.CreateUser)
	userGroup.GET("/:id", userController.GetUser)
	userGroup.PUT("/:id", userController.UpdateUser)
	userGroup.DELETE("/:id", userController.DeleteUser)
}
