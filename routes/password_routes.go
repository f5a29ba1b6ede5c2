package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/controllers"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/middleware"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/services"
)

// RegisterPasswordRoutes registers the password request workflow routes
func RegisterPasswordRoutes(e *echo.Echo, db *mongo.Client, dispatcher *services.NotificationDispatcher) {
	passwordController := controllers.NewPasswordController(db, dispatcher)

	passwordGroup := e.Group("/api/password-requests")
	passwordGroup.Use(middleware.JWTMiddleware())

	passwordGroup.POST("", passwordController.CreateRequest)
	passwordGroup.GET("/:id/view", passwordController.ViewNewPassword)

	passwordGroup.GET("", passwordController.GetRequests, middleware.RequireAdmin())
	passwordGroup.POST("/:id/approve", passwordController.ApproveRequest, middleware.RequireAdmin())
	passwordGroup.POST("/:id/reject", passwordController.RejectRequest, middleware.RequireAdmin())
}
