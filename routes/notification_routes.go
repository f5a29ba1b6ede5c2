package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/controllers"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/middleware"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/services"
)

// RegisterNotificationRoutes registers the notification feed routes
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client, notifications *services.NotificationService, dispatcher *services.NotificationDispatcher) {
	notificationController := controllers.NewNotificationController(db, notifications, dispatcher)

	notificationGroup := e.Group("/api/notifications")
	notificationGroup.Use(middleware.JWTMiddleware())

	notificationGroup.GET("", notificationController.GetNotifications)
	notificationGroup.GET("/unread-count", notificationController.GetUnreadCount)
	notificationGroup.GET("/stats", notificationController.GetStats)
	notificationGroup.PUT("/:id/read", notificationController.MarkAsRead)
	notificationGroup.PUT("/read-all", notificationController.MarkAllAsRead)
	notificationGroup.PUT("/ticket/:ticketId/read", notificationController.MarkTicketRead)

	notificationGroup.POST("/test", notificationController.SendTest, middleware.RequireAdmin())
	notificationGroup.POST("/cleanup", notificationController.Cleanup, middleware.RequireAdmin())
}
