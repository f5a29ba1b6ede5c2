package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/controllers"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/middleware"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/services"
)

// RegisterTicketRoutes registers the ticket lifecycle routes
func RegisterTicketRoutes(e *echo.Echo, db *mongo.Client, dispatcher *services.NotificationDispatcher, notifications *services.NotificationService) {
	ticketController := controllers.NewTicketController(db, dispatcher, notifications)

	ticketGroup := e.Group("/api/tickets")
	ticketGroup.Use(middleware.JWTMiddleware())

	ticketGroup.POST("", ticketController.CreateTicket)
	ticketGroup.GET("", ticketController.GetTickets)
	ticketGroup.GET("/:id", ticketController.GetTicket)
	ticketGroup.GET("/:id/comments", ticketController.GetComments)
	ticketGroup.POST("/:id/comments", ticketController.AddComment)

	// Status changes and assignment are staff operations
	ticketGroup.PUT("/:id/status", ticketController.UpdateStatus, middleware.RequireStaff())
	ticketGroup.POST("/:id/take", ticketController.TakeTicket, middleware.RequireRole(models.RoleTechnician))
	ticketGroup.POST("/:id/assign", ticketController.AssignTicket, middleware.RequireRole(models.RoleAdmin, models.RoleSupervisor))
}
