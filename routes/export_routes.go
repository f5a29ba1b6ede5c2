package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/controllers"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/middleware"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

// RegisterExportRoutes registers the CSV export routes
func RegisterExportRoutes(e *echo.Echo, db *mongo.Client) {
	exportController := controllers.NewExportController(db)

	exportGroup := e.Group("/api/export")
	exportGroup.Use(middleware.JWTMiddleware())
	exportGroup.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSupervisor))

	exportGroup.GET("/tickets.csv", exportController.ExportTickets)
	exportGroup.GET("/equipments.csv", exportController.ExportEquipments)
	exportGroup.GET("/users.csv", exportController.ExportUsers)
}
