package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/controllers"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/middleware"
)

// RegisterEquipmentRoutes registers the equipment inventory routes. Reads
// are open to any authenticated user, writes are staff-only.
func RegisterEquipmentRoutes(e *echo.Echo, db *mongo.Client) {
	equipmentController := controllers.NewEquipmentController(db)

	equipmentGroup := e.Group("/api/equipments")
	equipmentGroup.Use(middleware.JWTMiddleware())

	equipmentGroup.GET("", equipmentController.GetEquipments)
	equipmentGroup.GET("/:id", equipmentController.GetEquipment)

	equipmentGroup.POST("", equipmentController.CreateEquipment, middleware.RequireStaff())
	equipmentGroup.PUT("/:id", equipmentController.UpdateEquipment, middleware.RequireStaff())
	equipmentGroup.DELETE("/:id", equipmentController.DeleteEquipment, middleware.RequireAdmin())
}
