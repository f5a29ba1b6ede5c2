// controllers/equipment_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/config"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

// EquipmentController handles the equipment inventory
type EquipmentController struct {
	DB *mongo.Client
}

func NewEquipmentController(db *mongo.Client) *EquipmentController {
	return &EquipmentController{DB: db}
}

// GetEquipments lists the inventory, optionally filtered by status
func (ec *EquipmentController) GetEquipments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := config.GetCollection(ec.DB, "equipments").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch equipments",
		})
	}
	defer cursor.Close(ctx)

	equipments := []models.Equipment{}
	if err := cursor.All(ctx, &equipments); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode equipments",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Equipments retrieved",
		Data:    equipments,
	})
}

// GetEquipment returns one equipment by ID
func (ec *EquipmentController) GetEquipment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	equipmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid equipment ID",
		})
	}

	var equipment models.Equipment
	err = config.GetCollection(ec.DB, "equipments").FindOne(ctx, bson.M{"_id": equipmentID}).Decode(&equipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Equipment not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch equipment",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Equipment retrieved",
		Data:    equipment,
	})
}

// CreateEquipment adds a device to the inventory (admin only)
func (ec *EquipmentController) CreateEquipment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.EquipmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	now := time.Now()
	equipment := models.Equipment{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Type:         req.Type,
		SerialNumber: req.SerialNumber,
		Status:       req.Status,
		Location:     req.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.AssignedTo != "" {
		assignedTo, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid assigned user ID",
			})
		}
		equipment.AssignedTo = &assignedTo
	}

	if _, err := config.GetCollection(ec.DB, "equipments").InsertOne(ctx, equipment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Serial number already registered",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create equipment",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Equipment created",
		Data:    equipment,
	})
}

// UpdateEquipment edits a device (admin only)
func (ec *EquipmentController) UpdateEquipment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	equipmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid equipment ID",
		})
	}

	var req models.EquipmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	update := bson.M{
		"name":         req.Name,
		"type":         req.Type,
		"serialNumber": req.SerialNumber,
		"status":       req.Status,
		"location":     req.Location,
		"updatedAt":    time.Now(),
	}
	if req.AssignedTo != "" {
		assignedTo, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid assigned user ID",
			})
		}
		update["assignedTo"] = assignedTo
	}

	result, err := config.GetCollection(ec.DB, "equipments").UpdateOne(ctx,
		bson.M{"_id": equipmentID}, bson.M{"$set": update})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update equipment",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Equipment not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Equipment updated",
	})
}

// DeleteEquipment removes a device from the inventory (admin only)
func (ec *EquipmentController) DeleteEquipment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	equipmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid equipment ID",
		})
	}

	result, err := config.GetCollection(ec.DB, "equipments").DeleteOne(ctx, bson.M{"_id": equipmentID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete equipment",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Equipment not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Equipment deleted",
	})
}
