// models/equipment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Equipment statuses
const (
	EquipActif       = "actif"
	EquipEnPanne     = "en_panne"
	EquipMaintenance = "en_maintenance"
	EquipRetire      = "retire"
)

// Equipment model
type Equipment struct {
	ID           primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string              `json:"name" bson:"name"`
	Type         string              `json:"type" bson:"type"` // laptop, printer, server, ...
	SerialNumber string              `json:"serialNumber" bson:"serialNumber"`
	Status       string              `json:"status" bson:"status"`
	Location     string              `json:"location,omitempty" bson:"location,omitempty"`
	AssignedTo   *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	PurchasedAt  *time.Time          `json:"purchasedAt,omitempty" bson:"purchasedAt,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// EquipmentRequest is the payload for creating or updating equipment
type EquipmentRequest struct {
	Name         string `json:"name" validate:"required"`
	Type         string `json:"type" validate:"required"`
	SerialNumber string `json:"serialNumber" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=actif en_panne en_maintenance retire"`
	Location     string `json:"location,omitempty"`
	AssignedTo   string `json:"assignedTo,omitempty"`
}
