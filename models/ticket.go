// models/ticket.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ticket statuses as stored in the database
const (
	StatusOuvert  = "ouvert"
	StatusAttente = "en_attente"
	StatusEnCours = "en_cours"
	StatusResolu  = "resolu"
	StatusFerme   = "ferme"
	StatusAnnule  = "annule"
)

// Ticket priorities
const (
	PriorityBasse    = "basse"
	PriorityNormale  = "normale"
	PriorityHaute    = "haute"
	PriorityCritique = "critique"
)

// Ticket model
type Ticket struct {
	ID           primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Number       string              `json:"number" bson:"number"` // human-readable reference, e.g. "TCK-1A2B3C4D"
	Title        string              `json:"title" bson:"title"`
	Description  string              `json:"description" bson:"description"`
	Status       string              `json:"status" bson:"status"`
	Priority     string              `json:"priority" bson:"priority"`
	Category     string              `json:"category,omitempty" bson:"category,omitempty"`
	UserID       *primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty"` // requester / owner
	TechnicianID *primitive.ObjectID `json:"technicianId,omitempty" bson:"technicianId,omitempty"`
	EquipmentID  *primitive.ObjectID `json:"equipmentId,omitempty" bson:"equipmentId,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt" bson:"updatedAt"`
	ResolvedAt   *time.Time          `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	ClosedAt     *time.Time          `json:"closedAt,omitempty" bson:"closedAt,omitempty"`
}

// IsTerminalStatus reports whether the status ends the ticket lifecycle.
func IsTerminalStatus(status string) bool {
	return status == StatusResolu || status == StatusFerme
}

// Comment model
type Comment struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TicketID  primitive.ObjectID `json:"ticketId" bson:"ticketId"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"` // author
	Body      string             `json:"body" bson:"body"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// CreateTicketRequest model
type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority" validate:"required,oneof=basse normale haute critique"`
	Category    string `json:"category,omitempty"`
	EquipmentID string `json:"equipmentId,omitempty"`
}

// UpdateTicketStatusRequest model
type UpdateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ouvert en_attente en_cours resolu ferme annule"`
}

// AssignTicketRequest model
type AssignTicketRequest struct {
	TechnicianID string `json:"technicianId" validate:"required"`
}

// CommentRequest model
type CommentRequest struct {
	Body string `json:"body" validate:"required"`
}
