// models/password_request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Password request statuses
const (
	PasswordRequestPending  = "pending"
	PasswordRequestApproved = "approved"
	PasswordRequestRejected = "rejected"
)

// PasswordRequest model. A user asks an admin to set a new password; the
// plaintext is held only until the requester views it once after approval.
type PasswordRequest struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID  `json:"userId" bson:"userId"`
	Reason          string              `json:"reason" bson:"reason"`
	NewPassword     string              `json:"newPassword,omitempty" bson:"newPassword,omitempty"`
	Status          string              `json:"status" bson:"status"`
	ProcessedBy     *primitive.ObjectID `json:"processedBy,omitempty" bson:"processedBy,omitempty"`
	RejectionReason string              `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	RequestedAt     time.Time           `json:"requestedAt" bson:"requestedAt"`
	ApprovedAt      *time.Time          `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	RejectedAt      *time.Time          `json:"rejectedAt,omitempty" bson:"rejectedAt,omitempty"`
}

// PasswordRequestCreate model
type PasswordRequestCreate struct {
	Reason string `json:"reason" validate:"required"`
}

// PasswordRequestReject model
type PasswordRequestReject struct {
	Reason string `json:"reason" validate:"required"`
}
