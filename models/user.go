// models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role identifiers stored in users.roleId
const (
	RoleAdmin      = 1
	RoleSupervisor = 2
	RoleTechnician = 3
	RoleUser       = 4
)

// User model
type User struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName      string             `json:"firstName" bson:"firstName"`
	LastName       string             `json:"lastName" bson:"lastName"`
	Email          string             `json:"email" bson:"email"`
	Password       string             `json:"password,omitempty" bson:"password"`
	RoleID         int                `json:"roleId" bson:"roleId"` // see Role* constants
	Department     string             `json:"department,omitempty" bson:"department,omitempty"`
	Phone          string             `json:"phone,omitempty" bson:"phone,omitempty"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	LastActivityAt time.Time          `json:"lastActivityAt" bson:"lastActivityAt"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// DisplayName returns "firstname lastname" for notification messages.
// Missing name parts render as empty strings, never as an error.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// LoginRequest model
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest is the admin-side payload for creating accounts
type CreateUserRequest struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	RoleID     int    `json:"roleId" validate:"required,min=1,max=4"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// UpdateUserRequest is the admin-side payload for editing accounts
type UpdateUserRequest struct {
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	RoleID     int    `json:"roleId,omitempty" validate:"omitempty,min=1,max=4"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
	IsActive   *bool  `json:"isActive,omitempty"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
