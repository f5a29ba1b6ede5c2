// models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification type tags
const (
	NotifTicketAssigned   = "ticket_assigned"
	NotifTicketUpdated    = "ticket_updated"
	NotifTicketClosed     = "ticket_closed"
	NotifTicketNew        = "ticket_new"
	NotifCommentAdded     = "comment_added"
	NotifSystem           = "system"
	NotifPasswordRequest  = "password_request"
	NotifPasswordChanged  = "password_changed"
	NotifPasswordRejected = "password_rejected"
)

// Notification model. Title, Message and Data are immutable after creation;
// only IsRead is ever updated.
type Notification struct {
	ID        primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID     `json:"userId" bson:"userId"`       // the user who receives the notification
	Type      string                 `json:"type" bson:"type"`           // one of the Notif* tags
	Title     string                 `json:"title" bson:"title"`         // rendered, user-facing
	Message   string                 `json:"message" bson:"message"`     // rendered, user-facing
	Data      map[string]interface{} `json:"data,omitempty" bson:"data"` // structured payload (ids, names, action tag)
	IsRead    bool                   `json:"isRead" bson:"isRead"`
	CreatedAt time.Time              `json:"createdAt" bson:"createdAt"`
}

// NotificationStats is the read-side aggregation returned by the stats endpoint.
type NotificationStats struct {
	Total  int64            `json:"total"`
	Unread int64            `json:"unread"`
	Recent int64            `json:"recent"` // created within the recent window
	ByType map[string]int64 `json:"byType"`
}
