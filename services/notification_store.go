// services/notification_store.go
package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

// NotificationFilter narrows a per-user notification query.
type NotificationFilter struct {
	UnreadOnly   bool
	Type         string
	CreatedAfter *time.Time
	Limit        int64
}

// ReadUpdate selects the unread notifications whose read flag should be set.
// NotificationID and TicketID are optional narrowing criteria; TicketID matches
// the data.ticket_id payload field.
type ReadUpdate struct {
	UserID         primitive.ObjectID
	NotificationID *primitive.ObjectID
	TicketID       *primitive.ObjectID
}

// DeletePredicate selects notifications for the retention sweep. Only read
// rows are ever eligible, so the sweep never conflicts with concurrent
// read-state updates on unread rows.
type DeletePredicate struct {
	ReadOnly  bool
	OlderThan time.Time
}

// NotificationStore is the persistence boundary of the notification core.
// The Mongo implementation lives in repositories; tests use an in-memory fake.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) (*models.Notification, error)
	QueryByUser(ctx context.Context, userID primitive.ObjectID, filter NotificationFilter) ([]models.Notification, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID, filter NotificationFilter) (int64, error)
	CountByType(ctx context.Context, userID primitive.ObjectID) (map[string]int64, error)
	// UnreadCount is CountByUser with UnreadOnly, split out so implementations
	// can cache the counter shown on every page load.
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	UpdateReadFlag(ctx context.Context, update ReadUpdate) (int64, error)
	DeleteByPredicate(ctx context.Context, pred DeletePredicate) (int64, error)
}

// UserDirectory resolves broadcast recipients. Only active users are returned.
type UserDirectory interface {
	ListByRoles(ctx context.Context, roleIDs []int) ([]models.User, error)
}

// LivePusher is an optional hook invoked after a notification row is written,
// used to nudge connected clients. Delivery is best-effort; failures are the
// pusher's problem, never the dispatcher's.
type LivePusher interface {
	Push(userID primitive.ObjectID, n models.Notification)
}
