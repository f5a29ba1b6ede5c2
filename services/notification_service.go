// services/notification_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

const (
	// RetentionWindow is how long read notifications are kept before the
	// sweep deletes them.
	RetentionWindow = 30 * 24 * time.Hour
	// RecentWindow defines "recent" in the stats aggregation.
	RecentWindow = 7 * 24 * time.Hour
)

// ErrStatsUnavailable is returned when the stats aggregation fails, so
// callers never mistake a storage fault for "no notifications".
var ErrStatsUnavailable = errors.New("notification stats unavailable")

// NotificationService is the read side of the notification core: listing,
// read-state updates, stats, and the retention sweep.
type NotificationService struct {
	store NotificationStore
	now   func() time.Time
}

// NewNotificationService creates the read-side service.
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store, now: time.Now}
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit int64) ([]models.Notification, error) {
	return s.store.QueryByUser(ctx, userID, NotificationFilter{UnreadOnly: unreadOnly, Limit: limit})
}

// UnreadCount returns how many unread notifications a user has.
func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.store.UnreadCount(ctx, userID)
}

// MarkAsRead flips one of the user's notifications to read.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID primitive.ObjectID) (int64, error) {
	return s.store.UpdateReadFlag(ctx, ReadUpdate{UserID: userID, NotificationID: &notificationID})
}

// MarkAllAsRead flips every unread notification of the user to read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.store.UpdateReadFlag(ctx, ReadUpdate{UserID: userID})
}

// MarkRelatedAsRead flips the user's unread notifications whose payload
// references the given ticket. Silent no-op when none match.
func (s *NotificationService) MarkRelatedAsRead(ctx context.Context, userID, ticketID primitive.ObjectID) (int64, error) {
	return s.store.UpdateReadFlag(ctx, ReadUpdate{UserID: userID, TicketID: &ticketID})
}

// Stats aggregates a user's notification counts. On aggregation failure it
// returns ErrStatsUnavailable rather than a partial result.
func (s *NotificationService) Stats(ctx context.Context, userID primitive.ObjectID) (*models.NotificationStats, error) {
	total, err := s.store.CountByUser(ctx, userID, NotificationFilter{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
	}
	unread, err := s.store.CountByUser(ctx, userID, NotificationFilter{UnreadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
	}
	since := s.now().Add(-RecentWindow)
	recent, err := s.store.CountByUser(ctx, userID, NotificationFilter{CreatedAfter: &since})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
	}
	byType, err := s.store.CountByType(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
	}

	return &models.NotificationStats{
		Total:  total,
		Unread: unread,
		Recent: recent,
		ByType: byType,
	}, nil
}

// CleanOldNotifications deletes read notifications older than the retention
// window. Running it with nothing eligible deletes zero and is not an error.
func (s *NotificationService) CleanOldNotifications(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-RetentionWindow)
	deleted, err := s.store.DeleteByPredicate(ctx, DeletePredicate{ReadOnly: true, OlderThan: cutoff})
	if err != nil {
		log.Printf("Retention sweep failed (cutoff %s): %v", cutoff.Format(time.RFC3339), err)
		return 0, err
	}
	if deleted > 0 {
		log.Printf("Retention sweep deleted %d read notifications older than %s", deleted, cutoff.Format(time.RFC3339))
	}
	return deleted, nil
}
