// services/notification_service_test.go
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

func newTestService(store *memoryStore) *NotificationService {
	s := NewNotificationService(store)
	s.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return s
}

func seedNotification(t *testing.T, store *memoryStore, userID primitive.ObjectID, notifType string, isRead bool, createdAt time.Time, data map[string]interface{}) models.Notification {
	t.Helper()
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      notifType,
		Title:     "t",
		Message:   "m",
		Data:      data,
		IsRead:    isRead,
		CreatedAt: createdAt,
	}
	store.rows = append(store.rows, n)
	return n
}

func TestListForUserUnreadOnly(t *testing.T) {
	store := newMemoryStore()
	userID := primitive.NewObjectID()
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	seedNotification(t, store, userID, models.NotifTicketNew, false, now, nil)
	seedNotification(t, store, userID, models.NotifTicketUpdated, true, now, nil)
	seedNotification(t, store, primitive.NewObjectID(), models.NotifTicketNew, false, now, nil)

	s := newTestService(store)
	got, err := s.ListForUser(context.Background(), userID, true, 50)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Type != models.NotifTicketNew {
		t.Errorf("type = %q", got[0].Type)
	}
}

func TestMarkAsReadScopedToOwner(t *testing.T) {
	store := newMemoryStore()
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	n := seedNotification(t, store, owner, models.NotifTicketNew, false, now, nil)

	s := newTestService(store)

	// Another user cannot flip someone else's notification
	modified, err := s.MarkAsRead(context.Background(), other, n.ID)
	if err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if modified != 0 {
		t.Errorf("modified = %d, want 0 for non-owner", modified)
	}

	modified, err = s.MarkAsRead(context.Background(), owner, n.ID)
	if err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if modified != 1 {
		t.Errorf("modified = %d, want 1", modified)
	}

	// Already read, second call is a no-op
	modified, _ = s.MarkAsRead(context.Background(), owner, n.ID)
	if modified != 0 {
		t.Errorf("second call modified = %d, want 0", modified)
	}
}

func TestMarkRelatedAsReadMatchesTicketPayload(t *testing.T) {
	store := newMemoryStore()
	userID := primitive.NewObjectID()
	ticketID := primitive.NewObjectID()
	otherTicketID := primitive.NewObjectID()
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	seedNotification(t, store, userID, models.NotifTicketUpdated, false, now,
		map[string]interface{}{"ticket_id": ticketID.Hex()})
	seedNotification(t, store, userID, models.NotifCommentAdded, false, now,
		map[string]interface{}{"ticket_id": ticketID.Hex()})
	seedNotification(t, store, userID, models.NotifTicketUpdated, false, now,
		map[string]interface{}{"ticket_id": otherTicketID.Hex()})
	seedNotification(t, store, userID, models.NotifSystem, false, now, nil)

	s := newTestService(store)
	modified, err := s.MarkRelatedAsRead(context.Background(), userID, ticketID)
	if err != nil {
		t.Fatalf("MarkRelatedAsRead: %v", err)
	}
	if modified != 2 {
		t.Fatalf("modified = %d, want 2", modified)
	}

	unread, _ := s.UnreadCount(context.Background(), userID)
	if unread != 2 {
		t.Errorf("unread after = %d, want 2", unread)
	}
}

func TestMarkRelatedAsReadNoMatchesIsNoOp(t *testing.T) {
	store := newMemoryStore()
	userID := primitive.NewObjectID()

	s := newTestService(store)
	modified, err := s.MarkRelatedAsRead(context.Background(), userID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("MarkRelatedAsRead: %v", err)
	}
	if modified != 0 {
		t.Errorf("modified = %d, want 0", modified)
	}
}

func TestStatsCounts(t *testing.T) {
	store := newMemoryStore()
	userID := primitive.NewObjectID()
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	seedNotification(t, store, userID, models.NotifTicketNew, false, now.Add(-time.Hour), nil)
	seedNotification(t, store, userID, models.NotifTicketNew, true, now.Add(-2*24*time.Hour), nil)
	seedNotification(t, store, userID, models.NotifSystem, true, now.Add(-10*24*time.Hour), nil)
	seedNotification(t, store, primitive.NewObjectID(), models.NotifSystem, false, now, nil)

	s := newTestService(store)
	stats, err := s.Stats(context.Background(), userID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.Unread != 1 {
		t.Errorf("unread = %d, want 1", stats.Unread)
	}
	if stats.Recent != 2 {
		t.Errorf("recent = %d, want 2", stats.Recent)
	}
	if stats.ByType[models.NotifTicketNew] != 2 || stats.ByType[models.NotifSystem] != 1 {
		t.Errorf("byType = %v", stats.ByType)
	}
}

func TestStatsUnavailableOnStoreFault(t *testing.T) {
	store := newMemoryStore()
	store.countErr = errors.New("connection reset")

	s := newTestService(store)
	_, err := s.Stats(context.Background(), primitive.NewObjectID())
	if !errors.Is(err, ErrStatsUnavailable) {
		t.Fatalf("err = %v, want ErrStatsUnavailable", err)
	}
}

func TestCleanOldNotificationsRetention(t *testing.T) {
	store := newMemoryStore()
	userID := primitive.NewObjectID()
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	// Old and read: eligible
	seedNotification(t, store, userID, models.NotifTicketNew, true, now.Add(-40*24*time.Hour), nil)
	// Old but unread: kept
	seedNotification(t, store, userID, models.NotifTicketNew, false, now.Add(-40*24*time.Hour), nil)
	// Read but fresh: kept
	seedNotification(t, store, userID, models.NotifSystem, true, now.Add(-time.Hour), nil)

	s := newTestService(store)
	deleted, err := s.CleanOldNotifications(context.Background())
	if err != nil {
		t.Fatalf("CleanOldNotifications: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	if len(store.rows) != 2 {
		t.Errorf("remaining rows = %d, want 2", len(store.rows))
	}

	// Second run finds nothing eligible
	deleted, err = s.CleanOldNotifications(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if deleted != 0 {
		t.Errorf("second sweep deleted = %d, want 0", deleted)
	}
}

func TestCleanOldNotificationsStoreFault(t *testing.T) {
	store := newMemoryStore()
	store.deleteErr = errors.New("write concern error")

	s := newTestService(store)
	if _, err := s.CleanOldNotifications(context.Background()); err == nil {
		t.Fatal("expected the store error to surface")
	}
}
