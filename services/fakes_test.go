// services/fakes_test.go
package services

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

// memoryStore is an in-memory NotificationStore with injectable faults.
type memoryStore struct {
	mu   sync.Mutex
	rows []models.Notification

	insertErr error
	countErr  error
	updateErr error
	deleteErr error
	// failAfter makes Insert fail once that many rows exist. -1 disables it.
	failAfter int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{failAfter: -1}
}

func (m *memoryStore) Insert(_ context.Context, n *models.Notification) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	if m.failAfter >= 0 && len(m.rows) >= m.failAfter {
		return nil, ErrStoreUnavailable
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	m.rows = append(m.rows, *n)
	return n, nil
}

func (m *memoryStore) matches(n models.Notification, userID primitive.ObjectID, filter NotificationFilter) bool {
	if n.UserID != userID {
		return false
	}
	if filter.UnreadOnly && n.IsRead {
		return false
	}
	if filter.Type != "" && n.Type != filter.Type {
		return false
	}
	if filter.CreatedAfter != nil && !n.CreatedAt.After(*filter.CreatedAfter) {
		return false
	}
	return true
}

func (m *memoryStore) QueryByUser(_ context.Context, userID primitive.ObjectID, filter NotificationFilter) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Notification{}
	for _, n := range m.rows {
		if m.matches(n, userID, filter) {
			out = append(out, n)
		}
		if filter.Limit > 0 && int64(len(out)) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memoryStore) CountByUser(_ context.Context, userID primitive.ObjectID, filter NotificationFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	var count int64
	for _, n := range m.rows {
		if m.matches(n, userID, filter) {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return m.CountByUser(ctx, userID, NotificationFilter{UnreadOnly: true})
}

func (m *memoryStore) CountByType(_ context.Context, userID primitive.ObjectID) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return nil, m.countErr
	}
	out := map[string]int64{}
	for _, n := range m.rows {
		if n.UserID == userID {
			out[n.Type]++
		}
	}
	return out, nil
}

func (m *memoryStore) UpdateReadFlag(_ context.Context, update ReadUpdate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return 0, m.updateErr
	}
	var modified int64
	for i := range m.rows {
		n := &m.rows[i]
		if n.UserID != update.UserID || n.IsRead {
			continue
		}
		if update.NotificationID != nil && n.ID != *update.NotificationID {
			continue
		}
		if update.TicketID != nil {
			ticketID, _ := n.Data["ticket_id"].(string)
			if ticketID != update.TicketID.Hex() {
				continue
			}
		}
		n.IsRead = true
		modified++
	}
	return modified, nil
}

func (m *memoryStore) DeleteByPredicate(_ context.Context, pred DeletePredicate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	kept := m.rows[:0]
	var deleted int64
	for _, n := range m.rows {
		old := n.CreatedAt.Before(pred.OlderThan)
		if old && (!pred.ReadOnly || n.IsRead) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	m.rows = kept
	return deleted, nil
}

// memoryDirectory is an in-memory UserDirectory.
type memoryDirectory struct {
	users []models.User
	err   error
}

func (m *memoryDirectory) ListByRoles(_ context.Context, roleIDs []int) ([]models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []models.User{}
	for _, u := range m.users {
		for _, role := range roleIDs {
			if u.RoleID == role && u.IsActive {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

// recordingPusher records live pushes.
type recordingPusher struct {
	mu     sync.Mutex
	pushed []primitive.ObjectID
}

func (p *recordingPusher) Push(userID primitive.ObjectID, _ models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, userID)
}

// silentDiagnostics drops everything.
type silentDiagnostics struct{}

func (silentDiagnostics) Sent(EventKind, Fields)               {}
func (silentDiagnostics) Suppressed(EventKind, string, Fields) {}
func (silentDiagnostics) Failed(EventKind, error, Fields)      {}

func newTestUser(roleID int, firstName, lastName string) *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     firstName + "@example.test",
		RoleID:    roleID,
		IsActive:  true,
	}
}

func newTestTicket(owner *models.User, title string) *models.Ticket {
	t := &models.Ticket{
		ID:     primitive.NewObjectID(),
		Number: "TCK-TEST01",
		Title:  title,
		Status: models.StatusOuvert,
	}
	if owner != nil {
		t.UserID = &owner.ID
	}
	return t
}
