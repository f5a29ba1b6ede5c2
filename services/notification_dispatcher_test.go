// services/notification_dispatcher_test.go
package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

func newTestDispatcher(store *memoryStore, directory *memoryDirectory, pusher LivePusher) *NotificationDispatcher {
	d := NewNotificationDispatcher(store, directory, silentDiagnostics{}, pusher)
	d.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return d
}

func TestTicketTakenNotifiesOwner(t *testing.T) {
	store := newMemoryStore()
	owner := newTestUser(models.RoleUser, "Nadia", "Benali")
	technician := newTestUser(models.RoleTechnician, "Karim", "Haddad")
	ticket := newTestTicket(owner, "Écran en panne")

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.TicketTaken(context.Background(), ticket, technician)

	if res.Outcome != OutcomeSent {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSent)
	}
	if res.Notification == nil {
		t.Fatal("expected a notification")
	}
	n := res.Notification
	if n.UserID != owner.ID {
		t.Errorf("recipient = %s, want owner %s", n.UserID.Hex(), owner.ID.Hex())
	}
	if n.Type != models.NotifTicketAssigned {
		t.Errorf("type = %q, want %q", n.Type, models.NotifTicketAssigned)
	}
	if n.IsRead {
		t.Error("new notification must be unread")
	}
	if got := n.Data["ticket_id"]; got != ticket.ID.Hex() {
		t.Errorf("data.ticket_id = %v, want %s", got, ticket.ID.Hex())
	}
	if !strings.Contains(n.Message, "Karim Haddad") {
		t.Errorf("message %q does not name the technician", n.Message)
	}
	if len(store.rows) != 1 {
		t.Errorf("stored rows = %d, want 1", len(store.rows))
	}
}

func TestTicketTakenSuppressedForOwnTicket(t *testing.T) {
	store := newMemoryStore()
	technician := newTestUser(models.RoleTechnician, "Karim", "Haddad")
	ticket := newTestTicket(technician, "Clavier défectueux")

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.TicketTaken(context.Background(), ticket, technician)

	if res.Outcome != OutcomeSuppressed {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSuppressed)
	}
	if len(store.rows) != 0 {
		t.Errorf("stored rows = %d, want 0", len(store.rows))
	}
}

func TestTicketTakenSuppressedWithoutOwner(t *testing.T) {
	store := newMemoryStore()
	technician := newTestUser(models.RoleTechnician, "Karim", "Haddad")
	ticket := newTestTicket(nil, "Ticket orphelin")

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.TicketTaken(context.Background(), ticket, technician)

	if res.Outcome != OutcomeSuppressed {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSuppressed)
	}
	if len(store.rows) != 0 {
		t.Errorf("stored rows = %d, want 0", len(store.rows))
	}
}

func TestTicketStatusChangedClassification(t *testing.T) {
	tests := []struct {
		name      string
		newStatus string
		wantType  string
	}{
		{"to en_cours", models.StatusEnCours, models.NotifTicketUpdated},
		{"to en_attente", models.StatusAttente, models.NotifTicketUpdated},
		{"to annule", models.StatusAnnule, models.NotifTicketUpdated},
		{"to resolu", models.StatusResolu, models.NotifTicketClosed},
		{"to ferme", models.StatusFerme, models.NotifTicketClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			owner := newTestUser(models.RoleUser, "Nadia", "Benali")
			updater := newTestUser(models.RoleTechnician, "Karim", "Haddad")
			ticket := newTestTicket(owner, "Imprimante bloquée")

			d := newTestDispatcher(store, &memoryDirectory{}, nil)
			res := d.TicketStatusChanged(context.Background(), ticket, models.StatusOuvert, tt.newStatus, updater)

			if res.Outcome != OutcomeSent {
				t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSent)
			}
			if res.Notification.Type != tt.wantType {
				t.Errorf("type = %q, want %q", res.Notification.Type, tt.wantType)
			}
		})
	}
}

func TestTicketStatusChangedMessage(t *testing.T) {
	store := newMemoryStore()
	owner := newTestUser(models.RoleUser, "Nadia", "Benali")
	updater := newTestUser(models.RoleTechnician, "Karim", "Haddad")
	ticket := newTestTicket(owner, "Poste 42 ne démarre plus")

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.TicketStatusChanged(context.Background(), ticket, models.StatusOuvert, models.StatusResolu, updater)

	if res.Outcome != OutcomeSent {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSent)
	}
	n := res.Notification
	if n.Title != "Statut de votre ticket mis à jour" {
		t.Errorf("title = %q", n.Title)
	}
	if !strings.Contains(n.Message, "Ouvert") || !strings.Contains(n.Message, "Résolu") {
		t.Errorf("message %q must carry both status labels", n.Message)
	}
	if n.Data["old_status"] != models.StatusOuvert || n.Data["new_status"] != models.StatusResolu {
		t.Errorf("payload statuses = %v / %v", n.Data["old_status"], n.Data["new_status"])
	}
}

func TestTicketStatusChangedSelfUpdateSuppressed(t *testing.T) {
	store := newMemoryStore()
	owner := newTestUser(models.RoleUser, "Nadia", "Benali")
	ticket := newTestTicket(owner, "Souris cassée")

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.TicketStatusChanged(context.Background(), ticket, models.StatusOuvert, models.StatusAnnule, owner)

	if res.Outcome != OutcomeSuppressed {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSuppressed)
	}
	if len(store.rows) != 0 {
		t.Errorf("stored rows = %d, want 0", len(store.rows))
	}
}

func TestCommentAddedOwnCommentSuppressed(t *testing.T) {
	store := newMemoryStore()
	owner := newTestUser(models.RoleUser, "Nadia", "Benali")
	ticket := newTestTicket(owner, "VPN inaccessible")
	comment := &models.Comment{ID: primitive.NewObjectID(), TicketID: ticket.ID, UserID: owner.ID, Body: "toujours rien"}

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.CommentAdded(context.Background(), ticket, comment, owner)

	if res.Outcome != OutcomeSuppressed {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSuppressed)
	}
	if len(store.rows) != 0 {
		t.Errorf("stored rows = %d, want 0", len(store.rows))
	}
}

func TestCommentAddedPreviewTruncated(t *testing.T) {
	store := newMemoryStore()
	owner := newTestUser(models.RoleUser, "Nadia", "Benali")
	technician := newTestUser(models.RoleTechnician, "Karim", "Haddad")
	ticket := newTestTicket(owner, "VPN inaccessible")
	comment := &models.Comment{
		ID:       primitive.NewObjectID(),
		TicketID: ticket.ID,
		UserID:   technician.ID,
		Body:     strings.Repeat("é", 150),
	}

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.CommentAdded(context.Background(), ticket, comment, technician)

	if res.Outcome != OutcomeSent {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSent)
	}
	preview, _ := res.Notification.Data["comment_preview"].(string)
	if got := len([]rune(preview)); got != commentPreviewLimit {
		t.Errorf("preview length = %d runes, want %d", got, commentPreviewLimit)
	}
}

func TestTicketAssignedNotifiesEvenSelf(t *testing.T) {
	store := newMemoryStore()
	admin := newTestUser(models.RoleAdmin, "Sara", "Cherif")
	owner := newTestUser(models.RoleUser, "Nadia", "Benali")
	ticket := newTestTicket(owner, "Serveur de fichiers lent")
	ticket.TechnicianID = &admin.ID
	ticket.Priority = models.PriorityHaute

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.TicketAssigned(context.Background(), ticket, admin, owner)

	if res.Outcome != OutcomeSent {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSent)
	}
	if res.Notification.UserID != admin.ID {
		t.Errorf("recipient = %s, want assignee %s", res.Notification.UserID.Hex(), admin.ID.Hex())
	}
	if got := res.Notification.Data["requester_name"]; got != "Nadia Benali" {
		t.Errorf("requester_name = %v", got)
	}
}

func TestTicketCreatedBroadcast(t *testing.T) {
	store := newMemoryStore()
	admin := newTestUser(models.RoleAdmin, "Sara", "Cherif")
	supervisor := newTestUser(models.RoleSupervisor, "Omar", "Tazi")
	technician := newTestUser(models.RoleTechnician, "Karim", "Haddad")
	directory := &memoryDirectory{users: []models.User{*admin, *supervisor, *technician}}

	creator := newTestUser(models.RoleUser, "Nadia", "Benali")
	ticket := newTestTicket(creator, "Nouvelle imprimante à installer")
	ticket.Priority = models.PriorityNormale

	pusher := &recordingPusher{}
	d := newTestDispatcher(store, directory, pusher)
	res := d.TicketCreated(context.Background(), ticket, creator)

	if res.Outcome != OutcomeSent {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSent)
	}
	if res.Count != 2 {
		t.Fatalf("count = %d, want 2", res.Count)
	}
	for _, n := range res.Notifications {
		if n.Type != models.NotifTicketNew {
			t.Errorf("type = %q, want %q", n.Type, models.NotifTicketNew)
		}
	}
	if len(pusher.pushed) != 2 {
		t.Errorf("live pushes = %d, want 2", len(pusher.pushed))
	}
}

func TestTicketCreatedNoRecipients(t *testing.T) {
	store := newMemoryStore()
	creator := newTestUser(models.RoleUser, "Nadia", "Benali")
	ticket := newTestTicket(creator, "Câble réseau manquant")

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.TicketCreated(context.Background(), ticket, creator)

	if res.Outcome != OutcomeSuppressed {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSuppressed)
	}
	if res.Count != 0 {
		t.Errorf("count = %d, want 0", res.Count)
	}
	if res.Err != nil {
		t.Errorf("empty recipient set must not be an error, got %v", res.Err)
	}
}

func TestBroadcastPartialFailure(t *testing.T) {
	store := newMemoryStore()
	store.failAfter = 1
	admin := newTestUser(models.RoleAdmin, "Sara", "Cherif")
	supervisor := newTestUser(models.RoleSupervisor, "Omar", "Tazi")
	directory := &memoryDirectory{users: []models.User{*admin, *supervisor}}

	creator := newTestUser(models.RoleUser, "Nadia", "Benali")
	ticket := newTestTicket(creator, "Licence expirée")

	d := newTestDispatcher(store, directory, nil)
	res := d.TicketCreated(context.Background(), ticket, creator)

	if res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeFailed)
	}
	if res.Count != 1 {
		t.Errorf("count = %d, want 1 written row before the fault", res.Count)
	}
	if !errors.Is(res.Err, ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", res.Err)
	}
}

func TestBroadcastDirectoryFailure(t *testing.T) {
	store := newMemoryStore()
	directory := &memoryDirectory{err: errors.New("directory down")}
	admin := newTestUser(models.RoleAdmin, "Sara", "Cherif")

	d := newTestDispatcher(store, directory, nil)
	res := d.TestNotification(context.Background(), admin)

	if res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeFailed)
	}
	if res.Err == nil {
		t.Error("expected the directory error to be reported")
	}
}

func TestSingleDispatchStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.insertErr = ErrStoreUnavailable
	owner := newTestUser(models.RoleUser, "Nadia", "Benali")
	technician := newTestUser(models.RoleTechnician, "Karim", "Haddad")
	ticket := newTestTicket(owner, "Disque plein")

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.TicketTaken(context.Background(), ticket, technician)

	if res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeFailed)
	}
	if !errors.Is(res.Err, ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", res.Err)
	}
}

func TestNilInputsAreSuppressed(t *testing.T) {
	store := newMemoryStore()
	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	technician := newTestUser(models.RoleTechnician, "Karim", "Haddad")

	if res := d.TicketTaken(context.Background(), nil, technician); res.Outcome != OutcomeSuppressed {
		t.Errorf("nil ticket outcome = %v, want %v", res.Outcome, OutcomeSuppressed)
	}
	if res := d.TicketTaken(context.Background(), newTestTicket(nil, "x"), nil); res.Outcome != OutcomeSuppressed {
		t.Errorf("nil actor outcome = %v, want %v", res.Outcome, OutcomeSuppressed)
	}
	if len(store.rows) != 0 {
		t.Errorf("stored rows = %d, want 0", len(store.rows))
	}
}

func TestPasswordRequestedBroadcastToAdminsOnly(t *testing.T) {
	store := newMemoryStore()
	admin := newTestUser(models.RoleAdmin, "Sara", "Cherif")
	supervisor := newTestUser(models.RoleSupervisor, "Omar", "Tazi")
	directory := &memoryDirectory{users: []models.User{*admin, *supervisor}}

	requester := newTestUser(models.RoleUser, "Nadia", "Benali")
	request := &models.PasswordRequest{
		ID:     primitive.NewObjectID(),
		UserID: requester.ID,
		Reason: "mot de passe oublié",
		Status: models.PasswordRequestPending,
	}

	d := newTestDispatcher(store, directory, nil)
	res := d.PasswordRequested(context.Background(), request, requester)

	if res.Outcome != OutcomeSent {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSent)
	}
	if res.Count != 1 {
		t.Fatalf("count = %d, want only the admin", res.Count)
	}
	n := res.Notifications[0]
	if n.UserID != admin.ID {
		t.Errorf("recipient = %s, want admin %s", n.UserID.Hex(), admin.ID.Hex())
	}
	if n.Type != models.NotifPasswordRequest {
		t.Errorf("type = %q, want %q", n.Type, models.NotifPasswordRequest)
	}
	if got := n.Data["requester_id"]; got != requester.ID.Hex() {
		t.Errorf("data.requester_id = %v", got)
	}
}

func TestPasswordChangedCarriesOneTimeViewFlag(t *testing.T) {
	store := newMemoryStore()
	admin := newTestUser(models.RoleAdmin, "Sara", "Cherif")
	requester := newTestUser(models.RoleUser, "Nadia", "Benali")
	request := &models.PasswordRequest{
		ID:     primitive.NewObjectID(),
		UserID: requester.ID,
		Status: models.PasswordRequestApproved,
	}

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.PasswordChanged(context.Background(), request, admin)

	if res.Outcome != OutcomeSent {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSent)
	}
	if res.Notification.UserID != requester.ID {
		t.Errorf("recipient = %s, want requester", res.Notification.UserID.Hex())
	}
	if got, _ := res.Notification.Data["one_time_view"].(bool); !got {
		t.Error("data.one_time_view must be true")
	}
}

func TestPasswordRejectedNamesReason(t *testing.T) {
	store := newMemoryStore()
	admin := newTestUser(models.RoleAdmin, "Sara", "Cherif")
	requester := newTestUser(models.RoleUser, "Nadia", "Benali")
	request := &models.PasswordRequest{
		ID:              primitive.NewObjectID(),
		UserID:          requester.ID,
		Status:          models.PasswordRequestRejected,
		RejectionReason: "identité non vérifiée",
	}

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	res := d.PasswordRejected(context.Background(), request, admin)

	if res.Outcome != OutcomeSent {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSent)
	}
	if !strings.Contains(res.Notification.Message, "identité non vérifiée") {
		t.Errorf("message %q must carry the rejection reason", res.Notification.Message)
	}
}
