// services/notification_rules_test.go
package services

import (
	"context"
	"testing"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{models.StatusOuvert, "Ouvert"},
		{models.StatusAttente, "En attente"},
		{models.StatusEnCours, "En cours"},
		{models.StatusResolu, "Résolu"},
		{models.StatusFerme, "Fermé"},
		{models.StatusAnnule, "Annulé"},
		{"archived", "archived"}, // unknown codes pass through
		{"", ""},
	}
	for _, tt := range tests {
		if got := StatusLabel(tt.code); got != tt.want {
			t.Errorf("StatusLabel(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"shorter than limit", "bonjour", 10, "bonjour"},
		{"exactly at limit", "bonjour", 7, "bonjour"},
		{"over limit", "bonjour", 3, "bon"},
		{"multibyte runes", "éléphant", 3, "élé"},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateRunes(tt.in, tt.limit); got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestEveryEventKindHasARule(t *testing.T) {
	kinds := []EventKind{
		EventTicketTaken,
		EventTicketStatusChanged,
		EventCommentAdded,
		EventTicketAssigned,
		EventTicketCreated,
		EventTestNotification,
		EventPasswordRequested,
		EventPasswordChanged,
		EventPasswordRejected,
	}
	for _, kind := range kinds {
		rule, ok := dispatchRules[kind]
		if !ok {
			t.Errorf("no rule for %q", kind)
			continue
		}
		if rule.recipient == nil && rule.broadcastRoles == nil {
			t.Errorf("rule %q resolves no recipients", kind)
		}
		if rule.recipient != nil && rule.broadcastRoles != nil {
			t.Errorf("rule %q is both single-recipient and broadcast", kind)
		}
		if rule.classify == nil || rule.render == nil {
			t.Errorf("rule %q is missing classify or render", kind)
		}
	}
}

// A dispatched ticket notification must round-trip into MarkRelatedAsRead
// through its payload, since the read-side matches on data.ticket_id.
func TestDispatchedPayloadRoundTripsToMarkRelated(t *testing.T) {
	store := newMemoryStore()
	owner := newTestUser(models.RoleUser, "Nadia", "Benali")
	technician := newTestUser(models.RoleTechnician, "Karim", "Haddad")
	ticket := newTestTicket(owner, "Batterie gonflée")

	d := newTestDispatcher(store, &memoryDirectory{}, nil)
	if res := d.TicketTaken(context.Background(), ticket, technician); res.Outcome != OutcomeSent {
		t.Fatalf("outcome = %v, want %v", res.Outcome, OutcomeSent)
	}

	s := newTestService(store)
	modified, err := s.MarkRelatedAsRead(context.Background(), owner.ID, ticket.ID)
	if err != nil {
		t.Fatalf("MarkRelatedAsRead: %v", err)
	}
	if modified != 1 {
		t.Fatalf("modified = %d, want the dispatched row", modified)
	}
}
