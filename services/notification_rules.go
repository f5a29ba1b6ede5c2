// services/notification_rules.go
package services

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

// EventKind identifies a domain event handled by the dispatcher.
type EventKind string

const (
	EventTicketTaken         EventKind = "ticket_taken"
	EventTicketStatusChanged EventKind = "ticket_status_changed"
	EventCommentAdded        EventKind = "comment_added"
	EventTicketAssigned      EventKind = "ticket_assigned"
	EventTicketCreated       EventKind = "ticket_created"
	EventTestNotification    EventKind = "test_notification"
	EventPasswordRequested   EventKind = "password_requested"
	EventPasswordChanged     EventKind = "password_changed"
	EventPasswordRejected    EventKind = "password_rejected"
)

// statusLabels maps internal ticket status codes to the display labels used in
// notification messages. Unknown codes pass through verbatim.
var statusLabels = map[string]string{
	models.StatusOuvert:  "Ouvert",
	models.StatusAttente: "En attente",
	models.StatusEnCours: "En cours",
	models.StatusResolu:  "Résolu",
	models.StatusFerme:   "Fermé",
	models.StatusAnnule:  "Annulé",
}

// StatusLabel returns the display label for a ticket status code.
func StatusLabel(code string) string {
	if label, ok := statusLabels[code]; ok {
		return label
	}
	return code
}

// commentPreviewLimit caps the comment body carried in the payload.
const commentPreviewLimit = 100

// dispatchEvent is the internal snapshot bundle a rule operates on. The
// dispatcher only reads it; entity snapshots are never mutated.
type dispatchEvent struct {
	kind      EventKind
	ticket    *models.Ticket
	actor     *models.User // the user who triggered the event
	requester *models.User // ticket owner or password requester, when the message names them
	comment   *models.Comment
	request   *models.PasswordRequest
	oldStatus string
	newStatus string
}

// dispatchRule declares, for one event kind, how recipients are resolved,
// when the event is suppressed, and how the notification is rendered.
type dispatchRule struct {
	// broadcastRoles is non-nil for broadcast events; the resolved set is
	// every active user holding one of these roles.
	broadcastRoles []int
	// recipient resolves the single recipient; nil result means there is no
	// one to notify (InputIncomplete no-op).
	recipient func(ev *dispatchEvent) *primitive.ObjectID
	// suppressOwnActor applies the actor==recipient suppression rule.
	suppressOwnActor bool
	// classify returns the notification type tag.
	classify func(ev *dispatchEvent) string
	// render produces title, message and structured payload.
	render func(ev *dispatchEvent) (string, string, map[string]interface{})
}

// dispatchRules is the declarative rule set, one entry per event kind.
var dispatchRules = map[EventKind]dispatchRule{
	EventTicketTaken: {
		recipient:        ticketOwner,
		suppressOwnActor: true,
		classify:         fixedType(models.NotifTicketAssigned),
		render: func(ev *dispatchEvent) (string, string, map[string]interface{}) {
			title := "Votre ticket a été pris en charge"
			message := fmt.Sprintf("%s a pris en charge votre ticket « %s ».",
				ev.actor.DisplayName(), ev.ticket.Title)
			return title, message, ticketPayload(ev)
		},
	},
	EventTicketStatusChanged: {
		recipient:        ticketOwner,
		suppressOwnActor: true,
		classify: func(ev *dispatchEvent) string {
			if models.IsTerminalStatus(ev.newStatus) {
				return models.NotifTicketClosed
			}
			return models.NotifTicketUpdated
		},
		render: func(ev *dispatchEvent) (string, string, map[string]interface{}) {
			title := "Statut de votre ticket mis à jour"
			message := fmt.Sprintf("Le statut du ticket « %s » est passé de %s à %s.",
				ev.ticket.Title, StatusLabel(ev.oldStatus), StatusLabel(ev.newStatus))
			data := ticketPayload(ev)
			data["old_status"] = ev.oldStatus
			data["new_status"] = ev.newStatus
			return title, message, data
		},
	},
	EventCommentAdded: {
		recipient:        ticketOwner,
		suppressOwnActor: true,
		classify:         fixedType(models.NotifCommentAdded),
		render: func(ev *dispatchEvent) (string, string, map[string]interface{}) {
			title := "Nouveau commentaire sur votre ticket"
			message := fmt.Sprintf("%s a commenté votre ticket « %s ».",
				ev.actor.DisplayName(), ev.ticket.Title)
			data := ticketPayload(ev)
			data["comment_preview"] = truncateRunes(ev.comment.Body, commentPreviewLimit)
			return title, message, data
		},
	},
	EventTicketAssigned: {
		// Always admin-initiated; the assignee is notified even if an admin
		// assigns a ticket to themselves.
		recipient: func(ev *dispatchEvent) *primitive.ObjectID {
			return ev.ticket.TechnicianID
		},
		classify: fixedType(models.NotifTicketAssigned),
		render: func(ev *dispatchEvent) (string, string, map[string]interface{}) {
			title := "Un ticket vous a été assigné"
			message := fmt.Sprintf("%s vous a assigné le ticket « %s » (priorité %s), demandé par %s.",
				ev.actor.DisplayName(), ev.ticket.Title, ev.ticket.Priority, ev.requester.DisplayName())
			data := ticketPayload(ev)
			data["priority"] = ev.ticket.Priority
			data["requester_name"] = ev.requester.DisplayName()
			return title, message, data
		},
	},
	EventTicketCreated: {
		broadcastRoles: []int{models.RoleAdmin, models.RoleSupervisor},
		classify:       fixedType(models.NotifTicketNew),
		render: func(ev *dispatchEvent) (string, string, map[string]interface{}) {
			title := "Nouveau ticket créé"
			message := fmt.Sprintf("%s a créé le ticket « %s » (priorité %s).",
				ev.actor.DisplayName(), ev.ticket.Title, ev.ticket.Priority)
			data := ticketPayload(ev)
			data["priority"] = ev.ticket.Priority
			return title, message, data
		},
	},
	EventTestNotification: {
		broadcastRoles: []int{models.RoleAdmin},
		classify:       fixedType(models.NotifSystem),
		render: func(ev *dispatchEvent) (string, string, map[string]interface{}) {
			title := "Notification de test"
			message := fmt.Sprintf("Ceci est une notification de test envoyée par %s.",
				ev.actor.DisplayName())
			return title, message, actorPayload(ev)
		},
	},
	EventPasswordRequested: {
		broadcastRoles: []int{models.RoleAdmin},
		classify:       fixedType(models.NotifPasswordRequest),
		render: func(ev *dispatchEvent) (string, string, map[string]interface{}) {
			title := "Nouvelle demande de mot de passe"
			message := fmt.Sprintf("%s a demandé un changement de mot de passe. Motif : %s.",
				ev.requester.DisplayName(), ev.request.Reason)
			data := actorPayload(ev)
			data["request_id"] = ev.request.ID.Hex()
			data["requester_id"] = ev.request.UserID.Hex()
			data["reason"] = ev.request.Reason
			return title, message, data
		},
	},
	EventPasswordChanged: {
		recipient: passwordRequester,
		classify:  fixedType(models.NotifPasswordChanged),
		render: func(ev *dispatchEvent) (string, string, map[string]interface{}) {
			title := "Votre mot de passe a été modifié"
			message := fmt.Sprintf("%s a approuvé votre demande. Votre nouveau mot de passe est consultable une seule fois.",
				ev.actor.DisplayName())
			data := actorPayload(ev)
			data["request_id"] = ev.request.ID.Hex()
			// The UI must not re-display the plaintext password after first view.
			data["one_time_view"] = true
			return title, message, data
		},
	},
	EventPasswordRejected: {
		recipient: passwordRequester,
		classify:  fixedType(models.NotifPasswordRejected),
		render: func(ev *dispatchEvent) (string, string, map[string]interface{}) {
			title := "Demande de mot de passe rejetée"
			message := fmt.Sprintf("Votre demande de changement de mot de passe a été rejetée par %s. Motif : %s.",
				ev.actor.DisplayName(), ev.request.RejectionReason)
			data := actorPayload(ev)
			data["request_id"] = ev.request.ID.Hex()
			data["reason"] = ev.request.RejectionReason
			return title, message, data
		},
	},
}

func ticketOwner(ev *dispatchEvent) *primitive.ObjectID {
	return ev.ticket.UserID
}

func passwordRequester(ev *dispatchEvent) *primitive.ObjectID {
	id := ev.request.UserID
	return &id
}

func fixedType(tag string) func(*dispatchEvent) string {
	return func(*dispatchEvent) string { return tag }
}

// ticketPayload builds the payload fields shared by all ticket events.
func ticketPayload(ev *dispatchEvent) map[string]interface{} {
	data := actorPayload(ev)
	data["ticket_id"] = ev.ticket.ID.Hex()
	data["ticket_number"] = ev.ticket.Number
	data["ticket_title"] = ev.ticket.Title
	return data
}

// actorPayload builds the payload fields shared by every event.
func actorPayload(ev *dispatchEvent) map[string]interface{} {
	data := map[string]interface{}{
		"action": string(ev.kind),
	}
	if ev.actor != nil {
		data["actor_id"] = ev.actor.ID.Hex()
		data["actor_name"] = ev.actor.DisplayName()
	}
	return data
}

// truncateRunes shortens s to at most limit runes.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
