// services/notification_dispatcher.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

// Outcome is the tri-state result of a dispatch operation. A storage fault
// never escapes the dispatcher; it degrades to OutcomeFailed.
type Outcome int

const (
	// OutcomeSent means the notification row(s) were written.
	OutcomeSent Outcome = iota
	// OutcomeSuppressed means the event qualified for no notification
	// (self-notification, missing recipient, or an empty broadcast set).
	OutcomeSuppressed
	// OutcomeFailed means the store rejected at least one intended write.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DispatchResult is returned by single-recipient operations.
type DispatchResult struct {
	Outcome      Outcome
	Notification *models.Notification // set when Outcome is OutcomeSent
	Err          error                // set when Outcome is OutcomeFailed
}

// BroadcastResult is returned by broadcast operations. Count reports the rows
// actually written; on partial failure the outcome is OutcomeFailed even
// though Count may be non-zero.
type BroadcastResult struct {
	Outcome       Outcome
	Count         int
	Notifications []models.Notification
	Err           error
}

// NotificationDispatcher maps domain events to persisted notification rows
// through the declarative rule set in notification_rules.go.
type NotificationDispatcher struct {
	store     NotificationStore
	directory UserDirectory
	diag      Diagnostics
	pusher    LivePusher // optional
	now       func() time.Time
}

// NewNotificationDispatcher creates a dispatcher. diag may be nil, in which
// case events go to the standard logger. pusher may be nil.
func NewNotificationDispatcher(store NotificationStore, directory UserDirectory, diag Diagnostics, pusher LivePusher) *NotificationDispatcher {
	if diag == nil {
		diag = NewLogDiagnostics()
	}
	return &NotificationDispatcher{
		store:     store,
		directory: directory,
		diag:      diag,
		pusher:    pusher,
		now:       time.Now,
	}
}

// TicketTaken notifies the ticket owner that a technician self-assigned the
// ticket.
func (d *NotificationDispatcher) TicketTaken(ctx context.Context, ticket *models.Ticket, technician *models.User) DispatchResult {
	if ticket == nil || technician == nil {
		return d.incomplete(EventTicketTaken, nil)
	}
	return d.dispatchSingle(ctx, &dispatchEvent{
		kind:   EventTicketTaken,
		ticket: ticket,
		actor:  technician,
	})
}

// TicketStatusChanged notifies the ticket owner of a status transition.
func (d *NotificationDispatcher) TicketStatusChanged(ctx context.Context, ticket *models.Ticket, oldStatus, newStatus string, updater *models.User) DispatchResult {
	if ticket == nil || updater == nil {
		return d.incomplete(EventTicketStatusChanged, nil)
	}
	return d.dispatchSingle(ctx, &dispatchEvent{
		kind:      EventTicketStatusChanged,
		ticket:    ticket,
		actor:     updater,
		oldStatus: oldStatus,
		newStatus: newStatus,
	})
}

// CommentAdded notifies the ticket owner of a new comment.
func (d *NotificationDispatcher) CommentAdded(ctx context.Context, ticket *models.Ticket, comment *models.Comment, author *models.User) DispatchResult {
	if ticket == nil || comment == nil || author == nil {
		return d.incomplete(EventCommentAdded, nil)
	}
	return d.dispatchSingle(ctx, &dispatchEvent{
		kind:    EventCommentAdded,
		ticket:  ticket,
		actor:   author,
		comment: comment,
	})
}

// TicketAssigned notifies the assignee that an admin assigned them a ticket.
// requester is the ticket owner, named in the message; it may be nil.
func (d *NotificationDispatcher) TicketAssigned(ctx context.Context, ticket *models.Ticket, admin, requester *models.User) DispatchResult {
	if ticket == nil || admin == nil {
		return d.incomplete(EventTicketAssigned, nil)
	}
	return d.dispatchSingle(ctx, &dispatchEvent{
		kind:      EventTicketAssigned,
		ticket:    ticket,
		actor:     admin,
		requester: requester,
	})
}

// TicketCreated broadcasts a new ticket to every active admin and supervisor.
func (d *NotificationDispatcher) TicketCreated(ctx context.Context, ticket *models.Ticket, creator *models.User) BroadcastResult {
	if ticket == nil || creator == nil {
		res := d.incomplete(EventTicketCreated, nil)
		return BroadcastResult{Outcome: res.Outcome}
	}
	return d.dispatchBroadcast(ctx, &dispatchEvent{
		kind:   EventTicketCreated,
		ticket: ticket,
		actor:  creator,
	})
}

// TestNotification broadcasts a test notification to every active admin.
func (d *NotificationDispatcher) TestNotification(ctx context.Context, admin *models.User) BroadcastResult {
	if admin == nil {
		res := d.incomplete(EventTestNotification, nil)
		return BroadcastResult{Outcome: res.Outcome}
	}
	return d.dispatchBroadcast(ctx, &dispatchEvent{
		kind:  EventTestNotification,
		actor: admin,
	})
}

// PasswordRequested broadcasts a password-change request to every active admin.
func (d *NotificationDispatcher) PasswordRequested(ctx context.Context, request *models.PasswordRequest, requester *models.User) BroadcastResult {
	if request == nil || requester == nil {
		res := d.incomplete(EventPasswordRequested, nil)
		return BroadcastResult{Outcome: res.Outcome}
	}
	return d.dispatchBroadcast(ctx, &dispatchEvent{
		kind:      EventPasswordRequested,
		request:   request,
		actor:     requester,
		requester: requester,
	})
}

// PasswordChanged notifies the requester that an admin approved their request.
func (d *NotificationDispatcher) PasswordChanged(ctx context.Context, request *models.PasswordRequest, admin *models.User) DispatchResult {
	if request == nil || admin == nil {
		return d.incomplete(EventPasswordChanged, nil)
	}
	return d.dispatchSingle(ctx, &dispatchEvent{
		kind:    EventPasswordChanged,
		request: request,
		actor:   admin,
	})
}

// PasswordRejected notifies the requester that an admin rejected their request.
func (d *NotificationDispatcher) PasswordRejected(ctx context.Context, request *models.PasswordRequest, admin *models.User) DispatchResult {
	if request == nil || admin == nil {
		return d.incomplete(EventPasswordRejected, nil)
	}
	return d.dispatchSingle(ctx, &dispatchEvent{
		kind:    EventPasswordRejected,
		request: request,
		actor:   admin,
	})
}

// dispatchSingle runs the rule for a single-recipient event: resolve the
// recipient, apply suppression, render, and write through the store.
func (d *NotificationDispatcher) dispatchSingle(ctx context.Context, ev *dispatchEvent) DispatchResult {
	rule, ok := dispatchRules[ev.kind]
	if !ok || rule.recipient == nil {
		return d.failure(ev, fmt.Errorf("no single-recipient rule for event %q", ev.kind))
	}

	recipient := rule.recipient(ev)
	if recipient == nil {
		d.diag.Suppressed(ev.kind, "no recipient", d.fields(ev))
		return DispatchResult{Outcome: OutcomeSuppressed}
	}
	if rule.suppressOwnActor && ev.actor != nil && *recipient == ev.actor.ID {
		d.diag.Suppressed(ev.kind, "actor is recipient", d.fields(ev))
		return DispatchResult{Outcome: OutcomeSuppressed}
	}

	n, err := d.write(ctx, rule, ev, *recipient)
	if err != nil {
		return d.failure(ev, err)
	}
	d.diag.Sent(ev.kind, d.fields(ev, "recipient", recipient.Hex()))
	return DispatchResult{Outcome: OutcomeSent, Notification: n}
}

// dispatchBroadcast fans an event out to every user in the resolved role set,
// one independent row per recipient. An empty set is a successful no-op. If
// any row write fails the whole operation reports failure, along with the
// rows that were written before the fault.
func (d *NotificationDispatcher) dispatchBroadcast(ctx context.Context, ev *dispatchEvent) BroadcastResult {
	rule, ok := dispatchRules[ev.kind]
	if !ok || rule.broadcastRoles == nil {
		res := d.failure(ev, fmt.Errorf("no broadcast rule for event %q", ev.kind))
		return BroadcastResult{Outcome: res.Outcome, Err: res.Err}
	}

	recipients, err := d.directory.ListByRoles(ctx, rule.broadcastRoles)
	if err != nil {
		res := d.failure(ev, fmt.Errorf("resolving recipients: %w", err))
		return BroadcastResult{Outcome: res.Outcome, Err: res.Err}
	}
	if len(recipients) == 0 {
		d.diag.Suppressed(ev.kind, "empty recipient set", d.fields(ev))
		return BroadcastResult{Outcome: OutcomeSuppressed}
	}

	created := make([]models.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		n, err := d.write(ctx, rule, ev, recipient.ID)
		if err != nil {
			res := d.failure(ev, fmt.Errorf("broadcast write for user %s: %w", recipient.ID.Hex(), err))
			return BroadcastResult{Outcome: res.Outcome, Count: len(created), Notifications: created, Err: res.Err}
		}
		created = append(created, *n)
	}

	d.diag.Sent(ev.kind, d.fields(ev, "recipients", len(created)))
	return BroadcastResult{Outcome: OutcomeSent, Count: len(created), Notifications: created}
}

// write renders the notification for one recipient and persists it.
func (d *NotificationDispatcher) write(ctx context.Context, rule dispatchRule, ev *dispatchEvent, userID primitive.ObjectID) (*models.Notification, error) {
	title, message, data := rule.render(ev)
	n := &models.Notification{
		UserID:    userID,
		Type:      rule.classify(ev),
		Title:     title,
		Message:   message,
		Data:      data,
		IsRead:    false,
		CreatedAt: d.now(),
	}

	saved, err := d.store.Insert(ctx, n)
	if err != nil {
		return nil, err
	}
	if d.pusher != nil {
		d.pusher.Push(userID, *saved)
	}
	return saved, nil
}

func (d *NotificationDispatcher) incomplete(kind EventKind, ev *dispatchEvent) DispatchResult {
	d.diag.Suppressed(kind, "incomplete input", d.fields(ev))
	return DispatchResult{Outcome: OutcomeSuppressed}
}

func (d *NotificationDispatcher) failure(ev *dispatchEvent, err error) DispatchResult {
	d.diag.Failed(ev.kind, err, d.fields(ev))
	return DispatchResult{Outcome: OutcomeFailed, Err: err}
}

// fields collects the diagnostic context for an event, plus extra pairs.
func (d *NotificationDispatcher) fields(ev *dispatchEvent, extra ...interface{}) Fields {
	fields := Fields{}
	if ev != nil {
		if ev.ticket != nil {
			fields["ticket_id"] = ev.ticket.ID.Hex()
		}
		if ev.actor != nil {
			fields["actor_id"] = ev.actor.ID.Hex()
		}
		if ev.request != nil {
			fields["request_id"] = ev.request.ID.Hex()
		}
	}
	for i := 0; i+1 < len(extra); i += 2 {
		if key, ok := extra[i].(string); ok {
			fields[key] = extra[i+1]
		}
	}
	return fields
}

// ErrStoreUnavailable marks store faults in tests and diagnostics; the
// dispatcher itself only ever reports it through DispatchResult.Err.
var ErrStoreUnavailable = errors.New("notification store unavailable")
