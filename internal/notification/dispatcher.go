// Package notification turns domain events into in-app notifications and
// outbox email deliveries. Delivery is best effort: failures are logged and
// never propagated back to the operation that raised the event.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/events"
	"github.com/mafiaidola/leads-manager-sub000/internal/notification/inapp"
	"github.com/mafiaidola/leads-manager-sub000/internal/notification/outbox"
	"github.com/mafiaidola/leads-manager-sub000/internal/users"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
)

const resourceTypeLead = "lead"

// InAppStore persists notifications shown inside the product.
type InAppStore interface {
	Insert(ctx context.Context, p inapp.CreateParams) error
}

// OutboxStore persists email deliveries for the worker to send later.
type OutboxStore interface {
	Insert(ctx context.Context, p outbox.InsertParams) error
}

// UserReader resolves recipients.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	ListAdmins(ctx context.Context) ([]*users.User, error)
}

// EmailPayload is the outbox payload shared by all lead email kinds.
type EmailPayload struct {
	LeadID        uuid.UUID `json:"leadId"`
	LeadName      string    `json:"leadName"`
	RecipientName string    `json:"recipientName"`
	ActorName     string    `json:"actorName"`
	FromStatus    string    `json:"fromStatus,omitempty"`
	ToStatus      string    `json:"toStatus,omitempty"`
}

type Dispatcher struct {
	inApp  InAppStore
	emails OutboxStore
	dir    UserReader
	log    *logger.Logger
}

func NewDispatcher(inApp InAppStore, emails OutboxStore, dir UserReader, log *logger.Logger) *Dispatcher {
	return &Dispatcher{inApp: inApp, emails: emails, dir: dir, log: log}
}

// RegisterHandlers subscribes the dispatcher to every lead event it reacts to.
func (d *Dispatcher) RegisterHandlers(bus events.Bus) {
	handler := events.HandlerFunc(d.Handle)
	bus.Subscribe(events.LeadCreatedName, handler)
	bus.Subscribe(events.LeadAssignedName, handler)
	bus.Subscribe(events.LeadStatusChangedName, handler)
	bus.Subscribe(events.LeadTransferredName, handler)
	bus.Subscribe(events.LeadsBulkUpdatedName, handler)
}

func (d *Dispatcher) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return d.onLeadCreated(ctx, e)
	case events.LeadAssigned:
		return d.onLeadAssigned(ctx, e)
	case events.LeadStatusChanged:
		return d.onLeadStatusChanged(ctx, e)
	case events.LeadTransferred:
		return d.onLeadTransferred(ctx, e)
	case events.LeadsBulkUpdated:
		return d.onLeadsBulkUpdated(ctx, e)
	default:
		d.log.Warn("notification dispatcher received unknown event", "event", event.EventName())
		return nil
	}
}

func (d *Dispatcher) onLeadCreated(ctx context.Context, e events.LeadCreated) error {
	d.notifyAdmins(ctx, e.ActorID, inapp.CreateParams{
		Title:        "New lead created",
		Content:      fmt.Sprintf("%s created lead %q", e.ActorName, e.LeadName),
		ResourceID:   &e.LeadID,
		ResourceType: resourceTypeLead,
		Category:     inapp.CategoryLead,
	})
	if e.AssignedTo != nil && *e.AssignedTo != e.ActorID {
		d.notifyAssignee(ctx, *e.AssignedTo, e.LeadID, e.LeadName, e.ActorName, outbox.KindLeadAssigned, "", "")
	}
	return nil
}

func (d *Dispatcher) onLeadAssigned(ctx context.Context, e events.LeadAssigned) error {
	if e.AssignedTo == e.ActorID {
		return nil
	}
	d.notifyAssignee(ctx, e.AssignedTo, e.LeadID, e.LeadName, e.ActorName, outbox.KindLeadAssigned, "", "")
	return nil
}

func (d *Dispatcher) onLeadStatusChanged(ctx context.Context, e events.LeadStatusChanged) error {
	if e.AssignedTo == nil || *e.AssignedTo == e.ActorID {
		return nil
	}
	recipient, err := d.dir.GetByID(ctx, *e.AssignedTo)
	if err != nil || !recipient.Active {
		d.logSkip(err, *e.AssignedTo)
		return nil
	}
	d.insertInApp(ctx, inapp.CreateParams{
		UserID:       recipient.ID,
		Title:        "Lead status changed",
		Content:      fmt.Sprintf("%s moved lead %q from %s to %s", e.ActorName, e.LeadName, e.FromStatus, e.ToStatus),
		ResourceID:   &e.LeadID,
		ResourceType: resourceTypeLead,
		Category:     inapp.CategoryLead,
	})
	d.insertOutbox(ctx, recipient.Email, outbox.KindLeadStatusChanged, EmailPayload{
		LeadID:        e.LeadID,
		LeadName:      e.LeadName,
		RecipientName: recipient.Name,
		ActorName:     e.ActorName,
		FromStatus:    e.FromStatus,
		ToStatus:      e.ToStatus,
	})
	return nil
}

func (d *Dispatcher) onLeadTransferred(ctx context.Context, e events.LeadTransferred) error {
	if e.ToAssignee != e.ActorID {
		d.notifyAssignee(ctx, e.ToAssignee, e.LeadID, e.LeadName, e.ActorName, outbox.KindLeadAssigned, "", "")
	}
	// The previous owner learns the lead left their book.
	if e.FromAssignee != nil && *e.FromAssignee != e.ActorID && *e.FromAssignee != e.ToAssignee {
		d.insertInApp(ctx, inapp.CreateParams{
			UserID:       *e.FromAssignee,
			Title:        "Lead transferred away",
			Content:      fmt.Sprintf("%s transferred lead %q to another agent", e.ActorName, e.LeadName),
			ResourceID:   &e.LeadID,
			ResourceType: resourceTypeLead,
			Category:     inapp.CategoryLead,
		})
	}
	return nil
}

func (d *Dispatcher) onLeadsBulkUpdated(ctx context.Context, e events.LeadsBulkUpdated) error {
	d.notifyAdmins(ctx, e.ActorID, inapp.CreateParams{
		Title:        "Bulk operation completed",
		Content:      fmt.Sprintf("%s ran %s on %d leads", e.ActorName, e.Operation, len(e.LeadIDs)),
		ResourceType: resourceTypeLead,
		Category:     inapp.CategoryBulk,
	})
	return nil
}

// notifyAssignee writes both the in-app row and the outbox email for the
// user a lead was handed to.
func (d *Dispatcher) notifyAssignee(ctx context.Context, userID, leadID uuid.UUID, leadName, actorName, kind, fromStatus, toStatus string) {
	recipient, err := d.dir.GetByID(ctx, userID)
	if err != nil || !recipient.Active {
		d.logSkip(err, userID)
		return
	}
	d.insertInApp(ctx, inapp.CreateParams{
		UserID:       recipient.ID,
		Title:        "Lead assigned to you",
		Content:      fmt.Sprintf("%s assigned lead %q to you", actorName, leadName),
		ResourceID:   &leadID,
		ResourceType: resourceTypeLead,
		Category:     inapp.CategoryLead,
	})
	d.insertOutbox(ctx, recipient.Email, kind, EmailPayload{
		LeadID:        leadID,
		LeadName:      leadName,
		RecipientName: recipient.Name,
		ActorName:     actorName,
		FromStatus:    fromStatus,
		ToStatus:      toStatus,
	})
}

func (d *Dispatcher) notifyAdmins(ctx context.Context, actorID uuid.UUID, template inapp.CreateParams) {
	admins, err := d.dir.ListAdmins(ctx)
	if err != nil {
		d.log.Error("list admins for notification", "error", err)
		return
	}
	for _, admin := range admins {
		if admin.ID == actorID {
			continue
		}
		p := template
		p.UserID = admin.ID
		d.insertInApp(ctx, p)
	}
}

func (d *Dispatcher) insertInApp(ctx context.Context, p inapp.CreateParams) {
	if err := d.inApp.Insert(ctx, p); err != nil {
		d.log.Error("insert in-app notification", "error", err, "user_id", p.UserID)
	}
}

func (d *Dispatcher) insertOutbox(ctx context.Context, recipient, kind string, payload EmailPayload) {
	err := d.emails.Insert(ctx, outbox.InsertParams{
		Kind:      kind,
		Recipient: recipient,
		Payload:   payload,
		RunAt:     time.Now(),
	})
	if err != nil {
		d.log.Error("insert outbox record", "error", err, "kind", kind)
	}
}

func (d *Dispatcher) logSkip(err error, userID uuid.UUID) {
	if err != nil {
		d.log.Error("resolve notification recipient", "error", err, "user_id", userID)
		return
	}
	d.log.Info("skipping notification for inactive user", "user_id", userID)
}
