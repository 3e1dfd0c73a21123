// Package events defines the domain events published by the leads module
// and re-exports the platform bus types so modules only import one package.
package events

import (
	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/platform/events"
)

type (
	Event       = events.Event
	BaseEvent   = events.BaseEvent
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	Bus         = events.Bus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

const (
	LeadCreatedName       = "leads.created"
	LeadAssignedName      = "leads.assigned"
	LeadStatusChangedName = "leads.status_changed"
	LeadTransferredName   = "leads.transferred"
	LeadsBulkUpdatedName  = "leads.bulk_updated"
	LeadActionLoggedName  = "leads.action_logged"
)

// LeadCreated fires after a lead is persisted.
type LeadCreated struct {
	BaseEvent
	LeadID     uuid.UUID
	LeadName   string
	AssignedTo *uuid.UUID
	ActorID    uuid.UUID
	ActorName  string
}

func (LeadCreated) EventName() string { return LeadCreatedName }

// LeadAssigned fires when a lead's assignee changes, including via update.
type LeadAssigned struct {
	BaseEvent
	LeadID     uuid.UUID
	LeadName   string
	AssignedTo uuid.UUID
	ActorID    uuid.UUID
	ActorName  string
}

func (LeadAssigned) EventName() string { return LeadAssignedName }

// LeadStatusChanged fires on every status transition.
type LeadStatusChanged struct {
	BaseEvent
	LeadID     uuid.UUID
	LeadName   string
	FromStatus string
	ToStatus   string
	AssignedTo *uuid.UUID
	ActorID    uuid.UUID
	ActorName  string
}

func (LeadStatusChanged) EventName() string { return LeadStatusChangedName }

// LeadTransferred fires when a lead is explicitly handed to another agent.
type LeadTransferred struct {
	BaseEvent
	LeadID       uuid.UUID
	LeadName     string
	FromAssignee *uuid.UUID
	ToAssignee   uuid.UUID
	ActorID      uuid.UUID
	ActorName    string
}

func (LeadTransferred) EventName() string { return LeadTransferredName }

// LeadsBulkUpdated fires once per bulk operation with the affected ids.
type LeadsBulkUpdated struct {
	BaseEvent
	LeadIDs   []uuid.UUID
	Operation string
	ActorID   uuid.UUID
	ActorName string
}

func (LeadsBulkUpdated) EventName() string { return LeadsBulkUpdatedName }

// LeadActionLogged fires when an interaction is recorded against a lead.
type LeadActionLogged struct {
	BaseEvent
	LeadID     uuid.UUID
	LeadName   string
	ActionType string
	AssignedTo *uuid.UUID
	ActorID    uuid.UUID
	ActorName  string
}

func (LeadActionLogged) EventName() string { return LeadActionLoggedName }
