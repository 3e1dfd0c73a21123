// Package events defines the in-process event bus used to decouple lead
// mutations from their side effects (notifications, email fan-out).
package events

import (
	"context"
	"time"
)

// Event is anything that can be published on the bus.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp half of the Event contract.
type BaseEvent struct {
	At time.Time
}

func NewBaseEvent() BaseEvent {
	return BaseEvent{At: time.Now().UTC()}
}

func (b BaseEvent) OccurredAt() time.Time {
	return b.At
}

// Handler consumes published events.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes events to subscribed handlers.
//
// Publish is asynchronous: it returns before handlers run, so a failing or
// slow handler never delays the publishing request. PublishSync delivers
// inline and is intended for tests and worker-side processing.
type Bus interface {
	Publish(ctx context.Context, event Event)
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
