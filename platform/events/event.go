// Package events provides the in-process event bus used to decouple
// modules from their side effects.
// This is part of the platform layer and contains no business logic.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName identifies the event type; handlers subscribe by it.
	EventName() string
	// EventID is unique per published event and doubles as the
	// deduplication key for jobs derived from it.
	EventID() uuid.UUID
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all events.
type BaseEvent struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// EventID returns the event's unique id.
func (e BaseEvent) EventID() uuid.UUID { return e.ID }

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps a fresh id and the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.New(), Timestamp: time.Now().UTC()}
}

// Handler processes events of a specific type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is an adapter to allow ordinary functions to be used as handlers.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f(ctx, event).
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to subscribed handlers.
type Bus interface {
	// Publish dispatches event without waiting for handlers.
	Publish(ctx context.Context, event Event)
	// PublishSync dispatches event and returns the joined handler errors.
	PublishSync(ctx context.Context, event Event) error
	// Subscribe registers handler for events named eventName.
	Subscribe(eventName string, handler Handler)
}
