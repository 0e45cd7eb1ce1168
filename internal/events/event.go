// Package events holds the domain event definitions shared between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"restockd_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Registration Domain Events
// =============================================================================

// ProfileCreated is published after a profile and its role record were
// committed. Latitude and Longitude are nil when the address was typed
// manually and still needs geocoding.
type ProfileCreated struct {
	BaseEvent
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	DisplayName string    `json:"displayName"`
	FullAddress string    `json:"fullAddress"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
}

func (e ProfileCreated) EventName() string { return "registration.profile.created" }
