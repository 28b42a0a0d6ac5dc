// Package events re-exports the platform event bus and defines the domain
// events exchanged between modules.
package events

import (
	platformevents "timeclock_backend/platform/events"
	"timeclock_backend/platform/logger"
)

// Event is the platform event interface.
type Event = platformevents.Event

// BaseEvent is the common event payload.
type BaseEvent = platformevents.BaseEvent

// Bus is the platform event bus interface.
type Bus = platformevents.Bus

// Handler processes events of a specific type.
type Handler = platformevents.Handler

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc = platformevents.HandlerFunc

// InMemoryBus is the in-process bus implementation.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// NewBaseEvent creates a base event stamped with the current time.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

// AlertCreated is published when the inconsistency engine opens a new alert.
type AlertCreated struct {
	BaseEvent
	AlertID      int64
	UserID       int64
	Severity     int
	ElapsedHours float64
}

// EventName returns the event identifier.
func (AlertCreated) EventName() string { return "alerts.created" }

// AlertEscalated is published when an unresolved alert changes severity.
type AlertEscalated struct {
	BaseEvent
	AlertID      int64
	UserID       int64
	Severity     int
	ElapsedHours float64
}

// EventName returns the event identifier.
func (AlertEscalated) EventName() string { return "alerts.escalated" }

// JourneyForceClosed is published when an administrator compensates a stuck
// journey.
type JourneyForceClosed struct {
	BaseEvent
	UserID  int64
	AdminID int64
	AlertID int64
	EntryID int64
}

// EventName returns the event identifier.
func (JourneyForceClosed) EventName() string { return "journeys.force_closed" }
