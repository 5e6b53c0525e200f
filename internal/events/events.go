// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"portfolio_backend/platform/events"
	"portfolio_backend/platform/logger"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Form Pipeline Events
// =============================================================================

// ContactMessageSubmitted is published when a contact form submission is persisted.
type ContactMessageSubmitted struct {
	BaseEvent
	RecordID string `json:"recordId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

func (e ContactMessageSubmitted) EventName() string { return "contact.message.submitted" }

// AppointmentBooked is published when an appointment submission is persisted.
type AppointmentBooked struct {
	BaseEvent
	RecordID      string    `json:"recordId"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Topic         string    `json:"topic"`
	StartsAt      time.Time `json:"startsAt"`
	DateFormatted string    `json:"dateFormatted"`
	TimeFormatted string    `json:"timeFormatted"`
}

func (e AppointmentBooked) EventName() string { return "appointment.booked" }

// OrderPlaced is published when an order submission is persisted.
type OrderPlaced struct {
	BaseEvent
	RecordID string `json:"recordId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PlanID   string `json:"planId"`
	PlanName string `json:"planName"`
	Budget   string `json:"budget"`
}

func (e OrderPlaced) EventName() string { return "order.placed" }
