// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"terraflow_backend/platform/events"

	"github.com/google/uuid"
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
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published after a lead is persisted with its initial score.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	UserID   uuid.UUID `json:"userId"`
	LeadName string    `json:"leadName"`
	Source   string    `json:"source"`
	AIScore  int       `json:"aiScore"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// NewLeadCreated constructs a LeadCreated event with the current timestamp.
func NewLeadCreated(leadID, userID uuid.UUID, leadName, source string, aiScore int) LeadCreated {
	return LeadCreated{
		BaseEvent: NewBaseEvent(),
		LeadID:    leadID,
		UserID:    userID,
		LeadName:  leadName,
		Source:    source,
		AIScore:   aiScore,
	}
}

// LeadStatusChanged is published after a status transition and its audit
// activity have both been committed.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	UserID    uuid.UUID `json:"userId"`
	LeadName  string    `json:"leadName"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// NewLeadStatusChanged constructs a LeadStatusChanged event.
func NewLeadStatusChanged(leadID, userID uuid.UUID, leadName, oldStatus, newStatus string) LeadStatusChanged {
	return LeadStatusChanged{
		BaseEvent: NewBaseEvent(),
		LeadID:    leadID,
		UserID:    userID,
		LeadName:  leadName,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}

// HotLeadDetected is published when a newly created lead scores above the
// hot-lead threshold.
type HotLeadDetected struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	UserID   uuid.UUID `json:"userId"`
	LeadName string    `json:"leadName"`
	AIScore  int       `json:"aiScore"`
}

func (e HotLeadDetected) EventName() string { return "leads.lead.hot" }

// NewHotLeadDetected constructs a HotLeadDetected event.
func NewHotLeadDetected(leadID, userID uuid.UUID, leadName string, aiScore int) HotLeadDetected {
	return HotLeadDetected{
		BaseEvent: NewBaseEvent(),
		LeadID:    leadID,
		UserID:    userID,
		LeadName:  leadName,
		AIScore:   aiScore,
	}
}

// =============================================================================
// Property Domain Events
// =============================================================================

// PropertyEnquiryReceived is published when a public listing enquiry creates
// a lead for the property owner.
type PropertyEnquiryReceived struct {
	BaseEvent
	PropertyID uuid.UUID `json:"propertyId"`
	LeadID     uuid.UUID `json:"leadId"`
	OwnerID    uuid.UUID `json:"ownerId"`
}

func (e PropertyEnquiryReceived) EventName() string { return "properties.enquiry.received" }

// NewPropertyEnquiryReceived constructs a PropertyEnquiryReceived event.
func NewPropertyEnquiryReceived(propertyID, leadID, ownerID uuid.UUID) PropertyEnquiryReceived {
	return PropertyEnquiryReceived{
		BaseEvent:  NewBaseEvent(),
		PropertyID: propertyID,
		LeadID:     leadID,
		OwnerID:    ownerID,
	}
}
