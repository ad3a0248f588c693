package models

import "time"

// PendingInteractionType names what user input a paused conversation waits for.
type PendingInteractionType string

const (
	InteractionTimeSlotSelection PendingInteractionType = "time_slot_selection"
	InteractionConfirmation      PendingInteractionType = "confirmation"
	InteractionServiceSelection  PendingInteractionType = "service_selection"
)

// SlotSelectionData carries the candidate slots offered to the customer.
// Button ids for the options are "slot_0" through "slot_{n-1}", zero-based
// indexes into Slots in stored order; the numbering shown in the chat text
// is 1-based display only.
type SlotSelectionData struct {
	Date        string     `json:"date"`
	ServiceType string     `json:"serviceType,omitempty"`
	Slots       []TimeSlot `json:"slots"`
	// TechnicianCapacities maps technician ids to their configured daily
	// capacity, feeding the commit-time capacity check once a slot is chosen.
	TechnicianCapacities map[string]int `json:"technicianCapacities,omitempty"`
	CustomerID           string         `json:"customerId,omitempty"`
	CustomerName         string         `json:"customerName,omitempty"`
	Address              string         `json:"address,omitempty"`
	ProblemDescription   string         `json:"problemDescription,omitempty"`
}

// ConfirmationData carries the booking awaiting a yes/no.
type ConfirmationData struct {
	Booking BookingDraft `json:"booking"`
}

// ServiceSelectionData carries the service options offered to the customer.
type ServiceSelectionData struct {
	Services      []string `json:"services"`
	PreferredDate string   `json:"preferredDate,omitempty"`
}

// InteractionData is a tagged union: exactly the field matching the
// interaction type is set.
type InteractionData struct {
	SlotSelection    *SlotSelectionData    `json:"slotSelection,omitempty"`
	Confirmation     *ConfirmationData     `json:"confirmation,omitempty"`
	ServiceSelection *ServiceSelectionData `json:"serviceSelection,omitempty"`
}

// PendingInteraction records what a paused workflow is waiting for. At most
// one exists per conversation; registering a new one replaces the old.
type PendingInteraction struct {
	Type           PendingInteractionType `json:"type"`
	OrganizationID string                 `json:"organizationId"`
	ConversationID string                 `json:"conversationId"`
	CustomerPhone  string                 `json:"customerPhone,omitempty"`
	ExpiresAt      time.Time              `json:"expiresAt"`
	Data           InteractionData        `json:"data"`
}

// Expired reports whether the interaction is past its TTL at the given time.
func (p *PendingInteraction) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
