package models

// SchedulingContext is the input to a scheduling-intelligence query.
type SchedulingContext struct {
	OrganizationID string   `json:"organizationId"`
	Date           string   `json:"date"` // YYYY-MM-DD
	RequestedTime  string   `json:"requestedTime,omitempty"` // HH:MM
	ServiceType    string   `json:"serviceType,omitempty"`
	CustomerLat    *float64 `json:"customerLat,omitempty"`
	CustomerLng    *float64 `json:"customerLng,omitempty"`
}

// SlotConfidence grades a slot by how many technicians can take it.
type SlotConfidence string

const (
	ConfidenceHigh   SlotConfidence = "high"   // two or more technicians free
	ConfidenceMedium SlotConfidence = "medium" // exactly one
	ConfidenceLow    SlotConfidence = "low"    // none
)

// BestTechnician identifies the recommended technician for a slot.
type BestTechnician struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}

// TimeSlot is one evaluated window within business hours. Slots are
// regenerated on every query and never persisted.
type TimeSlot struct {
	Start                string          `json:"start"` // HH:MM
	End                  string          `json:"end"`   // HH:MM
	AvailableTechnicians int             `json:"availableTechnicians"`
	BestTechnician       *BestTechnician `json:"bestTechnician,omitempty"`
	Confidence           SlotConfidence  `json:"confidence"`
}

// SchedulingResult is the full answer to a scheduling query. Configuration
// gaps and capacity conflicts are expressed as data (HasConflict plus a
// reason and alternatives), never as errors.
type SchedulingResult struct {
	AvailableSlots         []TimeSlot               `json:"availableSlots"`
	Technicians            []TechnicianAvailability `json:"technicians"`
	BestSlot               *TimeSlot                `json:"bestSlot,omitempty"`
	HasConflict            bool                     `json:"hasConflict"`
	ConflictReason         string                   `json:"conflictReason,omitempty"`
	AlternativeSuggestions []string                 `json:"alternativeSuggestions,omitempty"`
	Summary                string                   `json:"summary"`
	BusinessHours          *HoursRange              `json:"businessHours,omitempty"`
	IsWorkingDay           bool                     `json:"isWorkingDay"`
}
