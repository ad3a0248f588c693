package models

import "time"

// WeeklySchedule is a technician's recurring working window for one weekday.
type WeeklySchedule struct {
	TechnicianID   string       `json:"technicianId" bson:"technicianId"`
	OrganizationID string       `json:"organizationId" bson:"organizationId"`
	Weekday        time.Weekday `json:"weekday" bson:"weekday"`
	StartTime      string       `json:"startTime" bson:"startTime"` // HH:MM
	EndTime        string       `json:"endTime" bson:"endTime"`     // HH:MM
}

// ScheduleException overrides the recurring schedule entirely for one date.
// When Available is false the technician is off that day regardless of the
// weekly schedule; when true, StartTime/EndTime are the authoritative window.
type ScheduleException struct {
	TechnicianID   string `json:"technicianId" bson:"technicianId"`
	OrganizationID string `json:"organizationId" bson:"organizationId"`
	Date           string `json:"date" bson:"date"` // YYYY-MM-DD
	Available      bool   `json:"available" bson:"available"`
	StartTime      string `json:"startTime,omitempty" bson:"startTime,omitempty"`
	EndTime        string `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Reason         string `json:"reason,omitempty" bson:"reason,omitempty"`
}

// BusinessHours is the organization's opening window for one weekday.
// A weekday with no BusinessHours record is not a working day.
type BusinessHours struct {
	OrganizationID string       `json:"organizationId" bson:"organizationId"`
	Weekday        time.Weekday `json:"weekday" bson:"weekday"`
	Open           string       `json:"open" bson:"open"`   // HH:MM
	Close          string       `json:"close" bson:"close"` // HH:MM
}
