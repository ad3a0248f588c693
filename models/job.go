package models

import "time"

// JobStatus is the lifecycle state of a service job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusConfirmed  JobStatus = "CONFIRMED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

// IsTerminal reports whether the job no longer occupies technician capacity.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// Job is a scheduled service visit.
type Job struct {
	ID             string    `json:"id" bson:"id"`
	OrganizationID string    `json:"organizationId" bson:"organizationId"`
	TechnicianID   string    `json:"technicianId" bson:"technicianId"`
	CustomerID     string    `json:"customerId" bson:"customerId"`
	Date           string    `json:"date" bson:"date"`                         // YYYY-MM-DD
	StartTime      string    `json:"startTime" bson:"startTime"`               // HH:MM
	EndTime        string    `json:"endTime,omitempty" bson:"endTime,omitempty"` // HH:MM, may be empty
	// EstimatedDuration in minutes, used when EndTime is empty.
	EstimatedDuration int       `json:"estimatedDuration,omitempty" bson:"estimatedDuration,omitempty"`
	ServiceType       string    `json:"serviceType,omitempty" bson:"serviceType,omitempty"`
	Address           string    `json:"address,omitempty" bson:"address,omitempty"`
	Description       string    `json:"description,omitempty" bson:"description,omitempty"`
	Status            JobStatus `json:"status" bson:"status"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
}

// Customer is a chat customer resolved by phone number.
type Customer struct {
	ID             string    `json:"id" bson:"id"`
	OrganizationID string    `json:"organizationId" bson:"organizationId"`
	Phone          string    `json:"phone" bson:"phone"`
	Name           string    `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// BookingDraft accumulates the fields of a booking across a multi-turn
// conversation until the customer confirms.
type BookingDraft struct {
	OrganizationID     string `json:"organizationId"`
	CustomerID         string `json:"customerId"`
	CustomerPhone      string `json:"customerPhone"`
	CustomerName       string `json:"customerName,omitempty"`
	TechnicianID       string `json:"technicianId"`
	TechnicianName     string `json:"technicianName,omitempty"`
	// TechnicianMaxJobs feeds the commit-time capacity check; zero means the
	// default capacity.
	TechnicianMaxJobs int `json:"technicianMaxJobs,omitempty"`
	Date               string `json:"date"`
	StartTime          string `json:"startTime"`
	EndTime            string `json:"endTime"`
	ServiceType        string `json:"serviceType,omitempty"`
	Address            string `json:"address,omitempty"`
	ProblemDescription string `json:"problemDescription,omitempty"`
}
