package models

import "time"

// Technician is the persisted record of a field technician.
type Technician struct {
	ID             string `json:"id" bson:"id"`
	OrganizationID string `json:"organizationId" bson:"organizationId"`
	Name           string `json:"name" bson:"name"`
	Specialty      string `json:"specialty,omitempty" bson:"specialty,omitempty"`
	Active         bool   `json:"active" bson:"active"`
	// MaxDailyJobs of zero means "use the default capacity".
	MaxDailyJobs int `json:"maxDailyJobs,omitempty" bson:"maxDailyJobs,omitempty"`
}

// TechnicianLocation is the last position reported for a technician.
type TechnicianLocation struct {
	TechnicianID string    `json:"technicianId" bson:"technicianId"`
	Lat          float64   `json:"lat" bson:"lat"`
	Lng          float64   `json:"lng" bson:"lng"`
	RecordedAt   time.Time `json:"recordedAt" bson:"recordedAt"`
}

// WorkloadLevel buckets a technician's booked-job ratio for a date.
type WorkloadLevel string

const (
	WorkloadLow    WorkloadLevel = "low"
	WorkloadMedium WorkloadLevel = "medium"
	WorkloadHigh   WorkloadLevel = "high"
	WorkloadFull   WorkloadLevel = "full"
)

// HoursRange is an HH:MM start/end pair.
type HoursRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TechnicianAvailability is the computed per-date view of a technician.
// It is rebuilt on every scheduling query and never persisted.
type TechnicianAvailability struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Specialty       string        `json:"specialty,omitempty"`
	IsAvailable     bool          `json:"isAvailable"`
	ScheduleHours   *HoursRange   `json:"scheduleHours,omitempty"`
	CurrentJobCount int           `json:"currentJobCount"`
	MaxDailyJobs    int           `json:"maxDailyJobs"`
	WorkloadLevel   WorkloadLevel `json:"workloadLevel"`
	DistanceKm      *float64      `json:"distanceKm,omitempty"`
	ETAMinutes      *int          `json:"etaMinutes,omitempty"`
}

// WorkloadFor derives the workload tier from a job count and capacity.
func WorkloadFor(jobCount, maxDaily int) WorkloadLevel {
	ratio := float64(jobCount) / float64(maxDaily)
	switch {
	case ratio >= 1.0:
		return WorkloadFull
	case ratio >= 0.75:
		return WorkloadHigh
	case ratio >= 0.5:
		return WorkloadMedium
	default:
		return WorkloadLow
	}
}
