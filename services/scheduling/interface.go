package scheduling

import (
	"context"
	"time"

	jobRepo "fieldbot/database/repository/job"
	scheduleRepo "fieldbot/database/repository/schedule"
	technicianRepo "fieldbot/database/repository/technician"
	"fieldbot/models"
)

// SchedulingService computes real availability, workload and slot
// recommendations for an organization and date.
type SchedulingService interface {
	GetSchedulingContext(ctx context.Context, sc models.SchedulingContext) (*models.SchedulingResult, error)
}

// DefaultSchedulingService is the production implementation. All methods are
// read-only against the repositories; concurrent calls share no mutable state.
type DefaultSchedulingService struct {
	Technicians technicianRepo.TechnicianRepository
	Schedules   scheduleRepo.ScheduleRepository
	Jobs        jobRepo.JobRepository

	// SlotDuration in minutes; zero means 60.
	SlotDuration int
	// DefaultJobDuration in minutes for jobs without an end time; zero means 60.
	DefaultJobDuration int
	// Location is the organization's timezone; nil means time.Local.
	Location *time.Location
}

func (s *DefaultSchedulingService) slotDuration() int {
	if s.SlotDuration <= 0 {
		return 60
	}
	return s.SlotDuration
}

func (s *DefaultSchedulingService) jobDuration() int {
	if s.DefaultJobDuration <= 0 {
		return 60
	}
	return s.DefaultJobDuration
}

func (s *DefaultSchedulingService) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}
