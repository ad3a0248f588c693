package scheduling

import (
	"context"
	"fmt"
	"time"

	"fieldbot/models"
	"fieldbot/utils"
)

// resolveAvailability computes one TechnicianAvailability per active
// technician for the target date. A date exception overrides the recurring
// weekly schedule entirely; technicians with neither are unavailable.
func (s *DefaultSchedulingService) resolveAvailability(
	ctx context.Context,
	sc models.SchedulingContext,
	day time.Weekday,
	jobs []models.Job,
) ([]models.TechnicianAvailability, error) {
	techs, err := s.Technicians.GetActive(ctx, sc.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}

	weekly, err := s.Schedules.GetWeeklyByDay(ctx, sc.OrganizationID, day)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	weeklyByTech := make(map[string]models.WeeklySchedule, len(weekly))
	for _, w := range weekly {
		weeklyByTech[w.TechnicianID] = w
	}

	exceptions, err := s.Schedules.GetExceptions(ctx, sc.OrganizationID, sc.Date)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	exceptionByTech := make(map[string]models.ScheduleException, len(exceptions))
	for _, e := range exceptions {
		exceptionByTech[e.TechnicianID] = e
	}

	jobCounts := make(map[string]int)
	for _, j := range jobs {
		jobCounts[j.TechnicianID]++
	}

	var locations map[string]models.TechnicianLocation
	if sc.CustomerLat != nil && sc.CustomerLng != nil {
		locations, err = s.Technicians.GetLastLocations(ctx, sc.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("availability: %w", err)
		}
	}

	result := make([]models.TechnicianAvailability, 0, len(techs))
	for _, tech := range techs {
		maxDaily := tech.MaxDailyJobs
		if maxDaily <= 0 {
			maxDaily = utils.MaxDailyJobsDefault
		}

		ta := models.TechnicianAvailability{
			ID:              tech.ID,
			Name:            tech.Name,
			Specialty:       tech.Specialty,
			CurrentJobCount: jobCounts[tech.ID],
			MaxDailyJobs:    maxDaily,
			WorkloadLevel:   models.WorkloadFor(jobCounts[tech.ID], maxDaily),
		}

		if exc, ok := exceptionByTech[tech.ID]; ok {
			// The exception is authoritative for this date.
			if exc.Available && exc.StartTime != "" && exc.EndTime != "" {
				ta.IsAvailable = true
				ta.ScheduleHours = &models.HoursRange{Start: exc.StartTime, End: exc.EndTime}
			}
		} else if sched, ok := weeklyByTech[tech.ID]; ok {
			ta.IsAvailable = true
			ta.ScheduleHours = &models.HoursRange{Start: sched.StartTime, End: sched.EndTime}
		}

		if locations != nil {
			if loc, ok := locations[tech.ID]; ok {
				distance := utils.HaversineKm(*sc.CustomerLat, *sc.CustomerLng, loc.Lat, loc.Lng)
				eta := utils.EstimateETAMinutes(distance)
				ta.DistanceKm = &distance
				ta.ETAMinutes = &eta
			}
		}

		result = append(result, ta)
	}
	return result, nil
}
