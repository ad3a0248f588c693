package scheduling

import (
	"strings"

	"fieldbot/models"
	"fieldbot/utils"
)

type busyInterval struct {
	start int // minutes since midnight
	end   int
}

// buildBusyIntervals maps each technician to the windows already taken by
// existing jobs. Jobs without an end time occupy start + estimated duration.
func buildBusyIntervals(jobs []models.Job, defaultDuration int) map[string][]busyInterval {
	busy := make(map[string][]busyInterval)
	for _, job := range jobs {
		start, err := utils.ParseClock(job.StartTime)
		if err != nil {
			continue
		}
		end := 0
		if job.EndTime != "" {
			if end, err = utils.ParseClock(job.EndTime); err != nil {
				continue
			}
		} else {
			duration := job.EstimatedDuration
			if duration <= 0 {
				duration = defaultDuration
			}
			end = start + duration
		}
		busy[job.TechnicianID] = append(busy[job.TechnicianID], busyInterval{start: start, end: end})
	}
	return busy
}

// overlaps is the half-open interval test: touching endpoints do not collide.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return !(aEnd <= bStart || aStart >= bEnd)
}

// matchesSpecialty reports whether a technician's specialty covers the
// requested service type, case-insensitively and in either direction
// ("plomería" covers "plomería urgente" and vice versa).
func matchesSpecialty(specialty, serviceType string) bool {
	if specialty == "" || serviceType == "" {
		return false
	}
	sp := strings.ToLower(specialty)
	sv := strings.ToLower(serviceType)
	return strings.Contains(sp, sv) || strings.Contains(sv, sp)
}

// generateSlots partitions the business window into fixed-duration slots and
// evaluates each technician against each slot. The final slot is shortened
// when the window does not divide evenly.
func generateSlots(
	openMin, closeMin, slotDuration int,
	techs []models.TechnicianAvailability,
	busy map[string][]busyInterval,
	serviceType string,
) []models.TimeSlot {
	var slots []models.TimeSlot
	for start := openMin; start < closeMin; start += slotDuration {
		end := start + slotDuration
		if end > closeMin {
			end = closeMin
		}

		var best *models.TechnicianAvailability
		bestMatches := false
		count := 0
		for i := range techs {
			tech := &techs[i]
			if !qualifies(tech, start, end, busy[tech.ID]) {
				continue
			}
			count++

			matches := matchesSpecialty(tech.Specialty, serviceType)
			switch {
			case best == nil:
				best, bestMatches = tech, matches
			case matches && !bestMatches:
				best, bestMatches = tech, true
			case matches == bestMatches && tech.CurrentJobCount < best.CurrentJobCount:
				best = tech
			}
		}

		slot := models.TimeSlot{
			Start:                utils.FormatClock(start),
			End:                  utils.FormatClock(end),
			AvailableTechnicians: count,
			Confidence:           confidenceFor(count),
		}
		if best != nil {
			slot.BestTechnician = &models.BestTechnician{
				ID:        best.ID,
				Name:      best.Name,
				Specialty: best.Specialty,
			}
		}
		slots = append(slots, slot)
	}
	return slots
}

// qualifies checks one technician against one slot window: available, not at
// full workload, window inside their schedule, and no booking collision.
func qualifies(tech *models.TechnicianAvailability, slotStart, slotEnd int, busy []busyInterval) bool {
	if !tech.IsAvailable || tech.WorkloadLevel == models.WorkloadFull || tech.ScheduleHours == nil {
		return false
	}
	availStart, err := utils.ParseClock(tech.ScheduleHours.Start)
	if err != nil {
		return false
	}
	availEnd, err := utils.ParseClock(tech.ScheduleHours.End)
	if err != nil {
		return false
	}
	if slotStart < availStart || slotEnd > availEnd {
		return false
	}
	for _, b := range busy {
		if overlaps(slotStart, slotEnd, b.start, b.end) {
			return false
		}
	}
	return true
}

func confidenceFor(availableCount int) models.SlotConfidence {
	switch {
	case availableCount >= 2:
		return models.ConfidenceHigh
	case availableCount == 1:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
