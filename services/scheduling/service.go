package scheduling

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"fieldbot/models"
	"fieldbot/utils"

	"go.uber.org/zap"
)

var spanishWeekdays = map[time.Weekday]string{
	time.Sunday:    "domingo",
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
}

// GetSchedulingContext is the single public entry point: it resolves working
// day status, per-technician availability, generated slots, conflicts with a
// requested time, and a recommended best slot, with a Spanish summary.
// Configuration and capacity gaps come back as conflict data, never as errors;
// the error return covers repository failures only.
func (s *DefaultSchedulingService) GetSchedulingContext(ctx context.Context, sc models.SchedulingContext) (*models.SchedulingResult, error) {
	logger := utils.GetLogger()

	date, err := time.ParseInLocation("2006-01-02", sc.Date, s.location())
	if err != nil {
		logger.Warn("scheduling query with invalid date", zap.String("date", sc.Date))
		return &models.SchedulingResult{
			HasConflict:    true,
			ConflictReason: "fecha inválida",
			Summary:        fmt.Sprintf("La fecha %q no es válida. Por favor indícanos el día en formato AAAA-MM-DD.", sc.Date),
		}, nil
	}
	day := date.Weekday()

	hours, err := s.Schedules.GetBusinessHours(ctx, sc.OrganizationID, day)
	if err != nil {
		return nil, fmt.Errorf("scheduling: %w", err)
	}
	if hours == nil {
		suggestions := s.upcomingWorkingDays(ctx, sc.OrganizationID, date)
		reason := fmt.Sprintf("no atendemos los %s", spanishWeekdays[day])
		return &models.SchedulingResult{
			HasConflict:            true,
			ConflictReason:         reason,
			AlternativeSuggestions: suggestions,
			Summary:                nonWorkingDaySummary(reason, suggestions),
		}, nil
	}

	openMin, err := utils.ParseClock(hours.Open)
	if err != nil {
		return nil, fmt.Errorf("scheduling: bad business hours open: %w", err)
	}
	closeMin, err := utils.ParseClock(hours.Close)
	if err != nil {
		return nil, fmt.Errorf("scheduling: bad business hours close: %w", err)
	}

	jobs, err := s.Jobs.GetActiveForDate(ctx, sc.OrganizationID, sc.Date)
	if err != nil {
		return nil, fmt.Errorf("scheduling: %w", err)
	}

	techs, err := s.resolveAvailability(ctx, sc, day, jobs)
	if err != nil {
		return nil, err
	}

	result := &models.SchedulingResult{
		Technicians:   techs,
		BusinessHours: &models.HoursRange{Start: hours.Open, End: hours.Close},
		IsWorkingDay:  true,
	}

	if !anyWithCapacity(techs) {
		suggestions := s.upcomingWorkingDays(ctx, sc.OrganizationID, date)
		result.HasConflict = true
		result.ConflictReason = "no hay técnicos con capacidad disponible para ese día"
		result.AlternativeSuggestions = suggestions
		result.Summary = nonWorkingDaySummary(result.ConflictReason, suggestions)
		return result, nil
	}

	busy := buildBusyIntervals(jobs, s.jobDuration())
	result.AvailableSlots = generateSlots(openMin, closeMin, s.slotDuration(), techs, busy, sc.ServiceType)

	if sc.RequestedTime != "" {
		if requestedMin, perr := utils.ParseClock(sc.RequestedTime); perr == nil {
			outcome := evaluateConflict(requestedMin, openMin, closeMin, result.AvailableSlots)
			result.HasConflict = outcome.hasConflict
			result.ConflictReason = outcome.reason
			result.AlternativeSuggestions = outcome.alternatives
		} else {
			// Unparseable requested time: skip the conflict check, the
			// extractor will ask again.
			logger.Debug("ignoring unparseable requested time", zap.String("requestedTime", sc.RequestedTime))
		}
	}

	result.BestSlot = pickBestSlot(result.AvailableSlots)
	result.Summary = s.renderSummary(sc, date, result)
	return result, nil
}

func anyWithCapacity(techs []models.TechnicianAvailability) bool {
	for _, t := range techs {
		if t.IsAvailable && t.WorkloadLevel != models.WorkloadFull {
			return true
		}
	}
	return false
}

// upcomingWorkingDays scans forward up to 14 days and returns up to three
// dates with configured business hours, as human-readable day/date strings.
func (s *DefaultSchedulingService) upcomingWorkingDays(ctx context.Context, orgID string, from time.Time) []string {
	var suggestions []string
	for i := 1; i <= utils.WorkingDayScanDays && len(suggestions) < 3; i++ {
		candidate := from.AddDate(0, 0, i)
		hours, err := s.Schedules.GetBusinessHours(ctx, orgID, candidate.Weekday())
		if err != nil || hours == nil {
			continue
		}
		suggestions = append(suggestions, fmt.Sprintf("%s %s", spanishWeekdays[candidate.Weekday()], candidate.Format("02/01")))
	}
	return suggestions
}

// pickBestSlot orders candidate slots by confidence, then by available
// technician count descending, then by earliest start.
func pickBestSlot(slots []models.TimeSlot) *models.TimeSlot {
	var candidates []models.TimeSlot
	for _, slot := range slots {
		if slot.AvailableTechnicians > 0 {
			candidates = append(candidates, slot)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	rank := map[models.SlotConfidence]int{
		models.ConfidenceHigh:   0,
		models.ConfidenceMedium: 1,
		models.ConfidenceLow:    2,
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if rank[candidates[i].Confidence] != rank[candidates[j].Confidence] {
			return rank[candidates[i].Confidence] < rank[candidates[j].Confidence]
		}
		if candidates[i].AvailableTechnicians != candidates[j].AvailableTechnicians {
			return candidates[i].AvailableTechnicians > candidates[j].AvailableTechnicians
		}
		return candidates[i].Start < candidates[j].Start
	})
	best := candidates[0]
	return &best
}

func nonWorkingDaySummary(reason string, suggestions []string) string {
	if len(suggestions) == 0 {
		return fmt.Sprintf("Lo sentimos, %s y no encontramos días disponibles en las próximas dos semanas.", reason)
	}
	return fmt.Sprintf("Lo sentimos, %s. Te podemos atender: %s.", reason, strings.Join(suggestions, ", "))
}

// renderSummary produces the one-paragraph natural-language answer used by
// the chat responder.
func (s *DefaultSchedulingService) renderSummary(sc models.SchedulingContext, date time.Time, result *models.SchedulingResult) string {
	dayName := spanishWeekdays[date.Weekday()]

	if result.HasConflict {
		msg := fmt.Sprintf("Para el %s %s: %s.", dayName, date.Format("02/01"), result.ConflictReason)
		if len(result.AlternativeSuggestions) > 0 {
			msg += fmt.Sprintf(" Horarios alternativos: %s.", strings.Join(result.AlternativeSuggestions, ", "))
		}
		return msg
	}

	available := 0
	for _, t := range result.Technicians {
		if t.IsAvailable && t.WorkloadLevel != models.WorkloadFull {
			available++
		}
	}

	var starts []string
	for _, slot := range result.AvailableSlots {
		if slot.AvailableTechnicians == 0 {
			continue
		}
		starts = append(starts, slot.Start)
		if len(starts) == 3 {
			break
		}
	}

	msg := fmt.Sprintf("El %s %s tenemos %d técnico(s) disponibles.", dayName, date.Format("02/01"), available)
	if len(starts) > 0 {
		msg += fmt.Sprintf(" Horarios: %s.", strings.Join(starts, ", "))
	}
	if result.BestSlot != nil {
		msg += fmt.Sprintf(" Te recomendamos las %s", result.BestSlot.Start)
		if result.BestSlot.BestTechnician != nil {
			msg += fmt.Sprintf(" con %s", result.BestSlot.BestTechnician.Name)
			if result.BestSlot.BestTechnician.Specialty != "" {
				msg += fmt.Sprintf(" (%s)", result.BestSlot.BestTechnician.Specialty)
			}
		}
		msg += "."
	}
	return msg
}
