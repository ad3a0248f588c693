package scheduling

import (
	"fmt"

	"fieldbot/models"
	"fieldbot/utils"
)

type conflictOutcome struct {
	hasConflict  bool
	reason       string
	alternatives []string
}

// evaluateConflict compares the customer's requested time against business
// hours and the generated slots. requestedMin is minutes since midnight.
func evaluateConflict(requestedMin, openMin, closeMin int, slots []models.TimeSlot) conflictOutcome {
	if requestedMin < openMin || requestedMin >= closeMin {
		return conflictOutcome{
			hasConflict: true,
			reason: fmt.Sprintf("la hora solicitada está fuera del horario de atención (%s - %s)",
				utils.FormatClock(openMin), utils.FormatClock(closeMin)),
			alternatives: slotAlternatives(slots, 3),
		}
	}

	for _, slot := range slots {
		start, err1 := utils.ParseClock(slot.Start)
		end, err2 := utils.ParseClock(slot.End)
		if err1 != nil || err2 != nil {
			continue
		}
		if requestedMin >= start && requestedMin < end {
			if slot.AvailableTechnicians > 0 {
				return conflictOutcome{}
			}
			break
		}
	}

	return conflictOutcome{
		hasConflict:  true,
		reason:       "no hay técnicos disponibles a esa hora",
		alternatives: slotAlternatives(slots, 3),
	}
}

// slotAlternatives renders the first max slots that still have capacity.
func slotAlternatives(slots []models.TimeSlot, max int) []string {
	var alts []string
	for _, slot := range slots {
		if slot.AvailableTechnicians == 0 {
			continue
		}
		alts = append(alts, fmt.Sprintf("%s - %s", slot.Start, slot.End))
		if len(alts) == max {
			break
		}
	}
	return alts
}
