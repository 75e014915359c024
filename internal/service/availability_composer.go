package service

import "github.com/noah-isme/barbershop-api/internal/models"

// ComposeAvailability merges generated slots with the closure verdict and the occupied set.
// Output order follows slots.
func ComposeAvailability(slots []string, verdict models.ClosureVerdict, occupied map[string]struct{}) []models.SlotStatus {
	out := make([]models.SlotStatus, 0, len(slots))
	for _, slot := range slots {
		status := models.SlotStatus{Time: slot, Available: true}
		switch {
		case closedBy(verdict, slot):
			status.Available = false
			status.Reason = models.ReasonClosed
		case isOccupied(occupied, slot):
			status.Available = false
			status.Reason = models.ReasonBooked
		}
		out = append(out, status)
	}
	return out
}

// Summarise builds the per-date summary from composed slots.
func Summarise(date string, verdict models.ClosureVerdict, slots []models.SlotStatus) *models.DateAvailability {
	available := 0
	for _, s := range slots {
		if s.Available {
			available++
		}
	}
	return &models.DateAvailability{
		Date:           date,
		State:          models.DateComposed,
		Verdict:        verdict.String(),
		HasSlots:       available > 0,
		AvailableCount: available,
		TotalSlots:     len(slots),
		Slots:          slots,
	}
}

func closedBy(verdict models.ClosureVerdict, slot string) bool {
	switch verdict {
	case models.VerdictClosedFull:
		return true
	case models.VerdictClosedMorning:
		return IsMorningSlot(slot)
	case models.VerdictClosedAfternoon:
		return !IsMorningSlot(slot)
	default:
		return false
	}
}

func isOccupied(occupied map[string]struct{}, slot string) bool {
	_, ok := occupied[slot]
	return ok
}
