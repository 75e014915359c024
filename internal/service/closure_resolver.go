package service

import (
	"time"

	"github.com/noah-isme/barbershop-api/internal/models"
)

const dateLayout = "2006-01-02"

// ResolveClosure returns the effective closure of a barber on date. Precedence, first match wins:
// shop closed weekday or holiday, barber ad-hoc closures, barber recurring weekdays, open.
// Ad-hoc records override recurring rules so a single date can be re-opened.
func ResolveClosure(date time.Time, shop *models.ClosureSettings, recurring []int64, adhoc []models.BarberClosure) models.ClosureVerdict {
	weekday := int64(date.Weekday())
	if shop != nil {
		if containsDay(shop.ClosedDays, weekday) {
			return models.VerdictClosedFull
		}
		day := date.Format(dateLayout)
		for _, closed := range shop.ClosedDates {
			if closed == day {
				return models.VerdictClosedFull
			}
		}
	}

	if len(adhoc) > 0 {
		return mergeAdhoc(adhoc)
	}

	if containsDay(recurring, weekday) {
		return models.VerdictClosedFull
	}
	return models.VerdictOpen
}

// mergeAdhoc folds ad-hoc rows of one date. Duplicate rows collapse, morning plus afternoon is a full day.
func mergeAdhoc(adhoc []models.BarberClosure) models.ClosureVerdict {
	var morning, afternoon bool
	for _, closure := range adhoc {
		switch closure.ClosureType {
		case models.ClosureMorning:
			morning = true
		case models.ClosureAfternoon:
			afternoon = true
		default:
			return models.VerdictClosedFull
		}
	}
	switch {
	case morning && afternoon:
		return models.VerdictClosedFull
	case morning:
		return models.VerdictClosedMorning
	default:
		return models.VerdictClosedAfternoon
	}
}

// ShopClosed reports whether the shop itself is closed on date, independently of any barber.
func ShopClosed(date time.Time, shop *models.ClosureSettings) bool {
	return ResolveClosure(date, shop, nil, nil) == models.VerdictClosedFull
}

func containsDay(days []int64, weekday int64) bool {
	for _, d := range days {
		if d == weekday {
			return true
		}
	}
	return false
}
