package service

import (
	"fmt"
	"time"
)

const (
	slotStep = 30 * time.Minute
	// middayCutoff separates morning from afternoon slots. No slot exists between 12:30 and 15:00.
	middayCutoff = "14:00"
)

type slotBlock struct {
	start, end string
}

var (
	morningBlock   = slotBlock{start: "09:00", end: "12:30"}
	afternoonBlock = slotBlock{start: "15:00", end: "17:30"}
)

// GenerateSlots returns the ordered "HH:MM" slot labels a barber works on the given weekday.
// Sunday has none, Saturday only the morning block. The returned slice is owned by the caller.
func GenerateSlots(weekday time.Weekday) []string {
	switch weekday {
	case time.Sunday:
		return []string{}
	case time.Saturday:
		return expandBlock(morningBlock)
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday:
		slots := expandBlock(morningBlock)
		return append(slots, expandBlock(afternoonBlock)...)
	default:
		return []string{}
	}
}

// IsMorningSlot reports whether the slot falls before the midday cutoff.
func IsMorningSlot(slot string) bool {
	return slot < middayCutoff
}

// ValidSlot reports whether slot is generated for the weekday.
func ValidSlot(weekday time.Weekday, slot string) bool {
	for _, s := range GenerateSlots(weekday) {
		if s == slot {
			return true
		}
	}
	return false
}

func expandBlock(b slotBlock) []string {
	start, _ := time.Parse("15:04", b.start)
	end, _ := time.Parse("15:04", b.end)
	slots := make([]string, 0, int(end.Sub(start)/slotStep)+1)
	for t := start; !t.After(end); t = t.Add(slotStep) {
		slots = append(slots, fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()))
	}
	return slots
}
