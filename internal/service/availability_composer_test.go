package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
)

func occupiedSet(times ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(times))
	for _, t := range times {
		set[t] = struct{}{}
	}
	return set
}

func TestComposeAvailabilityClosedFull(t *testing.T) {
	slots := ComposeAvailability(GenerateSlots(time.Monday), models.VerdictClosedFull, occupiedSet("09:00"))
	require.Len(t, slots, 14)
	for _, s := range slots {
		assert.False(t, s.Available)
		assert.Equal(t, models.ReasonClosed, s.Reason)
	}
}

func TestComposeAvailabilityMorningClosure(t *testing.T) {
	slots := ComposeAvailability(GenerateSlots(time.Wednesday), models.VerdictClosedMorning, occupiedSet("15:30"))
	for _, s := range slots {
		switch {
		case s.Time < "14:00":
			assert.False(t, s.Available, s.Time)
			assert.Equal(t, models.ReasonClosed, s.Reason)
		case s.Time == "15:30":
			assert.Equal(t, models.ReasonBooked, s.Reason)
		default:
			assert.True(t, s.Available, s.Time)
		}
	}
}

func TestComposeAvailabilityAfternoonClosure(t *testing.T) {
	slots := ComposeAvailability(GenerateSlots(time.Thursday), models.VerdictClosedAfternoon, nil)
	summary := Summarise("2025-03-06", models.VerdictClosedAfternoon, slots)
	assert.Equal(t, 8, summary.AvailableCount)
	assert.Equal(t, 14, summary.TotalSlots)
	assert.Equal(t, "closed_afternoon", summary.Verdict)
}

func TestComposeAvailabilityBookedNeverAvailable(t *testing.T) {
	slots := ComposeAvailability(GenerateSlots(time.Saturday), models.VerdictOpen, occupiedSet("10:00", "12:30"))
	for _, s := range slots {
		if s.Time == "10:00" || s.Time == "12:30" {
			assert.Equal(t, models.SlotStatus{Time: s.Time, Available: false, Reason: models.ReasonBooked}, s)
		} else {
			assert.True(t, s.Available)
		}
	}
}

func TestSummariseEmptyDay(t *testing.T) {
	summary := Summarise("2025-03-02", models.VerdictOpen, ComposeAvailability(GenerateSlots(time.Sunday), models.VerdictOpen, nil))
	assert.False(t, summary.HasSlots)
	assert.Zero(t, summary.TotalSlots)
	assert.Equal(t, models.DateComposed, summary.State)
}
