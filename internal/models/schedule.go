package models

import (
	"time"

	"github.com/lib/pq"
)

// BarberSchedule is the materialised slot sheet of a barber for one date.
// AvailableSlots and UnavailableSlots are disjoint and together cover every generated slot.
type BarberSchedule struct {
	BarberID         string         `db:"barber_id" json:"barber_id"`
	ScheduleDate     string         `db:"schedule_date" json:"schedule_date"`
	DayOff           bool           `db:"day_off" json:"day_off"`
	AvailableSlots   pq.StringArray `db:"available_slots" json:"available_slots"`
	UnavailableSlots pq.StringArray `db:"unavailable_slots" json:"unavailable_slots"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}
