package models

import (
	"time"

	"github.com/lib/pq"
)

// ShopClosuresID is the primary key of the closure settings singleton.
const ShopClosuresID = "shop_closures"

// ClosureType describes which part of a day an ad-hoc closure covers.
type ClosureType string

const (
	ClosureFull      ClosureType = "full"
	ClosureMorning   ClosureType = "morning"
	ClosureAfternoon ClosureType = "afternoon"
)

// Valid reports whether the closure type is known.
func (t ClosureType) Valid() bool {
	switch t {
	case ClosureFull, ClosureMorning, ClosureAfternoon:
		return true
	}
	return false
}

// BarberClosure is a date specific closure for one barber.
type BarberClosure struct {
	ID          string      `db:"id" json:"id"`
	BarberEmail string      `db:"barber_email" json:"barber_email"`
	ClosureDate string      `db:"closure_date" json:"closure_date"`
	ClosureType ClosureType `db:"closure_type" json:"closure_type"`
	Reason      string      `db:"reason" json:"reason,omitempty"`
	CreatedBy   string      `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// RecurringClosure lists the weekdays (0=Sunday..6=Saturday) a barber never works.
type RecurringClosure struct {
	BarberEmail string        `db:"barber_email" json:"barber_email"`
	ClosedDays  pq.Int64Array `db:"closed_days" json:"closed_days"`
	UpdatedBy   string        `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// ClosureSettings holds the shop wide closed weekdays and holiday dates.
type ClosureSettings struct {
	ID          string         `db:"id" json:"-"`
	ClosedDays  pq.Int64Array  `db:"closed_days" json:"closed_days"`
	ClosedDates pq.StringArray `db:"closed_dates" json:"closed_dates"`
	UpdatedBy   string         `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
