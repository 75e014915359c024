package models

import "time"

// BookingStatus captures the lifecycle of an appointment.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is an appointment of a customer with a barber in one slot.
type Booking struct {
	ID            string        `db:"id" json:"id"`
	BarberID      string        `db:"barber_id" json:"barber_id"`
	CustomerName  string        `db:"customer_name" json:"customer_name"`
	CustomerEmail string        `db:"customer_email" json:"customer_email"`
	CustomerPhone string        `db:"customer_phone" json:"customer_phone,omitempty"`
	BookingDate   string        `db:"booking_date" json:"booking_date"`
	BookingTime   string        `db:"booking_time" json:"booking_time"`
	ServiceID     string        `db:"service_id" json:"service_id"`
	Status        BookingStatus `db:"status" json:"status"`
	CreatedBy     *string       `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// Occupies reports whether the booking holds its slot.
func (b *Booking) Occupies() bool {
	return b != nil && b.Status != BookingCancelled
}
