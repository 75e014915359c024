package models

import "time"

// Barber is a member of staff that can receive bookings.
type Barber struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BarberFilter narrows barber listings.
type BarberFilter struct {
	ActiveOnly bool
	Page       int
	PageSize   int
}
