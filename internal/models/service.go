package models

import "time"

// Service is an entry of the shop price list.
type Service struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	PriceCents      int       `db:"price_cents" json:"price_cents"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
