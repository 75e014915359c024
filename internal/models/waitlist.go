package models

import "time"

// WaitlistStatus captures the lifecycle of a waitlist entry.
type WaitlistStatus string

const (
	WaitlistWaiting  WaitlistStatus = "waiting"
	WaitlistOffered  WaitlistStatus = "offered"
	WaitlistAccepted WaitlistStatus = "accepted"
	WaitlistDeclined WaitlistStatus = "declined"
	WaitlistExpired  WaitlistStatus = "expired"
)

var waitlistTransitions = map[WaitlistStatus][]WaitlistStatus{
	WaitlistWaiting: {WaitlistOffered, WaitlistExpired},
	WaitlistOffered: {WaitlistAccepted, WaitlistDeclined, WaitlistExpired},
}

// ValidWaitlistTransition reports whether an entry may move from one status to another.
func ValidWaitlistTransition(from, to WaitlistStatus) bool {
	for _, next := range waitlistTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// WaitlistEntry is a customer queued for a fully booked day or slot.
// A nil EntryTime means any slot of the day is acceptable.
type WaitlistEntry struct {
	ID               string         `db:"id" json:"id"`
	BarberID         string         `db:"barber_id" json:"barber_id"`
	EntryDate        string         `db:"entry_date" json:"entry_date"`
	EntryTime        *string        `db:"entry_time" json:"entry_time,omitempty"`
	CustomerName     string         `db:"customer_name" json:"customer_name"`
	CustomerEmail    string         `db:"customer_email" json:"customer_email"`
	CustomerPhone    string         `db:"customer_phone" json:"customer_phone,omitempty"`
	ServiceID        string         `db:"service_id" json:"service_id"`
	Status           WaitlistStatus `db:"status" json:"status"`
	Position         int            `db:"position" json:"position"`
	OfferedBookingID *string        `db:"offered_booking_id" json:"offered_booking_id,omitempty"`
	OfferedTime      *string        `db:"offered_time" json:"offered_time,omitempty"`
	OfferExpiresAt   *time.Time     `db:"offer_expires_at" json:"offer_expires_at,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Matches reports whether a freed slot satisfies the entry.
func (e *WaitlistEntry) Matches(slot string) bool {
	return e.EntryTime == nil || *e.EntryTime == "" || *e.EntryTime == slot
}

// WaitlistOffer is the event published when a freed slot is offered to a customer.
type WaitlistOffer struct {
	EntryID       string    `json:"entry_id"`
	BarberID      string    `json:"barber_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CustomerEmail string    `json:"customer_email"`
	CustomerName  string    `json:"customer_name"`
	ExpiresAt     time.Time `json:"expires_at"`
}
