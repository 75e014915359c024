package models

// ClosureVerdict is the effective closure of a barber for one date.
type ClosureVerdict int

const (
	VerdictOpen ClosureVerdict = iota
	VerdictClosedFull
	VerdictClosedMorning
	VerdictClosedAfternoon
)

func (v ClosureVerdict) String() string {
	switch v {
	case VerdictClosedFull:
		return "closed_full"
	case VerdictClosedMorning:
		return "closed_morning"
	case VerdictClosedAfternoon:
		return "closed_afternoon"
	default:
		return "open"
	}
}

// SlotReason explains why a slot cannot be booked.
type SlotReason string

const (
	ReasonClosed SlotReason = "closed"
	ReasonBooked SlotReason = "booked"
)

// SlotStatus is the availability of a single slot.
type SlotStatus struct {
	Time      string     `json:"time"`
	Available bool       `json:"available"`
	Reason    SlotReason `json:"reason,omitempty"`
}

// DateState tracks a date through the batch pipeline.
type DateState string

const (
	DatePending  DateState = "PENDING"
	DateLoaded   DateState = "LOADED"
	DateComposed DateState = "COMPOSED"
	DateFailed   DateState = "FAILED"
)

// DateAvailability summarises the slots of one date.
type DateAvailability struct {
	Date           string       `json:"-"`
	State          DateState    `json:"-"`
	Verdict        string       `json:"verdict,omitempty"`
	HasSlots       bool         `json:"hasSlots"`
	AvailableCount int          `json:"availableCount"`
	TotalSlots     int          `json:"totalSlots"`
	Slots          []SlotStatus `json:"slots,omitempty"`
	Error          bool         `json:"error,omitempty"`
	ErrorMessage   string       `json:"errorMessage,omitempty"`
}

// AvailabilityResult is the outcome of an availability query for one barber.
type AvailabilityResult struct {
	BarberID     string                       `json:"barberId"`
	BarberFound  bool                         `json:"-"`
	CacheHits    int                          `json:"-"`
	Availability map[string]*DateAvailability `json:"availability"`
}
