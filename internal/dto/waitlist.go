package dto

// JoinWaitlistRequest queues a customer for a full day, or for one specific slot when Time is set.
type JoinWaitlistRequest struct {
	BarberID      string `json:"barberId" validate:"required"`
	ServiceID     string `json:"serviceId" validate:"required"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" validate:"omitempty,datetime=15:04"`
	CustomerName  string `json:"customerName" validate:"required,max=120"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	CustomerPhone string `json:"customerPhone" validate:"omitempty,max=32"`
}

// ExpireOffersResult summarises an expiry sweep.
type ExpireOffersResult struct {
	Expired int   `json:"expired"`
	Stale   int64 `json:"stale"`
}
