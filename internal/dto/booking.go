package dto

// CreateBookingRequest books one slot.
type CreateBookingRequest struct {
	BarberID      string `json:"barberId" validate:"required"`
	ServiceID     string `json:"serviceId" validate:"required"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" validate:"required,datetime=15:04"`
	CustomerName  string `json:"customerName" validate:"required,max=120"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	CustomerPhone string `json:"customerPhone" validate:"omitempty,max=32"`
}
