package dto

// CreateBarberRequest registers a barber.
type CreateBarberRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required,max=120"`
}

// SetBarberActiveRequest toggles whether a barber accepts bookings.
type SetBarberActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// CreateServiceRequest adds an entry to the price list.
type CreateServiceRequest struct {
	Name            string `json:"name" validate:"required,max=120"`
	PriceCents      int    `json:"priceCents" validate:"min=0"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=5,max=480"`
}

// RegenerateSchedulesRequest materialises schedules for a horizon. An empty barber means every active barber.
type RegenerateSchedulesRequest struct {
	BarberID string `json:"barberId"`
	From     string `json:"from" validate:"required,datetime=2006-01-02"`
	Days     int    `json:"days" validate:"required,min=1,max=120"`
}

// SyncClosuresRequest materialises recurring closures for a horizon.
type SyncClosuresRequest struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	Days int    `json:"days" validate:"required,min=1,max=366"`
}

// RegenerateSchedulesResult reports how many schedule rows were written.
type RegenerateSchedulesResult struct {
	Written int `json:"written"`
}
