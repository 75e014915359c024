package dto

import "github.com/noah-isme/barbershop-api/internal/models"

// BatchAvailabilityRequest asks for the availability of one barber over several dates.
type BatchAvailabilityRequest struct {
	BarberID string   `json:"barberId" validate:"required"`
	Dates    []string `json:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
}

// SlotsResponse is the payload of the single date endpoint.
type SlotsResponse struct {
	BarberID string              `json:"barber_id"`
	Date     string              `json:"date"`
	Slots    []models.SlotStatus `json:"slots"`
	Summary  SlotsSummary        `json:"summary"`
}

// SlotsSummary counts the slots of a date.
type SlotsSummary struct {
	HasSlots       bool `json:"hasSlots"`
	AvailableCount int  `json:"availableCount"`
	TotalSlots     int  `json:"totalSlots"`
}

// BatchAvailabilityResponse maps each requested date to its summary.
type BatchAvailabilityResponse struct {
	Availability map[string]*models.DateAvailability `json:"availability"`
}
