package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/middleware"
	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

type availabilityService interface {
	ForDate(ctx context.Context, barberID, date string) (*models.DateAvailability, *models.AvailabilityResult, error)
	Batch(ctx context.Context, barberID string, dates []string) (*models.AvailabilityResult, error)
}

// AvailabilityHandler serves the public slot endpoints.
type AvailabilityHandler struct {
	availability availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(availability availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// Slots godoc
// @Summary Slots of a barber on one date
// @Tags Availability
// @Produce json
// @Param id path string true "Barber ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope{data=dto.SlotsResponse}
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /barbers/{id}/slots [get]
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	barberID := c.Param("id")
	date := c.Query("date")
	day, result, err := h.availability.ForDate(c.Request.Context(), barberID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	if day.Error {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, day.ErrorMessage))
		return
	}
	middleware.SetCacheHit(c, result.CacheHits > 0)
	middleware.SetBarberFound(c, result.BarberFound)

	slots := day.Slots
	if slots == nil {
		slots = []models.SlotStatus{}
	}
	respond(c, dto.SlotsResponse{
		BarberID: barberID,
		Date:     date,
		Slots:    slots,
		Summary: dto.SlotsSummary{
			HasSlots:       day.HasSlots,
			AvailableCount: day.AvailableCount,
			TotalSlots:     day.TotalSlots,
		},
	})
}

// Batch godoc
// @Summary Availability of a barber over several dates
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.BatchAvailabilityRequest true "Barber and dates"
// @Param include_slots query bool false "Include per-slot detail (default true)"
// @Success 200 {object} response.Envelope{data=dto.BatchAvailabilityResponse}
// @Failure 400 {object} response.Envelope
// @Router /availability/batch [post]
func (h *AvailabilityHandler) Batch(c *gin.Context) {
	var req dto.BatchAvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.availability.Batch(c.Request.Context(), req.BarberID, req.Dates)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, len(result.Availability) > 0 && result.CacheHits == len(result.Availability))
	middleware.SetBarberFound(c, result.BarberFound)

	availability := result.Availability
	if c.Query("include_slots") == "false" {
		availability = withoutSlots(availability)
	}
	respond(c, dto.BatchAvailabilityResponse{Availability: availability})
}

func withoutSlots(in map[string]*models.DateAvailability) map[string]*models.DateAvailability {
	out := make(map[string]*models.DateAvailability, len(in))
	for date, day := range in {
		summary := *day
		summary.Slots = nil
		out[date] = &summary
	}
	return out
}
