package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

type bookingService interface {
	Create(ctx context.Context, req dto.CreateBookingRequest, actor *models.JWTClaims) (*models.Booking, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Booking, error)
	Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*models.Booking, error)
	ListForBarber(ctx context.Context, barberID, date string, actor *models.JWTClaims) ([]models.Booking, error)
}

// BookingHandler exposes the appointment endpoints.
type BookingHandler struct {
	bookings bookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(bookings bookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create godoc
// @Summary Book a slot
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope{data=models.Booking}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.bookings.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Get godoc
// @Summary Booking detail
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope{data=models.Booking}
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookings.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope{data=models.Booking}
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, err := h.bookings.Cancel(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// ListForBarber godoc
// @Summary Bookings of a barber on one date
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Barber ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope{data=[]models.Booking}
// @Router /barbers/{id}/bookings [get]
func (h *BookingHandler) ListForBarber(c *gin.Context) {
	bookings, err := h.bookings.ListForBarber(c.Request.Context(), c.Param("id"), c.Query("date"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	response.JSON(c, http.StatusOK, bookings, nil)
}
