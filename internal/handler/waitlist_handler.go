package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

type waitlistService interface {
	Join(ctx context.Context, req dto.JoinWaitlistRequest) (*models.WaitlistEntry, error)
	List(ctx context.Context, barberID, date string, actor *models.JWTClaims) ([]models.WaitlistEntry, error)
	Accept(ctx context.Context, id string, actor *models.JWTClaims) (*models.Booking, error)
	Decline(ctx context.Context, id string, actor *models.JWTClaims) (*models.WaitlistEntry, error)
}

// WaitlistHandler exposes the waitlist endpoints.
type WaitlistHandler struct {
	waitlist waitlistService
}

// NewWaitlistHandler constructs the handler.
func NewWaitlistHandler(waitlist waitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlist: waitlist}
}

// Join godoc
// @Summary Join the waitlist of a full day or slot
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param payload body dto.JoinWaitlistRequest true "Waitlist request"
// @Success 201 {object} response.Envelope{data=models.WaitlistEntry}
// @Failure 409 {object} response.Envelope
// @Router /waitlist [post]
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req dto.JoinWaitlistRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.waitlist.Join(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// List godoc
// @Summary Waitlist of a barber on one date
// @Tags Waitlist
// @Produce json
// @Security BearerAuth
// @Param id path string true "Barber ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope{data=[]models.WaitlistEntry}
// @Router /barbers/{id}/waitlist [get]
func (h *WaitlistHandler) List(c *gin.Context) {
	entries, err := h.waitlist.List(c.Request.Context(), c.Param("id"), c.Query("date"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if entries == nil {
		entries = []models.WaitlistEntry{}
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Accept godoc
// @Summary Accept an offered slot
// @Tags Waitlist
// @Produce json
// @Security BearerAuth
// @Param id path string true "Waitlist entry ID"
// @Success 201 {object} response.Envelope{data=models.Booking}
// @Router /waitlist/{id}/accept [post]
func (h *WaitlistHandler) Accept(c *gin.Context) {
	booking, err := h.waitlist.Accept(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Decline godoc
// @Summary Decline an offered slot
// @Tags Waitlist
// @Produce json
// @Security BearerAuth
// @Param id path string true "Waitlist entry ID"
// @Success 200 {object} response.Envelope{data=models.WaitlistEntry}
// @Router /waitlist/{id}/decline [post]
func (h *WaitlistHandler) Decline(c *gin.Context) {
	entry, err := h.waitlist.Decline(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}
