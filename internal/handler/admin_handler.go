package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

type scheduleService interface {
	RegenerateSchedules(ctx context.Context, barberID string, from time.Time, days int) (int, error)
	Schedule(ctx context.Context, barberID, date string, actor *models.JWTClaims) (*models.BarberSchedule, error)
}

type closureSyncer interface {
	SyncRecurringClosures(ctx context.Context, from time.Time, days int) (*dto.SyncClosuresResult, error)
}

type offerExpirer interface {
	ExpireOffers(ctx context.Context) (*dto.ExpireOffersResult, error)
}

// AdminHandler exposes the maintenance jobs over HTTP.
type AdminHandler struct {
	schedules scheduleService
	closures  closureSyncer
	waitlist  offerExpirer
	validator *validator.Validate
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(schedules scheduleService, closures closureSyncer, waitlist offerExpirer) *AdminHandler {
	return &AdminHandler{schedules: schedules, closures: closures, waitlist: waitlist, validator: validator.New()}
}

// Schedule godoc
// @Summary Materialised schedule of a barber
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Barber ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope{data=models.BarberSchedule}
// @Router /barbers/{id}/schedule [get]
func (h *AdminHandler) Schedule(c *gin.Context) {
	schedule, err := h.schedules.Schedule(c.Request.Context(), c.Param("id"), c.Query("date"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// RegenerateSchedules godoc
// @Summary Rebuild barber schedules for a horizon
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RegenerateSchedulesRequest true "Horizon"
// @Success 200 {object} response.Envelope{data=dto.RegenerateSchedulesResult}
// @Router /admin/schedules/regenerate [post]
func (h *AdminHandler) RegenerateSchedules(c *gin.Context) {
	var req dto.RegenerateSchedulesRequest
	if !bindJSON(c, &req) {
		return
	}
	from, ok := h.horizonStart(c, req, req.From)
	if !ok {
		return
	}
	written, err := h.schedules.RegenerateSchedules(c.Request.Context(), req.BarberID, from, req.Days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.RegenerateSchedulesResult{Written: written}, nil)
}

// SyncClosures godoc
// @Summary Materialise recurring closures as ad-hoc closures
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SyncClosuresRequest true "Horizon"
// @Success 200 {object} response.Envelope{data=dto.SyncClosuresResult}
// @Router /admin/closures/sync [post]
func (h *AdminHandler) SyncClosures(c *gin.Context) {
	var req dto.SyncClosuresRequest
	if !bindJSON(c, &req) {
		return
	}
	from, ok := h.horizonStart(c, req, req.From)
	if !ok {
		return
	}
	result, err := h.closures.SyncRecurringClosures(c.Request.Context(), from, req.Days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ExpireOffers godoc
// @Summary Run the waitlist expiry sweep now
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=dto.ExpireOffersResult}
// @Router /admin/waitlist/expire [post]
func (h *AdminHandler) ExpireOffers(c *gin.Context) {
	result, err := h.waitlist.ExpireOffers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *AdminHandler) horizonStart(c *gin.Context, req interface{}, raw string) (time.Time, bool) {
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "from must be YYYY-MM-DD and days positive"))
		return time.Time{}, false
	}
	from, _ := time.Parse("2006-01-02", raw)
	return from, true
}
