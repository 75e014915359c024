package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

type closureService interface {
	Settings(ctx context.Context) (*models.ClosureSettings, error)
	UpdateSettings(ctx context.Context, req dto.UpdateClosureSettingsRequest, actor *models.JWTClaims) (*models.ClosureSettings, error)
	Recurring(ctx context.Context, barberID string, actor *models.JWTClaims) (*models.RecurringClosure, error)
	UpdateRecurring(ctx context.Context, barberID string, req dto.UpdateRecurringClosureRequest, actor *models.JWTClaims) (*models.RecurringClosure, error)
	ListAdhoc(ctx context.Context, barberID string, filter dto.ClosureRangeFilter, actor *models.JWTClaims) ([]models.BarberClosure, error)
	CreateAdhoc(ctx context.Context, barberID string, req dto.CreateClosureRequest, actor *models.JWTClaims) (*dto.CreateClosureResult, error)
	DeleteAdhoc(ctx context.Context, barberID string, req dto.DeleteClosureRequest, actor *models.JWTClaims) error
}

// ClosureHandler administers shop and barber closures.
type ClosureHandler struct {
	closures closureService
}

// NewClosureHandler constructs the handler.
func NewClosureHandler(closures closureService) *ClosureHandler {
	return &ClosureHandler{closures: closures}
}

// Settings godoc
// @Summary Shop wide closures
// @Tags Closures
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.ClosureSettings}
// @Router /settings/closures [get]
func (h *ClosureHandler) Settings(c *gin.Context) {
	settings, err := h.closures.Settings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UpdateSettings godoc
// @Summary Replace shop wide closures
// @Tags Closures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateClosureSettingsRequest true "Closed weekdays and dates"
// @Success 200 {object} response.Envelope{data=models.ClosureSettings}
// @Router /settings/closures [put]
func (h *ClosureHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateClosureSettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	settings, err := h.closures.UpdateSettings(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Recurring godoc
// @Summary Weekly closed days of a barber
// @Tags Closures
// @Produce json
// @Security BearerAuth
// @Param id path string true "Barber ID"
// @Success 200 {object} response.Envelope{data=models.RecurringClosure}
// @Router /barbers/{id}/recurring-closures [get]
func (h *ClosureHandler) Recurring(c *gin.Context) {
	rule, err := h.closures.Recurring(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// UpdateRecurring godoc
// @Summary Replace weekly closed days of a barber
// @Tags Closures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Barber ID"
// @Param payload body dto.UpdateRecurringClosureRequest true "Closed weekdays (0=Sunday)"
// @Success 200 {object} response.Envelope{data=models.RecurringClosure}
// @Router /barbers/{id}/recurring-closures [put]
func (h *ClosureHandler) UpdateRecurring(c *gin.Context) {
	var req dto.UpdateRecurringClosureRequest
	if !bindJSON(c, &req) {
		return
	}
	rule, err := h.closures.UpdateRecurring(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// List godoc
// @Summary Ad-hoc closures of a barber
// @Tags Closures
// @Produce json
// @Security BearerAuth
// @Param id path string true "Barber ID"
// @Param from query string true "First date (YYYY-MM-DD)"
// @Param to query string true "Last date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope{data=[]models.BarberClosure}
// @Router /barbers/{id}/closures [get]
func (h *ClosureHandler) List(c *gin.Context) {
	filter := dto.ClosureRangeFilter{From: c.Query("from"), To: c.Query("to")}
	closures, err := h.closures.ListAdhoc(c.Request.Context(), c.Param("id"), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if closures == nil {
		closures = []models.BarberClosure{}
	}
	response.JSON(c, http.StatusOK, closures, nil)
}

// Create godoc
// @Summary Close a date for a barber
// @Tags Closures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Barber ID"
// @Param payload body dto.CreateClosureRequest true "Closure"
// @Success 201 {object} response.Envelope{data=dto.CreateClosureResult}
// @Success 200 {object} response.Envelope{data=dto.CreateClosureResult}
// @Router /barbers/{id}/closures [post]
func (h *ClosureHandler) Create(c *gin.Context) {
	var req dto.CreateClosureRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.closures.CreateAdhoc(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Created {
		response.JSON(c, http.StatusOK, result, nil)
		return
	}
	response.Created(c, result)
}

// Delete godoc
// @Summary Re-open a date for a barber
// @Tags Closures
// @Security BearerAuth
// @Param id path string true "Barber ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param type query string false "full, morning or afternoon; all when omitted"
// @Success 204
// @Router /barbers/{id}/closures [delete]
func (h *ClosureHandler) Delete(c *gin.Context) {
	req := dto.DeleteClosureRequest{Date: c.Query("date"), Type: c.Query("type")}
	if err := h.closures.DeleteAdhoc(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
