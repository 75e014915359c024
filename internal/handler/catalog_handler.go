package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

type catalogService interface {
	ListBarbers(ctx context.Context, filter models.BarberFilter) ([]models.Barber, *models.Pagination, error)
	CreateBarber(ctx context.Context, req dto.CreateBarberRequest, actor *models.JWTClaims) (*models.Barber, error)
	SetBarberActive(ctx context.Context, id string, req dto.SetBarberActiveRequest, actor *models.JWTClaims) (*models.Barber, error)
	ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error)
	CreateService(ctx context.Context, req dto.CreateServiceRequest, actor *models.JWTClaims) (*models.Service, error)
}

// CatalogHandler exposes barbers and the price list.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListBarbers godoc
// @Summary List barbers
// @Tags Catalog
// @Produce json
// @Param active query bool false "Only active barbers"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]models.Barber}
// @Router /barbers [get]
func (h *CatalogHandler) ListBarbers(c *gin.Context) {
	filter := models.BarberFilter{ActiveOnly: c.Query("active") == "true"}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	barbers, pagination, err := h.catalog.ListBarbers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, barbers, pagination)
}

// CreateBarber godoc
// @Summary Register a barber
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateBarberRequest true "Barber"
// @Success 201 {object} response.Envelope{data=models.Barber}
// @Router /barbers [post]
func (h *CatalogHandler) CreateBarber(c *gin.Context) {
	var req dto.CreateBarberRequest
	if !bindJSON(c, &req) {
		return
	}
	barber, err := h.catalog.CreateBarber(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, barber)
}

// SetBarberActive godoc
// @Summary Enable or disable bookings for a barber
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Barber ID"
// @Param payload body dto.SetBarberActiveRequest true "Active flag"
// @Success 200 {object} response.Envelope{data=models.Barber}
// @Router /barbers/{id}/active [patch]
func (h *CatalogHandler) SetBarberActive(c *gin.Context) {
	var req dto.SetBarberActiveRequest
	if !bindJSON(c, &req) {
		return
	}
	barber, err := h.catalog.SetBarberActive(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, barber, nil)
}

// ListServices godoc
// @Summary Price list
// @Tags Catalog
// @Produce json
// @Param all query bool false "Include retired services"
// @Success 200 {object} response.Envelope{data=[]models.Service}
// @Router /services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.catalog.ListServices(c.Request.Context(), c.Query("all") != "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, services, nil)
}

// CreateService godoc
// @Summary Add a service to the price list
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateServiceRequest true "Service"
// @Success 201 {object} response.Envelope{data=models.Service}
// @Router /services [post]
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req dto.CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.catalog.CreateService(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, svc)
}
