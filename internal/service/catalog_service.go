package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/database"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

type barberCatalog interface {
	List(ctx context.Context, filter models.BarberFilter) ([]models.Barber, int, error)
	FindByID(ctx context.Context, id string) (*models.Barber, error)
	Create(ctx context.Context, barber *models.Barber) error
	SetActive(ctx context.Context, id string, active bool) error
}

type serviceCatalog interface {
	List(ctx context.Context, activeOnly bool) ([]models.Service, error)
	Create(ctx context.Context, svc *models.Service) error
}

// CatalogService manages barbers and the price list.
type CatalogService struct {
	barbers      barberCatalog
	services     serviceCatalog
	availability availabilityInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(barbers barberCatalog, services serviceCatalog, availability availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{barbers: barbers, services: services, availability: availability, validator: validate, logger: logger}
}

// ListBarbers returns a page of barbers.
func (s *CatalogService) ListBarbers(ctx context.Context, filter models.BarberFilter) ([]models.Barber, *models.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	barbers, total, err := s.barbers.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list barbers")
	}
	return barbers, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// CreateBarber registers a barber. Admin only.
func (s *CatalogService) CreateBarber(ctx context.Context, req dto.CreateBarberRequest, actor *models.JWTClaims) (*models.Barber, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can add barbers")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid barber payload")
	}
	barber := &models.Barber{Email: req.Email, FullName: req.FullName, Active: true}
	if err := s.barbers.Create(ctx, barber); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "barber email already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create barber")
	}
	s.logger.Info("barber created", zap.String("barber_id", barber.ID), zap.String("by", actor.Email))
	return barber, nil
}

// SetBarberActive toggles whether a barber accepts bookings. Admin only.
func (s *CatalogService) SetBarberActive(ctx context.Context, id string, req dto.SetBarberActiveRequest, actor *models.JWTClaims) (*models.Barber, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can change barbers")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "active is required")
	}
	if err := s.barbers.SetActive(ctx, id, *req.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "barber not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update barber")
	}
	s.availability.Invalidate(ctx, id)
	return loadBarber(ctx, s.barbers, id)
}

// ListServices returns the price list.
func (s *CatalogService) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	services, err := s.services.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list services")
	}
	return services, nil
}

// CreateService adds an entry to the price list. Admin only.
func (s *CatalogService) CreateService(ctx context.Context, req dto.CreateServiceRequest, actor *models.JWTClaims) (*models.Service, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can change the price list")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}
	svc := &models.Service{
		Name:            strings.TrimSpace(req.Name),
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		Active:          true,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "service name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service")
	}
	return svc, nil
}
