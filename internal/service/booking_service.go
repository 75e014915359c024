package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/database"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

type bookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
	ListByBarberDate(ctx context.Context, barberID, date string) ([]models.Booking, error)
}

type catalogReader interface {
	FindByID(ctx context.Context, id string) (*models.Service, error)
}

type slotChecker interface {
	SlotAvailable(ctx context.Context, barberID, date, slot string) (bool, error)
	Invalidate(ctx context.Context, barberID string)
}

type slotFreedListener interface {
	SlotFreed(ctx context.Context, barberID, date, slot string) error
}

// BookingService manages the appointment lifecycle.
type BookingService struct {
	store        bookingStore
	barbers      barberReader
	catalog      catalogReader
	availability slotChecker
	waitlist     slotFreedListener
	validator    *validator.Validate
	logger       *zap.Logger
	loc          *time.Location
	now          func() time.Time
}

// BookingServiceParams groups constructor dependencies.
type BookingServiceParams struct {
	Store        bookingStore
	Barbers      barberReader
	Catalog      catalogReader
	Availability slotChecker
	Waitlist     slotFreedListener
	Validator    *validator.Validate
	Logger       *zap.Logger
	Location     *time.Location
}

// NewBookingService constructs the service.
func NewBookingService(params BookingServiceParams) *BookingService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		store:        params.Store,
		barbers:      params.Barbers,
		catalog:      params.Catalog,
		availability: params.Availability,
		waitlist:     params.Waitlist,
		validator:    validate,
		logger:       logger,
		loc:          loc,
		now:          time.Now,
	}
}

// Create books a slot after re-checking availability against the stores.
func (s *BookingService) Create(ctx context.Context, req dto.CreateBookingRequest, actor *models.JWTClaims) (*models.Booking, error) {
	req.CustomerEmail = strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	day, _ := time.Parse(dateLayout, req.Date)
	if req.Date < todayIn(s.now(), s.loc) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot book a past date")
	}
	if !ValidSlot(day.Weekday(), req.Time) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time is not a bookable slot for that day")
	}
	if slotStarted(req.Date, req.Time, s.now(), s.loc) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot has already started")
	}

	barber, err := loadBarber(ctx, s.barbers, req.BarberID)
	if err != nil {
		return nil, err
	}
	if !barber.Active {
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "barber is not accepting bookings")
	}
	if _, err := s.catalog.FindByID(ctx, req.ServiceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown service")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}

	available, err := s.availability.SlotAvailable(ctx, barber.ID, req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "slot is closed or already booked")
	}

	booking := &models.Booking{
		BarberID:      barber.ID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		BookingDate:   req.Date,
		BookingTime:   req.Time,
		ServiceID:     req.ServiceID,
		Status:        models.BookingConfirmed,
	}
	if actor != nil {
		booking.CreatedBy = &actor.Email
	}
	if err := s.insert(ctx, booking); err != nil {
		return nil, err
	}
	s.logger.Info("booking created", zap.String("booking_id", booking.ID), zap.String("barber_id", barber.ID), zap.String("date", req.Date), zap.String("time", req.Time))
	return booking, nil
}

// Get returns a booking visible to actor.
func (s *BookingService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Booking, error) {
	booking, barber, err := s.loadWithBarber(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeCustomer(actor, barber.Email, booking.CustomerEmail); err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel frees the slot of a booking and offers it to the waitlist. Cancelling twice is a no-op.
func (s *BookingService) Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*models.Booking, error) {
	booking, barber, err := s.loadWithBarber(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeCustomer(actor, barber.Email, booking.CustomerEmail); err != nil {
		return nil, err
	}
	if booking.Status == models.BookingCancelled {
		return booking, nil
	}
	if err := s.store.UpdateStatus(ctx, booking.ID, models.BookingCancelled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel booking")
	}
	booking.Status = models.BookingCancelled
	s.availability.Invalidate(ctx, booking.BarberID)

	if s.waitlist != nil {
		if err := s.waitlist.SlotFreed(ctx, booking.BarberID, booking.BookingDate, booking.BookingTime); err != nil {
			s.logger.Warn("waitlist offer after cancellation failed", zap.String("booking_id", booking.ID), zap.Error(err))
		}
	}
	s.logger.Info("booking cancelled", zap.String("booking_id", booking.ID), zap.String("by", actor.Email))
	return booking, nil
}

// ListForBarber returns the bookings of a barber on date.
func (s *BookingService) ListForBarber(ctx context.Context, barberID, date string, actor *models.JWTClaims) ([]models.Booking, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "")
	}
	barber, err := loadBarber(ctx, s.barbers, barberID)
	if err != nil {
		return nil, err
	}
	if err := authorizeBarber(actor, barber); err != nil {
		return nil, err
	}
	bookings, err := s.store.ListByBarberDate(ctx, barberID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, nil
}

// insert stores a booking. The unique index on active slots rejects concurrent double bookings.
func (s *BookingService) insert(ctx context.Context, booking *models.Booking) error {
	if err := s.store.Create(ctx, booking); err != nil {
		if database.IsUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrSlotUnavailable, "slot already booked")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}
	s.availability.Invalidate(ctx, booking.BarberID)
	return nil
}

func (s *BookingService) loadWithBarber(ctx context.Context, id string) (*models.Booking, *models.Barber, error) {
	booking, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	barber, err := loadBarber(ctx, s.barbers, booking.BarberID)
	if err != nil {
		return nil, nil, err
	}
	return booking, barber, nil
}
