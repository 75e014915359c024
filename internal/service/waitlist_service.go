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

type waitlistStore interface {
	Create(ctx context.Context, entry *models.WaitlistEntry) error
	FindByID(ctx context.Context, id string) (*models.WaitlistEntry, error)
	ListByBarberDate(ctx context.Context, barberID, date string) ([]models.WaitlistEntry, error)
	Waiting(ctx context.Context, barberID, date string) ([]models.WaitlistEntry, error)
	ExistsActive(ctx context.Context, barberID, date, email string) (bool, error)
	MarkOffered(ctx context.Context, id, slot string, expiresAt time.Time) error
	Transition(ctx context.Context, id string, from, to models.WaitlistStatus, bookingID *string) error
	ExpiredOffers(ctx context.Context, now time.Time) ([]models.WaitlistEntry, error)
	ExpireStale(ctx context.Context, today string) (int64, error)
}

type waitlistAvailability interface {
	ForDate(ctx context.Context, barberID, date string) (*models.DateAvailability, *models.AvailabilityResult, error)
	SlotAvailable(ctx context.Context, barberID, date, slot string) (bool, error)
	Invalidate(ctx context.Context, barberID string)
}

type bookingWriter interface {
	Create(ctx context.Context, booking *models.Booking) error
}

// WaitlistNotifier delivers offers to customers.
type WaitlistNotifier interface {
	NotifyOffer(ctx context.Context, offer models.WaitlistOffer) error
}

// WaitlistServiceConfig tunes offer handling.
type WaitlistServiceConfig struct {
	OfferTTL time.Duration
	Location *time.Location
}

// WaitlistService queues customers for full days and hands freed slots to them in order.
type WaitlistService struct {
	store        waitlistStore
	barbers      barberReader
	availability waitlistAvailability
	bookings     bookingWriter
	notifier     WaitlistNotifier
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          WaitlistServiceConfig
	now          func() time.Time
}

// WaitlistServiceParams groups constructor dependencies.
type WaitlistServiceParams struct {
	Store        waitlistStore
	Barbers      barberReader
	Availability waitlistAvailability
	Bookings     bookingWriter
	Notifier     WaitlistNotifier
	Validator    *validator.Validate
	Logger       *zap.Logger
	Config       WaitlistServiceConfig
}

// NewWaitlistService constructs the service.
func NewWaitlistService(params WaitlistServiceParams) *WaitlistService {
	cfg := params.Config
	if cfg.OfferTTL <= 0 {
		cfg.OfferTTL = 30 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitlistService{
		store:        params.Store,
		barbers:      params.Barbers,
		availability: params.Availability,
		bookings:     params.Bookings,
		notifier:     params.Notifier,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Join queues a customer. The day, or the requested slot, must currently be full.
func (s *WaitlistService) Join(ctx context.Context, req dto.JoinWaitlistRequest) (*models.WaitlistEntry, error) {
	req.CustomerEmail = strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid waitlist payload")
	}
	if req.Date < todayIn(s.now(), s.cfg.Location) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot join the waitlist of a past date")
	}
	if req.Time != "" && slotStarted(req.Date, req.Time, s.now(), s.cfg.Location) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot has already started")
	}
	barber, err := loadBarber(ctx, s.barbers, req.BarberID)
	if err != nil {
		return nil, err
	}

	day, _, err := s.availability.ForDate(ctx, barber.ID, req.Date)
	if err != nil {
		return nil, err
	}
	if day.Error {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, day.ErrorMessage)
	}
	if err := checkFull(day, req.Time); err != nil {
		return nil, err
	}

	exists, err := s.store.ExistsActive(ctx, barber.ID, req.Date, req.CustomerEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check waitlist")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already on the waitlist for this day")
	}

	entry := &models.WaitlistEntry{
		BarberID:      barber.ID,
		EntryDate:     req.Date,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		ServiceID:     req.ServiceID,
	}
	if req.Time != "" {
		slot := req.Time
		entry.EntryTime = &slot
	}
	if err := s.store.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to join waitlist")
	}
	s.logger.Info("waitlist joined", zap.String("entry_id", entry.ID), zap.String("barber_id", barber.ID), zap.String("date", req.Date), zap.Int("position", entry.Position))
	return entry, nil
}

// checkFull rejects waitlist requests for days or slots that can be booked directly, or that never open.
func checkFull(day *models.DateAvailability, slot string) error {
	if slot == "" {
		if day.TotalSlots == 0 || day.Verdict == models.VerdictClosedFull.String() {
			return appErrors.Clone(appErrors.ErrValidation, "the barber does not work on that day")
		}
		if day.HasSlots {
			return appErrors.Clone(appErrors.ErrConflict, "slots are still available on that day")
		}
		return nil
	}
	for _, st := range day.Slots {
		if st.Time != slot {
			continue
		}
		switch {
		case st.Available:
			return appErrors.Clone(appErrors.ErrConflict, "slot is available, book it directly")
		case st.Reason == models.ReasonClosed:
			return appErrors.Clone(appErrors.ErrValidation, "slot is closed")
		}
		return nil
	}
	return appErrors.Clone(appErrors.ErrValidation, "time is not a slot for that day")
}

// List returns the queue of a barber on date.
func (s *WaitlistService) List(ctx context.Context, barberID, date string, actor *models.JWTClaims) ([]models.WaitlistEntry, error) {
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
	entries, err := s.store.ListByBarberDate(ctx, barberID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list waitlist")
	}
	return entries, nil
}

// SlotFreed offers a freed slot to the first waiting entry that accepts it.
func (s *WaitlistService) SlotFreed(ctx context.Context, barberID, date, slot string) error {
	entries, err := s.store.Waiting(ctx, barberID, date)
	if err != nil {
		return err
	}
	for i := range entries {
		entry := &entries[i]
		if !entry.Matches(slot) {
			continue
		}
		offered, err := s.offer(ctx, entry, slot)
		if err != nil {
			return err
		}
		if offered {
			return nil
		}
	}
	return nil
}

func (s *WaitlistService) offer(ctx context.Context, entry *models.WaitlistEntry, slot string) (bool, error) {
	expiresAt := s.now().UTC().Add(s.cfg.OfferTTL)
	if err := s.store.MarkOffered(ctx, entry.ID, slot, expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	offer := models.WaitlistOffer{
		EntryID:       entry.ID,
		BarberID:      entry.BarberID,
		Date:          entry.EntryDate,
		Time:          slot,
		CustomerEmail: entry.CustomerEmail,
		CustomerName:  entry.CustomerName,
		ExpiresAt:     expiresAt,
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyOffer(ctx, offer); err != nil {
			s.logger.Warn("waitlist offer notification failed", zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}
	s.logger.Info("waitlist slot offered", zap.String("entry_id", entry.ID), zap.String("date", entry.EntryDate), zap.String("time", slot))
	return true, nil
}

// Accept turns an open offer into a confirmed booking.
func (s *WaitlistService) Accept(ctx context.Context, id string, actor *models.JWTClaims) (*models.Booking, error) {
	entry, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !models.ValidWaitlistTransition(entry.Status, models.WaitlistAccepted) || entry.OfferedTime == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "entry has no open offer")
	}
	if entry.OfferExpiresAt != nil && s.now().After(*entry.OfferExpiresAt) {
		s.expire(ctx, entry)
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "offer expired")
	}

	slot := *entry.OfferedTime
	available, err := s.availability.SlotAvailable(ctx, entry.BarberID, entry.EntryDate, slot)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "offered slot is no longer available")
	}

	createdBy := actor.Email
	booking := &models.Booking{
		BarberID:      entry.BarberID,
		CustomerName:  entry.CustomerName,
		CustomerEmail: entry.CustomerEmail,
		CustomerPhone: entry.CustomerPhone,
		BookingDate:   entry.EntryDate,
		BookingTime:   slot,
		ServiceID:     entry.ServiceID,
		Status:        models.BookingConfirmed,
		CreatedBy:     &createdBy,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "offered slot is no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}
	s.availability.Invalidate(ctx, entry.BarberID)

	if err := s.store.Transition(ctx, entry.ID, models.WaitlistOffered, models.WaitlistAccepted, &booking.ID); err != nil {
		s.logger.Error("booking created but waitlist entry not closed", zap.String("entry_id", entry.ID), zap.String("booking_id", booking.ID), zap.Error(err))
	}
	s.logger.Info("waitlist offer accepted", zap.String("entry_id", entry.ID), zap.String("booking_id", booking.ID))
	return booking, nil
}

// Decline refuses an open offer and passes the slot to the next customer.
func (s *WaitlistService) Decline(ctx context.Context, id string, actor *models.JWTClaims) (*models.WaitlistEntry, error) {
	entry, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !models.ValidWaitlistTransition(entry.Status, models.WaitlistDeclined) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "entry has no open offer")
	}
	if err := s.store.Transition(ctx, entry.ID, entry.Status, models.WaitlistDeclined, nil); err != nil {
		return nil, s.transitionError(err)
	}
	entry.Status = models.WaitlistDeclined
	if entry.OfferedTime != nil {
		if err := s.SlotFreed(ctx, entry.BarberID, entry.EntryDate, *entry.OfferedTime); err != nil {
			s.logger.Warn("re-offer after decline failed", zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}
	return entry, nil
}

// ExpireOffers expires lapsed offers, hands their slots on, and closes waiting entries of past dates.
func (s *WaitlistService) ExpireOffers(ctx context.Context) (*dto.ExpireOffersResult, error) {
	lapsed, err := s.store.ExpiredOffers(ctx, s.now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expired offers")
	}
	result := &dto.ExpireOffersResult{}
	for i := range lapsed {
		if s.expire(ctx, &lapsed[i]) {
			result.Expired++
		}
	}
	stale, err := s.store.ExpireStale(ctx, todayIn(s.now(), s.cfg.Location))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expire stale entries")
	}
	result.Stale = stale
	return result, nil
}

func (s *WaitlistService) expire(ctx context.Context, entry *models.WaitlistEntry) bool {
	if err := s.store.Transition(ctx, entry.ID, models.WaitlistOffered, models.WaitlistExpired, nil); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to expire offer", zap.String("entry_id", entry.ID), zap.Error(err))
		}
		return false
	}
	if entry.OfferedTime != nil {
		if err := s.SlotFreed(ctx, entry.BarberID, entry.EntryDate, *entry.OfferedTime); err != nil {
			s.logger.Warn("re-offer after expiry failed", zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}
	return true
}

func (s *WaitlistService) loadOwned(ctx context.Context, id string, actor *models.JWTClaims) (*models.WaitlistEntry, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "waitlist entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waitlist entry")
	}
	if !actor.IsAdmin() && !strings.EqualFold(actor.Email, entry.CustomerEmail) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not your waitlist entry")
	}
	return entry, nil
}

func (s *WaitlistService) transitionError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "entry changed status concurrently")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update waitlist entry")
}
