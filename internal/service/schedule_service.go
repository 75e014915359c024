package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

type scheduleStore interface {
	Upsert(ctx context.Context, schedule *models.BarberSchedule) error
	Get(ctx context.Context, barberID, date string) (*models.BarberSchedule, error)
}

type scheduleAvailability interface {
	Batch(ctx context.Context, barberID string, dates []string) (*models.AvailabilityResult, error)
}

type scheduleBarbers interface {
	FindByID(ctx context.Context, id string) (*models.Barber, error)
	ListActive(ctx context.Context) ([]models.Barber, error)
}

// ScheduleService materialises barber schedules from the availability pipeline.
type ScheduleService struct {
	store        scheduleStore
	availability scheduleAvailability
	barbers      scheduleBarbers
	batchSize    int
	logger       *zap.Logger
}

// NewScheduleService constructs the service. batchSize should not exceed the availability batch limit.
func NewScheduleService(store scheduleStore, availability scheduleAvailability, barbers scheduleBarbers, batchSize int, logger *zap.Logger) *ScheduleService {
	if batchSize <= 0 {
		batchSize = 31
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{store: store, availability: availability, barbers: barbers, batchSize: batchSize, logger: logger}
}

// RegenerateSchedules rewrites the schedule rows of one barber, or of every active barber when
// barberID is empty, for days dates starting at from. It returns the number of rows written.
func (s *ScheduleService) RegenerateSchedules(ctx context.Context, barberID string, from time.Time, days int) (int, error) {
	if days <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "days must be positive")
	}
	ids := []string{barberID}
	if barberID == "" {
		barbers, err := s.barbers.ListActive(ctx)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list barbers")
		}
		ids = ids[:0]
		for _, b := range barbers {
			ids = append(ids, b.ID)
		}
	}

	dates := make([]string, days)
	for i := range dates {
		dates[i] = from.AddDate(0, 0, i).Format(dateLayout)
	}

	written := 0
	for _, id := range ids {
		for start := 0; start < len(dates); start += s.batchSize {
			end := start + s.batchSize
			if end > len(dates) {
				end = len(dates)
			}
			n, err := s.regenerate(ctx, id, dates[start:end])
			written += n
			if err != nil {
				return written, err
			}
		}
	}
	s.logger.Info("schedules regenerated", zap.Int("barbers", len(ids)), zap.Int("rows", written))
	return written, nil
}

// Schedule returns the materialised schedule of a barber on date.
func (s *ScheduleService) Schedule(ctx context.Context, barberID, date string, actor *models.JWTClaims) (*models.BarberSchedule, error) {
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
	schedule, err := s.store.Get(ctx, barberID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not generated for that date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

func (s *ScheduleService) regenerate(ctx context.Context, barberID string, dates []string) (int, error) {
	result, err := s.availability.Batch(ctx, barberID, dates)
	if err != nil {
		return 0, err
	}
	if !result.BarberFound {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "barber not found")
	}
	written := 0
	for _, date := range dates {
		day := result.Availability[date]
		if day == nil || day.Error {
			s.logger.Warn("schedule skipped", zap.String("barber_id", barberID), zap.String("date", date))
			continue
		}
		if err := s.store.Upsert(ctx, BuildSchedule(barberID, date, day)); err != nil {
			return written, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write schedule")
		}
		written++
	}
	return written, nil
}

// BuildSchedule splits composed slots into disjoint available and unavailable lists.
// A day is off when nothing can be booked and at least part of it is closed, or no slot exists.
func BuildSchedule(barberID, date string, day *models.DateAvailability) *models.BarberSchedule {
	schedule := &models.BarberSchedule{
		BarberID:         barberID,
		ScheduleDate:     date,
		AvailableSlots:   pq.StringArray{},
		UnavailableSlots: pq.StringArray{},
	}
	closed := false
	for _, slot := range day.Slots {
		if slot.Available {
			schedule.AvailableSlots = append(schedule.AvailableSlots, slot.Time)
			continue
		}
		schedule.UnavailableSlots = append(schedule.UnavailableSlots, slot.Time)
		if slot.Reason == models.ReasonClosed {
			closed = true
		}
	}
	schedule.DayOff = day.TotalSlots == 0 || (len(schedule.AvailableSlots) == 0 && closed)
	return schedule
}
