package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

type barberReader interface {
	FindByID(ctx context.Context, id string) (*models.Barber, error)
}

type closureReader interface {
	GetSettings(ctx context.Context) (*models.ClosureSettings, error)
	RecurringDays(ctx context.Context, barberEmail string) ([]int64, error)
	ListAdhoc(ctx context.Context, barberEmail, date string) ([]models.BarberClosure, error)
}

type occupancyLoader interface {
	OccupiedTimes(ctx context.Context, barberID, date string) (map[string]struct{}, error)
}

// AvailabilityServiceConfig tunes the availability pipeline.
type AvailabilityServiceConfig struct {
	MaxBatchDates    int
	FetchConcurrency int
}

// AvailabilityService computes bookable slots for one barber over one or many dates.
type AvailabilityService struct {
	barbers  barberReader
	closures closureReader
	bookings occupancyLoader
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      AvailabilityServiceConfig
}

// AvailabilityServiceParams groups constructor dependencies.
type AvailabilityServiceParams struct {
	Barbers  barberReader
	Closures closureReader
	Bookings occupancyLoader
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	Config   AvailabilityServiceConfig
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(params AvailabilityServiceParams) *AvailabilityService {
	cfg := params.Config
	if cfg.MaxBatchDates <= 0 {
		cfg.MaxBatchDates = 62
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 4
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		barbers:  params.Barbers,
		closures: params.Closures,
		bookings: params.Bookings,
		cache:    params.Cache,
		metrics:  params.Metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// ForDate returns the availability of a barber on one date. It runs the batch pipeline with a single date.
func (s *AvailabilityService) ForDate(ctx context.Context, barberID, date string) (*models.DateAvailability, *models.AvailabilityResult, error) {
	result, err := s.Batch(ctx, barberID, []string{date})
	if err != nil {
		return nil, nil, err
	}
	return result.Availability[date], result, nil
}

// Batch returns the availability of a barber for every requested date.
// Dates are validated before any store access. A failure on one date is reported on that date only.
func (s *AvailabilityService) Batch(ctx context.Context, barberID string, dates []string) (*models.AvailabilityResult, error) {
	days, err := s.parseDates(barberID, dates)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, barberID, days, true)
}

// SlotAvailable re-checks one slot against the stores, bypassing the cache.
func (s *AvailabilityService) SlotAvailable(ctx context.Context, barberID, date, slot string) (bool, error) {
	days, err := s.parseDates(barberID, []string{date})
	if err != nil {
		return false, err
	}
	result, err := s.resolve(ctx, barberID, days, false)
	if err != nil {
		return false, err
	}
	if !result.BarberFound {
		return false, appErrors.Clone(appErrors.ErrNotFound, "barber not found")
	}
	day := result.Availability[date]
	if day.Error {
		return false, appErrors.Clone(appErrors.ErrServiceUnavailable, day.ErrorMessage)
	}
	for _, st := range day.Slots {
		if st.Time == slot {
			return st.Available, nil
		}
	}
	return false, nil
}

// Invalidate drops cached availability of one barber.
func (s *AvailabilityService) Invalidate(ctx context.Context, barberID string) {
	s.cache.ForgetBarber(ctx, barberID)
}

// InvalidateAll drops cached availability of every barber.
func (s *AvailabilityService) InvalidateAll(ctx context.Context) {
	s.cache.ForgetAll(ctx)
}

type requestedDate struct {
	label string
	day   time.Time
}

func (s *AvailabilityService) parseDates(barberID string, dates []string) ([]requestedDate, error) {
	if barberID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "barberId is required")
	}
	if len(dates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one date is required")
	}
	seen := make(map[string]struct{}, len(dates))
	out := make([]requestedDate, 0, len(dates))
	for _, raw := range dates {
		if _, dup := seen[raw]; dup {
			continue
		}
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, appErrors.Validationf("invalid date %q, expected YYYY-MM-DD", raw)
		}
		seen[raw] = struct{}{}
		out = append(out, requestedDate{label: raw, day: day})
	}
	if len(out) > s.cfg.MaxBatchDates {
		return nil, appErrors.Validationf("at most %d dates per request", s.cfg.MaxBatchDates)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].label < out[j].label })
	return out, nil
}

func (s *AvailabilityService) resolve(ctx context.Context, barberID string, dates []requestedDate, useCache bool) (*models.AvailabilityResult, error) {
	result := &models.AvailabilityResult{BarberID: barberID, Availability: make(map[string]*models.DateAvailability, len(dates))}

	barber, err := s.barbers.FindByID(ctx, barberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			for _, d := range dates {
				result.Availability[d.label] = Summarise(d.label, models.VerdictClosedFull, nil)
			}
			return result, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to load barber")
	}
	result.BarberFound = true

	pending := dates
	var gen CacheGeneration
	if useCache {
		gen = s.cache.Generation(ctx, barberID)
		pending = s.fromCache(ctx, barberID, dates, result)
		if len(pending) == 0 {
			return result, nil
		}
	}

	shop, recurring, err := s.loadShared(ctx, barber)
	if err != nil {
		return nil, err
	}

	states := make([]*models.DateAvailability, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FetchConcurrency)
	for i, d := range pending {
		i, d := i, d
		g.Go(func() error {
			states[i] = s.composeDate(gctx, barber, d, shop, recurring)
			return nil
		})
	}
	_ = g.Wait()

	for _, state := range states {
		result.Availability[state.Date] = state
		s.metrics.RecordAvailabilityDate(state.State == models.DateFailed)
		if useCache && state.State == models.DateComposed {
			s.cache.StoreDay(ctx, barberID, state, gen)
		}
	}
	return result, nil
}

// loadShared fetches the state every date of a batch needs, once and concurrently.
func (s *AvailabilityService) loadShared(ctx context.Context, barber *models.Barber) (*models.ClosureSettings, []int64, error) {
	var (
		shop      *models.ClosureSettings
		recurring []int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		settings, err := s.closures.GetSettings(gctx)
		s.metrics.ObserveDBQuery("closure_settings", time.Since(start))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to load shop closures")
		}
		shop = settings
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		days, err := s.closures.RecurringDays(gctx, barber.Email)
		s.metrics.ObserveDBQuery("recurring_closures", time.Since(start))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to load recurring closures")
		}
		recurring = days
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("availability shared state unavailable", zap.String("barber_id", barber.ID), zap.Error(err))
		return nil, nil, err
	}
	return shop, recurring, nil
}

// composeDate drives one date through PENDING, LOADED and COMPOSED, or FAILED when its own fetch fails.
func (s *AvailabilityService) composeDate(ctx context.Context, barber *models.Barber, d requestedDate, shop *models.ClosureSettings, recurring []int64) *models.DateAvailability {
	slots := GenerateSlots(d.day.Weekday())
	if !barber.Active {
		return Summarise(d.label, models.VerdictClosedFull, ComposeAvailability(slots, models.VerdictClosedFull, nil))
	}
	if len(slots) == 0 || ShopClosed(d.day, shop) {
		verdict := ResolveClosure(d.day, shop, recurring, nil)
		return Summarise(d.label, verdict, ComposeAvailability(slots, verdict, nil))
	}

	state := &models.DateAvailability{Date: d.label, State: models.DatePending}
	var (
		adhoc    []models.BarberClosure
		occupied map[string]struct{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		rows, err := s.closures.ListAdhoc(gctx, barber.Email, d.label)
		s.metrics.ObserveDBQuery("adhoc_closures", time.Since(start))
		adhoc = rows
		return err
	})
	g.Go(func() error {
		start := time.Now()
		set, err := s.bookings.OccupiedTimes(gctx, barber.ID, d.label)
		s.metrics.ObserveDBQuery("occupied_slots", time.Since(start))
		occupied = set
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("availability date failed", zap.String("barber_id", barber.ID), zap.String("date", d.label), zap.Error(err))
		state.State = models.DateFailed
		state.Error = true
		state.ErrorMessage = "failed to load closures or bookings for this date"
		return state
	}
	state.State = models.DateLoaded

	verdict := ResolveClosure(d.day, shop, recurring, adhoc)
	return Summarise(d.label, verdict, ComposeAvailability(slots, verdict, occupied))
}

func (s *AvailabilityService) fromCache(ctx context.Context, barberID string, dates []requestedDate, result *models.AvailabilityResult) []requestedDate {
	if !s.cache.Enabled() {
		return dates
	}
	pending := make([]requestedDate, 0, len(dates))
	for _, d := range dates {
		cached, hit := s.cache.Day(ctx, barberID, d.label)
		if !hit {
			pending = append(pending, d)
			continue
		}
		result.Availability[d.label] = cached
		result.CacheHits++
	}
	return pending
}
