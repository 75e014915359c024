package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

type closureStore interface {
	GetSettings(ctx context.Context) (*models.ClosureSettings, error)
	UpsertSettings(ctx context.Context, settings *models.ClosureSettings) error
	GetRecurring(ctx context.Context, barberEmail string) (*models.RecurringClosure, error)
	ListRecurring(ctx context.Context) ([]models.RecurringClosure, error)
	UpsertRecurring(ctx context.Context, rule *models.RecurringClosure) error
	ListAdhocRange(ctx context.Context, barberEmail, from, to string) ([]models.BarberClosure, error)
	CreateAdhoc(ctx context.Context, closure *models.BarberClosure) (bool, error)
	DeleteAdhoc(ctx context.Context, barberEmail, date string, closureType models.ClosureType) (int64, error)
}

type barberDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Barber, error)
	FindByEmail(ctx context.Context, email string) (*models.Barber, error)
}

type availabilityInvalidator interface {
	Invalidate(ctx context.Context, barberID string)
	InvalidateAll(ctx context.Context)
}

// ClosureService administers shop and barber closures.
type ClosureService struct {
	store        closureStore
	barbers      barberDirectory
	availability availabilityInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewClosureService constructs the service.
func NewClosureService(store closureStore, barbers barberDirectory, availability availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *ClosureService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClosureService{store: store, barbers: barbers, availability: availability, validator: validate, logger: logger}
}

// Settings returns the shop wide closures.
func (s *ClosureService) Settings(ctx context.Context) (*models.ClosureSettings, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to load closure settings")
	}
	return settings, nil
}

// UpdateSettings replaces the shop wide closures. Admin only.
func (s *ClosureService) UpdateSettings(ctx context.Context, req dto.UpdateClosureSettingsRequest, actor *models.JWTClaims) (*models.ClosureSettings, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can change shop closures")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid closure settings")
	}
	settings := &models.ClosureSettings{
		ClosedDays:  pq.Int64Array(uniqueDays(req.ClosedDays)),
		ClosedDates: pq.StringArray(uniqueStrings(req.ClosedDates)),
		UpdatedBy:   actor.Email,
	}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save closure settings")
	}
	s.availability.InvalidateAll(ctx)
	s.logger.Info("shop closures updated", zap.Int64s("closed_days", settings.ClosedDays), zap.Strings("closed_dates", settings.ClosedDates), zap.String("by", actor.Email))
	return settings, nil
}

// Recurring returns the weekly closed days of a barber.
func (s *ClosureService) Recurring(ctx context.Context, barberID string, actor *models.JWTClaims) (*models.RecurringClosure, error) {
	barber, err := s.authorized(ctx, barberID, actor)
	if err != nil {
		return nil, err
	}
	rule, err := s.store.GetRecurring(ctx, barber.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to load recurring closures")
	}
	return rule, nil
}

// UpdateRecurring replaces the weekly closed days of a barber.
func (s *ClosureService) UpdateRecurring(ctx context.Context, barberID string, req dto.UpdateRecurringClosureRequest, actor *models.JWTClaims) (*models.RecurringClosure, error) {
	barber, err := s.authorized(ctx, barberID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurring closures")
	}
	rule := &models.RecurringClosure{
		BarberEmail: barber.Email,
		ClosedDays:  pq.Int64Array(uniqueDays(req.ClosedDays)),
		UpdatedBy:   actor.Email,
	}
	if err := s.store.UpsertRecurring(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save recurring closures")
	}
	s.availability.Invalidate(ctx, barber.ID)
	return rule, nil
}

// ListAdhoc returns ad-hoc closures of a barber in a date range.
func (s *ClosureService) ListAdhoc(ctx context.Context, barberID string, filter dto.ClosureRangeFilter, actor *models.JWTClaims) ([]models.BarberClosure, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "from and to must be YYYY-MM-DD")
	}
	if filter.From > filter.To {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	barber, err := s.authorized(ctx, barberID, actor)
	if err != nil {
		return nil, err
	}
	closures, err := s.store.ListAdhocRange(ctx, barber.Email, filter.From, filter.To)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list closures")
	}
	return closures, nil
}

// CreateAdhoc closes a date, or half of it, for a barber. Repeating an existing closure is a no-op.
func (s *ClosureService) CreateAdhoc(ctx context.Context, barberID string, req dto.CreateClosureRequest, actor *models.JWTClaims) (*dto.CreateClosureResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid closure payload")
	}
	barber, err := s.authorized(ctx, barberID, actor)
	if err != nil {
		return nil, err
	}
	created, err := s.store.CreateAdhoc(ctx, &models.BarberClosure{
		BarberEmail: barber.Email,
		ClosureDate: req.Date,
		ClosureType: models.ClosureType(req.Type),
		Reason:      req.Reason,
		CreatedBy:   actor.Email,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create closure")
	}
	s.availability.Invalidate(ctx, barber.ID)
	return &dto.CreateClosureResult{Created: created}, nil
}

// DeleteAdhoc re-opens a date for a barber.
func (s *ClosureService) DeleteAdhoc(ctx context.Context, barberID string, req dto.DeleteClosureRequest, actor *models.JWTClaims) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid closure selector")
	}
	barber, err := s.authorized(ctx, barberID, actor)
	if err != nil {
		return err
	}
	removed, err := s.store.DeleteAdhoc(ctx, barber.Email, req.Date, models.ClosureType(req.Type))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete closure")
	}
	if removed == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "closure not found")
	}
	s.availability.Invalidate(ctx, barber.ID)
	return nil
}

// SyncRecurringClosures materialises the recurring rules of every barber as full day ad-hoc closures
// for days dates starting at from. Dates that already carry an ad-hoc row keep it alone: ad-hoc rows
// override the recurring rule, including partial reopens.
func (s *ClosureService) SyncRecurringClosures(ctx context.Context, from time.Time, days int) (*dto.SyncClosuresResult, error) {
	if days <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "days must be positive")
	}
	rules, err := s.store.ListRecurring(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recurring closures")
	}
	result := &dto.SyncClosuresResult{Barbers: len(rules)}
	last := from.AddDate(0, 0, days-1).Format(dateLayout)
	for _, rule := range rules {
		existing, err := s.store.ListAdhocRange(ctx, rule.BarberEmail, from.Format(dateLayout), last)
		if err != nil {
			return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ad-hoc closures")
		}
		overridden := make(map[string]struct{}, len(existing))
		for _, c := range existing {
			overridden[c.ClosureDate] = struct{}{}
		}

		inserted := 0
		for i := 0; i < days; i++ {
			day := from.AddDate(0, 0, i)
			if !containsDay(rule.ClosedDays, int64(day.Weekday())) {
				continue
			}
			if _, ok := overridden[day.Format(dateLayout)]; ok {
				continue
			}
			created, err := s.store.CreateAdhoc(ctx, &models.BarberClosure{
				BarberEmail: rule.BarberEmail,
				ClosureDate: day.Format(dateLayout),
				ClosureType: models.ClosureFull,
				Reason:      "recurring closure",
				CreatedBy:   "system",
			})
			if err != nil {
				return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to materialise recurring closure")
			}
			if created {
				inserted++
			}
		}
		if inserted > 0 {
			if barber, err := s.barbers.FindByEmail(ctx, rule.BarberEmail); err == nil {
				s.availability.Invalidate(ctx, barber.ID)
			}
		}
		result.Inserted += inserted
	}
	s.logger.Info("recurring closures synchronised", zap.Int("barbers", result.Barbers), zap.Int("inserted", result.Inserted))
	return result, nil
}

func (s *ClosureService) authorized(ctx context.Context, barberID string, actor *models.JWTClaims) (*models.Barber, error) {
	barber, err := loadBarber(ctx, s.barbers, barberID)
	if err != nil {
		return nil, err
	}
	if err := authorizeBarber(actor, barber); err != nil {
		return nil, err
	}
	return barber, nil
}

func uniqueDays(days []int64) []int64 {
	seen := make(map[int64]struct{}, len(days))
	out := make([]int64, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
