package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

const (
	availabilityCachePrefix = "avail"
	// generation counters live outside the avail:* keyspace so pattern deletes keep them.
	availabilityGenPrefix = "availgen"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Counters(ctx context.Context, keys ...string) ([]int64, error)
	Incr(ctx context.Context, key string) error
	SetGuarded(ctx context.Context, key string, value interface{}, ttl time.Duration, guards []string, expected []int64) (bool, error)
}

// CacheGeneration snapshots the invalidation counters of one barber. A day composed after the
// snapshot is stored only if no invalidation ran in between. The zero value never stores.
type CacheGeneration struct {
	values []int64
}

// CacheService keeps composed availability days keyed by barber and date.
// Backend failures are logged and treated as misses; the stores stay authoritative.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service. A disabled service never hits and never writes.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Day returns the cached availability of a barber on a date.
func (s *CacheService) Day(ctx context.Context, barberID, date string) (*models.DateAvailability, bool) {
	if !s.Enabled() {
		return nil, false
	}
	key := dayKey(barberID, date)
	var day models.DateAvailability
	start := time.Now()
	err := s.repo.Get(ctx, key, &day)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("availability cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	day.Date = date
	day.State = models.DateComposed
	return &day, true
}

// Generation takes the snapshot to pass to StoreDay. Take it before reading the stores.
func (s *CacheService) Generation(ctx context.Context, barberID string) CacheGeneration {
	if !s.Enabled() {
		return CacheGeneration{}
	}
	values, err := s.repo.Counters(ctx, generationKeys(barberID)...)
	if err != nil {
		s.logger.Warn("availability cache generation read failed", zap.String("barber_id", barberID), zap.Error(err))
		return CacheGeneration{}
	}
	return CacheGeneration{values: values}
}

// StoreDay caches a composed day unless an invalidation ran after gen was taken. Failed days are never stored.
func (s *CacheService) StoreDay(ctx context.Context, barberID string, day *models.DateAvailability, gen CacheGeneration) {
	if !s.Enabled() || day == nil || day.Error || gen.values == nil {
		return
	}
	key := dayKey(barberID, day.Date)
	start := time.Now()
	stored, err := s.repo.SetGuarded(ctx, key, day, s.ttl, generationKeys(barberID), gen.values)
	s.metrics.ObserveCacheWrite(time.Since(start))
	switch {
	case err != nil:
		s.logger.Warn("availability cache write failed", zap.String("key", key), zap.Error(err))
	case !stored:
		s.logger.Debug("availability cache write skipped, invalidated meanwhile", zap.String("key", key))
	}
}

// ForgetBarber drops every cached day of one barber.
func (s *CacheService) ForgetBarber(ctx context.Context, barberID string) {
	s.forget(ctx, generationKey(barberID), fmt.Sprintf("%s:%s:*", availabilityCachePrefix, barberID))
}

// ForgetAll drops the cached days of every barber.
func (s *CacheService) ForgetAll(ctx context.Context) {
	s.forget(ctx, generationKey(""), availabilityCachePrefix+":*")
}

// forget bumps the generation before deleting, so a write that read the old generation either
// lands before the delete or is rejected.
func (s *CacheService) forget(ctx context.Context, genKey, pattern string) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.Incr(ctx, genKey); err != nil {
		s.logger.Warn("availability cache generation bump failed", zap.String("key", genKey), zap.Error(err))
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// generationKey returns the counter of one barber, or the shop wide counter for an empty id.
func generationKey(barberID string) string {
	if barberID == "" {
		return availabilityGenPrefix + ":all"
	}
	return availabilityGenPrefix + ":" + barberID
}

func generationKeys(barberID string) []string {
	return []string{generationKey(""), generationKey(barberID)}
}

func dayKey(barberID, date string) string {
	return fmt.Sprintf("%s:%s:%s", availabilityCachePrefix, barberID, date)
}
