package app

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noah-isme/barbershop-api/internal/repository"
	"github.com/noah-isme/barbershop-api/internal/service"
	"github.com/noah-isme/barbershop-api/pkg/config"
	"github.com/noah-isme/barbershop-api/pkg/jobs"
)

// Services holds every wired service of the API.
type Services struct {
	Auth         *service.AuthService
	Metrics      *service.MetricsService
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
	Closures     *service.ClosureService
	Waitlist     *service.WaitlistService
	Catalog      *service.CatalogService
	Schedules    *service.ScheduleService
	Exports      *service.ExportService

	notifications *jobs.Queue
}

// NewServices wires repositories and services on top of the given stores.
func NewServices(cfg *config.Config, db *sqlx.DB, rdb *redis.Client, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := validator.New()
	metrics := service.NewMetricsService()

	barbers := repository.NewBarberRepository(db)
	catalog := repository.NewServiceRepository(db)
	bookings := repository.NewBookingRepository(db)
	closures := repository.NewClosureRepository(db)
	schedules := repository.NewScheduleRepository(db)
	waitlist := repository.NewWaitlistRepository(db)
	cacheRepo := repository.NewCacheRepository(rdb, logger)

	cache := service.NewCacheService(cacheRepo, metrics, cfg.Availability.CacheTTL, logger, cfg.Availability.CacheEnabled)
	availability := service.NewAvailabilityService(service.AvailabilityServiceParams{
		Barbers:  barbers,
		Closures: closures,
		Bookings: bookings,
		Cache:    cache,
		Metrics:  metrics,
		Logger:   logger.Named("availability"),
		Config: service.AvailabilityServiceConfig{
			MaxBatchDates:    cfg.Availability.MaxBatchDates,
			FetchConcurrency: cfg.Availability.FetchConcurrency,
		},
	})

	notifier := service.NewRedisNotifier(cacheRepo, cfg.Notify.Channel, metrics, logger.Named("notifier"))
	limit := rate.Inf
	if cfg.Notify.RatePerSec > 0 {
		limit = rate.Limit(cfg.Notify.RatePerSec)
	}
	queue := jobs.NewQueue("waitlist-notifications", notifier.Handle, jobs.QueueConfig{
		Workers:    cfg.Notify.Workers,
		MaxRetries: cfg.Notify.Retries,
		RetryDelay: 2 * time.Second,
		Limiter:    rate.NewLimiter(limit, cfg.Notify.Burst),
		OnDrop:     notifier.Dropped,
		Logger:     logger.Named("jobs"),
	})
	notifier.Attach(queue)

	waitlistSvc := service.NewWaitlistService(service.WaitlistServiceParams{
		Store:        waitlist,
		Barbers:      barbers,
		Availability: availability,
		Bookings:     bookings,
		Notifier:     notifier,
		Validator:    validate,
		Logger:       logger.Named("waitlist"),
		Config:       service.WaitlistServiceConfig{OfferTTL: cfg.Waitlist.OfferTTL, Location: cfg.Location()},
	})

	return &Services{
		Auth: service.NewAuthService(service.NewRoleResolver(cfg.Roles), service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			Issuer:            cfg.JWT.Issuer,
		}),
		Metrics:      metrics,
		Availability: availability,
		Bookings: service.NewBookingService(service.BookingServiceParams{
			Store:        bookings,
			Barbers:      barbers,
			Catalog:      catalog,
			Availability: availability,
			Waitlist:     waitlistSvc,
			Validator:    validate,
			Logger:       logger.Named("bookings"),
			Location:     cfg.Location(),
		}),
		Closures:      service.NewClosureService(closures, barbers, availability, validate, logger.Named("closures")),
		Waitlist:      waitlistSvc,
		Catalog:       service.NewCatalogService(barbers, catalog, availability, validate, logger.Named("catalog")),
		Schedules:     service.NewScheduleService(schedules, availability, barbers, cfg.Availability.MaxBatchDates, logger.Named("schedules")),
		Exports:       service.NewExportService(availability, bookings, barbers, logger.Named("exports")),
		notifications: queue,
	}
}

// Start launches the notification workers.
func (s *Services) Start(ctx context.Context) {
	s.notifications.Start(ctx)
}

// Stop drains the notification workers.
func (s *Services) Stop() {
	s.notifications.Stop()
}

// RunWaitlistSweep expires lapsed offers every interval until ctx is done.
func (s *Services) RunWaitlistSweep(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := s.Waitlist.ExpireOffers(ctx)
			if err != nil {
				logger.Warn("waitlist sweep failed", zap.Error(err))
				continue
			}
			if result.Expired > 0 || result.Stale > 0 {
				logger.Info("waitlist sweep", zap.Int("expired", result.Expired), zap.Int64("stale", result.Stale))
			}
		}
	}
}
