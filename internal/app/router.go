package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/handler"
	"github.com/noah-isme/barbershop-api/internal/middleware"
	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/config"
	"github.com/noah-isme/barbershop-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/barbershop-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/barbershop-api/pkg/middleware/requestid"
)

// NewRouter mounts every route of the API on a fresh gin engine.
func NewRouter(cfg *config.Config, svcs *Services, logr *zap.Logger, checks map[string]handler.ReadinessCheck) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svcs.Metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(svcs.Metrics, checks, logr)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler()
	availabilityHandler := handler.NewAvailabilityHandler(svcs.Availability)
	bookingHandler := handler.NewBookingHandler(svcs.Bookings)
	closureHandler := handler.NewClosureHandler(svcs.Closures)
	waitlistHandler := handler.NewWaitlistHandler(svcs.Waitlist)
	catalogHandler := handler.NewCatalogHandler(svcs.Catalog)
	exportHandler := handler.NewExportHandler(svcs.Exports)
	adminHandler := handler.NewAdminHandler(svcs.Schedules, svcs.Closures, svcs.Waitlist)

	audit := logr.Named("audit")
	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireStaff()

	api := r.Group(cfg.APIPrefix)

	public := api.Group("")
	public.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	public.GET("/barbers", catalogHandler.ListBarbers)
	public.GET("/services", catalogHandler.ListServices)
	public.GET("/barbers/:id/slots", availabilityHandler.Slots)
	public.POST("/availability/batch", availabilityHandler.Batch)
	public.POST("/bookings", middleware.OptionalJWT(svcs.Auth), middleware.Audit(audit, "booking.create"), bookingHandler.Create)

	secured := api.Group("")
	secured.Use(middleware.JWT(svcs.Auth))
	secured.GET("/auth/me", authHandler.Me)

	secured.GET("/bookings/:id", bookingHandler.Get)
	secured.POST("/bookings/:id/cancel", middleware.Audit(audit, "booking.cancel"), bookingHandler.Cancel)
	secured.GET("/barbers/:id/bookings", staff, bookingHandler.ListForBarber)

	secured.GET("/settings/closures", closureHandler.Settings)
	secured.PUT("/settings/closures", admin, middleware.Audit(audit, "closures.settings.update"), closureHandler.UpdateSettings)
	secured.GET("/barbers/:id/recurring-closures", staff, closureHandler.Recurring)
	secured.PUT("/barbers/:id/recurring-closures", staff, middleware.Audit(audit, "closures.recurring.update"), closureHandler.UpdateRecurring)
	secured.GET("/barbers/:id/closures", staff, closureHandler.List)
	secured.POST("/barbers/:id/closures", staff, middleware.Audit(audit, "closures.adhoc.create"), closureHandler.Create)
	secured.DELETE("/barbers/:id/closures", staff, middleware.Audit(audit, "closures.adhoc.delete"), closureHandler.Delete)

	secured.POST("/waitlist", middleware.Audit(audit, "waitlist.join"), waitlistHandler.Join)
	secured.GET("/barbers/:id/waitlist", staff, waitlistHandler.List)
	secured.POST("/waitlist/:id/accept", middleware.Audit(audit, "waitlist.accept"), waitlistHandler.Accept)
	secured.POST("/waitlist/:id/decline", middleware.Audit(audit, "waitlist.decline"), waitlistHandler.Decline)

	secured.POST("/barbers", admin, middleware.Audit(audit, "barbers.create"), catalogHandler.CreateBarber)
	secured.PATCH("/barbers/:id/active", admin, middleware.Audit(audit, "barbers.active"), catalogHandler.SetBarberActive)
	secured.POST("/services", admin, middleware.Audit(audit, "services.create"), catalogHandler.CreateService)

	secured.GET("/barbers/:id/day-sheet", staff, exportHandler.DaySheet)
	secured.GET("/barbers/:id/schedule", staff, adminHandler.Schedule)

	adminGroup := secured.Group("/admin")
	adminGroup.Use(admin)
	adminGroup.GET("/metrics/summary", metricsHandler.Summary)
	adminGroup.POST("/schedules/regenerate", middleware.Audit(audit, "schedules.regenerate"), adminHandler.RegenerateSchedules)
	adminGroup.POST("/closures/sync", middleware.Audit(audit, "closures.sync"), adminHandler.SyncClosures)
	adminGroup.POST("/waitlist/expire", middleware.Audit(audit, "waitlist.expire"), adminHandler.ExpireOffers)

	return r
}
