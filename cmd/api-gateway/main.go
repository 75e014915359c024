package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/barbershop-api/api/swagger"
	"github.com/noah-isme/barbershop-api/internal/app"
	"github.com/noah-isme/barbershop-api/internal/handler"
	"github.com/noah-isme/barbershop-api/pkg/cache"
	"github.com/noah-isme/barbershop-api/pkg/config"
	"github.com/noah-isme/barbershop-api/pkg/database"
	"github.com/noah-isme/barbershop-api/pkg/logger"
)

// @title Barbershop API
// @version 1.0.0
// @description Slot availability, bookings, closures and waitlist for a barber shop
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcs := app.NewServices(cfg, db, rdb, logr)
	// Detached from the signal context so Stop can drain queued offers after in-flight requests finish.
	svcs.Start(context.Background())
	defer svcs.Stop()
	go svcs.RunWaitlistSweep(ctx, cfg.Waitlist.SweepInterval, logr.Named("waitlist-sweep"))

	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
		"redis":    func(ctx context.Context) error { return cache.Ping(ctx, rdb) },
	}
	router := app.NewRouter(cfg, svcs, logr, checks)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "timezone", cfg.Location().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
