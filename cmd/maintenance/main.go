package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/app"
	"github.com/noah-isme/barbershop-api/pkg/cache"
	"github.com/noah-isme/barbershop-api/pkg/config"
	"github.com/noah-isme/barbershop-api/pkg/database"
	"github.com/noah-isme/barbershop-api/pkg/logger"
)

const usage = `usage: maintenance <command> [flags]

commands:
  sync-closures          materialise recurring closures as ad-hoc closures
  regenerate-schedules   rebuild barber_schedules rows
  expire-offers          expire lapsed waitlist offers and offer the next entry
`

type options struct {
	from   string
	days   int
	barber string
}

func parseFlags(command string, args []string) (options, error) {
	opts := options{}
	fs := pflag.NewFlagSet(command, pflag.ContinueOnError)
	fs.StringVar(&opts.from, "from", "", "first date of the horizon (YYYY-MM-DD, default today in the shop timezone)")
	fs.IntVar(&opts.days, "days", 30, "number of days in the horizon")
	fs.StringVar(&opts.barber, "barber", "", "limit regenerate-schedules to one barber")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.days <= 0 {
		return opts, fmt.Errorf("--days must be positive")
	}
	return opts, nil
}

func horizonStart(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", raw)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]
	opts, err := parseFlags(command, os.Args[2:])
	if err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	from, err := horizonStart(opts.from, cfg.Location())
	if err != nil {
		logr.Fatal("invalid --from", zap.String("from", opts.from), zap.Error(err))
	}

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
	svcs.Start(ctx)
	defer svcs.Stop()

	switch command {
	case "sync-closures":
		result, err := svcs.Closures.SyncRecurringClosures(ctx, from, opts.days)
		if err != nil {
			logr.Fatal("sync-closures failed", zap.Error(err))
		}
		logr.Info("recurring closures synced", zap.Int("barbers", result.Barbers), zap.Int("inserted", result.Inserted))
	case "regenerate-schedules":
		written, err := svcs.Schedules.RegenerateSchedules(ctx, opts.barber, from, opts.days)
		if err != nil {
			logr.Fatal("regenerate-schedules failed", zap.Error(err))
		}
		logr.Info("schedules regenerated", zap.String("barber", opts.barber), zap.Int("written", written))
	case "expire-offers":
		result, err := svcs.Waitlist.ExpireOffers(ctx)
		if err != nil {
			logr.Fatal("expire-offers failed", zap.Error(err))
		}
		logr.Info("offers expired", zap.Int("expired", result.Expired), zap.Int64("stale", result.Stale))
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}
