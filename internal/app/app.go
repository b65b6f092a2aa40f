package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okareva/tably/internal/config"
	"github.com/okareva/tably/internal/postgres"
	redisx "github.com/okareva/tably/internal/redis"
	postgresrepo "github.com/okareva/tably/internal/repository/postgres"
	redisrepo "github.com/okareva/tably/internal/repository/redis"
	"github.com/okareva/tably/internal/service"
	"github.com/okareva/tably/internal/service/availability"
	"github.com/okareva/tably/internal/service/hold"
	httpgin "github.com/okareva/tably/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	holds      *hold.Service
	pubsub     *redisx.AvailabilityPubSub
	sweepEvery time.Duration
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if err := postgres.Migrate(context.Background(), pgxPool); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisx.NewAvailabilityPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, redisx.KeyRateLimitPrefix("holds"), 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Initialize services
	services := service.NewServices(store, cache, pubsub, limiter, service.Config{
		Availability: availability.Config{
			LookaheadDays:      cfg.Booking.LookaheadDays,
			DefaultDurationMin: cfg.Booking.DefaultDurationMin,
			LimitedMax:         cfg.Booking.LimitedMax,
			DatesTTL:           time.Duration(cfg.Booking.DatesCacheTTLSec) * time.Second,
			SlotsTTL:           time.Duration(cfg.Booking.SlotsCacheTTLSec) * time.Second,
		},
		Hold: hold.Config{
			TTL:                time.Duration(cfg.Booking.HoldTTLSec) * time.Second,
			Extend:             time.Duration(cfg.Booking.HoldExtendSec) * time.Second,
			DefaultDurationMin: cfg.Booking.DefaultDurationMin,
		},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		holds:      services.Hold,
		pubsub:     pubsub,
		sweepEvery: time.Duration(cfg.Booking.SweepIntervalSec) * time.Second,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Expired-hold sweeper. Availability reads already treat expired
	// holds as free, so this is housekeeping, not correctness.
	g.Go(func() error {
		ticker := time.NewTicker(a.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				n, err := a.holds.Expire(gCtx)
				if err != nil {
					a.logger.Error("hold sweep failed", "error", err)
					continue
				}
				if n > 0 {
					a.logger.Info("swept expired holds", "count", n)
				}
			}
		}
	})

	// Availability-change feed; the dashboard gateway consumes the same
	// channel, this subscription gives operators a server-side trace.
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, venueID int64, date string) {
			a.logger.Debug("availability changed", "venue_id", venueID, "date", date)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("availability subscription ended", "error", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
