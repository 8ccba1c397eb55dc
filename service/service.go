package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/auth"
	"github.com/AkshatJangid787/concert-ticket-booking/booking"
	"github.com/AkshatJangid787/concert-ticket-booking/config"
	"github.com/AkshatJangid787/concert-ticket-booking/db"
	"github.com/AkshatJangid787/concert-ticket-booking/http"
	"github.com/AkshatJangid787/concert-ticket-booking/message"
	"github.com/AkshatJangid787/concert-ticket-booking/payment"
	"github.com/AkshatJangid787/concert-ticket-booking/ratelimit"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	forwarder     *message.Forwarder
	msgRouter     *message.Router
	httpRouter    *echo.Echo
	reaper        booking.Reaper
	addr          string
	sweepInterval time.Duration
}

func New(
	cfg *config.Config,
	logger watermill.LoggerAdapter,
	redisClient *redis.Client,
	dbConn *sqlx.DB,
	notifier message.Notifier,
) (*Service, error) {
	ledger := db.NewLedger(dbConn, logger, db.LedgerConfig{
		LockTimeout:      cfg.Booking.LockTimeout,
		StatementTimeout: cfg.Booking.StatementTimeout,
	})
	shows := db.NewShowRepo(dbConn)
	reservations := db.NewReservationRepo(dbConn)

	bookingCfg := booking.Config{
		HoldWindow:     cfg.Booking.HoldWindow,
		ReserveTimeout: cfg.Booking.ReserveTimeout,
		MaxRetries:     uint64(cfg.Booking.MaxRetries),
	}
	limiter := ratelimit.NewRedisLimiter(redisClient, cfg.Booking.AttemptLimit, cfg.Booking.AttemptWindow)
	reaper := booking.NewReaper(ledger, shows, bookingCfg)

	fwd, err := message.NewForwarder(dbConn, redisClient, logger)
	if err != nil {
		return nil, fmt.Errorf("creating forwarder: %w", err)
	}

	msgRouter, err := message.NewRouter(message.RouterDeps{
		Logger:      logger,
		Notifier:    notifier,
		RedisClient: redisClient,
		ShowReader:  shows,
	})
	if err != nil {
		return nil, fmt.Errorf("creating message router: %w", err)
	}

	httpRouter := http.NewRouter(http.Deps{
		Catalog:    booking.NewCatalog(shows, reservations, bookingCfg),
		Identities: auth.NewResolver(cfg.JWT.Secret),
		Queries:    booking.NewQueries(shows, reservations, bookingCfg),
		Reaper:     reaper,
		Reserver:   booking.NewEngine(ledger, limiter, bookingCfg),
		Verifier:   booking.NewVerifier(ledger, payment.NewSigner(cfg.Payment.KeySecret), bookingCfg),
	})

	return &Service{
		forwarder:     fwd,
		msgRouter:     msgRouter,
		httpRouter:    httpRouter,
		reaper:        reaper,
		addr:          cfg.Server.Addr,
		sweepInterval: cfg.Booking.SweepInterval,
	}, nil
}

func (s Service) Run(ctx context.Context) error {
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.forwarder.Run(runCtx); err != nil {
			return fmt.Errorf("running forwarder: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		if err := s.msgRouter.Run(runCtx); err != nil {
			return fmt.Errorf("running messaging router: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		if err := s.reaper.Run(runCtx, s.sweepInterval); err != nil {
			return fmt.Errorf("running reaper: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		// Wait for message router
		<-s.msgRouter.Running()

		logrus.WithField("addr", s.addr).Info("Starting HTTP server...")
		err := s.httpRouter.Start(s.addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logrus.Info("Shutting down HTTP server...")
		if err := s.httpRouter.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("waiting for shutdown: %w", err)
	}
	logrus.Info("Shutdown complete.")

	return nil
}
