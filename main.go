package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AkshatJangid787/concert-ticket-booking/clients"
	"github.com/AkshatJangid787/concert-ticket-booking/config"
	"github.com/AkshatJangid787/concert-ticket-booking/db"
	"github.com/AkshatJangid787/concert-ticket-booking/message"
	"github.com/AkshatJangid787/concert-ticket-booking/service"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	if cfg.IsProduction() {
		log.Init(logrus.InfoLevel)
	} else {
		log.Init(logrus.DebugLevel)
	}
	logger := watermill.NewStdLogger(false, false)

	if err := run(cfg, logger); err != nil {
		logger.Error("failed to run", err, nil)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger watermill.LoggerAdapter) error {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("failed to close redis connection", err, nil)
		}
	}()

	dbConn, err := sqlx.Open("postgres", cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close db connection", err, nil)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := db.InitialiseDB(ctx, dbConn); err != nil {
		return fmt.Errorf("initialising db: %w", err)
	}

	if err := message.InitialiseOutbox(dbConn, logger); err != nil {
		return fmt.Errorf("initialising outbox: %w", err)
	}

	var notifier message.Notifier = clients.LogMailer{}
	if cfg.Mail.APIKey != "" {
		notifier = clients.NewMailer(cfg.Mail.APIKey, cfg.Mail.FromEmail, cfg.Mail.FromName)
	}

	svc, err := service.New(cfg, logger, rdb, dbConn, notifier)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}

	return svc.Run(ctx)
}
