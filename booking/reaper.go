package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
)

// Reaper releases seats held by abandoned reservations.
type Reaper struct {
	ledger Ledger
	shows  PastShowRemover
	cfg    Config
}

// NewReaper returns a reaper. shows may be nil, in which case Run leaves past shows alone.
func NewReaper(ledger Ledger, shows PastShowRemover, cfg Config) Reaper {
	return Reaper{
		ledger: ledger,
		shows:  shows,
		cfg:    cfg.withDefaults(),
	}
}

// Sweep deletes the show's pending reservations older than the hold window.
func (r Reaper) Sweep(ctx context.Context, showID string) (int64, error) {
	n, err := r.ledger.DeleteExpiredPending(ctx, showID, r.cfg.cutoff(r.cfg.Now()))
	if err != nil {
		return 0, fmt.Errorf("sweeping show %s: %w", showID, err)
	}

	return n, nil
}

func (r Reaper) SweepAll(ctx context.Context) (int64, error) {
	n, err := r.ledger.DeleteAllExpiredPending(ctx, r.cfg.cutoff(r.cfg.Now()))
	if err != nil {
		return 0, fmt.Errorf("sweeping all shows: %w", err)
	}

	return n, nil
}

// Cancel deletes the buyer's pending reservation. Confirmed, missing or foreign
// reservations are left untouched and no error is returned.
func (r Reaper) Cancel(ctx context.Context, reservationID string, buyer entity.Identity) error {
	if buyer.IsAnonymous() {
		return entity.ErrUnauthorized
	}
	reservationID, ok := canonicalID(reservationID)
	if !ok {
		return nil
	}

	deleted, err := r.ledger.DeletePendingReservation(ctx, reservationID, buyer.BuyerID)
	if err != nil {
		return fmt.Errorf("cancelling reservation: %w", err)
	}

	log.FromContext(ctx).WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"deleted":        deleted,
	}).Info("Reservation cancel handled")

	return nil
}

// Run sweeps every show each interval until ctx is done.
func (r Reaper) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r Reaper) runOnce(ctx context.Context) {
	logger := log.FromContext(ctx)

	n, err := r.SweepAll(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to sweep expired reservations")
	} else if n > 0 {
		logger.WithField("deleted", n).Info("Swept expired reservations")
	}

	if r.shows == nil {
		return
	}

	n, err = r.shows.DeletePast(ctx, r.cfg.Now())
	if err != nil {
		logger.WithError(err).Error("Failed to delete past shows")
	} else if n > 0 {
		logger.WithField("deleted", n).Info("Deleted past shows")
	}
}
