package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

type capacityError struct {
	totalSeats int
	live       int
}

func (e capacityError) Error() string {
	return fmt.Sprintf("show is fully booked: total seats %d, live reservations %d", e.totalSeats, e.live)
}

func (e capacityError) Unwrap() error {
	return entity.ErrCapacityExceeded
}

// Engine admits or rejects reservations against the ledger.
type Engine struct {
	ledger  Ledger
	limiter AttemptLimiter
	cfg     Config
}

// NewEngine returns an engine. limiter may be nil to disable attempt counting.
func NewEngine(ledger Ledger, limiter AttemptLimiter, cfg Config) Engine {
	return Engine{
		ledger:  ledger,
		limiter: limiter,
		cfg:     cfg.withDefaults(),
	}
}

// Reserve holds one seat of the show for the buyer and returns the reservation ID.
//
// A buyer who still holds a live pending reservation for the show gets that reservation back
// rather than a second seat.
func (e Engine) Reserve(ctx context.Context, showID string, buyer entity.Identity) (string, error) {
	logger := log.FromContext(ctx).WithField("show_id", showID)

	if buyer.IsAnonymous() || buyer.IsOperator() {
		return "", entity.ErrUnauthorized
	}
	id, ok := canonicalID(showID)
	if !ok {
		return "", fmt.Errorf("show %q: %w", showID, entity.ErrNotFound)
	}
	showID = id

	if err := e.takeAttempt(ctx, showID, buyer); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.ReserveTimeout)
	defer cancel()

	var reservationID string
	attempt := 0
	op := func() error {
		attempt++
		id, err := e.reserveOnce(ctx, showID, buyer)
		if err == nil {
			reservationID = id
			return nil
		}
		if errors.Is(err, entity.ErrTransient) {
			logger.WithError(err).WithField("attempt", attempt).Info("Reservation transaction aborted, retrying")
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, e.cfg.MaxRetries), ctx))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("reserving seat: %w", errors.Join(entity.ErrTransient, err))
		}
		return "", err
	}

	logger.WithField("reservation_id", reservationID).Info("Seat reserved")

	return reservationID, nil
}

func (e Engine) takeAttempt(ctx context.Context, showID string, buyer entity.Identity) error {
	if e.limiter == nil {
		return nil
	}

	allowed, err := e.limiter.Allow(ctx, "reserve:"+buyer.BuyerID+":"+showID)
	if err != nil {
		log.FromContext(ctx).WithError(err).Error("Counting reservation attempt failed, allowing it")
		return nil
	}
	if !allowed {
		return entity.ErrTooManyAttempts
	}

	return nil
}

func (e Engine) reserveOnce(ctx context.Context, showID string, buyer entity.Identity) (string, error) {
	var reservationID string

	err := e.ledger.InReserveTx(ctx, func(tx ReserveTx) error {
		now := e.cfg.Now()
		cutoff := e.cfg.cutoff(now)

		if _, err := tx.DeleteExpiredPending(ctx, showID, cutoff); err != nil {
			return fmt.Errorf("sweeping expired reservations: %w", err)
		}

		show, err := tx.GetShow(ctx, showID)
		if err != nil {
			return err
		}

		own, err := tx.ListBuyerLiveReservations(ctx, showID, buyer.BuyerID, cutoff)
		if err != nil {
			return fmt.Errorf("listing buyer reservations: %w", err)
		}
		alreadyBooked := false
		pendingID := ""
		for _, r := range own {
			if r.IsConfirmed() {
				alreadyBooked = true
			} else {
				pendingID = r.ID
			}
		}
		if pendingID != "" && !alreadyBooked {
			reservationID = pendingID
			return nil
		}

		if show.TotalSeats != nil {
			live, err := tx.CountLiveReservations(ctx, showID, cutoff)
			if err != nil {
				return fmt.Errorf("counting live reservations: %w", err)
			}
			if live >= *show.TotalSeats {
				return capacityError{totalSeats: *show.TotalSeats, live: live}
			}
		}

		if alreadyBooked {
			return entity.ErrAlreadyBooked
		}

		r := entity.Reservation{
			ID:         uuid.NewString(),
			ShowID:     showID,
			BuyerID:    buyer.BuyerID,
			BuyerEmail: buyer.Email,
			Status:     entity.ReservationPending,
			CreatedAt:  now,
		}
		if err := tx.InsertReservation(ctx, r); err != nil {
			return fmt.Errorf("inserting reservation: %w", err)
		}
		reservationID = r.ID

		return nil
	})
	if err != nil {
		return "", err
	}

	return reservationID, nil
}
