package booking

import (
	"context"
	"fmt"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/AkshatJangid787/concert-ticket-booking/event"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
)

const maxRefLength = 255

type ProofVerifier interface {
	Verify(orderRef, paymentRef, proof string) bool
}

// PaymentCallback is what the payment gateway reports for a reservation.
type PaymentCallback struct {
	ReservationID string `json:"reservation_id"`
	OrderRef      string `json:"order_id"`
	PaymentRef    string `json:"payment_id"`
	Proof         string `json:"signature"`
}

func (c PaymentCallback) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"reservation_id", c.ReservationID},
		{"order_id", c.OrderRef},
		{"payment_id", c.PaymentRef},
		{"signature", c.Proof},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", entity.ErrInvalidPayload, f.name)
		}
		if len(f.value) > maxRefLength {
			return fmt.Errorf("%w: %s is too long", entity.ErrInvalidPayload, f.name)
		}
	}

	if _, ok := canonicalID(c.ReservationID); !ok {
		return fmt.Errorf("%w: reservation_id must be a UUID", entity.ErrInvalidPayload)
	}

	return nil
}

// Verifier settles reservations against verified gateway callbacks.
type Verifier struct {
	ledger Ledger
	proofs ProofVerifier
	cfg    Config
}

func NewVerifier(ledger Ledger, proofs ProofVerifier, cfg Config) Verifier {
	return Verifier{
		ledger: ledger,
		proofs: proofs,
		cfg:    cfg.withDefaults(),
	}
}

// Confirm marks the reservation as paid. Replaying a callback with the same payment
// reference succeeds without side effects.
func (v Verifier) Confirm(ctx context.Context, callback PaymentCallback) error {
	if err := callback.Validate(); err != nil {
		return err
	}
	callback.ReservationID, _ = canonicalID(callback.ReservationID)

	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"reservation_id": callback.ReservationID,
		"payment_ref":    callback.PaymentRef,
	})

	if !v.proofs.Verify(callback.OrderRef, callback.PaymentRef, callback.Proof) {
		logger.Info("Payment proof rejected")
		return entity.ErrSignatureInvalid
	}

	replayed := false
	err := v.ledger.InConfirmTx(ctx, func(tx ConfirmTx) error {
		r, err := tx.GetReservationForUpdate(ctx, callback.ReservationID)
		if err != nil {
			return err
		}

		if r.IsConfirmed() {
			if r.PaymentRef != nil && *r.PaymentRef == callback.PaymentRef {
				replayed = true
				return nil
			}
			return fmt.Errorf("reservation already paid with another payment: %w", entity.ErrConflict)
		}

		// An expired hold is gone whether or not a sweep has deleted it yet.
		if r.CreatedAt.Before(v.cfg.cutoff(v.cfg.Now())) {
			return fmt.Errorf("reservation %s hold expired: %w", r.ID, entity.ErrNotFound)
		}

		confirmedAt := v.cfg.Now()
		if err := tx.MarkConfirmed(ctx, r.ID, callback.OrderRef, callback.PaymentRef, confirmedAt); err != nil {
			return fmt.Errorf("marking reservation confirmed: %w", err)
		}

		if err := tx.Publish(ctx, event.NewReservationConfirmed(r, callback.PaymentRef, confirmedAt)); err != nil {
			return fmt.Errorf("publishing reservation confirmed: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if replayed {
		logger.Info("Payment callback replayed")
	} else {
		logger.Info("Reservation confirmed")
	}

	return nil
}
