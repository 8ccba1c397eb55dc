package booking

import (
	"context"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
)

// ReserveTx is the view of the ledger inside one serializable reservation transaction.
type ReserveTx interface {
	DeleteExpiredPending(ctx context.Context, showID string, cutoff time.Time) (int64, error)
	GetShow(ctx context.Context, showID string) (entity.Show, error)
	// CountLiveReservations counts confirmed reservations plus pending ones created at or after cutoff.
	CountLiveReservations(ctx context.Context, showID string, cutoff time.Time) (int, error)
	ListBuyerLiveReservations(ctx context.Context, showID, buyerID string, cutoff time.Time) ([]entity.Reservation, error)
	InsertReservation(ctx context.Context, r entity.Reservation) error
}

// ConfirmTx is the view of the ledger inside one settlement transaction.
type ConfirmTx interface {
	// GetReservationForUpdate locks the reservation row until the transaction ends.
	GetReservationForUpdate(ctx context.Context, reservationID string) (entity.Reservation, error)
	MarkConfirmed(ctx context.Context, reservationID, orderRef, paymentRef string, confirmedAt time.Time) error
	// Publish stores the event so it is delivered only if the transaction commits.
	Publish(ctx context.Context, event any) error
}

type Ledger interface {
	// InReserveTx runs fn in a serializable transaction. Serialization failures and timeouts
	// are returned wrapping entity.ErrTransient.
	InReserveTx(ctx context.Context, fn func(ReserveTx) error) error
	InConfirmTx(ctx context.Context, fn func(ConfirmTx) error) error
	// DeletePendingReservation reports whether a pending reservation owned by buyerID was deleted.
	DeletePendingReservation(ctx context.Context, reservationID, buyerID string) (bool, error)
	DeleteExpiredPending(ctx context.Context, showID string, cutoff time.Time) (int64, error)
	DeleteAllExpiredPending(ctx context.Context, cutoff time.Time) (int64, error)
}

type ShowStore interface {
	Add(ctx context.Context, show entity.Show) error
	// Update refuses with entity.ErrConflict to shrink total seats below the live reservations.
	Update(ctx context.Context, show entity.Show, cutoff time.Time) error
	// Delete removes the show together with its reservations.
	Delete(ctx context.Context, showID string) error
	Get(ctx context.Context, showID string) (entity.Show, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]entity.ShowAvailability, error)
	ListAll(ctx context.Context) ([]entity.ShowAvailability, error)
}

type ReservationReader interface {
	Get(ctx context.Context, reservationID string) (entity.BuyerReservation, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]entity.BuyerReservation, error)
	ListByShow(ctx context.Context, showID string) ([]entity.Reservation, error)
	SalesStats(ctx context.Context, recent int) (entity.SalesStats, error)
}

// PastShowRemover deletes shows that already started, with their reservations.
type PastShowRemover interface {
	DeletePast(ctx context.Context, now time.Time) (int64, error)
}

// AttemptLimiter counts attempts per key. The counters are owned by the limiter, not the engine.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
