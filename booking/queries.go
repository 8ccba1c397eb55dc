package booking

import (
	"context"
	"fmt"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
)

// Queries serves read-only views of the ledger.
type Queries struct {
	shows        ShowStore
	reservations ReservationReader
	cfg          Config
}

func NewQueries(shows ShowStore, reservations ReservationReader, cfg Config) Queries {
	return Queries{
		shows:        shows,
		reservations: reservations,
		cfg:          cfg.withDefaults(),
	}
}

func (q Queries) ListUpcomingShows(ctx context.Context) ([]entity.ShowAvailability, error) {
	shows, err := q.shows.ListUpcoming(ctx, q.cfg.Now())
	if err != nil {
		return nil, fmt.Errorf("listing upcoming shows: %w", err)
	}

	return shows, nil
}

// ListBuyerReservations returns the buyer's confirmed and still held reservations, newest first.
func (q Queries) ListBuyerReservations(ctx context.Context, buyer entity.Identity) ([]entity.BuyerReservation, error) {
	if buyer.IsAnonymous() {
		return nil, entity.ErrUnauthorized
	}

	all, err := q.reservations.ListByBuyer(ctx, buyer.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("listing buyer reservations: %w", err)
	}

	cutoff := q.cfg.cutoff(q.cfg.Now())
	reservations := make([]entity.BuyerReservation, 0, len(all))
	for _, r := range all {
		if !r.IsConfirmed() && r.CreatedAt.Before(cutoff) {
			continue
		}
		reservations = append(reservations, q.withExpiry(r))
	}

	return reservations, nil
}

// GetReservation returns one of the buyer's reservations. Reservations of other buyers
// are reported as not found.
func (q Queries) GetReservation(ctx context.Context, buyer entity.Identity, reservationID string) (entity.BuyerReservation, error) {
	if buyer.IsAnonymous() {
		return entity.BuyerReservation{}, entity.ErrUnauthorized
	}
	id, ok := canonicalID(reservationID)
	if !ok {
		return entity.BuyerReservation{}, fmt.Errorf("reservation %q: %w", reservationID, entity.ErrNotFound)
	}
	reservationID = id

	r, err := q.reservations.Get(ctx, reservationID)
	if err != nil {
		return entity.BuyerReservation{}, err
	}
	if r.BuyerID != buyer.BuyerID {
		return entity.BuyerReservation{}, fmt.Errorf("reservation %s: %w", reservationID, entity.ErrNotFound)
	}

	return q.withExpiry(r), nil
}

func (q Queries) withExpiry(r entity.BuyerReservation) entity.BuyerReservation {
	if r.IsConfirmed() {
		r.ExpiresAt = nil
		return r
	}

	expiresAt := r.CreatedAt.Add(q.cfg.HoldWindow)
	r.ExpiresAt = &expiresAt

	return r
}
