package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Show columns are aliased so sqlx scans them into entity.BuyerReservation.Show.
const buyerReservationQuery = `SELECT r.reservation_id, r.show_id, r.buyer_id, r.buyer_email,
		r.status, r.created_at, r.order_ref, r.payment_ref, r.confirmed_at,
		s.show_id AS "show.show_id", s.title AS "show.title", s.description AS "show.description",
		s.start_time AS "show.start_time", s.price AS "show.price", s.total_seats AS "show.total_seats",
		s.live_enabled AS "show.live_enabled", s.live_link AS "show.live_link",
		s.created_at AS "show.created_at"
	FROM reservations r
	JOIN shows s ON s.show_id = r.show_id`

type ReservationRepo struct {
	db *sqlx.DB
}

func NewReservationRepo(db *sqlx.DB) ReservationRepo {
	return ReservationRepo{
		db: db,
	}
}

func (r ReservationRepo) Get(ctx context.Context, reservationID string) (entity.BuyerReservation, error) {
	var reservation entity.BuyerReservation
	err := r.db.GetContext(ctx, &reservation, buyerReservationQuery+` WHERE r.reservation_id = $1`, reservationID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.BuyerReservation{}, fmt.Errorf("reservation %s: %w", reservationID, entity.ErrNotFound)
	}
	if err != nil {
		return entity.BuyerReservation{}, fmt.Errorf("selecting reservation: %w", err)
	}

	return reservation, nil
}

func (r ReservationRepo) ListByBuyer(ctx context.Context, buyerID string) ([]entity.BuyerReservation, error) {
	reservations := []entity.BuyerReservation{}
	err := r.db.SelectContext(ctx, &reservations, buyerReservationQuery+`
		WHERE r.buyer_id = $1
		ORDER BY r.created_at DESC`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("selecting reservations: %w", err)
	}

	return reservations, nil
}

func (r ReservationRepo) ListByShow(ctx context.Context, showID string) ([]entity.Reservation, error) {
	reservations := []entity.Reservation{}
	err := r.db.SelectContext(ctx, &reservations, `SELECT `+reservationColumns+` FROM reservations
		WHERE show_id = $1
		ORDER BY created_at`, showID)
	if err != nil {
		return nil, fmt.Errorf("selecting reservations: %w", err)
	}

	return reservations, nil
}

// SalesStats sums show prices over confirmed reservations and returns the most recent sales.
func (r ReservationRepo) SalesStats(ctx context.Context, recent int) (entity.SalesStats, error) {
	var stats entity.SalesStats
	err := r.db.QueryRowxContext(ctx, `SELECT coalesce(sum(s.price), 0), count(*)
		FROM reservations r
		JOIN shows s ON s.show_id = r.show_id
		WHERE r.status = 'CONFIRMED'`).Scan(&stats.Revenue, &stats.TicketsSold)
	if err != nil {
		return entity.SalesStats{}, fmt.Errorf("summing sales: %w", err)
	}

	stats.RecentSales = []entity.Sale{}
	err = r.db.SelectContext(ctx, &stats.RecentSales, `SELECT r.reservation_id, r.buyer_email, s.title,
			s.price, r.confirmed_at
		FROM reservations r
		JOIN shows s ON s.show_id = r.show_id
		WHERE r.status = 'CONFIRMED'
		ORDER BY r.confirmed_at DESC
		LIMIT $1`, recent)
	if err != nil {
		return entity.SalesStats{}, fmt.Errorf("selecting recent sales: %w", err)
	}

	return stats, nil
}
