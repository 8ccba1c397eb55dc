package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func InitialiseDB(ctx context.Context, db *sqlx.DB) error {
	if err := CreateShowsTable(ctx, db); err != nil {
		return fmt.Errorf("creating shows table: %w", err)
	}

	if err := CreateReservationsTable(ctx, db); err != nil {
		return fmt.Errorf("creating reservations table: %w", err)
	}

	return nil
}

func CreateShowsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS shows (
		show_id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_time TIMESTAMP WITH TIME ZONE NOT NULL,
		price NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
		total_seats INTEGER CHECK (total_seats > 0),
		live_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		live_link TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);`)
	return err
}

// CreateReservationsTable also creates the index that allows one confirmed reservation
// per buyer and show.
func CreateReservationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS reservations (
		reservation_id UUID PRIMARY KEY,
		show_id UUID NOT NULL REFERENCES shows (show_id) ON DELETE CASCADE,
		buyer_id VARCHAR(255) NOT NULL,
		buyer_email VARCHAR(255) NOT NULL,
		status VARCHAR(16) NOT NULL CHECK (status IN ('PENDING', 'CONFIRMED')),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		order_ref VARCHAR(255),
		payment_ref VARCHAR(255),
		confirmed_at TIMESTAMP WITH TIME ZONE
	);
	CREATE INDEX IF NOT EXISTS reservations_show_status_idx
		ON reservations (show_id, status, created_at);
	CREATE INDEX IF NOT EXISTS reservations_buyer_idx
		ON reservations (buyer_id, created_at DESC);
	CREATE UNIQUE INDEX IF NOT EXISTS reservations_one_confirmed_per_buyer_idx
		ON reservations (buyer_id, show_id) WHERE status = 'CONFIRMED';`)
	return err
}
