package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/booking"
	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/AkshatJangid787/concert-ticket-booking/message"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const reservationColumns = `reservation_id, show_id, buyer_id, buyer_email, status, created_at,
	order_ref, payment_ref, confirmed_at`

type LedgerConfig struct {
	// LockTimeout bounds each wait for a row lock inside a reservation transaction.
	LockTimeout time.Duration
	// StatementTimeout bounds each statement inside a reservation transaction.
	StatementTimeout time.Duration
}

// Ledger is the Postgres implementation of booking.Ledger.
type Ledger struct {
	db     *sqlx.DB
	logger watermill.LoggerAdapter
	cfg    LedgerConfig
}

func NewLedger(db *sqlx.DB, logger watermill.LoggerAdapter, cfg LedgerConfig) Ledger {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 3 * time.Second
	}
	if cfg.StatementTimeout <= 0 {
		cfg.StatementTimeout = 5 * time.Second
	}

	return Ledger{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}
}

func (l Ledger) InReserveTx(ctx context.Context, fn func(booking.ReserveTx) error) error {
	tx, err := l.db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return classify(fmt.Errorf("beginning transaction: %w", err))
	}

	_, err = tx.ExecContext(ctx, `SELECT set_config('lock_timeout', $1, true),
		set_config('statement_timeout', $2, true)`,
		milliseconds(l.cfg.LockTimeout), milliseconds(l.cfg.StatementTimeout))
	if err != nil {
		return classify(errors.Join(fmt.Errorf("setting timeouts: %w", err), tx.Rollback()))
	}

	if err := fn(reserveTx{tx: tx}); err != nil {
		return classify(errors.Join(err, tx.Rollback()))
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("committing transaction: %w", err))
	}

	return nil
}

func (l Ledger) InConfirmTx(ctx context.Context, fn func(booking.ConfirmTx) error) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("beginning transaction: %w", err))
	}

	if err := fn(confirmTx{tx: tx, logger: l.logger}); err != nil {
		return classify(errors.Join(err, tx.Rollback()))
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("committing transaction: %w", err))
	}

	return nil
}

func (l Ledger) DeletePendingReservation(ctx context.Context, reservationID, buyerID string) (bool, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM reservations
		WHERE reservation_id = $1 AND status = 'PENDING' AND buyer_id = $2`,
		reservationID, buyerID)
	if err != nil {
		return false, classify(fmt.Errorf("executing delete query: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return n == 1, nil
}

func (l Ledger) DeleteExpiredPending(ctx context.Context, showID string, cutoff time.Time) (int64, error) {
	n, err := deleteExpiredPending(ctx, l.db, showID, cutoff)
	return n, classify(err)
}

func (l Ledger) DeleteAllExpiredPending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM reservations
		WHERE status = 'PENDING' AND created_at < $1`, cutoff)
	if err != nil {
		return 0, classify(fmt.Errorf("executing delete query: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return n, nil
}

func deleteExpiredPending(ctx context.Context, db sqlx.ExecerContext, showID string, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM reservations
		WHERE show_id = $1 AND status = 'PENDING' AND created_at < $2`, showID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("executing delete query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return n, nil
}

func countLiveReservations(ctx context.Context, db sqlx.QueryerContext, showID string, cutoff time.Time) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, db, &n, `SELECT count(*) FROM reservations
		WHERE show_id = $1 AND (status = 'CONFIRMED' OR created_at >= $2)`, showID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("counting live reservations: %w", err)
	}

	return n, nil
}

type reserveTx struct {
	tx *sqlx.Tx
}

func (t reserveTx) DeleteExpiredPending(ctx context.Context, showID string, cutoff time.Time) (int64, error) {
	return deleteExpiredPending(ctx, t.tx, showID, cutoff)
}

func (t reserveTx) GetShow(ctx context.Context, showID string) (entity.Show, error) {
	return getShow(ctx, t.tx, showID)
}

func (t reserveTx) CountLiveReservations(ctx context.Context, showID string, cutoff time.Time) (int, error) {
	return countLiveReservations(ctx, t.tx, showID, cutoff)
}

func (t reserveTx) ListBuyerLiveReservations(ctx context.Context, showID, buyerID string, cutoff time.Time) ([]entity.Reservation, error) {
	var reservations []entity.Reservation
	err := t.tx.SelectContext(ctx, &reservations, `SELECT `+reservationColumns+` FROM reservations
		WHERE show_id = $1 AND buyer_id = $2 AND (status = 'CONFIRMED' OR created_at >= $3)
		ORDER BY created_at DESC`, showID, buyerID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("selecting buyer reservations: %w", err)
	}

	return reservations, nil
}

func (t reserveTx) InsertReservation(ctx context.Context, r entity.Reservation) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO reservations
		(reservation_id, show_id, buyer_id, buyer_email, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		r.ID, r.ShowID, r.BuyerID, r.BuyerEmail, r.Status, r.CreatedAt)
	return err
}

type confirmTx struct {
	tx     *sqlx.Tx
	logger watermill.LoggerAdapter
}

func (t confirmTx) GetReservationForUpdate(ctx context.Context, reservationID string) (entity.Reservation, error) {
	var r entity.Reservation
	err := t.tx.GetContext(ctx, &r, `SELECT `+reservationColumns+` FROM reservations
		WHERE reservation_id = $1 FOR UPDATE`, reservationID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Reservation{}, fmt.Errorf("reservation %s: %w", reservationID, entity.ErrNotFound)
	}
	if err != nil {
		return entity.Reservation{}, fmt.Errorf("selecting reservation: %w", err)
	}

	return r, nil
}

func (t confirmTx) MarkConfirmed(ctx context.Context, reservationID, orderRef, paymentRef string, confirmedAt time.Time) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE reservations
		SET status = 'CONFIRMED', order_ref = $2, payment_ref = $3, confirmed_at = $4
		WHERE reservation_id = $1 AND status = 'PENDING'`,
		reservationID, orderRef, paymentRef, confirmedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("buyer already holds a confirmed reservation for the show: %w", entity.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("executing update query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected exec result: %d rows affected", n)
	}

	return nil
}

func (t confirmTx) Publish(ctx context.Context, event any) error {
	return message.PublishInTx(ctx, event, t.tx.Tx, t.logger)
}

func milliseconds(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
