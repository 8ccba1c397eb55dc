package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const showColumns = `show_id, title, description, start_time, price, total_seats,
	live_enabled, live_link, created_at`

type ShowRepo struct {
	db *sqlx.DB
}

func NewShowRepo(db *sqlx.DB) ShowRepo {
	return ShowRepo{
		db: db,
	}
}

func (r ShowRepo) Add(ctx context.Context, show entity.Show) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO shows
		(show_id, title, description, start_time, price, total_seats, live_enabled, live_link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		show.ID, show.Title, show.Description, show.StartTime, show.Price, show.TotalSeats,
		show.LiveEnabled, show.LiveLink, show.CreatedAt)
	return err
}

func (r ShowRepo) Get(ctx context.Context, showID string) (entity.Show, error) {
	return getShow(ctx, r.db, showID)
}

// Update replaces the editable fields of the show. Seats can not be reduced below the
// show's live reservations, counting pending ones created at or after cutoff.
func (r ShowRepo) Update(ctx context.Context, show entity.Show, cutoff time.Time) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := update(ctx, tx, show, cutoff); err != nil {
		return classify(errors.Join(err, tx.Rollback()))
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("committing transaction: %w", err))
	}

	return nil
}

func update(ctx context.Context, tx *sqlx.Tx, show entity.Show, cutoff time.Time) error {
	if show.TotalSeats != nil {
		live, err := countLiveReservations(ctx, tx, show.ID, cutoff)
		if err != nil {
			return err
		}
		if live > *show.TotalSeats {
			return fmt.Errorf("show has %d live reservations: %w", live, entity.ErrConflict)
		}
	}

	res, err := tx.ExecContext(ctx, `UPDATE shows
		SET title = $2, description = $3, start_time = $4, price = $5, total_seats = $6,
			live_enabled = $7, live_link = $8
		WHERE show_id = $1`,
		show.ID, show.Title, show.Description, show.StartTime, show.Price, show.TotalSeats,
		show.LiveEnabled, show.LiveLink)
	if err != nil {
		return fmt.Errorf("executing update query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("show %s: %w", show.ID, entity.ErrNotFound)
	}

	return nil
}

// Delete removes the show and its reservations in one transaction.
func (r ShowRepo) Delete(ctx context.Context, showID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	n, err := deleteShows(ctx, tx, `show_id = $1`, showID)
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if n == 0 {
		return errors.Join(fmt.Errorf("show %s: %w", showID, entity.ErrNotFound), tx.Rollback())
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// DeletePast removes shows that started before now, with their reservations.
func (r ShowRepo) DeletePast(ctx context.Context, now time.Time) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	n, err := deleteShows(ctx, tx, `start_time < $1`, now)
	if err != nil {
		return 0, errors.Join(err, tx.Rollback())
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return n, nil
}

func deleteShows(ctx context.Context, tx *sqlx.Tx, where string, arg any) (int64, error) {
	_, err := tx.ExecContext(ctx, `DELETE FROM reservations
		WHERE show_id IN (SELECT show_id FROM shows WHERE `+where+`)`, arg)
	if err != nil {
		return 0, fmt.Errorf("deleting reservations: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM shows WHERE `+where, arg)
	if err != nil {
		return 0, fmt.Errorf("deleting shows: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return n, nil
}

type showWithCount struct {
	entity.Show
	ConfirmedCount int `db:"confirmed_count"`
}

func (r ShowRepo) ListUpcoming(ctx context.Context, now time.Time) ([]entity.ShowAvailability, error) {
	return r.list(ctx, `WHERE s.start_time >= $1`, now)
}

func (r ShowRepo) ListAll(ctx context.Context) ([]entity.ShowAvailability, error) {
	return r.list(ctx, ``)
}

func (r ShowRepo) list(ctx context.Context, where string, args ...any) ([]entity.ShowAvailability, error) {
	var rows []showWithCount
	err := r.db.SelectContext(ctx, &rows, `SELECT s.show_id, s.title, s.description, s.start_time,
			s.price, s.total_seats, s.live_enabled, s.live_link, s.created_at,
			count(r.reservation_id) FILTER (WHERE r.status = 'CONFIRMED') AS confirmed_count
		FROM shows s
		LEFT JOIN reservations r ON r.show_id = s.show_id
		`+where+`
		GROUP BY s.show_id
		ORDER BY s.start_time`, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting shows: %w", err)
	}

	shows := make([]entity.ShowAvailability, 0, len(rows))
	for _, row := range rows {
		shows = append(shows, entity.NewShowAvailability(row.Show, row.ConfirmedCount))
	}

	return shows, nil
}

func getShow(ctx context.Context, db sqlx.QueryerContext, showID string) (entity.Show, error) {
	var show entity.Show
	err := sqlx.GetContext(ctx, db, &show, `SELECT `+showColumns+` FROM shows WHERE show_id = $1`, showID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Show{}, fmt.Errorf("show %s: %w", showID, entity.ErrNotFound)
	}
	if err != nil {
		return entity.Show{}, fmt.Errorf("selecting show: %w", err)
	}

	return show, nil
}
