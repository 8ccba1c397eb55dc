package booking

import (
	"context"
	"fmt"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
)

const recentSalesLimit = 5

// Catalog is the operator's view of shows and sales.
type Catalog struct {
	shows        ShowStore
	reservations ReservationReader
	cfg          Config
}

func NewCatalog(shows ShowStore, reservations ReservationReader, cfg Config) Catalog {
	return Catalog{
		shows:        shows,
		reservations: reservations,
		cfg:          cfg.withDefaults(),
	}
}

func (c Catalog) CreateShow(ctx context.Context, operator entity.Identity, show entity.Show) (entity.Show, error) {
	if !operator.IsOperator() {
		return entity.Show{}, entity.ErrUnauthorized
	}
	if err := show.Validate(); err != nil {
		return entity.Show{}, err
	}

	show.ID = uuid.NewString()
	show.CreatedAt = c.cfg.Now()

	if err := c.shows.Add(ctx, show); err != nil {
		return entity.Show{}, fmt.Errorf("adding show: %w", err)
	}

	log.FromContext(ctx).WithField("show_id", show.ID).Info("Show created")

	return show, nil
}

// UpdateShow replaces the editable fields of an existing show.
func (c Catalog) UpdateShow(ctx context.Context, operator entity.Identity, show entity.Show) (entity.Show, error) {
	if !operator.IsOperator() {
		return entity.Show{}, entity.ErrUnauthorized
	}
	id, ok := canonicalID(show.ID)
	if !ok {
		return entity.Show{}, fmt.Errorf("show %q: %w", show.ID, entity.ErrNotFound)
	}
	show.ID = id
	if err := show.Validate(); err != nil {
		return entity.Show{}, err
	}

	if err := c.shows.Update(ctx, show, c.cfg.cutoff(c.cfg.Now())); err != nil {
		return entity.Show{}, err
	}

	updated, err := c.shows.Get(ctx, show.ID)
	if err != nil {
		return entity.Show{}, fmt.Errorf("getting updated show: %w", err)
	}

	return updated, nil
}

// DeleteShow deletes the show along with all its reservations.
func (c Catalog) DeleteShow(ctx context.Context, operator entity.Identity, showID string) error {
	if !operator.IsOperator() {
		return entity.ErrUnauthorized
	}
	id, ok := canonicalID(showID)
	if !ok {
		return fmt.Errorf("show %q: %w", showID, entity.ErrNotFound)
	}
	showID = id

	if err := c.shows.Delete(ctx, showID); err != nil {
		return err
	}

	log.FromContext(ctx).WithField("show_id", showID).Info("Show deleted")

	return nil
}

func (c Catalog) ListShows(ctx context.Context, operator entity.Identity) ([]entity.ShowAvailability, error) {
	if !operator.IsOperator() {
		return nil, entity.ErrUnauthorized
	}

	return c.shows.ListAll(ctx)
}

func (c Catalog) ListShowReservations(ctx context.Context, operator entity.Identity, showID string) ([]entity.Reservation, error) {
	if !operator.IsOperator() {
		return nil, entity.ErrUnauthorized
	}
	id, ok := canonicalID(showID)
	if !ok {
		return nil, fmt.Errorf("show %q: %w", showID, entity.ErrNotFound)
	}
	showID = id

	if _, err := c.shows.Get(ctx, showID); err != nil {
		return nil, err
	}

	return c.reservations.ListByShow(ctx, showID)
}

func (c Catalog) Stats(ctx context.Context, operator entity.Identity) (entity.SalesStats, error) {
	if !operator.IsOperator() {
		return entity.SalesStats{}, entity.ErrUnauthorized
	}

	return c.reservations.SalesStats(ctx, recentSalesLimit)
}
