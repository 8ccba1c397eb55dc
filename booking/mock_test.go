package booking_test

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/booking"
	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/shopspring/decimal"
)

type fakeClock struct {
	lock sync.Mutex
	now  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.lock.Lock()
	c.now = c.now.Add(d)
	c.lock.Unlock()
}

// MockLedger keeps the ledger in memory. Transactions run one at a time on a copy of
// the state which is kept only when the transaction function succeeds.
type MockLedger struct {
	lock         sync.Mutex
	shows        map[string]entity.Show
	reservations map[string]entity.Reservation
	Events       []any

	TransientFailures int
	ReserveTxCalls    int
}

func NewMockLedger() *MockLedger {
	return &MockLedger{
		shows:        map[string]entity.Show{},
		reservations: map[string]entity.Reservation{},
	}
}

type mockTx struct {
	shows        map[string]entity.Show
	reservations map[string]entity.Reservation
	events       []any
}

func (l *MockLedger) begin() *mockTx {
	return &mockTx{
		shows:        maps.Clone(l.shows),
		reservations: maps.Clone(l.reservations),
	}
}

func (l *MockLedger) commit(tx *mockTx) {
	l.shows = tx.shows
	l.reservations = tx.reservations
	l.Events = append(l.Events, tx.events...)
}

func (l *MockLedger) InReserveTx(ctx context.Context, fn func(booking.ReserveTx) error) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.ReserveTxCalls++
	if l.TransientFailures > 0 {
		l.TransientFailures--
		return fmt.Errorf("could not serialize access: %w", entity.ErrTransient)
	}

	tx := l.begin()
	if err := fn(tx); err != nil {
		return err
	}
	l.commit(tx)

	return nil
}

func (l *MockLedger) InConfirmTx(ctx context.Context, fn func(booking.ConfirmTx) error) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	tx := l.begin()
	if err := fn(tx); err != nil {
		return err
	}
	l.commit(tx)

	return nil
}

func (l *MockLedger) DeletePendingReservation(_ context.Context, reservationID, buyerID string) (bool, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	r, ok := l.reservations[reservationID]
	if !ok || r.IsConfirmed() || r.BuyerID != buyerID {
		return false, nil
	}
	delete(l.reservations, reservationID)

	return true, nil
}

func (l *MockLedger) DeleteExpiredPending(ctx context.Context, showID string, cutoff time.Time) (int64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	tx := l.begin()
	n, err := tx.DeleteExpiredPending(ctx, showID, cutoff)
	l.commit(tx)

	return n, err
}

func (l *MockLedger) DeleteAllExpiredPending(_ context.Context, cutoff time.Time) (int64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	var n int64
	for id, r := range l.reservations {
		if !r.IsConfirmed() && r.CreatedAt.Before(cutoff) {
			delete(l.reservations, id)
			n++
		}
	}

	return n, nil
}

func (l *MockLedger) Reservation(id string) (entity.Reservation, bool) {
	l.lock.Lock()
	defer l.lock.Unlock()

	r, ok := l.reservations[id]
	return r, ok
}

func (l *MockLedger) HasShow(showID string) bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	_, ok := l.shows[showID]
	return ok
}

func (l *MockLedger) ReservationCount(showID string) int {
	l.lock.Lock()
	defer l.lock.Unlock()

	n := 0
	for _, r := range l.reservations {
		if r.ShowID == showID {
			n++
		}
	}
	return n
}

func (l *MockLedger) EventCount() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.Events)
}

func (tx *mockTx) DeleteExpiredPending(_ context.Context, showID string, cutoff time.Time) (int64, error) {
	var n int64
	for id, r := range tx.reservations {
		if r.ShowID == showID && !r.IsConfirmed() && r.CreatedAt.Before(cutoff) {
			delete(tx.reservations, id)
			n++
		}
	}
	return n, nil
}

func (tx *mockTx) GetShow(_ context.Context, showID string) (entity.Show, error) {
	show, ok := tx.shows[showID]
	if !ok {
		return entity.Show{}, fmt.Errorf("show %s: %w", showID, entity.ErrNotFound)
	}
	return show, nil
}

func (tx *mockTx) CountLiveReservations(_ context.Context, showID string, cutoff time.Time) (int, error) {
	n := 0
	for _, r := range tx.reservations {
		if r.ShowID == showID && isLive(r, cutoff) {
			n++
		}
	}
	return n, nil
}

func (tx *mockTx) ListBuyerLiveReservations(_ context.Context, showID, buyerID string, cutoff time.Time) ([]entity.Reservation, error) {
	var reservations []entity.Reservation
	for _, r := range tx.reservations {
		if r.ShowID == showID && r.BuyerID == buyerID && isLive(r, cutoff) {
			reservations = append(reservations, r)
		}
	}
	return reservations, nil
}

func (tx *mockTx) InsertReservation(_ context.Context, r entity.Reservation) error {
	if _, ok := tx.shows[r.ShowID]; !ok {
		return fmt.Errorf("show %s: %w", r.ShowID, entity.ErrNotFound)
	}
	tx.reservations[r.ID] = r
	return nil
}

func (tx *mockTx) GetReservationForUpdate(_ context.Context, reservationID string) (entity.Reservation, error) {
	r, ok := tx.reservations[reservationID]
	if !ok {
		return entity.Reservation{}, fmt.Errorf("reservation %s: %w", reservationID, entity.ErrNotFound)
	}
	return r, nil
}

func (tx *mockTx) MarkConfirmed(_ context.Context, reservationID, orderRef, paymentRef string, confirmedAt time.Time) error {
	r := tx.reservations[reservationID]
	r.Status = entity.ReservationConfirmed
	r.OrderRef = &orderRef
	r.PaymentRef = &paymentRef
	r.ConfirmedAt = &confirmedAt
	tx.reservations[reservationID] = r
	return nil
}

func (tx *mockTx) Publish(_ context.Context, event any) error {
	tx.events = append(tx.events, event)
	return nil
}

func isLive(r entity.Reservation, cutoff time.Time) bool {
	return r.IsConfirmed() || !r.CreatedAt.Before(cutoff)
}

// MockShowStore is the show side of the same in-memory state.
type MockShowStore struct {
	*MockLedger
}

func (s MockShowStore) Add(_ context.Context, show entity.Show) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.shows[show.ID] = show
	return nil
}

func (s MockShowStore) Update(_ context.Context, show entity.Show, cutoff time.Time) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	existing, ok := s.shows[show.ID]
	if !ok {
		return fmt.Errorf("show %s: %w", show.ID, entity.ErrNotFound)
	}

	if show.TotalSeats != nil {
		live := 0
		for _, r := range s.reservations {
			if r.ShowID == show.ID && isLive(r, cutoff) {
				live++
			}
		}
		if live > *show.TotalSeats {
			return fmt.Errorf("show has %d live reservations: %w", live, entity.ErrConflict)
		}
	}

	show.CreatedAt = existing.CreatedAt
	s.shows[show.ID] = show
	return nil
}

func (s MockShowStore) Delete(_ context.Context, showID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.shows[showID]; !ok {
		return fmt.Errorf("show %s: %w", showID, entity.ErrNotFound)
	}
	s.deleteShow(showID)
	return nil
}

func (s MockShowStore) DeletePast(_ context.Context, now time.Time) (int64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var n int64
	for id, show := range s.shows {
		if show.StartTime.Before(now) {
			s.deleteShow(id)
			n++
		}
	}
	return n, nil
}

func (l *MockLedger) deleteShow(showID string) {
	for id, r := range l.reservations {
		if r.ShowID == showID {
			delete(l.reservations, id)
		}
	}
	delete(l.shows, showID)
}

func (l *MockLedger) Get(_ context.Context, id string) (entity.BuyerReservation, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	r, ok := l.reservations[id]
	if !ok {
		return entity.BuyerReservation{}, fmt.Errorf("reservation %s: %w", id, entity.ErrNotFound)
	}
	return entity.BuyerReservation{Reservation: r, Show: l.shows[r.ShowID]}, nil
}

func (s MockShowStore) Get(_ context.Context, showID string) (entity.Show, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	show, ok := s.shows[showID]
	if !ok {
		return entity.Show{}, fmt.Errorf("show %s: %w", showID, entity.ErrNotFound)
	}
	return show, nil
}

func (s MockShowStore) ListUpcoming(_ context.Context, now time.Time) ([]entity.ShowAvailability, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var shows []entity.ShowAvailability
	for _, show := range s.shows {
		if !show.StartTime.Before(now) {
			shows = append(shows, entity.NewShowAvailability(show, s.confirmedCount(show.ID)))
		}
	}
	sort.Slice(shows, func(i, j int) bool {
		return shows[i].StartTime.Before(shows[j].StartTime)
	})
	return shows, nil
}

func (s MockShowStore) ListAll(_ context.Context) ([]entity.ShowAvailability, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var shows []entity.ShowAvailability
	for _, show := range s.shows {
		shows = append(shows, entity.NewShowAvailability(show, s.confirmedCount(show.ID)))
	}
	sort.Slice(shows, func(i, j int) bool {
		return shows[i].StartTime.Before(shows[j].StartTime)
	})
	return shows, nil
}

func (l *MockLedger) confirmedCount(showID string) int {
	n := 0
	for _, r := range l.reservations {
		if r.ShowID == showID && r.IsConfirmed() {
			n++
		}
	}
	return n
}

func (l *MockLedger) ListByBuyer(_ context.Context, buyerID string) ([]entity.BuyerReservation, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	var reservations []entity.BuyerReservation
	for _, r := range l.reservations {
		if r.BuyerID == buyerID {
			reservations = append(reservations, entity.BuyerReservation{Reservation: r, Show: l.shows[r.ShowID]})
		}
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.After(reservations[j].CreatedAt)
	})
	return reservations, nil
}

func (l *MockLedger) ListByShow(_ context.Context, showID string) ([]entity.Reservation, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	var reservations []entity.Reservation
	for _, r := range l.reservations {
		if r.ShowID == showID {
			reservations = append(reservations, r)
		}
	}
	return reservations, nil
}

func (l *MockLedger) SalesStats(_ context.Context, recent int) (entity.SalesStats, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	stats := entity.SalesStats{Revenue: decimal.Zero}
	for _, r := range l.reservations {
		if !r.IsConfirmed() {
			continue
		}
		show := l.shows[r.ShowID]
		stats.Revenue = stats.Revenue.Add(show.Price)
		stats.TicketsSold++
		stats.RecentSales = append(stats.RecentSales, entity.Sale{
			ReservationID: r.ID,
			BuyerEmail:    r.BuyerEmail,
			ShowTitle:     show.Title,
			Price:         show.Price,
			ConfirmedAt:   *r.ConfirmedAt,
		})
	}
	slices.SortFunc(stats.RecentSales, func(a, b entity.Sale) int {
		return b.ConfirmedAt.Compare(a.ConfirmedAt)
	})
	if len(stats.RecentSales) > recent {
		stats.RecentSales = stats.RecentSales[:recent]
	}
	return stats, nil
}

type MockLimiter struct {
	lock   sync.Mutex
	Denied bool
	Err    error
	Keys   []string
}

func (m *MockLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.Keys = append(m.Keys, key)
	if m.Err != nil {
		return false, m.Err
	}
	return !m.Denied, nil
}
