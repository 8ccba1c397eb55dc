package http

import (
	"context"
	"sync"

	"github.com/AkshatJangid787/concert-ticket-booking/booking"
	"github.com/AkshatJangid787/concert-ticket-booking/entity"
)

type mockBooking struct {
	lock sync.Mutex

	err          error
	reservations []entity.BuyerReservation
	shows        []entity.ShowAvailability

	reservedFor []entity.Identity
	cancelled   []string
	callbacks   []booking.PaymentCallback
	created     []entity.Show
}

func (m *mockBooking) Reserve(_ context.Context, _ string, buyer entity.Identity) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.reservedFor = append(m.reservedFor, buyer)
	if m.err != nil {
		return "", m.err
	}
	return "8d5e0bd7-8ef6-4b8a-a6a4-3b0f3c0fd2a1", nil
}

func (m *mockBooking) Cancel(_ context.Context, reservationID string, _ entity.Identity) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.cancelled = append(m.cancelled, reservationID)
	return m.err
}

func (m *mockBooking) Confirm(_ context.Context, callback booking.PaymentCallback) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.callbacks = append(m.callbacks, callback)
	return m.err
}

func (m *mockBooking) ListUpcomingShows(context.Context) ([]entity.ShowAvailability, error) {
	return m.shows, m.err
}

func (m *mockBooking) ListBuyerReservations(context.Context, entity.Identity) ([]entity.BuyerReservation, error) {
	return m.reservations, m.err
}

func (m *mockBooking) GetReservation(_ context.Context, _ entity.Identity, reservationID string) (entity.BuyerReservation, error) {
	if m.err != nil {
		return entity.BuyerReservation{}, m.err
	}
	for _, r := range m.reservations {
		if r.ID == reservationID {
			return r, nil
		}
	}
	return entity.BuyerReservation{}, entity.ErrNotFound
}

func (m *mockBooking) CreateShow(_ context.Context, operator entity.Identity, show entity.Show) (entity.Show, error) {
	if !operator.IsOperator() {
		return entity.Show{}, entity.ErrUnauthorized
	}
	if err := show.Validate(); err != nil {
		return entity.Show{}, err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	show.ID = "f3d1e5c2-5a0b-4a8e-9f55-0e7a3c7d9b11"
	m.created = append(m.created, show)
	return show, nil
}

func (m *mockBooking) UpdateShow(_ context.Context, _ entity.Identity, show entity.Show) (entity.Show, error) {
	return show, m.err
}

func (m *mockBooking) DeleteShow(context.Context, entity.Identity, string) error {
	return m.err
}

func (m *mockBooking) ListShows(context.Context, entity.Identity) ([]entity.ShowAvailability, error) {
	return m.shows, m.err
}

func (m *mockBooking) ListShowReservations(context.Context, entity.Identity, string) ([]entity.Reservation, error) {
	return nil, m.err
}

func (m *mockBooking) Stats(_ context.Context, operator entity.Identity) (entity.SalesStats, error) {
	if !operator.IsOperator() {
		return entity.SalesStats{}, entity.ErrUnauthorized
	}
	return entity.SalesStats{}, m.err
}
