package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/booking"
	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/AkshatJangid787/concert-ticket-booking/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const holdWindow = 10 * time.Minute

type fixture struct {
	clock    *fakeClock
	ledger   *MockLedger
	shows    MockShowStore
	signer   payment.Signer
	engine   booking.Engine
	reaper   booking.Reaper
	verifier booking.Verifier
	queries  booking.Queries
	catalog  booking.Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := newFakeClock()
	ledger := NewMockLedger()
	shows := MockShowStore{ledger}
	signer := payment.NewSigner("test-secret")
	cfg := booking.Config{
		HoldWindow:     holdWindow,
		ReserveTimeout: 5 * time.Second,
		MaxRetries:     3,
		Now:            clock.Now,
	}

	return &fixture{
		clock:    clock,
		ledger:   ledger,
		shows:    shows,
		signer:   signer,
		engine:   booking.NewEngine(ledger, nil, cfg),
		reaper:   booking.NewReaper(ledger, shows, cfg),
		verifier: booking.NewVerifier(ledger, signer, cfg),
		queries:  booking.NewQueries(shows, ledger, cfg),
		catalog:  booking.NewCatalog(shows, ledger, cfg),
	}
}

func (f *fixture) addShow(t *testing.T, totalSeats *int) entity.Show {
	t.Helper()

	show := entity.Show{
		ID:         uuid.NewString(),
		Title:      "Evening Concert",
		StartTime:  f.clock.Now().Add(7 * 24 * time.Hour),
		Price:      decimal.RequireFromString("499.00"),
		TotalSeats: totalSeats,
		CreatedAt:  f.clock.Now(),
	}
	require.NoError(t, f.shows.Add(context.Background(), show))

	return show
}

func (f *fixture) callback(reservationID, orderRef, paymentRef string) booking.PaymentCallback {
	return booking.PaymentCallback{
		ReservationID: reservationID,
		OrderRef:      orderRef,
		PaymentRef:    paymentRef,
		Proof:         f.signer.Sign(orderRef, paymentRef),
	}
}

func (f *fixture) reserveAndConfirm(t *testing.T, showID string, buyer entity.Identity) string {
	t.Helper()

	ctx := context.Background()
	id, err := f.engine.Reserve(ctx, showID, buyer)
	require.NoError(t, err)
	require.NoError(t, f.verifier.Confirm(ctx, f.callback(id, "order_"+id, "pay_"+id)))

	return id
}

func newBuyer() entity.Identity {
	id := uuid.NewString()
	return entity.Identity{
		BuyerID: id,
		Email:   id + "@example.com",
		Role:    entity.RoleBuyer,
	}
}

func newOperator() entity.Identity {
	return entity.Identity{
		BuyerID: uuid.NewString(),
		Email:   "operator@example.com",
		Role:    entity.RoleOperator,
	}
}

func seats(n int) *int {
	return &n
}
