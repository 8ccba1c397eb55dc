package event

import (
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/ThreeDotsLabs/watermill"
)

type header struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func newHeader(idempotencyKey string) header {
	return header{
		ID:             watermill.NewUUID(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type ReservationConfirmed struct {
	Header        header    `json:"header"`
	ReservationID string    `json:"reservation_id"`
	ShowID        string    `json:"show_id"`
	BuyerID       string    `json:"buyer_id"`
	BuyerEmail    string    `json:"buyer_email"`
	PaymentRef    string    `json:"payment_ref"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// NewReservationConfirmed keys the event on the reservation, which is confirmed at most once.
func NewReservationConfirmed(r entity.Reservation, paymentRef string, confirmedAt time.Time) ReservationConfirmed {
	return ReservationConfirmed{
		Header:        newHeader(r.ID),
		ReservationID: r.ID,
		ShowID:        r.ShowID,
		BuyerID:       r.BuyerID,
		BuyerEmail:    r.BuyerEmail,
		PaymentRef:    paymentRef,
		ConfirmedAt:   confirmedAt,
	}
}
