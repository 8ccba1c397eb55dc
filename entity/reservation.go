package entity

import "time"

type ReservationStatus string

func (s ReservationStatus) String() string {
	return string(s)
}

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
)

type Reservation struct {
	ID          string            `json:"reservation_id" db:"reservation_id"`
	ShowID      string            `json:"show_id" db:"show_id"`
	BuyerID     string            `json:"buyer_id" db:"buyer_id"`
	BuyerEmail  string            `json:"buyer_email" db:"buyer_email"`
	Status      ReservationStatus `json:"status" db:"status"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	OrderRef    *string           `json:"order_ref,omitempty" db:"order_ref"`
	PaymentRef  *string           `json:"payment_ref,omitempty" db:"payment_ref"`
	ConfirmedAt *time.Time        `json:"confirmed_at,omitempty" db:"confirmed_at"`
}

func (r Reservation) IsConfirmed() bool {
	return r.Status == ReservationConfirmed
}

// BuyerReservation is a reservation together with the show it holds a seat for.
type BuyerReservation struct {
	Reservation
	Show Show `json:"show"`
	// ExpiresAt is set for pending reservations only.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
