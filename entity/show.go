package entity

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Show struct {
	ID          string          `json:"show_id" db:"show_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	StartTime   time.Time       `json:"start_time" db:"start_time"`
	Price       decimal.Decimal `json:"price" db:"price"`
	// TotalSeats is nil for shows without a seat limit.
	TotalSeats  *int      `json:"total_seats" db:"total_seats"`
	LiveEnabled bool      `json:"live_enabled" db:"live_enabled"`
	LiveLink    string    `json:"live_link" db:"live_link"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (s Show) Validate() error {
	if len(strings.TrimSpace(s.Title)) < 3 {
		return fmt.Errorf("%w: title must be at least 3 characters", ErrInvalidPayload)
	}
	if s.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidPayload)
	}
	if s.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidPayload)
	}
	if s.TotalSeats != nil && *s.TotalSeats <= 0 {
		return fmt.Errorf("%w: total seats must be positive", ErrInvalidPayload)
	}
	if s.LiveLink != "" {
		u, err := url.ParseRequestURI(s.LiveLink)
		if err != nil || u.Host == "" {
			return fmt.Errorf("%w: live link must be a URL", ErrInvalidPayload)
		}
	}
	return nil
}

// ShowAvailability is a show annotated with its sold seats.
type ShowAvailability struct {
	Show
	ConfirmedCount int `json:"confirmed_count" db:"confirmed_count"`
	// SeatsRemaining is nil when the show has no seat limit.
	SeatsRemaining *int `json:"seats_remaining"`
}

func NewShowAvailability(show Show, confirmed int) ShowAvailability {
	a := ShowAvailability{
		Show:           show,
		ConfirmedCount: confirmed,
	}
	if show.TotalSeats != nil {
		remaining := max(*show.TotalSeats-confirmed, 0)
		a.SeatsRemaining = &remaining
	}
	return a
}

type Sale struct {
	ReservationID string          `json:"reservation_id" db:"reservation_id"`
	BuyerEmail    string          `json:"buyer_email" db:"buyer_email"`
	ShowTitle     string          `json:"show_title" db:"title"`
	Price         decimal.Decimal `json:"price" db:"price"`
	ConfirmedAt   time.Time       `json:"confirmed_at" db:"confirmed_at"`
}

type SalesStats struct {
	Revenue     decimal.Decimal `json:"revenue"`
	TicketsSold int             `json:"tickets_sold"`
	RecentSales []Sale          `json:"recent_sales"`
}
