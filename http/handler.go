package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/booking"
	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type Reserver interface {
	Reserve(ctx context.Context, showID string, buyer entity.Identity) (string, error)
}

type Canceller interface {
	Cancel(ctx context.Context, reservationID string, buyer entity.Identity) error
}

type PaymentConfirmer interface {
	Confirm(ctx context.Context, callback booking.PaymentCallback) error
}

type Queries interface {
	ListUpcomingShows(ctx context.Context) ([]entity.ShowAvailability, error)
	ListBuyerReservations(ctx context.Context, buyer entity.Identity) ([]entity.BuyerReservation, error)
	GetReservation(ctx context.Context, buyer entity.Identity, reservationID string) (entity.BuyerReservation, error)
}

type Catalog interface {
	CreateShow(ctx context.Context, operator entity.Identity, show entity.Show) (entity.Show, error)
	UpdateShow(ctx context.Context, operator entity.Identity, show entity.Show) (entity.Show, error)
	DeleteShow(ctx context.Context, operator entity.Identity, showID string) error
	ListShows(ctx context.Context, operator entity.Identity) ([]entity.ShowAvailability, error)
	ListShowReservations(ctx context.Context, operator entity.Identity, showID string) ([]entity.Reservation, error)
	Stats(ctx context.Context, operator entity.Identity) (entity.SalesStats, error)
}

type IdentityResolver interface {
	Resolve(token string) (entity.Identity, error)
}

type handler struct {
	catalog  Catalog
	queries  Queries
	reaper   Canceller
	reserver Reserver
	verifier PaymentConfirmer
}

type reservationResponse struct {
	ReservationID string `json:"reservation_id"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type showRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	StartTime   time.Time       `json:"start_time"`
	Price       decimal.Decimal `json:"price"`
	TotalSeats  *int            `json:"total_seats"`
	LiveEnabled bool            `json:"live_enabled"`
	LiveLink    string          `json:"live_link"`
}

func (r showRequest) toShow(id string) entity.Show {
	return entity.Show{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		StartTime:   r.StartTime,
		Price:       r.Price,
		TotalSeats:  r.TotalSeats,
		LiveEnabled: r.LiveEnabled,
		LiveLink:    r.LiveLink,
	}
}

func (h handler) ListShows(c echo.Context) error {
	shows, err := h.queries.ListUpcomingShows(c.Request().Context())
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, shows)
}

func (h handler) PostReservation(c echo.Context) error {
	reservationID, err := h.reserver.Reserve(c.Request().Context(), c.Param("id"), identityFrom(c))
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusCreated, reservationResponse{ReservationID: reservationID})
}

func (h handler) PostPaymentVerification(c echo.Context) error {
	var callback booking.PaymentCallback
	if err := c.Bind(&callback); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed payment callback")
	}

	if err := h.verifier.Confirm(c.Request().Context(), callback); err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, statusResponse{Status: entity.ReservationConfirmed.String()})
}

func (h handler) GetReservation(c echo.Context) error {
	buyer := identityFrom(c)
	if buyer.IsAnonymous() {
		return toHTTPError(c, entity.ErrUnauthorized)
	}

	reservation, err := h.queries.GetReservation(c.Request().Context(), buyer, c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, reservation)
}

func (h handler) PostReservationCancel(c echo.Context) error {
	if err := h.reaper.Cancel(c.Request().Context(), c.Param("id"), identityFrom(c)); err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, statusResponse{Status: "CANCELLED"})
}

func (h handler) ListMyReservations(c echo.Context) error {
	buyer := identityFrom(c)
	if buyer.IsAnonymous() {
		return toHTTPError(c, entity.ErrUnauthorized)
	}

	reservations, err := h.queries.ListBuyerReservations(c.Request().Context(), buyer)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, reservations)
}
