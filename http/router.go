package http

import (
	"net/http"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/labstack/echo/v4"
)

var ErrServerClosed = http.ErrServerClosed

type Deps struct {
	Catalog    Catalog
	Identities IdentityResolver
	Queries    Queries
	Reaper     Canceller
	Reserver   Reserver
	Verifier   PaymentConfirmer
}

func NewRouter(deps Deps) *echo.Echo {
	server := commonHTTP.NewEcho()

	server.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	h := handler{
		catalog:  deps.Catalog,
		queries:  deps.Queries,
		reaper:   deps.Reaper,
		reserver: deps.Reserver,
		verifier: deps.Verifier,
	}

	api := server.Group("/api", correlationIDMiddleware, identityMiddleware(deps.Identities))

	api.GET("/shows", h.ListShows)
	api.POST("/shows/:id/reservations", h.PostReservation)
	api.POST("/payments/verify", h.PostPaymentVerification)
	api.GET("/reservations/:id", h.GetReservation)
	api.POST("/reservations/:id/cancel", h.PostReservationCancel)
	api.GET("/me/reservations", h.ListMyReservations)

	admin := api.Group("/admin")
	admin.GET("/shows", h.AdminListShows)
	admin.POST("/shows", h.AdminCreateShow)
	admin.PUT("/shows/:id", h.AdminUpdateShow)
	admin.DELETE("/shows/:id", h.AdminDeleteShow)
	admin.GET("/shows/:id/reservations", h.AdminListShowReservations)
	admin.GET("/stats", h.AdminStats)

	return server
}
