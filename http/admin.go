package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h handler) AdminListShows(c echo.Context) error {
	shows, err := h.catalog.ListShows(c.Request().Context(), identityFrom(c))
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, shows)
}

func (h handler) AdminCreateShow(c echo.Context) error {
	var req showRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed show")
	}

	show, err := h.catalog.CreateShow(c.Request().Context(), identityFrom(c), req.toShow(""))
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusCreated, show)
}

func (h handler) AdminUpdateShow(c echo.Context) error {
	var req showRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed show")
	}

	show, err := h.catalog.UpdateShow(c.Request().Context(), identityFrom(c), req.toShow(c.Param("id")))
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, show)
}

func (h handler) AdminDeleteShow(c echo.Context) error {
	if err := h.catalog.DeleteShow(c.Request().Context(), identityFrom(c), c.Param("id")); err != nil {
		return toHTTPError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h handler) AdminListShowReservations(c echo.Context) error {
	reservations, err := h.catalog.ListShowReservations(c.Request().Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, reservations)
}

func (h handler) AdminStats(c echo.Context) error {
	stats, err := h.catalog.Stats(c.Request().Context(), identityFrom(c))
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, stats)
}
