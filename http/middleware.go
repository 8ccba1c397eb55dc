package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

const (
	headerKeyCorrelationID = "Correlation-ID"
	authCookieName         = "auth_token"
	identityKey            = "identity"
)

func correlationIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		correlationID := c.Request().Header.Get(headerKeyCorrelationID)
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}

		ctx := log.ContextWithCorrelationID(c.Request().Context(), correlationID)
		ctx = log.ToContext(ctx, logrus.WithFields(logrus.Fields{
			"correlation_id": correlationID,
		}))
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(headerKeyCorrelationID, correlationID)

		return next(c)
	}
}

// identityMiddleware resolves the caller from a bearer token or the auth cookie.
// Requests without credentials continue as anonymous.
func identityMiddleware(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := resolver.Resolve(token(c.Request()))
			if err != nil {
				return &echo.HTTPError{
					Code:     http.StatusUnauthorized,
					Message:  "invalid credentials",
					Internal: err,
				}
			}

			c.Set(identityKey, identity)

			return next(c)
		}
	}
}

func token(r *http.Request) string {
	if header := r.Header.Get(echo.HeaderAuthorization); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

func identityFrom(c echo.Context) entity.Identity {
	identity, _ := c.Get(identityKey).(entity.Identity)
	return identity
}

// toHTTPError maps the typed results of the booking core onto responses. Anything else is
// logged and hidden behind a generic error.
func toHTTPError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, entity.ErrInvalidPayload):
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: err.Error(), Internal: err}
	case errors.Is(err, entity.ErrSignatureInvalid):
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: entity.ErrSignatureInvalid.Error(), Internal: err}
	case errors.Is(err, entity.ErrNotFound):
		return &echo.HTTPError{Code: http.StatusNotFound, Message: entity.ErrNotFound.Error(), Internal: err}
	case errors.Is(err, entity.ErrCapacityExceeded):
		return &echo.HTTPError{Code: http.StatusConflict, Message: entity.ErrCapacityExceeded.Error(), Internal: err}
	case errors.Is(err, entity.ErrAlreadyBooked):
		return &echo.HTTPError{Code: http.StatusConflict, Message: entity.ErrAlreadyBooked.Error(), Internal: err}
	case errors.Is(err, entity.ErrConflict):
		return &echo.HTTPError{Code: http.StatusConflict, Message: entity.ErrConflict.Error(), Internal: err}
	case errors.Is(err, entity.ErrTransient):
		c.Response().Header().Set(echo.HeaderRetryAfter, "1")
		return &echo.HTTPError{Code: http.StatusServiceUnavailable, Message: entity.ErrTransient.Error(), Internal: err}
	case errors.Is(err, entity.ErrTooManyAttempts):
		return &echo.HTTPError{Code: http.StatusTooManyRequests, Message: entity.ErrTooManyAttempts.Error(), Internal: err}
	case errors.Is(err, entity.ErrUnauthorized):
		code := http.StatusForbidden
		if identityFrom(c).IsAnonymous() {
			code = http.StatusUnauthorized
		}
		return &echo.HTTPError{Code: code, Message: http.StatusText(code), Internal: err}
	}

	log.FromContext(c.Request().Context()).WithError(err).Error("Request failed")

	return &echo.HTTPError{
		Code:     http.StatusInternalServerError,
		Message:  http.StatusText(http.StatusInternalServerError),
		Internal: err,
	}
}
