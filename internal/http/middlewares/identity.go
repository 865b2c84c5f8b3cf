package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	model "taskhub.com/taskhub/internal/models"
	repository "taskhub.com/taskhub/internal/repositories"
)

const actorContextKey = "taskhub.actor"

// Identity resolves the acting user from the X-User-ID header and stores it
// in the request context. Authentication proper (sessions, tokens) is owned
// by the gateway in front of this service; this boundary only needs a
// trusted identity.
func Identity(users *repository.ReferenceRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get("X-User-ID")
			if id == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			user, err := users.FindUser(c.Request().Context(), id)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
			}

			c.Set(actorContextKey, user)
			return next(c)
		}
	}
}

// Actor returns the authenticated user resolved by Identity, or nil when
// the middleware did not run.
func Actor(c echo.Context) *model.User {
	user, _ := c.Get(actorContextKey).(*model.User)
	return user
}
