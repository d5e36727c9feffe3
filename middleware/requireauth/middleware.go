package requireauth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/session"
)

// Middleware rejects requests that have no authenticated doctor bound to
// the session.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !session.IsAuthenticated(c) {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"ok":    false,
					"error": "Not authenticated",
				})
			}
			return next(c)
		}
	}
}
