package auth

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RequireRole must run after RequireLogin. The caller needs at least one of required.
func RequireRole(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles := Roles(c)
			if len(roles) == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			for _, r := range required {
				if slices.Contains(roles, r) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights to see this page")
		}
	}
}
