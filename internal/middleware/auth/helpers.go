package auth

import (
	"slices"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserID = "user_id"
	CtxRoles  = "roles"
	CtxEmail  = "email"
)

func UserID(c echo.Context) string {
	id, _ := c.Get(CtxUserID).(string)
	return id
}

func Roles(c echo.Context) []string {
	roles, _ := c.Get(CtxRoles).([]string)
	return roles
}

func HasRole(c echo.Context, role string) bool {
	return slices.Contains(Roles(c), role)
}
