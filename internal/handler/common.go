package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every database call issued from a handler.
const dbTimeout = 5 * time.Second

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// parseUint parses a numeric query value.
func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// currentUser returns the authenticated user's id and role as stored by
// the JWT middleware.
func currentUser(c echo.Context) (uint64, string) {
	uid, _ := c.Get("user_id").(uint64)
	role, _ := c.Get("role").(string)
	return uid, role
}
