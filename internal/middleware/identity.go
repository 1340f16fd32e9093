package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	staffIDKey = "staff_id"
	roleKey    = "role"
)

// StaffID returns the authenticated staff member's id, or false when the
// request carried no valid token.
func StaffID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(staffIDKey).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated role, or "" for anonymous requests.
func Role(c echo.Context) string {
	r, _ := c.Get(roleKey).(string)
	return r
}

// userID is the rate-limit identity: the staff id, or "anon".
func userID(c echo.Context) string {
	if id, ok := StaffID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
