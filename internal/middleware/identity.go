package middleware

// Accessors for the identity JWTAuth stores in the echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queuepro/internal/utils"
)

// UserID returns the authenticated user's id, or false for anonymous
// requests.
func UserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case uint64:
		return v, v != 0
	case float64:
		return uint64(v), v > 0
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		return n, err == nil && n != 0
	}
	return 0, false
}

func Role(c echo.Context) string {
	r, _ := c.Get("role").(string)
	return r
}

// Identity returns the full caller identity.
func Identity(c echo.Context) (utils.Identity, bool) {
	uid, ok := UserID(c)
	if !ok {
		return utils.Identity{}, false
	}
	name, _ := c.Get("name").(string)
	email, _ := c.Get("email").(string)
	return utils.Identity{UserID: uid, Role: Role(c), Name: name, Email: email}, true
}

// userKey is the rate-limit key fragment for the caller.
func userKey(c echo.Context) string {
	if uid, ok := UserID(c); ok {
		return strconv.FormatUint(uid, 10)
	}
	return "anon"
}
