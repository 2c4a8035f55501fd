package middleware

// identity.go defines helpers shared across middleware files.  The
// rate limiter keys buckets by the caller identity placed into the
// context by JWTAuth; unauthenticated requests fall back to "anon".

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user id from context as a
// string for use in redis keys.  JWT numeric claims decode as float64,
// so the value is formatted rather than type-asserted.
func currentUserID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "anon"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
		return "anon"
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprint(t)
	}
}
