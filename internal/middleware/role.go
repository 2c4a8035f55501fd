package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/locker-reservation/internal/model" // model defines the role/permission table
)

// RequirePermission returns a middleware function that enforces that
// the authenticated user's role holds the given permission.  The role
// comes from the JWT's "role" claim, placed in the context by JWTAuth,
// and is evaluated against the role-to-permission table exactly once
// per request.  Requests with a missing, unknown or insufficient role
// are aborted with a 403 Forbidden response.
func RequirePermission(p model.Permission) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get("role").(string)
            if !ok || !model.Role(role).Can(p) {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
