package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/locker-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/locker-reservation/internal/middleware" // import middleware for JWT authentication and permission enforcement
	"github.com/iliyamo/locker-reservation/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while the profile endpoint requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access issues a new access
	// token without rotating the refresh token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a JSON body containing a refresh_token and invalidates
	// it.  When the request also carries a valid access token and no body
	// token, every session of that user is revoked instead.
	g.POST("/logout", a.Logout)

	// The profile endpoint returns the authenticated user's record and
	// therefore requires a valid access token.
	g.GET("/profile", a.Profile, middleware.JWTAuth(jwtSecret))
}

// RegisterLockers registers the locker registry endpoints under /v1/lockers.
// Every route requires a valid JWT.  Reads are open to any role holding the
// view_lockers permission; create, update and delete additionally require
// manage_lockers, which only admins hold.  The optional cache middleware is
// applied to the list endpoint so that repeated browses are served from
// Redis when it is configured.
func RegisterLockers(e *echo.Echo, h *handler.LockerHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/lockers",
		middleware.JWTAuth(jwtSecret),
		middleware.RequirePermission(model.PermViewLockers),
	)

	manage := middleware.RequirePermission(model.PermManageLockers)

	if cache != nil {
		g.GET("", h.List, cache)
	} else {
		g.GET("", h.List)
	}
	g.GET("/:id", h.Get)
	g.POST("", h.Create, manage)
	g.PUT("/:id", h.Update, manage)
	g.PATCH("/:id", h.Patch, manage)
	g.DELETE("/:id", h.Delete, manage)
}

// RegisterReservations registers the reservation lifecycle endpoints under
// /v1/reservations.  All routes require a valid JWT and the reserve_locker
// permission.  Ownership checks (a user may only inspect or release their
// own reservations unless they are an admin) live in the handlers because
// they depend on the reservation row itself.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1/reservations",
		middleware.JWTAuth(jwtSecret),
		middleware.RequirePermission(model.PermReserveLocker),
	)

	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id/release", h.Release)
	g.DELETE("/:id", h.Destroy)
}
