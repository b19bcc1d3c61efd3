// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/matchday/ticket-office/internal/handler"
	"github.com/matchday/ticket-office/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication or
// dependencies, currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration and login under /v1/auth, plus the
// protected /v1/me endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints: stand
// listings, occupancy and stored simulations.  These are the hot read
// paths, so the response cache middleware applies here.
func RegisterPublic(e *echo.Echo, t *handler.TicketHandler, s *handler.SimulationHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/matches/:id/stands", t.StandSummaries)
	g.GET("/matches/:id/occupancy", t.Occupancy)
	g.GET("/matches/:id/simulation", s.GetSimulation)
}
