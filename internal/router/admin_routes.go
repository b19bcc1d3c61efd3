package router

import (
	"github.com/labstack/echo/v4"

	"github.com/matchday/ticket-office/internal/handler"
	"github.com/matchday/ticket-office/internal/middleware"
)

// RegisterAdmin registers the admin-only endpoints under /v1/admin:
// running a match simulation, issuing tickets on behalf of users and
// voiding tickets.
func RegisterAdmin(e *echo.Echo, t *handler.TicketHandler, s *handler.SimulationHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.POST("/matches/:id/simulate", s.Simulate)
	g.POST("/tickets/issue", t.AdminIssue)
	g.POST("/tickets/:id/void", t.VoidTicket)
}
