package router

import (
	"github.com/labstack/echo/v4"

	"github.com/matchday/ticket-office/internal/handler"
	"github.com/matchday/ticket-office/internal/middleware"
)

// RegisterCustomer registers ticket purchase and lookup endpoints under
// /v1.  All routes require a valid JWT; purchase is restricted to
// customers while ticket reads also admit admins (the handler enforces
// ownership for customers).
func RegisterCustomer(e *echo.Echo, t *handler.TicketHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	buy := g.Group("", middleware.RequireRole("CUSTOMER"))
	buy.POST("/tickets", t.Purchase)

	read := g.Group("", middleware.RequireRole("CUSTOMER", "ADMIN"))
	read.GET("/my-tickets", t.MyTickets)
	read.GET("/tickets/:id", t.GetTicket)
}
