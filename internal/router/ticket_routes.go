package router

import (
    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/handler"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/middleware"
)

// RegisterTickets registers the user-facing support ticket endpoints.
// Access to an individual ticket (opener or staff) is checked in the
// handlers; the group only requires a valid token.
func RegisterTickets(e *echo.Echo, t *handler.TicketHandler, jwtSecret string) {
    g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

    g.POST("/tickets", t.Create)
    g.GET("/tickets", t.ListMine)
    g.GET("/tickets/:id", t.Get)
    g.POST("/tickets/:id/messages", t.AddMessage)
    g.DELETE("/tickets/:id", t.Delete)
}
