package router

import (
    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/handler"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/middleware"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
)

// RegisterAdmin registers the back-office endpoints.  User and booking
// management is admin-only; the ticket queue is shared with support
// staff and developers.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
    admin := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleAdmin),
    )
    admin.GET("/users", a.ListUsers)
    admin.PATCH("/users/:id/role", a.UpdateRole)
    admin.GET("/bookings", a.ListBookings)

    staff := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleAdmin, model.RoleSupport, model.RoleDeveloper),
    )
    staff.GET("/tickets", a.ListTickets)
    staff.PATCH("/tickets/:id/status", a.UpdateTicketStatus)
    staff.PATCH("/tickets/:id/assign", a.AssignTicket)
}
