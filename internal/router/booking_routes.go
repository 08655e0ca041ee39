package router

import (
    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/handler"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/middleware"
)

// RegisterBookings registers the booking lifecycle and the listing CRUD
// for authenticated users.  Any role may book; cabin ownership and
// booking ownership are enforced inside the handlers, so the group only
// requires a valid token.
func RegisterBookings(e *echo.Echo, bookings *handler.BookingHandler, cabins *handler.CabinHandler, reviews *handler.ReviewHandler, jwtSecret string) {
    g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

    // Booking lifecycle.  Confirmation normally happens through the
    // payment webhook; the explicit confirm endpoint is the fallback.
    g.POST("/bookings", bookings.Create)
    g.GET("/bookings", bookings.ListMine)
    g.GET("/bookings/:id", bookings.Get)
    g.PATCH("/bookings/:id/cancel", bookings.Cancel)
    g.PATCH("/bookings/:id/confirm", bookings.Confirm)
    g.DELETE("/bookings/:id", bookings.Delete)

    // Listing CRUD.  Any user may list a cabin; updates and deletes are
    // restricted to the owner or an admin inside the handler.
    g.POST("/cabins", cabins.Create)
    g.GET("/my-cabins", cabins.Mine)
    g.PUT("/cabins/:id", cabins.Update)
    g.PATCH("/cabins/:id", cabins.Update)
    g.DELETE("/cabins/:id", cabins.Delete)

    // Reviews.
    g.POST("/cabins/:id/reviews", reviews.Create)
}
