package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework used for routing

    "github.com/Holasoyelrey101/amanwal-sub000/internal/handler"
)

// RegisterRoutes registers routes that require neither authentication
// nor any repository: currently only the health check, used by load
// balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse endpoints.  The
// cache middleware (pass nil to disable) fronts the listing reads so
// repeated guest traffic is served from Redis.
func RegisterPublic(e *echo.Echo, cabins *handler.CabinHandler, bookings *handler.BookingHandler, reviews *handler.ReviewHandler, cache echo.MiddlewareFunc) {
    mw := []echo.MiddlewareFunc{}
    if cache != nil {
        mw = append(mw, cache)
    }
    // Cabin catalogue: list, detail and reviews are guest-visible.
    e.GET("/v1/cabins", cabins.List, mw...)
    e.GET("/v1/cabins/:id", cabins.Get, mw...)
    e.GET("/v1/cabins/:id/reviews", reviews.ListByCabin, mw...)
    // Availability calendar: occupied date ranges for a cabin.  Not
    // cached; the whole point is seeing a fresh hold immediately.
    e.GET("/v1/bookings/cabin/:id", bookings.Occupied)
}
