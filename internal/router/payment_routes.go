package router

import (
    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/handler"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/middleware"
)

// RegisterPayments registers the payment endpoints.  The webhook, the
// browser return and the status passthrough must stay public: Flow's
// servers and the returning payer carry no bearer token.  Only order
// creation requires authentication.
func RegisterPayments(e *echo.Echo, p *handler.PaymentHandler, jwtSecret string) {
    // Server-to-server confirmation from Flow.  Sole authoritative path
    // from payment outcome to booking state.
    e.POST("/v1/payments/confirm", p.Webhook)
    // Flow redirects the payer's browser here with either verb.
    e.GET("/v1/payments/return/:bookingID", p.Return)
    e.POST("/v1/payments/return/:bookingID", p.Return)
    // Read-only gateway status lookup by payment token.
    e.GET("/v1/payments/status/:token", p.Status)

    g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
    g.POST("/payments/create", p.CreateOrder)
}
