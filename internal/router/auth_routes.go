package router

import (
    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/handler"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/middleware"
)

// RegisterAuth registers the authentication routes.  Unauthenticated
// operations live under /v1/auth; the profile endpoint lives under /v1
// behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Rotates the refresh token and returns a fresh pair.
    g.POST("/refresh", a.Refresh)
    // Issues a new access token without rotating the refresh token.
    g.POST("/refresh-access", a.RefreshAccess)
    // Logout is deliberately outside the JWT middleware: a browser
    // holding only a refresh token can still terminate its session.
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
}
