package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health is a liveness endpoint for load balancers and monitoring.  It
// returns a plain text "ok" with HTTP 200 and touches no dependencies,
// so it stays green while the database or broker are degraded.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
