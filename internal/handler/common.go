package handler // handler defines the HTTP handlers for the API

import (
    "errors"  // errors provides sentinel values and matching helpers
    "net/http"
    "strconv" // strconv converts path params and context values to numbers

    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWTAuth stores the raw claim value, which the jwt library decodes as
// float64 for numeric claims.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// currentRole returns the role claim stored by JWTAuth, or "" when absent.
func currentRole(c echo.Context) string {
    if r, ok := c.Get("role").(string); ok {
        return r
    }
    return ""
}

// isStaff reports whether the request carries a staff role.
func isStaff(c echo.Context) bool {
    return model.IsStaff(currentRole(c))
}

// paramID parses the named path parameter as a uint64 identifier.
func paramID(c echo.Context, name string) (uint64, error) {
    return strconv.ParseUint(c.Param(name), 10, 64)
}

// repoError translates repository sentinel errors into HTTP responses.
// Unknown errors become an opaque 500 so internals never leak to clients.
func repoError(c echo.Context, err error, conflictMsg string) error {
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrDateConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "dates not available"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": conflictMsg})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
