package middleware

import (
    "bytes"
    "crypto/sha1"
    "encoding/base64"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/config"
)

// cachedPayload is what gets stored in Redis: enough to replay the
// response verbatim, including content type.
type cachedPayload struct {
    Status      int    `json:"status"`
    ContentType string `json:"content_type"`
    Body        string `json:"body"`
}

// captureWriter duplicates everything written to the response into a
// buffer so the middleware can store it after the handler finishes.
type captureWriter struct {
    http.ResponseWriter
    buf    bytes.Buffer
    status int
}

func (w *captureWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
    w.buf.Write(b)
    return w.ResponseWriter.Write(b)
}

// NewResponseCache serves whitelisted read endpoints straight from Redis.
// Only successful responses are stored, and only up to MaxBodyBytes.
// Redis failures fall through to the handler.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[c.Request().Method] {
                return next(c)
            }

            key := buildCacheKey(cfg, c)
            ctx := c.Request().Context()

            if raw, err := rdb.Get(ctx, key).Result(); err == nil {
                if p, derr := decodePayload(raw); derr == nil {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(p.Status, p.ContentType, []byte(p.Body))
                }
            }

            // Miss: run the handler while capturing its output.
            w := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
            c.Response().Writer = w
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if w.status >= 200 && w.status < 300 && w.buf.Len() <= cfg.MaxBodyBytes {
                payload := cachedPayload{
                    Status:      w.status,
                    ContentType: c.Response().Header().Get(echo.HeaderContentType),
                    Body:        w.buf.String(),
                }
                if raw, err := encodePayload(payload); err == nil {
                    // Best effort: a failed SET just means the next request misses.
                    _ = rdb.Set(ctx, key, raw, cfg.TTL).Err()
                }
            }
            return nil
        }
    }
}

func encodePayload(p cachedPayload) (string, error) {
    b, err := json.Marshal(p)
    if err != nil {
        return "", err
    }
    return base64.StdEncoding.EncodeToString(b), nil
}

func decodePayload(raw string) (cachedPayload, error) {
    var p cachedPayload
    b, err := base64.StdEncoding.DecodeString(raw)
    if err != nil {
        return p, err
    }
    if err := json.Unmarshal(b, &p); err != nil {
        return p, err
    }
    return p, nil
}

func buildCacheKey(cfg config.CacheConfig, c echo.Context) string {
    parts := []string{cfg.Prefix, c.Request().Method, c.Path()}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        // Path only; identical for all query variants.
    case "route_user":
        parts = append(parts, "u", currentUserID(c))
    default: // route_query
        q := c.Request().URL.Query().Encode()
        if q != "" {
            sum := sha1.Sum([]byte(q))
            parts = append(parts, "q", hex.EncodeToString(sum[:8]))
        }
    }
    return strings.Join(parts, ":")
}
