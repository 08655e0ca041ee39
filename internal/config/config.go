package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.  Flow credentials are required because the booking flow cannot
// complete without the payment gateway.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing

    FlowAPIKey     string // Flow API key sent as the apiKey parameter
    FlowSecretKey  string // Flow secret used to HMAC-sign requests
    FlowBaseURL    string // Flow API base URL (sandbox or production)
    FlowConfirmURL string // public URL Flow calls back on payment completion
    FlowReturnURL  string // public URL Flow redirects the payer's browser to

    FrontendURL      string // base URL of the web frontend for redirects
    PaymentWindowMin int    // minutes a pending booking may await payment
    SweepIntervalSec int    // seconds between expiration sweep runs
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Tunables with safe
// defaults use intOr().
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),      // environment (dev/test/prod)
        Port:           must("APP_PORT"),     // port to bind the HTTP server
        DBUser:         must("DB_USER"),      // database user
        DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:         must("DB_HOST"),      // database host
        DBPort:         must("DB_PORT"),      // database port
        DBName:         must("DB_NAME"),      // database name
        JWTSecret:      must("JWT_SECRET"),   // secret used for signing JWTs
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),

        FlowAPIKey:     must("FLOW_API_KEY"),
        FlowSecretKey:  must("FLOW_SECRET_KEY"),
        FlowBaseURL:    must("FLOW_BASE_URL"),
        FlowConfirmURL: must("FLOW_CONFIRM_URL"),
        FlowReturnURL:  must("FLOW_RETURN_URL"),

        FrontendURL:      must("FRONTEND_URL"),
        PaymentWindowMin: intOr("PAYMENT_WINDOW_MIN", 30),
        SweepIntervalSec: intOr("SWEEP_INTERVAL_SEC", 60),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// intOr reads an optional integer variable, falling back to def when it is
// unset or malformed.
func intOr(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        return def
    }
    return n
}
