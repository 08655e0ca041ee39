// Package flow is a small client for the Flow payment API. Requests
// carry an apiKey parameter and an HMAC-SHA256 signature computed over
// the remaining parameters; responses are JSON. Only the two endpoints
// the booking flow needs are implemented: payment/create and
// payment/getStatus.
package flow

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "sort"
    "strings"
    "time"

    "crypto/hmac"
    "crypto/sha256"
    "encoding/hex"
)

// Payment verdicts derived from Flow's numeric status codes.
type Verdict int

const (
    VerdictUnknown  Verdict = iota // unrecognised status code
    VerdictPaid                    // codes 1, 2
    VerdictPending                 // code 0
    VerdictRejected                // codes -1, 3
)

// Classify maps a Flow status code to a verdict. The mapping is fixed
// by the gateway and must not change: {1,2} paid, {0} pending,
// {-1,3} rejected.
func Classify(status int) Verdict {
    switch status {
    case 1, 2:
        return VerdictPaid
    case 0:
        return VerdictPending
    case -1, 3:
        return VerdictRejected
    }
    return VerdictUnknown
}

// UpstreamError wraps a gateway failure so handlers can surface the
// gateway's own message with a 500.
type UpstreamError struct {
    StatusCode int
    Message    string
}

func (e *UpstreamError) Error() string {
    return fmt.Sprintf("flow: gateway error (http %d): %s", e.StatusCode, e.Message)
}

// Client issues signed requests to the Flow API.
type Client struct {
    APIKey    string
    SecretKey string
    BaseURL   string // e.g. https://sandbox.flow.cl/api
    HTTP      *http.Client
}

// New returns a Client with a default HTTP timeout.
func New(apiKey, secretKey, baseURL string) *Client {
    return &Client{
        APIKey:    apiKey,
        SecretKey: secretKey,
        BaseURL:   strings.TrimRight(baseURL, "/"),
        HTTP:      &http.Client{Timeout: 15 * time.Second},
    }
}

// Sign computes the request signature: parameter keys sorted
// lexicographically, each key concatenated with its value, the whole
// string HMAC-SHA256 signed with the secret key, hex encoded.
func (c *Client) Sign(params map[string]string) string {
    keys := make([]string, 0, len(params))
    for k := range params {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    var sb strings.Builder
    for _, k := range keys {
        sb.WriteString(k)
        sb.WriteString(params[k])
    }
    mac := hmac.New(sha256.New, []byte(c.SecretKey))
    mac.Write([]byte(sb.String()))
    return hex.EncodeToString(mac.Sum(nil))
}

// CreateOrder is the input for CreatePayment.
type CreateOrder struct {
    CommerceOrder   string // merchant order id; we use the booking number
    Subject         string
    Currency        string
    Amount          int64
    Email           string
    URLConfirmation string // server-to-server webhook
    URLReturn       string // browser redirect
}

// CreateResponse is Flow's answer to payment/create.
type CreateResponse struct {
    URL       string `json:"url"`
    Token     string `json:"token"`
    FlowOrder int64  `json:"flowOrder"`
}

// RedirectURL builds the hosted payment page URL the payer's browser
// should be sent to.
func RedirectURL(r CreateResponse) string {
    return r.URL + "?token=" + r.Token
}

// CreatePayment creates a payment order. The request is form-encoded
// and signed; a non-2xx response is returned as *UpstreamError with as
// much of the gateway's message as available.
func (c *Client) CreatePayment(ctx context.Context, o CreateOrder) (CreateResponse, error) {
    var out CreateResponse
    params := map[string]string{
        "apiKey":          c.APIKey,
        "commerceOrder":   o.CommerceOrder,
        "subject":         o.Subject,
        "currency":        o.Currency,
        "amount":          fmt.Sprintf("%d", o.Amount),
        "email":           o.Email,
        "urlConfirmation": o.URLConfirmation,
        "urlReturn":       o.URLReturn,
    }
    params["s"] = c.Sign(params)

    form := url.Values{}
    for k, v := range params {
        form.Set(k, v)
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost,
        c.BaseURL+"/payment/create", strings.NewReader(form.Encode()))
    if err != nil {
        return out, err
    }
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

    body, err := c.do(req)
    if err != nil {
        return out, err
    }
    if err := json.Unmarshal(body, &out); err != nil {
        return out, fmt.Errorf("flow: decode create response: %w", err)
    }
    return out, nil
}

// PaymentStatus is Flow's answer to payment/getStatus.
type PaymentStatus struct {
    FlowOrder     int64  `json:"flowOrder"`
    CommerceOrder string `json:"commerceOrder"`
    RequestDate   string `json:"requestDate"`
    Status        int    `json:"status"`
    Subject       string `json:"subject"`
    Currency      string `json:"currency"`
    Amount        string `json:"amount"`
    Payer         string `json:"payer"`
}

// GetPaymentStatus fetches the status of a payment by its token using
// a signed GET request.
func (c *Client) GetPaymentStatus(ctx context.Context, token string) (PaymentStatus, error) {
    var out PaymentStatus
    params := map[string]string{
        "apiKey": c.APIKey,
        "token":  token,
    }
    params["s"] = c.Sign(params)

    q := url.Values{}
    for k, v := range params {
        q.Set(k, v)
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodGet,
        c.BaseURL+"/payment/getStatus?"+q.Encode(), nil)
    if err != nil {
        return out, err
    }
    body, err := c.do(req)
    if err != nil {
        return out, err
    }
    if err := json.Unmarshal(body, &out); err != nil {
        return out, fmt.Errorf("flow: decode status response: %w", err)
    }
    return out, nil
}

// do executes the request and converts non-2xx answers into
// *UpstreamError, preferring the gateway's own "message" field.
func (c *Client) do(req *http.Request) ([]byte, error) {
    resp, err := c.HTTP.Do(req)
    if err != nil {
        return nil, fmt.Errorf("flow: request failed: %w", err)
    }
    defer resp.Body.Close()
    body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
    if err != nil {
        return nil, fmt.Errorf("flow: read response: %w", err)
    }
    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        msg := strings.TrimSpace(string(body))
        var apiErr struct {
            Message string `json:"message"`
        }
        if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
            msg = apiErr.Message
        }
        return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
    }
    return body, nil
}
