package flow

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "net/url"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestSignDeterministic(t *testing.T) {
    c := New("key", "secret", "https://example.test/api")
    params := map[string]string{
        "apiKey":        "key",
        "commerceOrder": "BK-00000001",
        "amount":        "300000",
    }
    first := c.Sign(params)
    second := c.Sign(params)
    assert.Equal(t, first, second, "same parameters must yield the same digest")
    assert.Len(t, first, 64) // hex-encoded SHA-256

    params["amount"] = "300001"
    assert.NotEqual(t, first, c.Sign(params), "changing any value must change the digest")
}

func TestSignIgnoresInsertionOrder(t *testing.T) {
    c := New("key", "secret", "https://example.test/api")
    a := map[string]string{"b": "2", "a": "1", "c": "3"}
    b := map[string]string{"c": "3", "a": "1", "b": "2"}
    assert.Equal(t, c.Sign(a), c.Sign(b))
}

func TestClassify(t *testing.T) {
    cases := map[int]Verdict{
        1:   VerdictPaid,
        2:   VerdictPaid,
        0:   VerdictPending,
        -1:  VerdictRejected,
        3:   VerdictRejected,
        4:   VerdictUnknown,
        99:  VerdictUnknown,
        -99: VerdictUnknown,
    }
    for status, want := range cases {
        assert.Equal(t, want, Classify(status), "status %d", status)
    }
}

func TestCreatePayment(t *testing.T) {
    var got url.Values
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, http.MethodPost, r.Method)
        require.Equal(t, "/api/payment/create", r.URL.Path)
        require.NoError(t, r.ParseForm())
        got = r.PostForm
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"url":"https://pay.test/web","token":"tok123","flowOrder":555}`))
    }))
    defer srv.Close()

    c := New("apikey", "secret", srv.URL+"/api")
    resp, err := c.CreatePayment(context.Background(), CreateOrder{
        CommerceOrder:   "BK-00000001",
        Subject:         "Cabin booking BK-00000001",
        Currency:        "CLP",
        Amount:          300000,
        Email:           "guest@example.com",
        URLConfirmation: "https://api.test/v1/payments/confirm",
        URLReturn:       "https://api.test/v1/payments/return/1",
    })
    require.NoError(t, err)
    assert.Equal(t, "tok123", resp.Token)
    assert.Equal(t, int64(555), resp.FlowOrder)
    assert.Equal(t, "https://pay.test/web?token=tok123", RedirectURL(resp))

    // the form must be signed over its own parameters
    sig := got.Get("s")
    require.NotEmpty(t, sig)
    params := map[string]string{}
    for k := range got {
        if k != "s" {
            params[k] = got.Get(k)
        }
    }
    assert.Equal(t, c.Sign(params), sig)
}

func TestCreatePaymentUpstreamError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusUnauthorized)
        _, _ = w.Write([]byte(`{"code":401,"message":"invalid api key"}`))
    }))
    defer srv.Close()

    c := New("bad", "secret", srv.URL)
    _, err := c.CreatePayment(context.Background(), CreateOrder{CommerceOrder: "BK-1"})
    var ue *UpstreamError
    require.True(t, errors.As(err, &ue))
    assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)
    assert.Contains(t, ue.Message, "invalid api key")
}

func TestGetPaymentStatus(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, http.MethodGet, r.Method)
        require.Equal(t, "/payment/getStatus", r.URL.Path)
        q := r.URL.Query()
        require.Equal(t, "tok123", q.Get("token"))
        require.NotEmpty(t, q.Get("s"))
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"flowOrder":555,"commerceOrder":"BK-00000001","status":2,"amount":"300000","payer":"guest@example.com"}`))
    }))
    defer srv.Close()

    c := New("apikey", "secret", srv.URL)
    st, err := c.GetPaymentStatus(context.Background(), "tok123")
    require.NoError(t, err)
    assert.Equal(t, "BK-00000001", st.CommerceOrder)
    assert.Equal(t, VerdictPaid, Classify(st.Status))
}
