package handler

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/config"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/flow"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/queue"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/repository"
)

type fakeGateway struct {
    createFn func(ctx context.Context, o flow.CreateOrder) (flow.CreateResponse, error)
    statusFn func(ctx context.Context, token string) (flow.PaymentStatus, error)
}

func (f *fakeGateway) CreatePayment(ctx context.Context, o flow.CreateOrder) (flow.CreateResponse, error) {
    return f.createFn(ctx, o)
}

func (f *fakeGateway) GetPaymentStatus(ctx context.Context, token string) (flow.PaymentStatus, error) {
    return f.statusFn(ctx, token)
}

type fakePaymentStore struct {
    byID     map[uint64]model.Booking
    byNumber map[string]model.Booking

    appliedNumber string
    appliedPaid   bool
    applyResult   model.Booking
    applyChanged  bool
    applyErr      error

    orderBooking uint64
    orderToken   string
    orderFlow    int64
}

func (f *fakePaymentStore) GetByID(_ context.Context, id uint64) (model.Booking, error) {
    b, ok := f.byID[id]
    if !ok {
        return model.Booking{}, repository.ErrNotFound
    }
    return b, nil
}

func (f *fakePaymentStore) GetByNumber(_ context.Context, number string) (model.Booking, error) {
    b, ok := f.byNumber[number]
    if !ok {
        return model.Booking{}, repository.ErrNotFound
    }
    return b, nil
}

func (f *fakePaymentStore) SetPaymentOrder(_ context.Context, id uint64, token string, flowOrder int64) error {
    f.orderBooking, f.orderToken, f.orderFlow = id, token, flowOrder
    return nil
}

func (f *fakePaymentStore) ApplyPaymentResult(_ context.Context, number string, paid bool) (model.Booking, bool, error) {
    f.appliedNumber, f.appliedPaid = number, paid
    return f.applyResult, f.applyChanged, f.applyErr
}

type fakeCabins struct{ cabins map[uint64]model.Cabin }

func (f *fakeCabins) GetByID(_ context.Context, id uint64) (model.Cabin, error) {
    c, ok := f.cabins[id]
    if !ok {
        return model.Cabin{}, repository.ErrNotFound
    }
    return c, nil
}

type fakeUsers struct{ users map[uint64]model.User }

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
    u, ok := f.users[id]
    if !ok {
        return model.User{}, repository.ErrNotFound
    }
    return u, nil
}

func testPaymentDeps() (*fakePaymentStore, *fakeCabins, *fakeUsers) {
    pending := model.Booking{
        ID:               7,
        BookingNumber:    "BK-00000007",
        CabinID:          3,
        UserID:           11,
        CheckIn:          time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
        CheckOut:         time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC),
        Nights:           3,
        TotalPrice:       150000,
        Status:           model.BookingPending,
        PaymentStatus:    model.PaymentPending,
        PaymentExpiresAt: time.Now().UTC().Add(30 * time.Minute),
    }
    store := &fakePaymentStore{
        byID:     map[uint64]model.Booking{7: pending},
        byNumber: map[string]model.Booking{"BK-00000007": pending},
    }
    cabins := &fakeCabins{cabins: map[uint64]model.Cabin{3: {ID: 3, Title: "Cabaña del Lago", PricePerNight: 50000}}}
    users := &fakeUsers{users: map[uint64]model.User{11: {ID: 11, Email: "ana@example.com", Name: "Ana"}}}
    return store, cabins, users
}

func webhookContext(e *echo.Echo, token string) (echo.Context, *httptest.ResponseRecorder) {
    body := ""
    if token != "" {
        body = "token=" + token
    }
    req := httptest.NewRequest(http.MethodPost, "/v1/payments/confirm", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func TestWebhookPaidConfirmsBookingAndNotifies(t *testing.T) {
    store, cabins, users := testPaymentDeps()
    confirmed := store.byID[7]
    confirmed.Status = model.BookingConfirmed
    confirmed.PaymentStatus = model.PaymentCompleted
    store.applyResult = confirmed
    store.applyChanged = true

    gw := &fakeGateway{statusFn: func(_ context.Context, token string) (flow.PaymentStatus, error) {
        assert.Equal(t, "tok-1", token)
        return flow.PaymentStatus{CommerceOrder: "BK-00000007", Status: 2}, nil
    }}

    var published []queue.NotificationEvent
    h := NewPaymentHandler(config.Config{}, gw, store, cabins, users, func(_ context.Context, ev queue.NotificationEvent) error {
        published = append(published, ev)
        return nil
    })

    e := echo.New()
    c, rec := webhookContext(e, "tok-1")
    require.NoError(t, h.Webhook(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "BK-00000007", store.appliedNumber)
    assert.True(t, store.appliedPaid)
    require.Len(t, published, 1)
    assert.Equal(t, queue.KindBookingConfirmed, published[0].Kind)
    assert.Equal(t, "ana@example.com", published[0].Email)
    assert.Equal(t, "Cabaña del Lago", published[0].CabinTitle)
}

func TestWebhookRejectedCancelsBooking(t *testing.T) {
    store, cabins, users := testPaymentDeps()
    cancelled := store.byID[7]
    cancelled.Status = model.BookingCancelled
    cancelled.PaymentStatus = model.PaymentFailed
    store.applyResult = cancelled
    store.applyChanged = true

    gw := &fakeGateway{statusFn: func(context.Context, string) (flow.PaymentStatus, error) {
        return flow.PaymentStatus{CommerceOrder: "BK-00000007", Status: -1}, nil
    }}

    var published []queue.NotificationEvent
    h := NewPaymentHandler(config.Config{}, gw, store, cabins, users, func(_ context.Context, ev queue.NotificationEvent) error {
        published = append(published, ev)
        return nil
    })

    e := echo.New()
    c, rec := webhookContext(e, "tok-2")
    require.NoError(t, h.Webhook(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.False(t, store.appliedPaid)
    require.Len(t, published, 1)
    assert.Equal(t, queue.KindBookingCancelled, published[0].Kind)
}

func TestWebhookPendingIsNoOp(t *testing.T) {
    store, cabins, users := testPaymentDeps()
    gw := &fakeGateway{statusFn: func(context.Context, string) (flow.PaymentStatus, error) {
        return flow.PaymentStatus{CommerceOrder: "BK-00000007", Status: 0}, nil
    }}
    h := NewPaymentHandler(config.Config{}, gw, store, cabins, users, nil)

    e := echo.New()
    c, rec := webhookContext(e, "tok-3")
    require.NoError(t, h.Webhook(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    // The store must not have been touched for a pending status.
    assert.Empty(t, store.appliedNumber)
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
    store, cabins, users := testPaymentDeps()
    already := store.byID[7]
    already.Status = model.BookingConfirmed
    store.applyResult = already
    store.applyChanged = false // repository saw a non-pending booking

    gw := &fakeGateway{statusFn: func(context.Context, string) (flow.PaymentStatus, error) {
        return flow.PaymentStatus{CommerceOrder: "BK-00000007", Status: 1}, nil
    }}

    var published []queue.NotificationEvent
    h := NewPaymentHandler(config.Config{}, gw, store, cabins, users, func(_ context.Context, ev queue.NotificationEvent) error {
        published = append(published, ev)
        return nil
    })

    e := echo.New()
    c, rec := webhookContext(e, "tok-4")
    require.NoError(t, h.Webhook(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Empty(t, published, "redelivery must not email twice")
}

func TestWebhookMissingToken(t *testing.T) {
    store, cabins, users := testPaymentDeps()
    gw := &fakeGateway{statusFn: func(context.Context, string) (flow.PaymentStatus, error) {
        t.Fatal("gateway must not be called without a token")
        return flow.PaymentStatus{}, nil
    }}
    h := NewPaymentHandler(config.Config{}, gw, store, cabins, users, nil)

    e := echo.New()
    c, rec := webhookContext(e, "")
    require.NoError(t, h.Webhook(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReturnRedirectsWithoutMutation(t *testing.T) {
    store, cabins, users := testPaymentDeps()
    gw := &fakeGateway{}
    h := NewPaymentHandler(config.Config{FrontendURL: "https://cabanas.example"}, gw, store, cabins, users, nil)

    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/payments/return/7", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetParamNames("bookingID")
    c.SetParamValues("7")

    require.NoError(t, h.Return(c))
    assert.Equal(t, http.StatusFound, rec.Code)
    assert.Equal(t, "https://cabanas.example/bookings/7/status", rec.Header().Get("Location"))
    assert.Empty(t, store.appliedNumber)
}

func TestCreateOrderRejectsForeignBooking(t *testing.T) {
    store, cabins, users := testPaymentDeps()
    gw := &fakeGateway{createFn: func(context.Context, flow.CreateOrder) (flow.CreateResponse, error) {
        t.Fatal("gateway must not be called for a foreign booking")
        return flow.CreateResponse{}, nil
    }}
    h := NewPaymentHandler(config.Config{}, gw, store, cabins, users, nil)

    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/payments/create", strings.NewReader(`{"booking_id":7}`))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", float64(999)) // someone else

    require.NoError(t, h.CreateOrder(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateOrderHappyPath(t *testing.T) {
    store, cabins, users := testPaymentDeps()
    gw := &fakeGateway{createFn: func(_ context.Context, o flow.CreateOrder) (flow.CreateResponse, error) {
        assert.Equal(t, "BK-00000007", o.CommerceOrder)
        assert.Equal(t, int64(150000), o.Amount)
        assert.Equal(t, "CLP", o.Currency)
        assert.Equal(t, "ana@example.com", o.Email)
        return flow.CreateResponse{URL: "https://flow.example/pay", Token: "tok-9", FlowOrder: 4242}, nil
    }}
    h := NewPaymentHandler(config.Config{FlowConfirmURL: "https://api.example/v1/payments/confirm"}, gw, store, cabins, users, nil)

    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/payments/create", strings.NewReader(`{"booking_id":7}`))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", float64(11))

    require.NoError(t, h.CreateOrder(c))
    assert.Equal(t, http.StatusCreated, rec.Code)
    assert.Equal(t, uint64(7), store.orderBooking)
    assert.Equal(t, "tok-9", store.orderToken)
    assert.Equal(t, int64(4242), store.orderFlow)
    assert.Contains(t, rec.Body.String(), "https://flow.example/pay?token=tok-9")
}
