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

    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/queue"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/repository"
)

// fakeBookingStore backs the handler with canned responses.
type fakeBookingStore struct {
    createErr error
    created   *model.Booking
    byID      map[uint64]model.Booking
    cancelErr error
    deleteErr error
}

func (f *fakeBookingStore) Create(_ context.Context, cabin model.Cabin, userID uint64, in, out time.Time, window time.Duration) (model.Booking, error) {
    if f.createErr != nil {
        return model.Booking{}, f.createErr
    }
    nights := model.Nights(in, out)
    b := model.Booking{
        ID:               1,
        BookingNumber:    "BK-00000001",
        CabinID:          cabin.ID,
        UserID:           userID,
        CheckIn:          in,
        CheckOut:         out,
        Nights:           nights,
        TotalPrice:       cabin.PricePerNight * int64(nights),
        Status:           model.BookingPending,
        PaymentStatus:    model.PaymentPending,
        PaymentExpiresAt: time.Now().UTC().Add(window),
    }
    f.created = &b
    return b, nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id uint64) (model.Booking, error) {
    b, ok := f.byID[id]
    if !ok {
        return model.Booking{}, repository.ErrNotFound
    }
    return b, nil
}

func (f *fakeBookingStore) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
    out := []model.Booking{}
    for _, b := range f.byID {
        if b.UserID == userID {
            out = append(out, b)
        }
    }
    return out, nil
}

func (f *fakeBookingStore) OccupiedRanges(context.Context, uint64) ([]repository.DateRange, error) {
    return []repository.DateRange{}, nil
}

func (f *fakeBookingStore) Cancel(_ context.Context, id uint64) (model.Booking, error) {
    if f.cancelErr != nil {
        return model.Booking{}, f.cancelErr
    }
    b := f.byID[id]
    b.Status = model.BookingCancelled
    b.PaymentStatus = model.PaymentFailed
    f.byID[id] = b
    return b, nil
}

func (f *fakeBookingStore) ConfirmByUser(_ context.Context, id, userID uint64) (model.Booking, error) {
    b, ok := f.byID[id]
    if !ok {
        return model.Booking{}, repository.ErrNotFound
    }
    if b.UserID != userID {
        return model.Booking{}, repository.ErrForbidden
    }
    b.Status = model.BookingConfirmed
    b.PaymentStatus = model.PaymentCompleted
    f.byID[id] = b
    return b, nil
}

func (f *fakeBookingStore) Delete(_ context.Context, id uint64) error {
    if f.deleteErr != nil {
        return f.deleteErr
    }
    delete(f.byID, id)
    return nil
}

func bookingTestHandler(store *fakeBookingStore) (*BookingHandler, *[]queue.NotificationEvent) {
    cabins := &fakeCabins{cabins: map[uint64]model.Cabin{3: {ID: 3, Title: "Refugio Sur", PricePerNight: 40000}}}
    users := &fakeUsers{users: map[uint64]model.User{11: {ID: 11, Email: "ana@example.com", Name: "Ana"}}}
    published := &[]queue.NotificationEvent{}
    h := NewBookingHandler(store, cabins, users, func(_ context.Context, ev queue.NotificationEvent) error {
        *published = append(*published, ev)
        return nil
    }, 30*time.Minute)
    return h, published
}

func jsonContext(e *echo.Echo, method, path, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
    req := httptest.NewRequest(method, path, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if userID != 0 {
        c.Set("user_id", float64(userID))
        c.Set("role", role)
    }
    return c, rec
}

func TestCreateBookingHappyPath(t *testing.T) {
    store := &fakeBookingStore{byID: map[uint64]model.Booking{}}
    h, _ := bookingTestHandler(store)

    e := echo.New()
    c, rec := jsonContext(e, http.MethodPost, "/v1/bookings",
        `{"cabin_id":3,"check_in":"2026-01-10","check_out":"2026-01-13"}`, 11, model.RoleUser)

    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusCreated, rec.Code)
    require.NotNil(t, store.created)
    assert.Equal(t, 3, store.created.Nights)
    assert.Equal(t, int64(120000), store.created.TotalPrice)
    assert.Contains(t, rec.Body.String(), `"booking_number":"BK-00000001"`)
}

func TestCreateBookingRejectsReversedRange(t *testing.T) {
    store := &fakeBookingStore{byID: map[uint64]model.Booking{}}
    h, _ := bookingTestHandler(store)

    e := echo.New()
    c, rec := jsonContext(e, http.MethodPost, "/v1/bookings",
        `{"cabin_id":3,"check_in":"2026-01-13","check_out":"2026-01-10"}`, 11, model.RoleUser)

    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Nil(t, store.created)
}

func TestCreateBookingDateConflict(t *testing.T) {
    store := &fakeBookingStore{byID: map[uint64]model.Booking{}, createErr: repository.ErrDateConflict}
    h, _ := bookingTestHandler(store)

    e := echo.New()
    c, rec := jsonContext(e, http.MethodPost, "/v1/bookings",
        `{"cabin_id":3,"check_in":"2026-01-10","check_out":"2026-01-13"}`, 11, model.RoleUser)

    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateBookingUnknownCabin(t *testing.T) {
    store := &fakeBookingStore{byID: map[uint64]model.Booking{}}
    h, _ := bookingTestHandler(store)

    e := echo.New()
    c, rec := jsonContext(e, http.MethodPost, "/v1/bookings",
        `{"cabin_id":999,"check_in":"2026-01-10","check_out":"2026-01-13"}`, 11, model.RoleUser)

    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func pendingBooking(id, userID uint64) model.Booking {
    return model.Booking{
        ID:            id,
        BookingNumber: "BK-00000042",
        CabinID:       3,
        UserID:        userID,
        CheckIn:       time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
        CheckOut:      time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC),
        Nights:        3,
        TotalPrice:    120000,
        Status:        model.BookingPending,
        PaymentStatus: model.PaymentPending,
    }
}

func TestCancelBookingForbiddenForStranger(t *testing.T) {
    store := &fakeBookingStore{byID: map[uint64]model.Booking{42: pendingBooking(42, 11)}}
    h, published := bookingTestHandler(store)

    e := echo.New()
    c, rec := jsonContext(e, http.MethodPatch, "/v1/bookings/42/cancel", "", 999, model.RoleUser)
    c.SetParamNames("id")
    c.SetParamValues("42")

    require.NoError(t, h.Cancel(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.Empty(t, *published)
}

func TestCancelBookingAllowedForStaff(t *testing.T) {
    store := &fakeBookingStore{byID: map[uint64]model.Booking{42: pendingBooking(42, 11)}}
    h, published := bookingTestHandler(store)

    e := echo.New()
    c, rec := jsonContext(e, http.MethodPatch, "/v1/bookings/42/cancel", "", 500, model.RoleAdmin)
    c.SetParamNames("id")
    c.SetParamValues("42")

    require.NoError(t, h.Cancel(c))
    assert.Equal(t, http.StatusOK, rec.Code)
    require.Len(t, *published, 1)
    ev := (*published)[0]
    assert.Equal(t, queue.KindBookingCancelled, ev.Kind)
    // The notification goes to the guest, not the staff member.
    assert.Equal(t, "ana@example.com", ev.Email)
}

func TestCancelBookingConflictOnTerminalStatus(t *testing.T) {
    store := &fakeBookingStore{
        byID:      map[uint64]model.Booking{42: pendingBooking(42, 11)},
        cancelErr: repository.ErrConflict,
    }
    h, published := bookingTestHandler(store)

    e := echo.New()
    c, rec := jsonContext(e, http.MethodPatch, "/v1/bookings/42/cancel", "", 11, model.RoleUser)
    c.SetParamNames("id")
    c.SetParamValues("42")

    require.NoError(t, h.Cancel(c))
    assert.Equal(t, http.StatusConflict, rec.Code)
    assert.Empty(t, *published)
}

func TestDeleteBookingOnlyWhenCancelled(t *testing.T) {
    store := &fakeBookingStore{
        byID:      map[uint64]model.Booking{42: pendingBooking(42, 11)},
        deleteErr: repository.ErrConflict,
    }
    h, _ := bookingTestHandler(store)

    e := echo.New()
    c, rec := jsonContext(e, http.MethodDelete, "/v1/bookings/42", "", 11, model.RoleUser)
    c.SetParamNames("id")
    c.SetParamValues("42")

    require.NoError(t, h.Delete(c))
    assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetBookingHidesForeign(t *testing.T) {
    store := &fakeBookingStore{byID: map[uint64]model.Booking{42: pendingBooking(42, 11)}}
    h, _ := bookingTestHandler(store)

    e := echo.New()
    c, rec := jsonContext(e, http.MethodGet, "/v1/bookings/42", "", 999, model.RoleUser)
    c.SetParamNames("id")
    c.SetParamValues("42")

    require.NoError(t, h.Get(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)

    // Support staff can read any booking.
    c2, rec2 := jsonContext(e, http.MethodGet, "/v1/bookings/42", "", 500, model.RoleSupport)
    c2.SetParamNames("id")
    c2.SetParamValues("42")
    require.NoError(t, h.Get(c2))
    assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestConfirmBookingPublishesConfirmation(t *testing.T) {
    store := &fakeBookingStore{byID: map[uint64]model.Booking{42: pendingBooking(42, 11)}}
    h, published := bookingTestHandler(store)

    e := echo.New()
    c, rec := jsonContext(e, http.MethodPatch, "/v1/bookings/42/confirm", "", 11, model.RoleUser)
    c.SetParamNames("id")
    c.SetParamValues("42")

    require.NoError(t, h.Confirm(c))
    assert.Equal(t, http.StatusOK, rec.Code)
    require.Len(t, *published, 1)
    assert.Equal(t, queue.KindBookingConfirmed, (*published)[0].Kind)
    assert.Equal(t, model.BookingConfirmed, store.byID[42].Status)
}
