package handler

import (
    "context"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/queue"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/repository"
)

// bookingStore is the slice of the booking repository this handler
// consumes.  Declared here so tests can substitute an in-memory fake.
type bookingStore interface {
    Create(ctx context.Context, cabin model.Cabin, userID uint64, checkIn, checkOut time.Time, window time.Duration) (model.Booking, error)
    GetByID(ctx context.Context, id uint64) (model.Booking, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
    OccupiedRanges(ctx context.Context, cabinID uint64) ([]repository.DateRange, error)
    Cancel(ctx context.Context, id uint64) (model.Booking, error)
    ConfirmByUser(ctx context.Context, id, userID uint64) (model.Booking, error)
    Delete(ctx context.Context, id uint64) error
}

// cabinGetter resolves the cabin a booking targets.
type cabinGetter interface {
    GetByID(ctx context.Context, id uint64) (model.Cabin, error)
}

// userGetter resolves recipients for notification events.
type userGetter interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// notifyFunc publishes a notification event.  Always best-effort:
// callers log failures and carry on.
type notifyFunc func(ctx context.Context, ev queue.NotificationEvent) error

// BookingHandler owns the booking lifecycle endpoints.
type BookingHandler struct {
    Bookings bookingStore
    Cabins   cabinGetter
    Users    userGetter
    Notify   notifyFunc
    Window   time.Duration // how long a pending booking may await payment
}

func NewBookingHandler(bookings bookingStore, cabins cabinGetter, users userGetter, notify notifyFunc, window time.Duration) *BookingHandler {
    if bookings == nil || cabins == nil || users == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    if notify == nil {
        notify = func(context.Context, queue.NotificationEvent) error { return nil }
    }
    return &BookingHandler{Bookings: bookings, Cabins: cabins, Users: users, Notify: notify, Window: window}
}

type bookingReq struct {
    CabinID  uint64 `json:"cabin_id"`
    CheckIn  string `json:"check_in"`  // YYYY-MM-DD
    CheckOut string `json:"check_out"` // YYYY-MM-DD
}

type bookingResp struct {
    ID               uint64     `json:"id"`
    BookingNumber    string     `json:"booking_number"`
    CabinID          uint64     `json:"cabin_id"`
    UserID           uint64     `json:"user_id"`
    CheckIn          string     `json:"check_in"`
    CheckOut         string     `json:"check_out"`
    Nights           int        `json:"nights"`
    TotalPrice       int64      `json:"total_price"`
    Status           string     `json:"status"`
    PaymentStatus    string     `json:"payment_status"`
    PaymentExpiresAt time.Time  `json:"payment_expires_at"`
    PaymentDate      *time.Time `json:"payment_date,omitempty"`
}

const dateLayout = "2006-01-02"

func toBookingResp(b model.Booking) bookingResp {
    return bookingResp{
        ID:               b.ID,
        BookingNumber:    b.BookingNumber,
        CabinID:          b.CabinID,
        UserID:           b.UserID,
        CheckIn:          b.CheckIn.Format(dateLayout),
        CheckOut:         b.CheckOut.Format(dateLayout),
        Nights:           b.Nights,
        TotalPrice:       b.TotalPrice,
        Status:           b.Status,
        PaymentStatus:    b.PaymentStatus,
        PaymentExpiresAt: b.PaymentExpiresAt,
        PaymentDate:      b.PaymentDate,
    }
}

// Create reserves a cabin for a date range.  The overlap check and the
// insert run in one transaction at the repository, so a second request
// for the same nights gets a 409.
func (h *BookingHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req bookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    checkIn, err := time.Parse(dateLayout, req.CheckIn)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
    }
    checkOut, err := time.Parse(dateLayout, req.CheckOut)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
    }
    if !checkOut.After(checkIn) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be after check_in"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cabin, err := h.Cabins.GetByID(ctx, req.CabinID)
    if err != nil {
        return repoError(c, err, "conflict")
    }

    b, err := h.Bookings.Create(ctx, cabin, uid, checkIn, checkOut, h.Window)
    if err != nil {
        return repoError(c, err, "dates not available")
    }
    return c.JSON(http.StatusCreated, toBookingResp(b))
}

// ListMine returns the authenticated user's bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    bookings, err := h.Bookings.ListByUser(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
    }
    out := make([]bookingResp, 0, len(bookings))
    for _, b := range bookings {
        out = append(out, toBookingResp(b))
    }
    return c.JSON(http.StatusOK, out)
}

// Get returns one booking.  Guests see their own; staff see all.
func (h *BookingHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.Bookings.GetByID(ctx, id)
    if err != nil {
        return repoError(c, err, "conflict")
    }
    if b.UserID != uid && !isStaff(c) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    return c.JSON(http.StatusOK, toBookingResp(b))
}

// Occupied is the public availability calendar: the non-cancelled
// [check_in, check_out) ranges for a cabin.
func (h *BookingHandler) Occupied(c echo.Context) error {
    cabinID, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ranges, err := h.Bookings.OccupiedRanges(ctx, cabinID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list ranges failed"})
    }
    return c.JSON(http.StatusOK, ranges)
}

// Cancel moves a pending booking to cancelled.  Allowed for the guest
// who made it or for staff; repeated cancels are no-ops.
func (h *BookingHandler) Cancel(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.Bookings.GetByID(ctx, id)
    if err != nil {
        return repoError(c, err, "conflict")
    }
    if b.UserID != uid && !isStaff(c) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    b, err = h.Bookings.Cancel(ctx, id)
    if err != nil {
        return repoError(c, err, "booking can no longer be cancelled")
    }

    h.publishBookingEvent(ctx, queue.KindBookingCancelled, b)
    return c.JSON(http.StatusOK, toBookingResp(b))
}

// Confirm lets the guest mark their pending booking confirmed after the
// gateway reported the payment paid out-of-band.  The webhook remains
// the normal path; this endpoint only covers gateway callbacks that
// never arrive.
func (h *BookingHandler) Confirm(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.Bookings.ConfirmByUser(ctx, id, uid)
    if err != nil {
        return repoError(c, err, "booking is not pending")
    }

    h.publishBookingEvent(ctx, queue.KindBookingConfirmed, b)
    return c.JSON(http.StatusOK, toBookingResp(b))
}

// Delete removes a cancelled booking from the guest's history.
func (h *BookingHandler) Delete(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.Bookings.GetByID(ctx, id)
    if err != nil {
        return repoError(c, err, "conflict")
    }
    if b.UserID != uid && !isStaff(c) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if err := h.Bookings.Delete(ctx, id); err != nil {
        return repoError(c, err, "only cancelled bookings can be deleted")
    }
    return c.NoContent(http.StatusNoContent)
}

// publishBookingEvent emits a notification for a booking transition.
// The cabin title and recipient are resolved best-effort; a publish
// failure is logged and never fails the request.
func (h *BookingHandler) publishBookingEvent(ctx context.Context, kind string, b model.Booking) {
    u, err := h.Users.GetByID(ctx, b.UserID)
    if err != nil {
        log.Printf("[booking] skip %s notification for %s: load user: %v", kind, b.BookingNumber, err)
        return
    }
    ev := queue.NotificationEvent{
        Kind:          kind,
        Email:         u.Email,
        Name:          u.Name,
        BookingNumber: b.BookingNumber,
        CheckIn:       b.CheckIn.Format(dateLayout),
        CheckOut:      b.CheckOut.Format(dateLayout),
        TotalPrice:    b.TotalPrice,
    }
    if cabin, err := h.Cabins.GetByID(ctx, b.CabinID); err == nil {
        ev.CabinTitle = cabin.Title
    }
    if err := h.Notify(ctx, ev); err != nil {
        log.Printf("[booking] publish %s for %s failed: %v", kind, b.BookingNumber, err)
    }
}
