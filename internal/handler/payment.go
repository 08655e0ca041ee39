package handler

import (
    "context"
    "errors"
    "fmt"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/config"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/flow"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/queue"
)

// paymentGateway is the slice of the Flow client this handler consumes.
type paymentGateway interface {
    CreatePayment(ctx context.Context, o flow.CreateOrder) (flow.CreateResponse, error)
    GetPaymentStatus(ctx context.Context, token string) (flow.PaymentStatus, error)
}

// paymentStore is the slice of the booking repository the payment flow
// touches.  ApplyPaymentResult is the only mutation; it is transactional
// and idempotent at the repository.
type paymentStore interface {
    GetByID(ctx context.Context, id uint64) (model.Booking, error)
    GetByNumber(ctx context.Context, number string) (model.Booking, error)
    SetPaymentOrder(ctx context.Context, id uint64, token string, flowOrder int64) error
    ApplyPaymentResult(ctx context.Context, bookingNumber string, paid bool) (model.Booking, bool, error)
}

// PaymentHandler glues the booking lifecycle to the Flow gateway:
// order creation, the server-to-server webhook, the browser return and
// a status passthrough.
type PaymentHandler struct {
    Cfg      config.Config
    Gateway  paymentGateway
    Bookings paymentStore
    Cabins   cabinGetter
    Users    userGetter
    Notify   notifyFunc
}

func NewPaymentHandler(cfg config.Config, gw paymentGateway, bookings paymentStore, cabins cabinGetter, users userGetter, notify notifyFunc) *PaymentHandler {
    if gw == nil || bookings == nil || cabins == nil || users == nil {
        panic("nil dependency passed to NewPaymentHandler")
    }
    if notify == nil {
        notify = func(context.Context, queue.NotificationEvent) error { return nil }
    }
    return &PaymentHandler{Cfg: cfg, Gateway: gw, Bookings: bookings, Cabins: cabins, Users: users, Notify: notify}
}

type createPaymentReq struct {
    BookingID uint64 `json:"booking_id"`
}

// CreateOrder creates a Flow payment order for the caller's own pending
// booking and answers with the hosted payment page URL.
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createPaymentReq
    if err := c.Bind(&req); err != nil || req.BookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
    defer cancel()

    b, err := h.Bookings.GetByID(ctx, req.BookingID)
    if err != nil {
        return repoError(c, err, "conflict")
    }
    if b.UserID != uid {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if b.Status != model.BookingPending {
        return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not awaiting payment"})
    }
    if time.Now().UTC().After(b.PaymentExpiresAt) {
        return c.JSON(http.StatusConflict, echo.Map{"error": "payment window expired"})
    }

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }

    subject := "Reserva " + b.BookingNumber
    if cabin, err := h.Cabins.GetByID(ctx, b.CabinID); err == nil {
        subject = fmt.Sprintf("Reserva %s: %s", b.BookingNumber, cabin.Title)
    }

    resp, err := h.Gateway.CreatePayment(ctx, flow.CreateOrder{
        CommerceOrder:   b.BookingNumber,
        Subject:         subject,
        Currency:        "CLP",
        Amount:          b.TotalPrice,
        Email:           u.Email,
        URLConfirmation: h.Cfg.FlowConfirmURL,
        URLReturn:       fmt.Sprintf("%s/%d", strings.TrimRight(h.Cfg.FlowReturnURL, "/"), b.ID),
    })
    if err != nil {
        var upstream *flow.UpstreamError
        if errors.As(err, &upstream) {
            log.Printf("[payment] create order for %s rejected by gateway: %v", b.BookingNumber, upstream)
            return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway rejected the order"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create payment failed"})
    }

    if err := h.Bookings.SetPaymentOrder(ctx, b.ID, resp.Token, resp.FlowOrder); err != nil {
        // The order exists at the gateway; losing the correlation only
        // costs the status passthrough, so answer with the URL anyway.
        log.Printf("[payment] store order for %s failed: %v", b.BookingNumber, err)
    }

    return c.JSON(http.StatusCreated, echo.Map{
        "url":        flow.RedirectURL(resp),
        "token":      resp.Token,
        "flow_order": resp.FlowOrder,
    })
}

// Webhook is Flow's server-to-server confirmation callback and the one
// authoritative place a payment outcome reaches booking state.  Flow
// posts a token; the status is always re-fetched from the gateway
// rather than trusted from the request.  Redeliveries hit a booking
// that already left pending and become 200 no-ops.
func (h *PaymentHandler) Webhook(c echo.Context) error {
    token := strings.TrimSpace(c.FormValue("token"))
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
    defer cancel()

    st, err := h.Gateway.GetPaymentStatus(ctx, token)
    if err != nil {
        log.Printf("[payment] webhook status fetch failed: %v", err)
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "status fetch failed"})
    }

    verdict := flow.Classify(st.Status)
    if verdict == flow.VerdictPending || verdict == flow.VerdictUnknown {
        // Nothing to reconcile yet; Flow will call again on a final state.
        return c.NoContent(http.StatusOK)
    }

    b, changed, err := h.Bookings.ApplyPaymentResult(ctx, st.CommerceOrder, verdict == flow.VerdictPaid)
    if err != nil {
        return repoError(c, err, "conflict")
    }
    if !changed {
        return c.NoContent(http.StatusOK)
    }

    log.Printf("[payment] booking %s -> %s (flow status %d)", b.BookingNumber, b.Status, st.Status)
    if verdict == flow.VerdictPaid {
        h.publishBookingEvent(ctx, queue.KindBookingConfirmed, b)
    } else {
        h.publishBookingEvent(ctx, queue.KindBookingCancelled, b)
    }
    return c.NoContent(http.StatusOK)
}

// Return receives the payer's browser back from the gateway and sends
// it to the frontend's booking status page.  It never mutates booking
// state; the webhook owns that.
func (h *PaymentHandler) Return(c echo.Context) error {
    id := c.Param("bookingID")
    target := fmt.Sprintf("%s/bookings/%s/status", strings.TrimRight(h.Cfg.FrontendURL, "/"), id)
    return c.Redirect(http.StatusFound, target)
}

// Status is a read-only passthrough to the gateway's payment status,
// keyed by the payment token handed out at order creation.
func (h *PaymentHandler) Status(c echo.Context) error {
    token := strings.TrimSpace(c.Param("token"))
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
    defer cancel()

    st, err := h.Gateway.GetPaymentStatus(ctx, token)
    if err != nil {
        var upstream *flow.UpstreamError
        if errors.As(err, &upstream) {
            return c.JSON(http.StatusBadGateway, echo.Map{"error": upstream.Message})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status fetch failed"})
    }
    verdict := "unknown"
    switch flow.Classify(st.Status) {
    case flow.VerdictPaid:
        verdict = "paid"
    case flow.VerdictPending:
        verdict = "pending"
    case flow.VerdictRejected:
        verdict = "rejected"
    }
    return c.JSON(http.StatusOK, echo.Map{
        "commerce_order": st.CommerceOrder,
        "flow_order":     st.FlowOrder,
        "status":         st.Status,
        "verdict":        verdict,
        "amount":         st.Amount,
        "payer":          st.Payer,
    })
}

func (h *PaymentHandler) publishBookingEvent(ctx context.Context, kind string, b model.Booking) {
    u, err := h.Users.GetByID(ctx, b.UserID)
    if err != nil {
        log.Printf("[payment] skip %s notification for %s: load user: %v", kind, b.BookingNumber, err)
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
        log.Printf("[payment] publish %s for %s failed: %v", kind, b.BookingNumber, err)
    }
}
