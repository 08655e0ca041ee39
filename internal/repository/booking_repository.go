package repository

import (
    "context"
    "crypto/rand"
    "database/sql"
    "fmt"
    "math/big"
    "strings"
    "time"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
)

const bookingCols = "id,booking_number,cabin_id,user_id,check_in,check_out,nights,total_price,status,payment_status,payment_expires_at,payment_token,flow_order,payment_date,created_at,updated_at"

// BookingRepo owns the booking lifecycle at the persistence layer.
// Every read-then-write sequence (overlap check + insert, status read +
// update) runs inside a single transaction with row locks, so two
// concurrent requests cannot both pass a check before either writes.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// NewBookingNumber returns a booking number of the form BK-XXXXXXXX
// where X is a zero-padded random digit. Numbers are not globally
// unique by construction; the bookings.booking_number UNIQUE constraint
// plus insert retry in Create make them unique in the table.
func NewBookingNumber() (string, error) {
    n, err := rand.Int(rand.Reader, big.NewInt(100_000_000))
    if err != nil {
        return "", err
    }
    return fmt.Sprintf("BK-%08d", n.Int64()), nil
}

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
    var (
        b         model.Booking
        token     sql.NullString
        flowOrder sql.NullInt64
        payDate   sql.NullTime
    )
    err := row.Scan(&b.ID, &b.BookingNumber, &b.CabinID, &b.UserID,
        &b.CheckIn, &b.CheckOut, &b.Nights, &b.TotalPrice,
        &b.Status, &b.PaymentStatus, &b.PaymentExpiresAt,
        &token, &flowOrder, &payDate, &b.CreatedAt, &b.UpdatedAt)
    if err != nil {
        return b, err
    }
    if token.Valid {
        b.PaymentToken = &token.String
    }
    if flowOrder.Valid {
        b.FlowOrder = &flowOrder.Int64
    }
    if payDate.Valid {
        b.PaymentDate = &payDate.Time
    }
    return b, nil
}

// Create validates availability and inserts a booking in one
// transaction. Existing non-cancelled bookings for the cabin are read
// FOR UPDATE before the half-open overlap test, which closes the
// double-booking race. On a booking number collision (1062) the insert
// is retried with a fresh number.
func (r *BookingRepo) Create(ctx context.Context, cabin model.Cabin, userID uint64, checkIn, checkOut time.Time, window time.Duration) (model.Booking, error) {
    var b model.Booking

    nights := model.Nights(checkIn, checkOut)
    if nights == 0 {
        return b, ErrConflict
    }

    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return b, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Lock conflicting rows; existing.check_in < new.check_out AND
    // existing.check_out > new.check_in is the half-open overlap test.
    var overlapping int
    err = tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM bookings
         WHERE cabin_id = ? AND status <> 'cancelled'
           AND check_in < ? AND check_out > ?
         FOR UPDATE`,
        cabin.ID, checkOut, checkIn).Scan(&overlapping)
    if err != nil {
        return b, err
    }
    if overlapping > 0 {
        return b, ErrDateConflict
    }

    expiresAt := time.Now().UTC().Add(window)
    total := cabin.PricePerNight * int64(nights)

    var id int64
    var number string
    for attempt := 0; attempt < 5; attempt++ {
        number, err = NewBookingNumber()
        if err != nil {
            return b, err
        }
        res, execErr := tx.ExecContext(ctx,
            `INSERT INTO bookings
             (booking_number, cabin_id, user_id, check_in, check_out, nights, total_price, status, payment_status, payment_expires_at)
             VALUES (?,?,?,?,?,?,?,'pending','pending',?)`,
            number, cabin.ID, userID, checkIn, checkOut, nights, total, expiresAt)
        if execErr != nil {
            if strings.Contains(strings.ToLower(execErr.Error()), "1062") {
                continue // number collision, try again
            }
            return b, execErr
        }
        id, err = res.LastInsertId()
        if err != nil {
            return b, err
        }
        break
    }
    if id == 0 {
        return b, fmt.Errorf("booking number collisions exhausted retries")
    }

    if err := tx.Commit(); err != nil {
        return b, err
    }
    committed = true

    b = model.Booking{
        ID:               uint64(id),
        BookingNumber:    number,
        CabinID:          cabin.ID,
        UserID:           userID,
        CheckIn:          checkIn,
        CheckOut:         checkOut,
        Nights:           nights,
        TotalPrice:       total,
        Status:           model.BookingPending,
        PaymentStatus:    model.PaymentPending,
        PaymentExpiresAt: expiresAt,
    }
    return b, nil
}

// GetByID fetches a booking. Returns ErrNotFound when absent.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
    b, err := scanBooking(r.DB.QueryRowContext(ctx,
        "SELECT "+bookingCols+" FROM bookings WHERE id=? LIMIT 1", id))
    if err == sql.ErrNoRows {
        return b, ErrNotFound
    }
    return b, err
}

// GetByNumber fetches a booking by its booking number (the commerce
// order echoed by the payment gateway).
func (r *BookingRepo) GetByNumber(ctx context.Context, number string) (model.Booking, error) {
    b, err := scanBooking(r.DB.QueryRowContext(ctx,
        "SELECT "+bookingCols+" FROM bookings WHERE booking_number=? LIMIT 1", number))
    if err == sql.ErrNoRows {
        return b, ErrNotFound
    }
    return b, err
}

// ListByUser returns a guest's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
    return r.queryMany(ctx,
        "SELECT "+bookingCols+" FROM bookings WHERE user_id=? ORDER BY created_at DESC", userID)
}

// ListAll returns every booking for the admin surface.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
    return r.queryMany(ctx, "SELECT "+bookingCols+" FROM bookings ORDER BY created_at DESC")
}

func (r *BookingRepo) queryMany(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
    rows, err := r.DB.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Booking
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

// DateRange is an occupied [CheckIn, CheckOut) interval for a cabin.
type DateRange struct {
    CheckIn  time.Time `json:"check_in"`
    CheckOut time.Time `json:"check_out"`
}

// OccupiedRanges returns the date ranges of non-cancelled bookings for
// a cabin, used by the frontend calendar.
func (r *BookingRepo) OccupiedRanges(ctx context.Context, cabinID uint64) ([]DateRange, error) {
    rows, err := r.DB.QueryContext(ctx,
        `SELECT check_in, check_out FROM bookings
         WHERE cabin_id=? AND status <> 'cancelled' ORDER BY check_in`, cabinID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    ranges := []DateRange{}
    for rows.Next() {
        var dr DateRange
        if err := rows.Scan(&dr.CheckIn, &dr.CheckOut); err != nil {
            return nil, err
        }
        ranges = append(ranges, dr)
    }
    return ranges, rows.Err()
}

// lockedTransition loads a booking FOR UPDATE, runs apply against it and
// commits. apply returns the SQL to execute or "" for an idempotent no-op.
func (r *BookingRepo) lockedTransition(ctx context.Context, where string, arg any, apply func(*model.Booking) (string, []any, error)) (model.Booking, error) {
    var b model.Booking
    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return b, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err = scanBooking(tx.QueryRowContext(ctx,
        "SELECT "+bookingCols+" FROM bookings WHERE "+where+" LIMIT 1 FOR UPDATE", arg))
    if err != nil {
        if err == sql.ErrNoRows {
            return b, ErrNotFound
        }
        return b, err
    }

    stmt, args, err := apply(&b)
    if err != nil {
        return b, err
    }
    if stmt != "" {
        if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
            return b, err
        }
    }
    if err := tx.Commit(); err != nil {
        return b, err
    }
    committed = true
    return b, nil
}

// Cancel moves a pending booking to cancelled/failed. Cancelling an
// already cancelled booking is a no-op; any other terminal status
// returns ErrConflict.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) (model.Booking, error) {
    return r.lockedTransition(ctx, "id=?", id, func(b *model.Booking) (string, []any, error) {
        if b.Status == model.BookingCancelled {
            return "", nil, nil
        }
        if err := b.CanTransitionTo(model.BookingCancelled); err != nil {
            return "", nil, ErrConflict
        }
        b.Status = model.BookingCancelled
        b.PaymentStatus = model.PaymentFailed
        return "UPDATE bookings SET status='cancelled', payment_status='failed' WHERE id=?",
            []any{b.ID}, nil
    })
}

// ConfirmByUser transitions a pending booking to confirmed/completed on
// behalf of its guest, after the browser returns from the gateway.
// Returns ErrForbidden when the booking belongs to someone else and
// ErrConflict when it is no longer pending.
func (r *BookingRepo) ConfirmByUser(ctx context.Context, id, userID uint64) (model.Booking, error) {
    return r.lockedTransition(ctx, "id=?", id, func(b *model.Booking) (string, []any, error) {
        if b.UserID != userID {
            return "", nil, ErrForbidden
        }
        if err := b.CanTransitionTo(model.BookingConfirmed); err != nil {
            return "", nil, ErrConflict
        }
        now := time.Now().UTC()
        b.Status = model.BookingConfirmed
        b.PaymentStatus = model.PaymentCompleted
        b.PaymentDate = &now
        return "UPDATE bookings SET status='confirmed', payment_status='completed', payment_date=? WHERE id=?",
            []any{now, b.ID}, nil
    })
}

// SetPaymentOrder stores the gateway correlation identifiers issued
// when a payment order is created.
func (r *BookingRepo) SetPaymentOrder(ctx context.Context, id uint64, token string, flowOrder int64) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE bookings SET payment_token=?, flow_order=? WHERE id=?",
        token, flowOrder, id)
    return err
}

// ApplyPaymentResult reconciles a webhook verdict with booking state in
// one transaction. A booking that already left pending is returned
// unchanged (changed=false), which makes repeated webhook deliveries
// idempotent.
func (r *BookingRepo) ApplyPaymentResult(ctx context.Context, bookingNumber string, paid bool) (model.Booking, bool, error) {
    changed := false
    b, err := r.lockedTransition(ctx, "booking_number=?", bookingNumber, func(b *model.Booking) (string, []any, error) {
        if b.Status != model.BookingPending {
            return "", nil, nil
        }
        changed = true
        if paid {
            now := time.Now().UTC()
            b.Status = model.BookingConfirmed
            b.PaymentStatus = model.PaymentCompleted
            b.PaymentDate = &now
            return "UPDATE bookings SET status='confirmed', payment_status='completed', payment_date=? WHERE id=?",
                []any{now, b.ID}, nil
        }
        b.Status = model.BookingCancelled
        b.PaymentStatus = model.PaymentFailed
        return "UPDATE bookings SET status='cancelled', payment_status='failed' WHERE id=?",
            []any{b.ID}, nil
    })
    return b, changed, err
}

// Delete removes a booking. Only cancelled bookings may be deleted;
// anything else returns ErrConflict.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.DB.ExecContext(ctx,
        "DELETE FROM bookings WHERE id=? AND status='cancelled'", id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var exists int
        err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM bookings WHERE id=? LIMIT 1", id).Scan(&exists)
        if err == sql.ErrNoRows {
            return ErrNotFound
        }
        if err != nil {
            return err
        }
        return ErrConflict
    }
    return nil
}

// ExpireStale bulk-cancels pending bookings whose payment window has
// elapsed. One statement, so each row flips atomically; no emails are
// sent for sweep cancellations.
func (r *BookingRepo) ExpireStale(ctx context.Context) (int64, error) {
    res, err := r.DB.ExecContext(ctx,
        `UPDATE bookings SET status='cancelled', payment_status='failed'
         WHERE status='pending' AND payment_expires_at < UTC_TIMESTAMP()`)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
