package model

import (
    "errors"
    "time"
)

// Booking statuses.  The status graph only admits
// pending→confirmed and pending→cancelled; confirmed, cancelled and
// completed are terminal.
const (
    BookingPending   = "pending"
    BookingConfirmed = "confirmed"
    BookingCancelled = "cancelled"
    BookingCompleted = "completed"
)

// Payment statuses tracked alongside the booking status.
const (
    PaymentPending   = "pending"
    PaymentCompleted = "completed"
    PaymentFailed    = "failed"
)

// ErrInvalidTransition is returned by CanTransitionTo when the
// requested booking status change is not admitted by the lifecycle.
var ErrInvalidTransition = errors.New("invalid booking status transition")

// Booking records a guest's reservation of a cabin for a date range.
// The booking number doubles as the commerce order sent to the
// payment gateway, so it carries a UNIQUE constraint.
//
// Fields:
//  ID               – primary key identifier.
//  BookingNumber    – human readable identifier, unique, gateway correlation key.
//  CabinID          – cabin being booked.
//  UserID           – guest who made the booking.
//  CheckIn          – arrival date (inclusive).
//  CheckOut         – departure date (exclusive).
//  Nights           – number of nights charged.
//  TotalPrice       – price_per_night × nights.
//  Status           – pending | confirmed | cancelled | completed.
//  PaymentStatus    – pending | completed | failed.
//  PaymentExpiresAt – deadline for completing payment before the sweep cancels.
//  PaymentToken     – gateway token, set once an order is created (nullable).
//  FlowOrder        – gateway-side order number (nullable).
//  PaymentDate      – when the gateway confirmed payment (nullable).
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Booking struct {
    ID               uint64     // bookings.id
    BookingNumber    string     // bookings.booking_number
    CabinID          uint64     // bookings.cabin_id
    UserID           uint64     // bookings.user_id
    CheckIn          time.Time  // bookings.check_in
    CheckOut         time.Time  // bookings.check_out
    Nights           int        // bookings.nights
    TotalPrice       int64      // bookings.total_price
    Status           string     // bookings.status
    PaymentStatus    string     // bookings.payment_status
    PaymentExpiresAt time.Time  // bookings.payment_expires_at
    PaymentToken     *string    // bookings.payment_token (nullable)
    FlowOrder        *int64     // bookings.flow_order (nullable)
    PaymentDate      *time.Time // bookings.payment_date (nullable)
    CreatedAt        time.Time  // bookings.created_at
    UpdatedAt        time.Time  // bookings.updated_at
}

// Nights returns the number of nights charged for the interval
// [checkIn, checkOut): the duration divided by 24h, rounded up.
// Returns 0 when checkOut is not strictly after checkIn.
func Nights(checkIn, checkOut time.Time) int {
    d := checkOut.Sub(checkIn)
    if d <= 0 {
        return 0
    }
    n := int(d / (24 * time.Hour))
    if d%(24*time.Hour) != 0 {
        n++
    }
    return n
}

// TotalPrice computes price_per_night × nights for a date range.
func TotalPrice(pricePerNight int64, checkIn, checkOut time.Time) int64 {
    return pricePerNight * int64(Nights(checkIn, checkOut))
}

// RangesOverlap reports whether two half-open intervals
// [aIn, aOut) and [bIn, bOut) intersect.  Back-to-back stays where
// one check-out equals the other check-in do not overlap.
func RangesOverlap(aIn, aOut, bIn, bOut time.Time) bool {
    return aIn.Before(bOut) && aOut.After(bIn)
}

// CanTransitionTo validates a status change against the booking
// lifecycle.  Only a pending booking may move, and only to confirmed
// or cancelled.  It returns ErrInvalidTransition otherwise.
func (b *Booking) CanTransitionTo(target string) error {
    if b.Status != BookingPending {
        return ErrInvalidTransition
    }
    if target != BookingConfirmed && target != BookingCancelled {
        return ErrInvalidTransition
    }
    return nil
}

// IsTerminal reports whether the booking status admits no further
// transitions.
func (b *Booking) IsTerminal() bool {
    switch b.Status {
    case BookingConfirmed, BookingCancelled, BookingCompleted:
        return true
    }
    return false
}
