package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNights(t *testing.T) {
    cases := []struct {
        name     string
        checkIn  time.Time
        checkOut time.Time
        want     int
    }{
        {"three full nights", date(2025, 1, 10), date(2025, 1, 13), 3},
        {"single night", date(2025, 1, 10), date(2025, 1, 11), 1},
        {"partial day rounds up", date(2025, 1, 10), date(2025, 1, 11).Add(6 * time.Hour), 2},
        {"zero range", date(2025, 1, 10), date(2025, 1, 10), 0},
        {"inverted range", date(2025, 1, 13), date(2025, 1, 10), 0},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, Nights(tc.checkIn, tc.checkOut))
        })
    }
}

func TestTotalPrice(t *testing.T) {
    // 100000 per night, 2025-01-10 -> 2025-01-13 = 3 nights.
    got := TotalPrice(100000, date(2025, 1, 10), date(2025, 1, 13))
    assert.Equal(t, int64(300000), got)
}

func TestRangesOverlap(t *testing.T) {
    cases := []struct {
        name string
        aIn  time.Time
        aOut time.Time
        bIn  time.Time
        bOut time.Time
        want bool
    }{
        {"partial overlap", date(2025, 1, 10), date(2025, 1, 13), date(2025, 1, 12), date(2025, 1, 14), true},
        {"contained", date(2025, 1, 10), date(2025, 1, 20), date(2025, 1, 12), date(2025, 1, 14), true},
        {"identical", date(2025, 1, 10), date(2025, 1, 13), date(2025, 1, 10), date(2025, 1, 13), true},
        {"back to back", date(2025, 1, 10), date(2025, 1, 13), date(2025, 1, 13), date(2025, 1, 15), false},
        {"disjoint", date(2025, 1, 10), date(2025, 1, 12), date(2025, 1, 20), date(2025, 1, 22), false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, RangesOverlap(tc.aIn, tc.aOut, tc.bIn, tc.bOut))
            // overlap is symmetric
            assert.Equal(t, tc.want, RangesOverlap(tc.bIn, tc.bOut, tc.aIn, tc.aOut))
        })
    }
}

func TestCanTransitionTo(t *testing.T) {
    pending := &Booking{Status: BookingPending}
    require.NoError(t, pending.CanTransitionTo(BookingConfirmed))
    require.NoError(t, pending.CanTransitionTo(BookingCancelled))
    assert.ErrorIs(t, pending.CanTransitionTo(BookingCompleted), ErrInvalidTransition)

    for _, s := range []string{BookingConfirmed, BookingCancelled, BookingCompleted} {
        b := &Booking{Status: s}
        assert.True(t, b.IsTerminal())
        assert.ErrorIs(t, b.CanTransitionTo(BookingConfirmed), ErrInvalidTransition)
        assert.ErrorIs(t, b.CanTransitionTo(BookingCancelled), ErrInvalidTransition)
    }
}

func TestTicketDeletable(t *testing.T) {
    assert.False(t, TicketDeletable(TicketOpen))
    assert.False(t, TicketDeletable(TicketInProgress))
    assert.True(t, TicketDeletable(TicketClosed))
    assert.True(t, TicketDeletable(TicketResolved))
}
