package queue

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestComposeEmailBookingConfirmed(t *testing.T) {
    subject, body := ComposeEmail(NotificationEvent{
        Kind:          KindBookingConfirmed,
        Name:          "Ana",
        BookingNumber: "BK-00000042",
        CabinTitle:    "Refugio Sur",
        CheckIn:       "2026-02-01",
        CheckOut:      "2026-02-04",
        TotalPrice:    120000,
    })
    assert.Equal(t, "Booking BK-00000042 confirmed", subject)
    assert.Contains(t, body, "Ana")
    assert.Contains(t, body, "Refugio Sur")
    assert.Contains(t, body, "2026-02-01")
    assert.Contains(t, body, "$120000")
}

func TestComposeEmailBookingCancelled(t *testing.T) {
    subject, body := ComposeEmail(NotificationEvent{
        Kind:          KindBookingCancelled,
        Name:          "Ana",
        BookingNumber: "BK-00000042",
        CabinTitle:    "Refugio Sur",
    })
    assert.Equal(t, "Booking BK-00000042 cancelled", subject)
    assert.Contains(t, body, "has been cancelled")
}

func TestComposeEmailTicketCreated(t *testing.T) {
    subject, body := ComposeEmail(NotificationEvent{
        Kind:         KindTicketCreated,
        Name:         "Ana",
        TicketNumber: "TKT-1A2B3C4D",
    })
    assert.Equal(t, "Support ticket TKT-1A2B3C4D received", subject)
    assert.Contains(t, body, "TKT-1A2B3C4D")
}

func TestComposeEmailUnknownKind(t *testing.T) {
    subject, body := ComposeEmail(NotificationEvent{Kind: "something.else"})
    assert.Empty(t, subject)
    assert.Empty(t, body)
}
