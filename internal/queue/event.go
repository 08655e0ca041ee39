// Package queue defines message payloads exchanged over the message broker.
package queue

// Notification kinds consumed by the mail dispatcher.
const (
    KindBookingConfirmed = "booking.confirmed"
    KindBookingCancelled = "booking.cancelled"
    KindTicketCreated    = "ticket.created"
)

// NotificationEvent is published whenever an operation should produce
// an email. It carries enough information for the consumer to build the
// message without querying the primary database. EventID deduplicates
// redeliveries in the consumer log.
type NotificationEvent struct {
    EventID       string `json:"event_id"`
    Kind          string `json:"kind"`
    Email         string `json:"email"`
    Name          string `json:"name"`
    BookingNumber string `json:"booking_number,omitempty"`
    TicketNumber  string `json:"ticket_number,omitempty"`
    CabinTitle    string `json:"cabin_title,omitempty"`
    CheckIn       string `json:"check_in,omitempty"`
    CheckOut      string `json:"check_out,omitempty"`
    TotalPrice    int64  `json:"total_price,omitempty"`
    OccurredAt    string `json:"occurred_at"`
}
