package model

import "time"

// Ticket statuses.  A ticket may only be deleted once it reaches
// closed or resolved.
const (
    TicketOpen       = "open"
    TicketInProgress = "in-progress"
    TicketClosed     = "closed"
    TicketResolved   = "resolved"
)

// Ticket priorities.
const (
    PriorityLow    = "low"
    PriorityMedium = "medium"
    PriorityHigh   = "high"
    PriorityUrgent = "urgent"
)

// Ticket is a support case opened by a user.  Messages attached to a
// ticket are immutable and ordered by creation time.
//
// Fields:
//  ID           – primary key identifier.
//  TicketNumber – generated human readable identifier, unique.
//  UserID       – user who opened the ticket.
//  AssignedTo   – staff member handling the ticket (nullable).
//  Title        – short summary.
//  Description  – full problem description.
//  Priority     – low | medium | high | urgent.
//  Category     – free-form category label (billing, booking, ...).
//  Status       – open | in-progress | closed | resolved.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Ticket struct {
    ID           uint64    // tickets.id
    TicketNumber string    // tickets.ticket_number
    UserID       uint64    // tickets.user_id
    AssignedTo   *uint64   // tickets.assigned_to (nullable)
    Title        string    // tickets.title
    Description  string    // tickets.description
    Priority     string    // tickets.priority
    Category     string    // tickets.category
    Status       string    // tickets.status
    CreatedAt    time.Time // tickets.created_at
    UpdatedAt    time.Time // tickets.updated_at
}

// Message is a single entry in a ticket conversation.
//
// Fields:
//  ID        – primary key identifier.
//  TicketID  – ticket the message belongs to.
//  UserID    – author of the message.
//  Content   – message body.
//  CreatedAt – creation timestamp; messages are ordered by this.
type Message struct {
    ID        uint64    // ticket_messages.id
    TicketID  uint64    // ticket_messages.ticket_id
    UserID    uint64    // ticket_messages.user_id
    Content   string    // ticket_messages.content
    CreatedAt time.Time // ticket_messages.created_at
}

// ValidTicketStatus reports whether s names a ticket status.
func ValidTicketStatus(s string) bool {
    switch s {
    case TicketOpen, TicketInProgress, TicketClosed, TicketResolved:
        return true
    }
    return false
}

// ValidPriority reports whether s names a ticket priority.
func ValidPriority(s string) bool {
    switch s {
    case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
        return true
    }
    return false
}

// TicketDeletable reports whether a ticket in the given status may be
// removed.
func TicketDeletable(status string) bool {
    return status == TicketClosed || status == TicketResolved
}
