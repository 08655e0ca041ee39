package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/google/uuid"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
)

const ticketCols = "id,ticket_number,user_id,assigned_to,title,description,priority,category,status,created_at,updated_at"

// TicketRepo provides data access to tickets and their messages.
type TicketRepo struct{ DB *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{DB: db} }

// NewTicketNumber returns an identifier of the form TKT-XXXXXXXX built
// from a UUID segment. Collisions are practically impossible but the
// column still carries a UNIQUE constraint.
func NewTicketNumber() string {
    return "TKT-" + strings.ToUpper(uuid.NewString()[:8])
}

func scanTicket(row interface{ Scan(...any) error }) (model.Ticket, error) {
    var (
        t        model.Ticket
        assigned sql.NullInt64
    )
    err := row.Scan(&t.ID, &t.TicketNumber, &t.UserID, &assigned,
        &t.Title, &t.Description, &t.Priority, &t.Category, &t.Status,
        &t.CreatedAt, &t.UpdatedAt)
    if err != nil {
        return t, err
    }
    if assigned.Valid {
        v := uint64(assigned.Int64)
        t.AssignedTo = &v
    }
    return t, nil
}

// Create inserts a ticket in open status and returns it.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
    t.TicketNumber = NewTicketNumber()
    t.Status = model.TicketOpen
    res, err := r.DB.ExecContext(ctx,
        `INSERT INTO tickets (ticket_number, user_id, title, description, priority, category, status)
         VALUES (?,?,?,?,?,?,'open')`,
        t.TicketNumber, t.UserID, t.Title, t.Description, t.Priority, t.Category)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    return nil
}

// GetByID fetches a ticket. Returns ErrNotFound when absent.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
    t, err := scanTicket(r.DB.QueryRowContext(ctx,
        "SELECT "+ticketCols+" FROM tickets WHERE id=? LIMIT 1", id))
    if err == sql.ErrNoRows {
        return t, ErrNotFound
    }
    return t, err
}

// ListByUser returns tickets opened by a user, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Ticket, error) {
    return r.queryMany(ctx,
        "SELECT "+ticketCols+" FROM tickets WHERE user_id=? ORDER BY created_at DESC", userID)
}

// ListAll returns every ticket for the support surface.
func (r *TicketRepo) ListAll(ctx context.Context) ([]model.Ticket, error) {
    return r.queryMany(ctx, "SELECT "+ticketCols+" FROM tickets ORDER BY created_at DESC")
}

func (r *TicketRepo) queryMany(ctx context.Context, q string, args ...any) ([]model.Ticket, error) {
    rows, err := r.DB.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Ticket{}
    for rows.Next() {
        t, err := scanTicket(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    return out, rows.Err()
}

// UpdateStatus sets a ticket's status.
func (r *TicketRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
    res, err := r.DB.ExecContext(ctx, "UPDATE tickets SET status=? WHERE id=?", status, id)
    if err != nil {
        return err
    }
    return requireRow(ctx, r.DB, res, id)
}

// Assign sets the staff member handling a ticket. A ticket moves to
// in-progress on first assignment.
func (r *TicketRepo) Assign(ctx context.Context, id, staffID uint64) error {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE tickets SET assigned_to=?, status=IF(status='open','in-progress',status) WHERE id=?",
        staffID, id)
    if err != nil {
        return err
    }
    return requireRow(ctx, r.DB, res, id)
}

// Delete removes a ticket and its messages. Only closed or resolved
// tickets may be deleted; anything else returns ErrConflict.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.DB.ExecContext(ctx,
        "DELETE FROM tickets WHERE id=? AND status IN ('closed','resolved')", id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var exists int
        err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM tickets WHERE id=? LIMIT 1", id).Scan(&exists)
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

// AddMessage appends an immutable message to a ticket conversation.
func (r *TicketRepo) AddMessage(ctx context.Context, m *model.Message) error {
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO ticket_messages (ticket_id, user_id, content) VALUES (?,?,?)",
        m.TicketID, m.UserID, m.Content)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    m.ID = uint64(id)
    return nil
}

// ListMessages returns a ticket's messages in creation order.
func (r *TicketRepo) ListMessages(ctx context.Context, ticketID uint64) ([]model.Message, error) {
    rows, err := r.DB.QueryContext(ctx,
        "SELECT id,ticket_id,user_id,content,created_at FROM ticket_messages WHERE ticket_id=? ORDER BY created_at ASC, id ASC",
        ticketID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Message{}
    for rows.Next() {
        var m model.Message
        if err := rows.Scan(&m.ID, &m.TicketID, &m.UserID, &m.Content, &m.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    return out, rows.Err()
}

func requireRow(ctx context.Context, db *sql.DB, res sql.Result, id uint64) error {
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var exists int
        err := db.QueryRowContext(ctx, "SELECT 1 FROM tickets WHERE id=? LIMIT 1", id).Scan(&exists)
        if err == sql.ErrNoRows {
            return ErrNotFound
        }
        return err
    }
    return nil
}
