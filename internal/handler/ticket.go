package handler

import (
    "context"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/queue"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/repository"
)

// TicketHandler serves the support ticket surface for regular users.
// Staff operations (status, assignment, global listing) live on
// AdminHandler.
type TicketHandler struct {
    Tickets *repository.TicketRepo
    Users   userGetter
    Notify  notifyFunc
}

func NewTicketHandler(tickets *repository.TicketRepo, users userGetter, notify notifyFunc) *TicketHandler {
    if tickets == nil || users == nil {
        panic("nil dependency passed to NewTicketHandler")
    }
    if notify == nil {
        notify = func(context.Context, queue.NotificationEvent) error { return nil }
    }
    return &TicketHandler{Tickets: tickets, Users: users, Notify: notify}
}

type ticketReq struct {
    Title       string `json:"title"`
    Description string `json:"description"`
    Priority    string `json:"priority"`
    Category    string `json:"category"`
}

type messageReq struct {
    Content string `json:"content"`
}

type ticketResp struct {
    ID           uint64    `json:"id"`
    TicketNumber string    `json:"ticket_number"`
    UserID       uint64    `json:"user_id"`
    AssignedTo   *uint64   `json:"assigned_to,omitempty"`
    Title        string    `json:"title"`
    Description  string    `json:"description"`
    Priority     string    `json:"priority"`
    Category     string    `json:"category"`
    Status       string    `json:"status"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}

type messageResp struct {
    ID        uint64    `json:"id"`
    TicketID  uint64    `json:"ticket_id"`
    UserID    uint64    `json:"user_id"`
    Content   string    `json:"content"`
    CreatedAt time.Time `json:"created_at"`
}

func toTicketResp(t model.Ticket) ticketResp {
    return ticketResp{
        ID: t.ID, TicketNumber: t.TicketNumber, UserID: t.UserID,
        AssignedTo: t.AssignedTo, Title: t.Title, Description: t.Description,
        Priority: t.Priority, Category: t.Category, Status: t.Status,
        CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
    }
}

func toMessageResp(m model.Message) messageResp {
    return messageResp{ID: m.ID, TicketID: m.TicketID, UserID: m.UserID, Content: m.Content, CreatedAt: m.CreatedAt}
}

// canAccessTicket: the opener or any staff member.
func canAccessTicket(c echo.Context, t model.Ticket, uid uint64) bool {
    return t.UserID == uid || isStaff(c)
}

// Create opens a ticket and notifies the support queue.
func (h *TicketHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req ticketReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Title = strings.TrimSpace(req.Title)
    req.Description = strings.TrimSpace(req.Description)
    if req.Title == "" || req.Description == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/description required"})
    }
    if req.Priority == "" {
        req.Priority = model.PriorityMedium
    }
    if !model.ValidPriority(req.Priority) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid priority"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    t := model.Ticket{
        UserID:      uid,
        Title:       req.Title,
        Description: req.Description,
        Priority:    req.Priority,
        Category:    strings.TrimSpace(req.Category),
    }
    if err := h.Tickets.Create(ctx, &t); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ticket failed"})
    }

    if u, err := h.Users.GetByID(ctx, uid); err == nil {
        ev := queue.NotificationEvent{
            Kind:         queue.KindTicketCreated,
            Email:        u.Email,
            Name:         u.Name,
            TicketNumber: t.TicketNumber,
        }
        if err := h.Notify(ctx, ev); err != nil {
            log.Printf("[ticket] publish %s for %s failed: %v", queue.KindTicketCreated, t.TicketNumber, err)
        }
    }

    return c.JSON(http.StatusCreated, toTicketResp(t))
}

// ListMine returns the tickets the caller opened.
func (h *TicketHandler) ListMine(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tickets, err := h.Tickets.ListByUser(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tickets failed"})
    }
    out := make([]ticketResp, 0, len(tickets))
    for _, t := range tickets {
        out = append(out, toTicketResp(t))
    }
    return c.JSON(http.StatusOK, out)
}

// Get returns a ticket and its conversation in message order.
func (h *TicketHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    t, err := h.Tickets.GetByID(ctx, id)
    if err != nil {
        return repoError(c, err, "conflict")
    }
    if !canAccessTicket(c, t, uid) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    msgs, err := h.Tickets.ListMessages(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list messages failed"})
    }
    outMsgs := make([]messageResp, 0, len(msgs))
    for _, m := range msgs {
        outMsgs = append(outMsgs, toMessageResp(m))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "ticket":   toTicketResp(t),
        "messages": outMsgs,
    })
}

// AddMessage appends to the conversation.  Messages are immutable once
// stored; there is no edit or delete.
func (h *TicketHandler) AddMessage(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
    }
    var req messageReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "content required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    t, err := h.Tickets.GetByID(ctx, id)
    if err != nil {
        return repoError(c, err, "conflict")
    }
    if !canAccessTicket(c, t, uid) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if t.Status == model.TicketClosed || t.Status == model.TicketResolved {
        return c.JSON(http.StatusConflict, echo.Map{"error": "ticket is closed"})
    }

    m := model.Message{TicketID: id, UserID: uid, Content: strings.TrimSpace(req.Content)}
    if err := h.Tickets.AddMessage(ctx, &m); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add message failed"})
    }
    return c.JSON(http.StatusCreated, toMessageResp(m))
}

// Delete removes a closed or resolved ticket.
func (h *TicketHandler) Delete(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    t, err := h.Tickets.GetByID(ctx, id)
    if err != nil {
        return repoError(c, err, "conflict")
    }
    if !canAccessTicket(c, t, uid) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if err := h.Tickets.Delete(ctx, id); err != nil {
        return repoError(c, err, "only closed or resolved tickets can be deleted")
    }
    return c.NoContent(http.StatusNoContent)
}
