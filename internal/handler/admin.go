package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/repository"
)

// AdminHandler serves the back-office surface.  User management is
// admin-only; the ticket operations are shared with support staff and
// developers through route-level role middleware.
type AdminHandler struct {
    Users    *repository.UserRepo
    Bookings *repository.BookingRepo
    Tickets  *repository.TicketRepo
}

func NewAdminHandler(users *repository.UserRepo, bookings *repository.BookingRepo, tickets *repository.TicketRepo) *AdminHandler {
    if users == nil || bookings == nil || tickets == nil {
        panic("nil repository passed to NewAdminHandler")
    }
    return &AdminHandler{Users: users, Bookings: bookings, Tickets: tickets}
}

type adminUserResp struct {
    ID         uint64    `json:"id"`
    Email      string    `json:"email"`
    Name       string    `json:"name"`
    Role       string    `json:"role"`
    IsVerified bool      `json:"is_verified"`
    IsActive   bool      `json:"is_active"`
    CreatedAt  time.Time `json:"created_at"`
}

type updateRoleReq struct {
    Role string `json:"role"`
}

type updateTicketStatusReq struct {
    Status string `json:"status"`
}

type assignTicketReq struct {
    AssignedTo uint64 `json:"assigned_to"`
}

// ListUsers returns every account, newest first.
func (h *AdminHandler) ListUsers(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    users, err := h.Users.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
    }
    out := make([]adminUserResp, 0, len(users))
    for _, u := range users {
        out = append(out, adminUserResp{
            ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role,
            IsVerified: u.IsVerified, IsActive: u.IsActive, CreatedAt: u.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, out)
}

// UpdateRole grants or revokes a role.  Admins cannot demote
// themselves, which keeps at least one admin reachable.
func (h *AdminHandler) UpdateRole(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    var req updateRoleReq
    if err := c.Bind(&req); err != nil || !model.ValidRole(req.Role) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
    }
    if id == uid && req.Role != model.RoleAdmin {
        return c.JSON(http.StatusConflict, echo.Map{"error": "cannot demote yourself"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Users.UpdateRole(ctx, id, req.Role); err != nil {
        return repoError(c, err, "conflict")
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "role": req.Role})
}

// ListBookings returns every booking for reconciliation and support.
func (h *AdminHandler) ListBookings(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    bookings, err := h.Bookings.ListAll(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
    }
    out := make([]bookingResp, 0, len(bookings))
    for _, b := range bookings {
        out = append(out, toBookingResp(b))
    }
    return c.JSON(http.StatusOK, out)
}

// ListTickets returns every ticket for the support queue.
func (h *AdminHandler) ListTickets(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tickets, err := h.Tickets.ListAll(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tickets failed"})
    }
    out := make([]ticketResp, 0, len(tickets))
    for _, t := range tickets {
        out = append(out, toTicketResp(t))
    }
    return c.JSON(http.StatusOK, out)
}

// UpdateTicketStatus moves a ticket through its lifecycle.
func (h *AdminHandler) UpdateTicketStatus(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
    }
    var req updateTicketStatusReq
    if err := c.Bind(&req); err != nil || !model.ValidTicketStatus(req.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Tickets.UpdateStatus(ctx, id, req.Status); err != nil {
        return repoError(c, err, "conflict")
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

// AssignTicket hands a ticket to a staff member.  An open ticket moves
// to in-progress on first assignment.
func (h *AdminHandler) AssignTicket(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
    }
    var req assignTicketReq
    if err := c.Bind(&req); err != nil || req.AssignedTo == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "assigned_to required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    staff, err := h.Users.GetByID(ctx, req.AssignedTo)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "assignee not found"})
    }
    if !model.IsStaff(staff.Role) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "assignee is not staff"})
    }

    if err := h.Tickets.Assign(ctx, id, req.AssignedTo); err != nil {
        return repoError(c, err, "conflict")
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "assigned_to": req.AssignedTo})
}
