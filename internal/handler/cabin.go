package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/repository"
)

// CabinHandler serves the public listing surface and the owner CRUD.
type CabinHandler struct {
    Cabins *repository.CabinRepo
}

func NewCabinHandler(cabins *repository.CabinRepo) *CabinHandler {
    if cabins == nil {
        panic("nil repository passed to NewCabinHandler")
    }
    return &CabinHandler{Cabins: cabins}
}

// cabinReq carries the mutable attributes of a listing.  Images and
// amenities arrive as JSON arrays and are stored serialized.
type cabinReq struct {
    Title         string   `json:"title"`
    Description   string   `json:"description"`
    Location      string   `json:"location"`
    PricePerNight int64    `json:"price_per_night"`
    Capacity      int      `json:"capacity"`
    Bedrooms      int      `json:"bedrooms"`
    Bathrooms     int      `json:"bathrooms"`
    Images        []string `json:"images"`
    Amenities     []string `json:"amenities"`
}

type cabinResp struct {
    ID            uint64    `json:"id"`
    OwnerID       uint64    `json:"owner_id"`
    Title         string    `json:"title"`
    Description   string    `json:"description"`
    Location      string    `json:"location"`
    PricePerNight int64     `json:"price_per_night"`
    Capacity      int       `json:"capacity"`
    Bedrooms      int       `json:"bedrooms"`
    Bathrooms     int       `json:"bathrooms"`
    Images        []string  `json:"images"`
    Amenities     []string  `json:"amenities"`
    CreatedAt     time.Time `json:"created_at"`
    UpdatedAt     time.Time `json:"updated_at"`
}

func (r *cabinReq) validate() string {
    r.Title = strings.TrimSpace(r.Title)
    r.Location = strings.TrimSpace(r.Location)
    switch {
    case r.Title == "":
        return "title required"
    case r.Location == "":
        return "location required"
    case r.PricePerNight <= 0:
        return "price_per_night must be positive"
    case r.Capacity <= 0:
        return "capacity must be positive"
    case r.Bedrooms < 0 || r.Bathrooms < 0:
        return "bedrooms/bathrooms must not be negative"
    }
    return ""
}

// apply copies the request onto a model, serializing the arrays.
func (r *cabinReq) apply(c *model.Cabin) error {
    imgs, err := json.Marshal(r.Images)
    if err != nil {
        return err
    }
    ams, err := json.Marshal(r.Amenities)
    if err != nil {
        return err
    }
    c.Title = r.Title
    c.Description = r.Description
    c.Location = r.Location
    c.PricePerNight = r.PricePerNight
    c.Capacity = r.Capacity
    c.Bedrooms = r.Bedrooms
    c.Bathrooms = r.Bathrooms
    c.Images = string(imgs)
    c.Amenities = string(ams)
    return nil
}

func toCabinResp(c model.Cabin) cabinResp {
    out := cabinResp{
        ID:            c.ID,
        OwnerID:       c.OwnerID,
        Title:         c.Title,
        Description:   c.Description,
        Location:      c.Location,
        PricePerNight: c.PricePerNight,
        Capacity:      c.Capacity,
        Bedrooms:      c.Bedrooms,
        Bathrooms:     c.Bathrooms,
        Images:        []string{},
        Amenities:     []string{},
        CreatedAt:     c.CreatedAt,
        UpdatedAt:     c.UpdatedAt,
    }
    // Stored as JSON text; a decode failure just leaves the list empty.
    _ = json.Unmarshal([]byte(c.Images), &out.Images)
    _ = json.Unmarshal([]byte(c.Amenities), &out.Amenities)
    return out
}

// List returns all listings.  Mounted behind the response cache.
func (h *CabinHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cabins, err := h.Cabins.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list cabins failed"})
    }
    out := make([]cabinResp, 0, len(cabins))
    for _, cb := range cabins {
        out = append(out, toCabinResp(cb))
    }
    return c.JSON(http.StatusOK, out)
}

// Get returns a single listing.
func (h *CabinHandler) Get(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cb, err := h.Cabins.GetByID(ctx, id)
    if err != nil {
        return repoError(c, err, "conflict")
    }
    return c.JSON(http.StatusOK, toCabinResp(cb))
}

// Mine returns the authenticated user's own listings.
func (h *CabinHandler) Mine(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cabins, err := h.Cabins.ListByOwner(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list cabins failed"})
    }
    out := make([]cabinResp, 0, len(cabins))
    for _, cb := range cabins {
        out = append(out, toCabinResp(cb))
    }
    return c.JSON(http.StatusOK, out)
}

// Create inserts a listing owned by the authenticated user.
func (h *CabinHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req cabinReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    cb := model.Cabin{OwnerID: uid}
    if err := req.apply(&cb); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id, err := h.Cabins.Create(ctx, &cb)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create cabin failed"})
    }
    cb.ID = id
    return c.JSON(http.StatusCreated, toCabinResp(cb))
}

// Update rewrites a listing.  Only the owner or an admin may update.
func (h *CabinHandler) Update(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
    }
    var req cabinReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cb, err := h.Cabins.GetByID(ctx, id)
    if err != nil {
        return repoError(c, err, "conflict")
    }
    if cb.OwnerID != uid && currentRole(c) != model.RoleAdmin {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if err := req.apply(&cb); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := h.Cabins.Update(ctx, &cb); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update cabin failed"})
    }
    return c.JSON(http.StatusOK, toCabinResp(cb))
}

// Delete removes a listing.  Refused while active bookings exist.
func (h *CabinHandler) Delete(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cb, err := h.Cabins.GetByID(ctx, id)
    if err != nil {
        return repoError(c, err, "conflict")
    }
    if cb.OwnerID != uid && currentRole(c) != model.RoleAdmin {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if err := h.Cabins.Delete(ctx, id); err != nil {
        return repoError(c, err, "cabin has active bookings")
    }
    return c.NoContent(http.StatusNoContent)
}
