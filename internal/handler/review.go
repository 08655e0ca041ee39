package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
    "github.com/Holasoyelrey101/amanwal-sub000/internal/repository"
)

// ReviewHandler serves cabin reviews.
type ReviewHandler struct {
    Reviews *repository.ReviewRepo
    Cabins  *repository.CabinRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, cabins *repository.CabinRepo) *ReviewHandler {
    if reviews == nil || cabins == nil {
        panic("nil repository passed to NewReviewHandler")
    }
    return &ReviewHandler{Reviews: reviews, Cabins: cabins}
}

type reviewReq struct {
    Rating  int    `json:"rating"`
    Comment string `json:"comment"`
}

type reviewResp struct {
    ID        uint64    `json:"id"`
    CabinID   uint64    `json:"cabin_id"`
    UserID    uint64    `json:"user_id"`
    Rating    int       `json:"rating"`
    Comment   string    `json:"comment"`
    CreatedAt time.Time `json:"created_at"`
}

// Create stores a rating for a cabin.  Rating must be within 1..5.
func (h *ReviewHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    cabinID, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
    }
    var req reviewReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Rating < 1 || req.Rating > 5 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
    }
    req.Comment = strings.TrimSpace(req.Comment)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    // The cabin must exist; the FK alone would surface as a 500.
    if _, err := h.Cabins.GetByID(ctx, cabinID); err != nil {
        return repoError(c, err, "conflict")
    }

    rv := model.Review{CabinID: cabinID, UserID: uid, Rating: req.Rating, Comment: req.Comment}
    id, err := h.Reviews.Create(ctx, &rv)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
    }
    rv.ID = id
    return c.JSON(http.StatusCreated, reviewResp{
        ID: rv.ID, CabinID: rv.CabinID, UserID: rv.UserID,
        Rating: rv.Rating, Comment: rv.Comment, CreatedAt: rv.CreatedAt,
    })
}

// ListByCabin returns a cabin's reviews, newest first.
func (h *ReviewHandler) ListByCabin(c echo.Context) error {
    cabinID, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    reviews, err := h.Reviews.ListByCabin(ctx, cabinID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reviews failed"})
    }
    out := make([]reviewResp, 0, len(reviews))
    for _, rv := range reviews {
        out = append(out, reviewResp{
            ID: rv.ID, CabinID: rv.CabinID, UserID: rv.UserID,
            Rating: rv.Rating, Comment: rv.Comment, CreatedAt: rv.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, out)
}
