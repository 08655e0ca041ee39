package repository

import (
    "context"
    "database/sql"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
)

// ReviewRepo provides data access to the reviews table.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// Create inserts a review and returns its ID. Rating bounds are
// validated at the handler boundary.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) (uint64, error) {
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO reviews (cabin_id, user_id, rating, comment) VALUES (?,?,?,?)",
        rv.CabinID, rv.UserID, rv.Rating, rv.Comment)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// ListByCabin returns a cabin's reviews, newest first.
func (r *ReviewRepo) ListByCabin(ctx context.Context, cabinID uint64) ([]model.Review, error) {
    rows, err := r.DB.QueryContext(ctx,
        "SELECT id,cabin_id,user_id,rating,comment,created_at FROM reviews WHERE cabin_id=? ORDER BY created_at DESC",
        cabinID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Review{}
    for rows.Next() {
        var rv model.Review
        if err := rows.Scan(&rv.ID, &rv.CabinID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, rv)
    }
    return out, rows.Err()
}
