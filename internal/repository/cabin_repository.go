package repository

import (
    "context"
    "database/sql"

    "github.com/Holasoyelrey101/amanwal-sub000/internal/model"
)

const cabinCols = "id,owner_id,title,description,location,price_per_night,capacity,bedrooms,bathrooms,images,amenities,created_at,updated_at"

// CabinRepo provides data access to the cabins table.
type CabinRepo struct{ DB *sql.DB }

func NewCabinRepo(db *sql.DB) *CabinRepo { return &CabinRepo{DB: db} }

func scanCabin(row interface{ Scan(...any) error }) (model.Cabin, error) {
    var c model.Cabin
    err := row.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.Location,
        &c.PricePerNight, &c.Capacity, &c.Bedrooms, &c.Bathrooms,
        &c.Images, &c.Amenities, &c.CreatedAt, &c.UpdatedAt)
    return c, err
}

// Create inserts a cabin and returns its ID.
func (r *CabinRepo) Create(ctx context.Context, c *model.Cabin) (uint64, error) {
    res, err := r.DB.ExecContext(ctx,
        `INSERT INTO cabins (owner_id, title, description, location, price_per_night, capacity, bedrooms, bathrooms, images, amenities)
         VALUES (?,?,?,?,?,?,?,?,?,?)`,
        c.OwnerID, c.Title, c.Description, c.Location, c.PricePerNight,
        c.Capacity, c.Bedrooms, c.Bathrooms, c.Images, c.Amenities)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID fetches a cabin. Returns ErrNotFound when absent.
func (r *CabinRepo) GetByID(ctx context.Context, id uint64) (model.Cabin, error) {
    c, err := scanCabin(r.DB.QueryRowContext(ctx,
        "SELECT "+cabinCols+" FROM cabins WHERE id=? LIMIT 1", id))
    if err == sql.ErrNoRows {
        return c, ErrNotFound
    }
    return c, err
}

// List returns all cabins ordered by creation time, newest first.
func (r *CabinRepo) List(ctx context.Context) ([]model.Cabin, error) {
    return r.queryMany(ctx, "SELECT "+cabinCols+" FROM cabins ORDER BY created_at DESC")
}

// ListByOwner returns the cabins listed by a single user.
func (r *CabinRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Cabin, error) {
    return r.queryMany(ctx,
        "SELECT "+cabinCols+" FROM cabins WHERE owner_id=? ORDER BY created_at DESC", ownerID)
}

func (r *CabinRepo) queryMany(ctx context.Context, q string, args ...any) ([]model.Cabin, error) {
    rows, err := r.DB.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Cabin
    for rows.Next() {
        c, err := scanCabin(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    return out, rows.Err()
}

// Update rewrites the mutable listing attributes of a cabin.
func (r *CabinRepo) Update(ctx context.Context, c *model.Cabin) error {
    _, err := r.DB.ExecContext(ctx,
        `UPDATE cabins SET title=?, description=?, location=?, price_per_night=?,
         capacity=?, bedrooms=?, bathrooms=?, images=?, amenities=? WHERE id=?`,
        c.Title, c.Description, c.Location, c.PricePerNight,
        c.Capacity, c.Bedrooms, c.Bathrooms, c.Images, c.Amenities, c.ID)
    return err
}

// Delete removes a cabin. Reviews cascade via FK; deletion fails with
// ErrConflict while non-cancelled bookings reference the cabin.
func (r *CabinRepo) Delete(ctx context.Context, id uint64) error {
    var n int
    err := r.DB.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM bookings WHERE cabin_id=? AND status <> 'cancelled'", id).Scan(&n)
    if err != nil {
        return err
    }
    if n > 0 {
        return ErrConflict
    }
    res, err := r.DB.ExecContext(ctx, "DELETE FROM cabins WHERE id=?", id)
    if err != nil {
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        return ErrNotFound
    }
    return nil
}
