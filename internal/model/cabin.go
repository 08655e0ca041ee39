package model

import "time"

// Cabin is a rental listing owned by a user.  Images and amenities
// are stored as JSON-encoded string arrays in TEXT columns, matching
// how the frontend submits them.
//
// Fields:
//  ID            – primary key identifier.
//  OwnerID       – user who listed the cabin.
//  Title         – short listing title.
//  Description   – free-form description.
//  Location      – human readable location string.
//  PricePerNight – nightly price in the smallest currency unit (CLP has none).
//  Capacity      – maximum number of guests.
//  Bedrooms      – bedroom count.
//  Bathrooms     – bathroom count.
//  Images        – JSON array of image URLs.
//  Amenities     – JSON array of amenity names.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Cabin struct {
    ID            uint64    // cabins.id
    OwnerID       uint64    // cabins.owner_id
    Title         string    // cabins.title
    Description   string    // cabins.description
    Location      string    // cabins.location
    PricePerNight int64     // cabins.price_per_night
    Capacity      int       // cabins.capacity
    Bedrooms      int       // cabins.bedrooms
    Bathrooms     int       // cabins.bathrooms
    Images        string    // cabins.images (JSON array)
    Amenities     string    // cabins.amenities (JSON array)
    CreatedAt     time.Time // cabins.created_at
    UpdatedAt     time.Time // cabins.updated_at
}

// Review is a guest rating for a cabin.  Rating must be within 1..5.
//
// Fields:
//  ID        – primary key identifier.
//  CabinID   – cabin being reviewed.
//  UserID    – author of the review.
//  Rating    – integer rating 1..5.
//  Comment   – free-form comment text.
//  CreatedAt – creation timestamp.
type Review struct {
    ID        uint64    // reviews.id
    CabinID   uint64    // reviews.cabin_id
    UserID    uint64    // reviews.user_id
    Rating    int       // reviews.rating
    Comment   string    // reviews.comment
    CreatedAt time.Time // reviews.created_at
}
