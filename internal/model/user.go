package model

import "time"

// Role names stored in users.role.  Support staff ("soporte") and
// developers share the admin ticket surface but not user management.
const (
    RoleUser      = "user"
    RoleAdmin     = "admin"
    RoleSupport   = "soporte"
    RoleDeveloper = "developer"
)

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column.  The json tags
// are omitted because these structs are used by the repository layer;
// handlers define their own response types with appropriate tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Name         – display name shown on bookings and tickets.
//  Role         – one of user, admin, soporte, developer.
//  IsVerified   – whether the email address was verified.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Name         string    // users.name
    Role         string    // users.role
    IsVerified   bool      // users.is_verified
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// ValidRole reports whether s is one of the recognised role names.
func ValidRole(s string) bool {
    switch s {
    case RoleUser, RoleAdmin, RoleSupport, RoleDeveloper:
        return true
    }
    return false
}

// IsStaff reports whether the role grants access to the support/admin
// ticket surface.
func IsStaff(role string) bool {
    return role == RoleAdmin || role == RoleSupport || role == RoleDeveloper
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; only the SHA‑256 hash of the raw
// token value is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
