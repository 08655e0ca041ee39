// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation
// cannot proceed due to existing state (e.g. deleting a booking
// that has not been cancelled).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update or delete cannot be
// performed because of conflicting state, such as cancelling a
// booking that already reached a terminal status. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when a referenced row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDateConflict is returned by booking creation when the requested
// date range overlaps an existing non-cancelled booking for the same
// cabin. Handlers should translate this into an HTTP 409 response.
var ErrDateConflict = errors.New("dates overlap an existing booking")
