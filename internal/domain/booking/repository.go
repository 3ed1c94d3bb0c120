package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SortDirection is the order applied to a list query.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ListQuery carries the sort specification and page window applied to every
// category-scoped list query.
type ListQuery struct {
	SortBy  string
	SortDir SortDirection
	Offset  int
	Limit   int
}

// DefaultListQuery returns the conventional listing order: most recent
// start first, first page of fifty.
func DefaultListQuery() ListQuery {
	return ListQuery{SortBy: "start", SortDir: SortDesc, Offset: 0, Limit: 50}
}

// BookingRepository defines the persistence contract for bookings. The
// store owns physical storage only; it applies no business rules.
//
// The twelve category-scoped list queries mirror the finder table: for each
// scope (booker, item owner) one query per temporal window plus one per
// status.
type BookingRepository interface {
	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// UpdateStatus transitions a booking's status with a conditional
	// single-row write: the update applies only while the stored status
	// still equals from. A lost race reports a conflict.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByBookerIDAndItemID retrieves every booking the given user made
	// for the given item, without paging.
	FindByBookerIDAndItemID(ctx context.Context, bookerID, itemID uuid.UUID) ([]*Booking, error)

	FindByBookerID(ctx context.Context, bookerID uuid.UUID, q ListQuery) ([]*Booking, error)
	FindCurrentByBookerID(ctx context.Context, bookerID uuid.UUID, now time.Time, q ListQuery) ([]*Booking, error)
	FindPastByBookerID(ctx context.Context, bookerID uuid.UUID, now time.Time, q ListQuery) ([]*Booking, error)
	FindFutureByBookerID(ctx context.Context, bookerID uuid.UUID, now time.Time, q ListQuery) ([]*Booking, error)
	FindByBookerIDAndStatus(ctx context.Context, bookerID uuid.UUID, status Status, q ListQuery) ([]*Booking, error)

	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]*Booking, error)
	FindCurrentByOwnerID(ctx context.Context, ownerID uuid.UUID, now time.Time, q ListQuery) ([]*Booking, error)
	FindPastByOwnerID(ctx context.Context, ownerID uuid.UUID, now time.Time, q ListQuery) ([]*Booking, error)
	FindFutureByOwnerID(ctx context.Context, ownerID uuid.UUID, now time.Time, q ListQuery) ([]*Booking, error)
	FindByOwnerIDAndStatus(ctx context.Context, ownerID uuid.UUID, status Status, q ListQuery) ([]*Booking, error)
}
