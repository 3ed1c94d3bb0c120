package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/internal/pkg/apperr"
)

// Booking is the aggregate root for the booking domain: a request by one
// user to use another user's item over a time interval, subject to owner
// approval.
type Booking struct {
	id        uuid.UUID
	itemID    uuid.UUID
	bookerID  uuid.UUID
	start     time.Time
	end       time.Time
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a booking in the waiting state. The interval must be
// strictly ordered and must not start in the past relative to now. Item and
// booker existence is the caller's concern: the service resolves both IDs
// against their stores, so unknown IDs surface as not-found there.
func NewBooking(itemID, bookerID uuid.UUID, start, end, now time.Time) (*Booking, error) {
	if !start.Before(end) {
		return nil, apperr.NewInvalidInterval()
	}
	if start.Before(now) {
		return nil, apperr.NewValidation("booking start must not be in the past")
	}

	created := now.UTC()
	return &Booking{
		id:        uuid.New(),
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start,
		end:       end,
		status:    StatusWaiting,
		createdAt: created,
		updatedAt: created,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(id, itemID, bookerID uuid.UUID, start, end time.Time, status Status, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		id:        id,
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start,
		end:       end,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ItemID returns the id of the booked item.
func (b *Booking) ItemID() uuid.UUID { return b.itemID }

// BookerID returns the id of the requesting user.
func (b *Booking) BookerID() uuid.UUID { return b.bookerID }

// Start returns the start of the booking interval.
func (b *Booking) Start() time.Time { return b.start }

// End returns the end of the booking interval.
func (b *Booking) End() time.Time { return b.end }

// Status returns the current approval status.
func (b *Booking) Status() Status { return b.status }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// Decide resolves the waiting booking to approved or rejected. A booking
// that already left the waiting state cannot be decided again.
func (b *Booking) Decide(approve bool, now time.Time) error {
	target := StatusApproved
	if !approve {
		target = StatusRejected
	}
	if !b.status.CanTransitionTo(target) {
		return apperr.NewInvalidTransition(string(b.status))
	}
	b.status = target
	b.updatedAt = now.UTC()
	return nil
}
