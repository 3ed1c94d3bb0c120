package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FinderFunc issues the single store query that serves one state for one
// scope (booker or item owner).
type FinderFunc func(ctx context.Context, scopeID uuid.UUID, q ListQuery) ([]*Booking, error)

// FinderTables maps each state to its store query, once per scope. Both
// tables are built at startup; dispatch on a state missing from a table is
// an internal consistency fault, not a caller error, because ParseState has
// already rejected unknown keywords.
type FinderTables struct {
	byBooker map[State]FinderFunc
	byOwner  map[State]FinderFunc
}

// NewFinderTables builds both dispatch tables over the given repository.
// The now function supplies the instant used by the temporal states.
func NewFinderTables(repo BookingRepository, now func() time.Time) *FinderTables {
	byBooker := map[State]FinderFunc{
		StateAll: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindByBookerID(ctx, id, q)
		},
		StateCurrent: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindCurrentByBookerID(ctx, id, now(), q)
		},
		StatePast: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindPastByBookerID(ctx, id, now(), q)
		},
		StateFuture: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindFutureByBookerID(ctx, id, now(), q)
		},
		StateWaiting: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindByBookerIDAndStatus(ctx, id, StatusWaiting, q)
		},
		StateApproved: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindByBookerIDAndStatus(ctx, id, StatusApproved, q)
		},
		StateRejected: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindByBookerIDAndStatus(ctx, id, StatusRejected, q)
		},
	}

	byOwner := map[State]FinderFunc{
		StateAll: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindByOwnerID(ctx, id, q)
		},
		StateCurrent: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindCurrentByOwnerID(ctx, id, now(), q)
		},
		StatePast: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindPastByOwnerID(ctx, id, now(), q)
		},
		StateFuture: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindFutureByOwnerID(ctx, id, now(), q)
		},
		StateWaiting: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindByOwnerIDAndStatus(ctx, id, StatusWaiting, q)
		},
		StateApproved: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindByOwnerIDAndStatus(ctx, id, StatusApproved, q)
		},
		StateRejected: func(ctx context.Context, id uuid.UUID, q ListQuery) ([]*Booking, error) {
			return repo.FindByOwnerIDAndStatus(ctx, id, StatusRejected, q)
		},
	}

	return &FinderTables{byBooker: byBooker, byOwner: byOwner}
}

// ByBooker returns the booker-scoped finder for the given state.
func (t *FinderTables) ByBooker(state State) (FinderFunc, error) {
	f, ok := t.byBooker[state]
	if !ok {
		return nil, fmt.Errorf("no booker finder registered for state %s", state)
	}
	return f, nil
}

// ByOwner returns the owner-scoped finder for the given state.
func (t *FinderTables) ByOwner(state State) (FinderFunc, error) {
	f, ok := t.byOwner[state]
	if !ok {
		return nil, fmt.Errorf("no owner finder registered for state %s", state)
	}
	return f, nil
}
