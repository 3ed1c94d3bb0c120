package booking

import (
	"strings"

	"github.com/shareloop/service-sharing/internal/pkg/apperr"
)

// State is a named filter slicing a user's or owner's bookings, either by
// position relative to now (CURRENT, PAST, FUTURE) or by approval status
// (WAITING, APPROVED, REJECTED). ALL matches everything.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateApproved State = "APPROVED"
	StateRejected State = "REJECTED"
)

// AllStates lists every recognized state, in the order the finder tables
// are built.
var AllStates = []State{
	StateAll,
	StateCurrent,
	StatePast,
	StateFuture,
	StateWaiting,
	StateApproved,
	StateRejected,
}

// ParseState resolves a case-insensitive keyword to a State. Unknown
// keywords fail; no fallback state is substituted.
func ParseState(value string) (State, error) {
	candidate := State(strings.ToUpper(value))
	for _, s := range AllStates {
		if s == candidate {
			return s, nil
		}
	}
	return "", apperr.NewInvalidFilter(value)
}
