package rides

import (
	"errors"

	"github.com/google/uuid"
)

// Status machine failures.
var (
	ErrRideNotFound            = errors.New("ride not found")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrNotAssigned             = errors.New("ride is not assigned to any driver")
	ErrNotOwner                = errors.New("ride is not assigned to this driver")
	ErrAlreadyTerminal         = errors.New("ride is already in a terminal status")
	ErrInvalidTransitionSource = errors.New("ride status does not permit transitions")
	ErrStatusRegression        = errors.New("status regression is not allowed")
)

// Snapshot is the slice of a ride row the status machine validates against.
type Snapshot struct {
	Status           string
	AssignedDriverID *uuid.UUID
}

// Decide validates a driver-requested status transition against the current
// ride snapshot. It is pure: the caller is responsible for loading the
// snapshot under a row lock and applying the transition in the same
// transaction.
//
// Rules, in order: the requested status must be a known member of the update
// set; the ride must have an assignee and it must be the acting driver; a
// terminal ride accepts nothing further. Cancellation is then allowed from
// any remaining state. Every other request must come from a recognized
// ordered state and may not move backwards — re-posting the current status
// is permitted and is a no-op apart from timestamp semantics (first write
// wins).
func Decide(s Snapshot, actingDriverID uuid.UUID, requested string) error {
	if !allowedUpdates[requested] {
		return ErrInvalidStatus
	}
	if s.AssignedDriverID == nil {
		return ErrNotAssigned
	}
	if *s.AssignedDriverID != actingDriverID {
		return ErrNotOwner
	}
	if IsTerminal(s.Status) {
		return ErrAlreadyTerminal
	}
	if requested == StatusCancelled {
		return nil
	}

	currentOrder, ok := statusOrder[s.Status]
	if !ok {
		return ErrInvalidTransitionSource
	}
	if statusOrder[requested] < currentOrder {
		return ErrStatusRegression
	}
	return nil
}
