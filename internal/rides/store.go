package rides

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists ride rows.
//
// Transition must load the ride under a row lock, validate the requested
// status with Decide, and apply status + milestone timestamp in the same
// transaction, so concurrent updates to one ride are linearized. Milestone
// timestamps are first-write-wins: re-posting a status never overwrites the
// original time.
type Store interface {
	Insert(ctx context.Context, r *Ride) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ride, error)
	Transition(ctx context.Context, rideID, actingDriverID uuid.UUID, newStatus string, now time.Time) (*Ride, error)
	ActiveByDriver(ctx context.Context, driverID uuid.UUID) (*Ride, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, status string, limit int) ([]Ride, error)
}
