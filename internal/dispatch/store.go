package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"globapp-api/internal/rides"
)

var (
	ErrNotAssignable  = errors.New("ride is not assignable")
	ErrDriverInactive = errors.New("driver is not active")
	ErrDriverBusy     = errors.New("driver already has an active ride")
)

// ActiveRide is a ride joined with its assigned driver's display data.
type ActiveRide struct {
	rides.Ride
	DriverName *string
	Vehicle    *string
}

// Store is the dispatcher's view of the relational store.
//
// Assign must run as one transaction: ride assignability, driver existence
// and activity are checked under a row lock before the assignment is
// written, so two dispatchers racing on one ride are linearized.
type Store interface {
	Assign(ctx context.Context, rideID, driverID uuid.UUID, now time.Time) error
	ListRidesByStatus(ctx context.Context, status string, limit int) ([]rides.Ride, error)
	ListActiveRides(ctx context.Context, limit int) ([]ActiveRide, error)
}
