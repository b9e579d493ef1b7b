package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"globapp-api/internal/config"
	"globapp-api/internal/drivers"
	"globapp-api/internal/rides"
)

type fakeDriverStore struct {
	byID map[uuid.UUID]*drivers.Driver
}

func (f *fakeDriverStore) Insert(_ context.Context, d *drivers.Driver) error {
	f.byID[d.ID] = d
	return nil
}

func (f *fakeDriverStore) GetByID(_ context.Context, id uuid.UUID) (*drivers.Driver, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, drivers.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDriverStore) List(_ context.Context, _ int) ([]drivers.Driver, error) {
	var out []drivers.Driver
	for _, d := range f.byID {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDriverStore) SetPin(context.Context, uuid.UUID, string, string) error { return nil }

type fakeDispatchStore struct {
	rideStore *fakeRideStore
	assignErr error
}

func (f *fakeDispatchStore) Assign(_ context.Context, rideID, driverID uuid.UUID, now time.Time) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	r, ok := f.rideStore.byID[rideID]
	if !ok {
		return rides.ErrRideNotFound
	}
	r.Status = rides.StatusAssigned
	r.AssignedDriverID = &driverID
	if r.AssignedAt == nil {
		ts := now
		r.AssignedAt = &ts
	}
	return nil
}

func (f *fakeDispatchStore) ListRidesByStatus(_ context.Context, status string, _ int) ([]rides.Ride, error) {
	var out []rides.Ride
	for _, r := range f.rideStore.byID {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeDispatchStore) ListActiveRides(context.Context, int) ([]ActiveRide, error) {
	return nil, nil
}

type fakeRideStore struct {
	byID map[uuid.UUID]*rides.Ride
}

func (f *fakeRideStore) Insert(_ context.Context, r *rides.Ride) error {
	f.byID[r.ID] = r
	return nil
}

func (f *fakeRideStore) GetByID(_ context.Context, id uuid.UUID) (*rides.Ride, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, rides.ErrRideNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRideStore) Transition(context.Context, uuid.UUID, uuid.UUID, string, time.Time) (*rides.Ride, error) {
	return nil, rides.ErrRideNotFound
}

func (f *fakeRideStore) ActiveByDriver(context.Context, uuid.UUID) (*rides.Ride, error) {
	return nil, nil
}

func (f *fakeRideStore) ListByDriver(context.Context, uuid.UUID, string, int) ([]rides.Ride, error) {
	return nil, nil
}

func testFixture(t *testing.T) (*Service, *fakeRideStore, uuid.UUID, uuid.UUID) {
	t.Helper()

	driverID := uuid.New()
	driverStore := &fakeDriverStore{byID: map[uuid.UUID]*drivers.Driver{
		driverID: {ID: driverID, Name: "Max", Phone: "+15551230000", IsActive: true},
	}}
	driverSvc := drivers.NewService(driverStore, nil, &config.Config{})

	rideID := uuid.New()
	rideStore := &fakeRideStore{byID: map[uuid.UUID]*rides.Ride{
		rideID: {
			ID:        rideID,
			RiderName: "Dana",
			Status:    rides.StatusRequested,
			CreatedAt: time.Now().UTC(),
		},
	}}
	store := &fakeDispatchStore{rideStore: rideStore}

	svc := NewService(store, driverSvc, rideStore, nil, nil, nil, nil)
	return svc, rideStore, rideID, driverID
}

func TestAssign(t *testing.T) {
	t.Parallel()

	svc, _, rideID, driverID := testFixture(t)

	r, err := svc.Assign(context.Background(), rideID, driverID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if r.Status != rides.StatusAssigned {
		t.Fatalf("status = %q, want %q", r.Status, rides.StatusAssigned)
	}
	if r.AssignedDriverID == nil || *r.AssignedDriverID != driverID {
		t.Fatalf("assigned driver = %v, want %s", r.AssignedDriverID, driverID)
	}
	if r.AssignedAt == nil {
		t.Fatal("assigned milestone not recorded")
	}
}

func TestAssignStoreErrorsPropagate(t *testing.T) {
	t.Parallel()

	for _, want := range []error{ErrNotAssignable, ErrDriverBusy, ErrDriverInactive, drivers.ErrNotFound} {
		driverSvc := drivers.NewService(&fakeDriverStore{byID: map[uuid.UUID]*drivers.Driver{}}, nil, &config.Config{})
		rideStore := &fakeRideStore{byID: map[uuid.UUID]*rides.Ride{}}
		svc := NewService(&fakeDispatchStore{rideStore: rideStore, assignErr: want}, driverSvc, rideStore, nil, nil, nil, nil)

		_, err := svc.Assign(context.Background(), uuid.New(), uuid.New())
		if !errors.Is(err, want) {
			t.Fatalf("err = %v, want %v", err, want)
		}
	}
}

func TestAssignUnknownRide(t *testing.T) {
	t.Parallel()

	svc, _, _, driverID := testFixture(t)

	_, err := svc.Assign(context.Background(), uuid.New(), driverID)
	if !errors.Is(err, rides.ErrRideNotFound) {
		t.Fatalf("err = %v, want %v", err, rides.ErrRideNotFound)
	}
}

func TestRidesByStatus(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := testFixture(t)
	ctx := context.Background()

	// Empty filter defaults to the requested queue.
	queue, err := svc.RidesByStatus(ctx, "", 50)
	if err != nil {
		t.Fatalf("RidesByStatus: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("requested queue has %d rides, want 1", len(queue))
	}

	if _, err := svc.RidesByStatus(ctx, "limbo", 50); !errors.Is(err, rides.ErrInvalidStatus) {
		t.Fatalf("err = %v, want %v", err, rides.ErrInvalidStatus)
	}
}
