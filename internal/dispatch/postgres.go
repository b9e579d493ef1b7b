package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"globapp-api/internal/drivers"
	"globapp-api/internal/rides"
)

const activeRideColumns = `r.id, r.rider_name, r.rider_phone_raw, r.rider_phone_e164, r.pickup, r.dropoff,
	r.service_type, r.estimated_distance_miles, r.estimated_duration_min, r.estimated_price_usd,
	r.status, r.assigned_driver_id, r.created_at_utc, r.assigned_at_utc, r.enroute_at_utc,
	r.arrived_at_utc, r.in_progress_at_utc, r.completed_at_utc, r.cancelled_at_utc,
	d.name, d.vehicle`

// PGStore is the pgx-backed dispatch store.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a dispatch store backed by the given pool.
func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

// Assign binds a driver to a ride. The ride row is locked first so two
// dispatchers racing on the same ride serialize; re-assignment of a ride
// still in assigned is allowed (driver swap), anything past that is not.
// The partial unique index on active rides per driver turns a double
// booking into ErrDriverBusy.
func (s *PGStore) Assign(ctx context.Context, rideID, driverID uuid.UUID, now time.Time) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin assign: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM rides WHERE id=$1 FOR UPDATE`, rideID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rides.ErrRideNotFound
		}
		return fmt.Errorf("lock ride: %w", err)
	}
	if status != rides.StatusRequested && status != rides.StatusAssigned {
		return ErrNotAssignable
	}

	var isActive bool
	err = tx.QueryRow(ctx,
		`SELECT is_active FROM drivers WHERE id=$1`, driverID).Scan(&isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return drivers.ErrNotFound
		}
		return fmt.Errorf("load driver: %w", err)
	}
	if !isActive {
		return ErrDriverInactive
	}

	_, err = tx.Exec(ctx,
		`UPDATE rides
		 SET status=$1, assigned_driver_id=$2, assigned_at_utc=COALESCE(assigned_at_utc,$3)
		 WHERE id=$4`,
		rides.StatusAssigned, driverID, now, rideID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDriverBusy
		}
		return fmt.Errorf("assign ride: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit assign: %w", err)
	}
	return nil
}

func (s *PGStore) ListRidesByStatus(ctx context.Context, status string, limit int) ([]rides.Ride, error) {
	store := rides.NewPGStore(s.db)
	return store.ListByStatus(ctx, status, limit)
}

func (s *PGStore) ListActiveRides(ctx context.Context, limit int) ([]ActiveRide, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+activeRideColumns+`
		 FROM rides r
		 LEFT JOIN drivers d ON d.id = r.assigned_driver_id
		 WHERE r.status IN ('assigned','enroute','arrived','in_progress')
		 ORDER BY r.created_at_utc DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list active rides: %w", err)
	}
	defer rows.Close()

	var out []ActiveRide
	for rows.Next() {
		var a ActiveRide
		err := rows.Scan(&a.ID, &a.RiderName, &a.RiderPhoneRaw, &a.RiderPhone, &a.Pickup, &a.Dropoff,
			&a.ServiceType, &a.EstimatedDistanceMiles, &a.EstimatedDurationMin, &a.EstimatedPriceUSD,
			&a.Status, &a.AssignedDriverID, &a.CreatedAt, &a.AssignedAt, &a.EnrouteAt,
			&a.ArrivedAt, &a.InProgressAt, &a.CompletedAt, &a.CancelledAt,
			&a.DriverName, &a.Vehicle)
		if err != nil {
			return nil, fmt.Errorf("scan active ride: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
