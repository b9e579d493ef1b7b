package rides

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const rideColumns = `id, rider_name, rider_phone_raw, rider_phone_e164, pickup, dropoff,
	service_type, estimated_distance_miles, estimated_duration_min, estimated_price_usd,
	status, assigned_driver_id, created_at_utc, assigned_at_utc, enroute_at_utc,
	arrived_at_utc, in_progress_at_utc, completed_at_utc, cancelled_at_utc`

// milestoneColumn maps a status to the timestamp column recorded the first
// time the ride reaches it. Assigned has no entry: its milestone is written
// by the dispatch assignment flow.
var milestoneColumn = map[string]string{
	StatusEnroute:    "enroute_at_utc",
	StatusArrived:    "arrived_at_utc",
	StatusInProgress: "in_progress_at_utc",
	StatusCompleted:  "completed_at_utc",
	StatusCancelled:  "cancelled_at_utc",
}

// PGStore is the pgx-backed ride store.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a ride store backed by the given pool.
func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Insert(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO rides (id, rider_name, rider_phone_raw, rider_phone_e164, pickup, dropoff,
		                    service_type, estimated_distance_miles, estimated_duration_min,
		                    estimated_price_usd, status, created_at_utc)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		r.ID, r.RiderName, r.RiderPhoneRaw, r.RiderPhone, r.Pickup, r.Dropoff,
		r.ServiceType, r.EstimatedDistanceMiles, r.EstimatedDurationMin,
		r.EstimatedPriceUSD, r.Status, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}

func (s *PGStore) GetByID(ctx context.Context, id uuid.UUID) (*Ride, error) {
	r, err := scanRide(s.db.QueryRow(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("get ride: %w", err)
	}
	return r, nil
}

// Transition validates and applies a driver status update atomically. The
// ride row is locked for the duration so two concurrent updates (a driver
// double-tapping "arrived") are linearized, and the milestone timestamp is
// written through COALESCE so only the first arrival at a status records a
// time.
func (s *PGStore) Transition(ctx context.Context, rideID, actingDriverID uuid.UUID, newStatus string, now time.Time) (*Ride, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback(ctx)

	var snap Snapshot
	err = tx.QueryRow(ctx,
		`SELECT status, assigned_driver_id FROM rides WHERE id=$1 FOR UPDATE`, rideID).
		Scan(&snap.Status, &snap.AssignedDriverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("lock ride: %w", err)
	}

	if err := Decide(snap, actingDriverID, newStatus); err != nil {
		return nil, err
	}

	if col, ok := milestoneColumn[newStatus]; ok {
		_, err = tx.Exec(ctx,
			fmt.Sprintf(`UPDATE rides SET status=$1, %s=COALESCE(%s,$2) WHERE id=$3`, col, col),
			newStatus, now, rideID)
	} else {
		_, err = tx.Exec(ctx, `UPDATE rides SET status=$1 WHERE id=$2`, newStatus, rideID)
	}
	if err != nil {
		return nil, fmt.Errorf("apply transition: %w", err)
	}

	r, err := scanRide(tx.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id=$1`, rideID))
	if err != nil {
		return nil, fmt.Errorf("reload ride: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return r, nil
}

func (s *PGStore) ActiveByDriver(ctx context.Context, driverID uuid.UUID) (*Ride, error) {
	r, err := scanRide(s.db.QueryRow(ctx,
		`SELECT `+rideColumns+` FROM rides
		 WHERE assigned_driver_id=$1
		   AND status IN ('assigned','enroute','arrived','in_progress')
		 ORDER BY assigned_at_utc DESC NULLS LAST
		 LIMIT 1`, driverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("active ride: %w", err)
	}
	return r, nil
}

// ListByStatus returns the newest rides in a given status, for the
// dispatcher's queue views.
func (s *PGStore) ListByStatus(ctx context.Context, status string, limit int) ([]Ride, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE status=$1
		 ORDER BY created_at_utc DESC LIMIT $2`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list rides by status: %w", err)
	}
	defer rows.Close()

	var out []Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *PGStore) ListByDriver(ctx context.Context, driverID uuid.UUID, status string, limit int) ([]Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE assigned_driver_id=$1`
	args := []any{driverID}
	if status != "" {
		query += ` AND status=$2`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at_utc DESC LIMIT %d`, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rides: %w", err)
	}
	defer rows.Close()

	var out []Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRide decodes a full ride row by named field, so a column-order change
// in rideColumns is caught here rather than corrupting data silently.
func scanRide(row rowScanner) (*Ride, error) {
	var r Ride
	err := row.Scan(&r.ID, &r.RiderName, &r.RiderPhoneRaw, &r.RiderPhone, &r.Pickup, &r.Dropoff,
		&r.ServiceType, &r.EstimatedDistanceMiles, &r.EstimatedDurationMin, &r.EstimatedPriceUSD,
		&r.Status, &r.AssignedDriverID, &r.CreatedAt, &r.AssignedAt, &r.EnrouteAt,
		&r.ArrivedAt, &r.InProgressAt, &r.CompletedAt, &r.CancelledAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
