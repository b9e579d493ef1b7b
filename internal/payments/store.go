package payments

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Payment is one recorded payment attempt against a ride.
type Payment struct {
	ID          uuid.UUID `json:"payment_id"`
	RideID      uuid.UUID `json:"ride_id"`
	Provider    string    `json:"provider"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	ExternalRef *string   `json:"external_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at_utc"`
}

// Recorder persists payment records. Recording is best-effort accounting:
// implementations report success via the return value and never fail the
// payment flow.
type Recorder interface {
	Record(ctx context.Context, p *Payment) bool
	ListByRide(ctx context.Context, rideID uuid.UUID) ([]Payment, error)
}

// PGRecorder is the pgx-backed payment recorder.
type PGRecorder struct {
	db *pgxpool.Pool
}

// NewPGRecorder creates a payment recorder backed by the given pool.
func NewPGRecorder(db *pgxpool.Pool) *PGRecorder { return &PGRecorder{db: db} }

func (r *PGRecorder) Record(ctx context.Context, p *Payment) bool {
	_, err := r.db.Exec(ctx,
		`INSERT INTO payments (id, ride_id, provider, amount_cents, currency, status, external_ref, created_at_utc)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.RideID, p.Provider, p.AmountCents, p.Currency, p.Status, p.ExternalRef, p.CreatedAt)
	if err != nil {
		log.Printf("[payments] skipped record for ride %s: %v", p.RideID, err)
		return false
	}
	return true
}

func (r *PGRecorder) ListByRide(ctx context.Context, rideID uuid.UUID) ([]Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, ride_id, provider, amount_cents, currency, status, external_ref, created_at_utc
		 FROM payments WHERE ride_id=$1 ORDER BY created_at_utc DESC`, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.RideID, &p.Provider, &p.AmountCents, &p.Currency,
			&p.Status, &p.ExternalRef, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
