package notifications

import (
	"context"
	"encoding/json"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink records notifications on a best-effort basis. Record reports whether
// the notification was persisted; a false return means it was skipped. The
// caller's primary transaction never depends on the sink succeeding.
type Sink interface {
	Record(ctx context.Context, n *Notification) bool
}

// PGSink writes notification rows to Postgres.
type PGSink struct {
	db *pgxpool.Pool
}

// NewPGSink creates a sink backed by the given pool.
func NewPGSink(db *pgxpool.Pool) *PGSink { return &PGSink{db: db} }

func (s *PGSink) Record(ctx context.Context, n *Notification) bool {
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		log.Printf("[notifications] skipped %s for ride %s: %v", n.Type, n.RideID, err)
		return false
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO notifications (id, ride_id, driver_id, recipient_type, recipient_id,
		                            notification_type, title, message, channel, status,
		                            metadata_json, created_at_utc)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		n.ID, n.RideID, n.DriverID, n.RecipientType, n.RecipientID,
		n.Type, n.Title, n.Message, n.Channel, n.Status, meta, n.CreatedAt)
	if err != nil {
		log.Printf("[notifications] skipped %s for ride %s: %v", n.Type, n.RideID, err)
		return false
	}
	return true
}
