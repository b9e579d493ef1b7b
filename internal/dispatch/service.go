package dispatch

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"globapp-api/internal/drivers"
	"globapp-api/internal/events"
	"globapp-api/internal/notifications"
	"globapp-api/internal/rides"
	"globapp-api/internal/tracking"
	"globapp-api/pkg/kafka"
	rredis "globapp-api/pkg/redis"
)

// Service contains dispatcher business logic: manual assignment plus the
// queue and presence views the ops console reads.
type Service struct {
	store    Store
	drivers  *drivers.Service
	rides    rides.Store
	redis    *rredis.Client
	kafka    *kafka.Client
	notifier *notifications.Notifier
	hub      *tracking.Hub
}

// NewService creates a dispatch service. Kafka, notifier and hub are
// best-effort side channels and may be nil in tests.
func NewService(store Store, drv *drivers.Service, rideStore rides.Store, redis *rredis.Client,
	k *kafka.Client, notifier *notifications.Notifier, hub *tracking.Hub) *Service {
	return &Service{
		store:    store,
		drivers:  drv,
		rides:    rideStore,
		redis:    redis,
		kafka:    k,
		notifier: notifier,
		hub:      hub,
	}
}

// Assign binds a driver to a ride and fans the assignment out to Kafka,
// notifications and live subscribers. The store call is the source of
// truth; side channels never affect the outcome.
func (s *Service) Assign(ctx context.Context, rideID, driverID uuid.UUID) (*rides.Ride, error) {
	now := time.Now().UTC()
	if err := s.store.Assign(ctx, rideID, driverID, now); err != nil {
		return nil, err
	}

	r, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	go s.fanOutAssigned(r, driverID, now)
	return r, nil
}

// RidesByStatus returns the dispatcher queue for one status.
func (s *Service) RidesByStatus(ctx context.Context, status string, limit int) ([]rides.Ride, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		status = rides.StatusRequested
	}
	if !rides.KnownStatus(status) {
		return nil, rides.ErrInvalidStatus
	}
	return s.store.ListRidesByStatus(ctx, status, limit)
}

// ActiveRides returns all in-flight rides with their assigned drivers.
func (s *Service) ActiveRides(ctx context.Context, limit int) ([]ActiveRide, error) {
	return s.store.ListActiveRides(ctx, limit)
}

// PresenceEntry is one row of the driver presence board.
type PresenceEntry struct {
	DriverID   uuid.UUID  `json:"driver_id"`
	Name       string     `json:"name"`
	Vehicle    *string    `json:"vehicle,omitempty"`
	IsActive   bool       `json:"is_active"`
	Presence   string     `json:"presence"`
	Lat        *float64   `json:"lat,omitempty"`
	Lng        *float64   `json:"lng,omitempty"`
	LastSeen   *time.Time `json:"last_seen_utc,omitempty"`
	AgeSeconds *float64   `json:"age_seconds,omitempty"`
}

// DriverPresence joins the driver roster against last-known locations in
// Redis and classifies each driver as online, stale or offline.
func (s *Service) DriverPresence(ctx context.Context, limit int) ([]PresenceEntry, error) {
	roster, err := s.drivers.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]PresenceEntry, 0, len(roster))
	for i := range roster {
		d := &roster[i]
		e := PresenceEntry{
			DriverID: d.ID,
			Name:     d.Name,
			Vehicle:  d.Vehicle,
			IsActive: d.IsActive,
			Presence: drivers.PresenceOffline,
		}
		loc, err := s.drivers.GetLocation(ctx, d.ID)
		if err != nil {
			log.Printf("[dispatch] presence lookup failed for %s: %v", d.ID, err)
		} else if loc != nil {
			seen := loc.UpdatedAt
			age := now.Sub(seen).Seconds()
			e.Lat = &loc.Lat
			e.Lng = &loc.Lng
			e.LastSeen = &seen
			e.AgeSeconds = &age
			e.Presence = s.drivers.Presence(&seen, now)
		}
		out = append(out, e)
	}
	return out, nil
}

// AvailableDrivers returns active drivers currently online, the candidate
// pool for a manual assignment.
func (s *Service) AvailableDrivers(ctx context.Context, limit int) ([]PresenceEntry, error) {
	board, err := s.DriverPresence(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := board[:0]
	for _, e := range board {
		if e.IsActive && e.Presence == drivers.PresenceOnline {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Service) fanOutAssigned(r *rides.Ride, driverID uuid.UUID, at time.Time) {
	ctx := context.Background()

	// The driver is spoken for; pull them from the available pool until
	// their app reports a fresh location.
	if s.redis != nil {
		_ = s.redis.RemoveDriverLocation(ctx, driverID.String())
	}

	driverName := ""
	if d, err := s.drivers.GetByID(ctx, driverID); err == nil {
		driverName = d.Name
	}

	if s.kafka != nil {
		ev := events.RideAssignedEvent{
			RideID:     r.ID.String(),
			DriverID:   driverID.String(),
			DriverName: driverName,
			AssignedAt: at.Format(time.RFC3339),
		}
		if err := s.kafka.Publish(ctx, kafka.TopicRideAssigned, r.ID.String(), ev); err != nil {
			log.Printf("[dispatch] failed to publish ride.assigned: %v", err)
		}
	}

	if s.notifier != nil {
		s.notifier.RideAssigned(ctx, notifications.RideEvent{
			RideID:     r.ID,
			DriverID:   &driverID,
			DriverName: driverName,
			RiderName:  r.RiderName,
			Pickup:     r.Pickup,
			Dropoff:    r.Dropoff,
		})
	}

	if s.hub != nil {
		s.hub.BroadcastStatus(r.ID.String(), rides.StatusAssigned, at)
	}
}
