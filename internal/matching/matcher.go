package matching

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"

	"globapp-api/internal/dispatch"
	"globapp-api/internal/events"
	"globapp-api/internal/geo"
	"globapp-api/pkg/kafka"
	rredis "globapp-api/pkg/redis"
)

const searchRadiusKm = 8.0

// Matcher consumes ride.requested events and auto-assigns the nearest
// available driver through the dispatch service. Assignment failures are
// logged, not retried: the ride stays in requested for manual dispatch.
type Matcher struct {
	kafka    *kafka.Client
	redis    *rredis.Client
	geo      *geo.Resolver
	dispatch *dispatch.Service
}

// NewMatcher creates a new matcher.
func NewMatcher(k *kafka.Client, r *rredis.Client, resolver *geo.Resolver, d *dispatch.Service) *Matcher {
	return &Matcher{kafka: k, redis: r, geo: resolver, dispatch: d}
}

// Start begins consuming ride.requested in a background goroutine.
func (m *Matcher) Start(ctx context.Context) {
	m.kafka.Subscribe(ctx, kafka.TopicRideRequested, "matching-group", func(data []byte) error {
		var ev events.RideRequestedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}

		rideID, err := uuid.Parse(ev.RideID)
		if err != nil {
			log.Printf("[matching] bad ride id in event: %q", ev.RideID)
			return nil
		}

		log.Printf("[matching] ride.requested ride=%s pickup=%q", ev.RideID, ev.Pickup)

		lat, lng, err := m.geo.Geocode(ctx, ev.Pickup)
		if err != nil {
			log.Printf("[matching] cannot geocode pickup for ride %s: %v", ev.RideID, err)
			return nil
		}

		candidates, err := m.redis.GetNearbyDrivers(ctx, lat, lng, searchRadiusKm, 5)
		if err != nil || len(candidates) == 0 {
			log.Printf("[matching] no nearby drivers for ride %s", ev.RideID)
			return nil
		}

		for _, candidate := range candidates {
			driverID, err := uuid.Parse(candidate)
			if err != nil {
				continue
			}
			if _, err := m.dispatch.Assign(ctx, rideID, driverID); err != nil {
				if errors.Is(err, dispatch.ErrDriverBusy) || errors.Is(err, dispatch.ErrDriverInactive) {
					continue
				}
				log.Printf("[matching] assign ride %s to %s failed: %v", ev.RideID, driverID, err)
				return nil
			}

			log.Printf("[matching] assigned driver %s to ride %s", driverID, ev.RideID)
			return nil
		}

		log.Printf("[matching] all candidates busy or inactive for ride %s", ev.RideID)
		return nil
	})
}
