package drivers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"globapp-api/internal/config"
	"globapp-api/internal/tracking"
	"globapp-api/pkg/phone"
	"globapp-api/pkg/pin"
	rredis "globapp-api/pkg/redis"
	"globapp-api/pkg/validation"
)

var (
	ErrInvalidName = errors.New("name must be between 2 and 200 characters")
	ErrInvalidPin  = errors.New("pin must be 4-12 digits")
)

// Presence buckets derived from location recency.
const (
	PresenceOnline  = "online"
	PresenceStale   = "stale"
	PresenceOffline = "offline"
)

// ActiveRideFinder resolves the ride a driver is currently serving, so
// location updates can reach that ride's live subscribers.
type ActiveRideFinder interface {
	ActiveRideID(ctx context.Context, driverID uuid.UUID) (string, bool)
}

// Service contains driver business logic.
type Service struct {
	store Store
	redis *rredis.Client
	cfg   *config.Config

	hub         *tracking.Hub
	activeRides ActiveRideFinder
}

// NewService creates a driver service.
func NewService(store Store, redis *rredis.Client, cfg *config.Config) *Service {
	return &Service{store: store, redis: redis, cfg: cfg}
}

// AttachTracking wires live-tracking fan-out for location updates. It exists
// as a second step because the ride service itself depends on this one.
func (s *Service) AttachTracking(hub *tracking.Hub, finder ActiveRideFinder) {
	s.hub = hub
	s.activeRides = finder
}

// Create registers a driver account. The phone is stored in canonical
// +1XXXXXXXXXX form; the optional PIN is salted and hashed, never stored raw.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Driver, error) {
	if !validation.ValidateName(req.Name) {
		return nil, ErrInvalidName
	}
	normalized, err := phone.Normalize(req.Phone)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		ID:        uuid.New(),
		Name:      req.Name,
		Phone:     normalized,
		Vehicle:   req.Vehicle,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	if req.Pin != nil && *req.Pin != "" {
		if !validation.ValidatePin(*req.Pin) {
			return nil, ErrInvalidPin
		}
		salt, hash, err := pin.Set(*req.Pin)
		if err != nil {
			return nil, err
		}
		d.PinSalt = &salt
		d.PinHash = &hash
	}

	if err := s.store.Insert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SetPin replaces the driver's login credential.
func (s *Service) SetPin(ctx context.Context, id uuid.UUID, rawPin string) error {
	if !validation.ValidatePin(rawPin) {
		return ErrInvalidPin
	}
	salt, hash, err := pin.Set(rawPin)
	if err != nil {
		return err
	}
	return s.store.SetPin(ctx, id, salt, hash)
}

// GetByID fetches a driver by primary key.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Driver, error) {
	return s.store.GetByID(ctx, id)
}

// List returns the most recently created drivers.
func (s *Service) List(ctx context.Context, limit int) ([]Driver, error) {
	return s.store.List(ctx, limit)
}

// UpsertLocation stores the driver's current position in Redis.
func (s *Service) UpsertLocation(ctx context.Context, driverID uuid.UUID, up LocationUpsert) (time.Time, error) {
	now := time.Now().UTC()
	loc := rredis.Location{
		Lat:        up.Lat,
		Lng:        up.Lng,
		HeadingDeg: up.HeadingDeg,
		SpeedMph:   up.SpeedMph,
		AccuracyM:  up.AccuracyM,
		UpdatedAt:  now,
	}
	if err := s.redis.SetDriverLocation(ctx, driverID.String(), loc); err != nil {
		return now, err
	}

	if s.hub != nil && s.activeRides != nil {
		go func() {
			if rideID, ok := s.activeRides.ActiveRideID(context.Background(), driverID); ok {
				s.hub.BroadcastLocation(rideID, up.Lat, up.Lng)
			}
		}()
	}
	return now, nil
}

// GetLocation returns the driver's last reported position (nil if none).
func (s *Service) GetLocation(ctx context.Context, driverID uuid.UUID) (*rredis.Location, error) {
	return s.redis.GetDriverLocation(ctx, driverID.String())
}

// Presence classifies a last-seen age into online/stale/offline using the
// configured thresholds.
func (s *Service) Presence(lastSeen *time.Time, now time.Time) string {
	if lastSeen == nil {
		return PresenceOffline
	}
	age := now.Sub(*lastSeen)
	switch {
	case age <= s.cfg.PresenceOnline:
		return PresenceOnline
	case age <= s.cfg.PresenceStale:
		return PresenceStale
	default:
		return PresenceOffline
	}
}
