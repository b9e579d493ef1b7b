package rides

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"globapp-api/internal/drivers"
	"globapp-api/internal/events"
	"globapp-api/internal/geo"
	"globapp-api/internal/notifications"
	"globapp-api/internal/pricing"
	"globapp-api/internal/tracking"
	"globapp-api/pkg/kafka"
	"globapp-api/pkg/phone"
	"globapp-api/pkg/validation"
)

var (
	ErrInvalidRider   = errors.New("rider name must be between 2 and 200 characters")
	ErrInvalidAddress = errors.New("pickup and dropoff addresses are required")
)

// DriverDirectory resolves driver display data for events and notifications.
type DriverDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*drivers.Driver, error)
}

// Quote is a fare estimate for a prospective ride.
type Quote struct {
	ServiceType            string            `json:"service_type"`
	EstimatedDistanceMiles float64           `json:"estimated_distance_miles"`
	EstimatedDurationMin   float64           `json:"estimated_duration_min"`
	EstimatedPriceUSD      float64           `json:"estimated_price_usd"`
	TotalEstimatedUSD      float64           `json:"total_estimated_usd"`
	Breakdown              pricing.Breakdown `json:"breakdown"`
}

// Service contains ride business logic.
type Service struct {
	store    Store
	drivers  DriverDirectory
	pricing  *pricing.Engine
	geo      *geo.Resolver
	kafka    *kafka.Client
	notifier *notifications.Notifier
	hub      *tracking.Hub
}

// NewService creates a ride service. Kafka, notifier and hub are best-effort
// side channels; any of them may be nil (e.g. in tests) without affecting
// ride state.
func NewService(store Store, dir DriverDirectory, engine *pricing.Engine, resolver *geo.Resolver,
	k *kafka.Client, notifier *notifications.Notifier, hub *tracking.Hub) *Service {
	return &Service{
		store:    store,
		drivers:  dir,
		pricing:  engine,
		geo:      resolver,
		kafka:    k,
		notifier: notifier,
		hub:      hub,
	}
}

// Quote estimates distance, duration and fare for a prospective ride.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if !validation.ValidateAddress(req.Pickup) || !validation.ValidateAddress(req.Dropoff) {
		return nil, ErrInvalidAddress
	}
	serviceType := req.ServiceType
	if serviceType == "" {
		serviceType = "economy"
	}

	miles, minutes := s.geo.DistanceDuration(ctx, req.Pickup, req.Dropoff)
	breakdown := s.pricing.Calculate(miles, minutes, 1.0)

	return &Quote{
		ServiceType:            serviceType,
		EstimatedDistanceMiles: miles,
		EstimatedDurationMin:   minutes,
		EstimatedPriceUSD:      breakdown.TotalEstimated,
		TotalEstimatedUSD:      breakdown.TotalEstimated,
		Breakdown:              breakdown,
	}, nil
}

// Create books a new ride in status requested and publishes ride.requested.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Ride, error) {
	if !validation.ValidateName(req.RiderName) {
		return nil, ErrInvalidRider
	}
	if !validation.ValidateAddress(req.Pickup) || !validation.ValidateAddress(req.Dropoff) {
		return nil, ErrInvalidAddress
	}
	normalized, err := phone.Normalize(req.RiderPhone)
	if err != nil {
		return nil, err
	}

	quote, err := s.Quote(ctx, QuoteRequest{Pickup: req.Pickup, Dropoff: req.Dropoff, ServiceType: req.ServiceType})
	if err != nil {
		return nil, err
	}

	r := &Ride{
		ID:                     uuid.New(),
		RiderName:              req.RiderName,
		RiderPhoneRaw:          req.RiderPhone,
		RiderPhone:             normalized,
		Pickup:                 req.Pickup,
		Dropoff:                req.Dropoff,
		ServiceType:            quote.ServiceType,
		EstimatedDistanceMiles: quote.EstimatedDistanceMiles,
		EstimatedDurationMin:   quote.EstimatedDurationMin,
		EstimatedPriceUSD:      quote.EstimatedPriceUSD,
		Status:                 StatusRequested,
		CreatedAt:              time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, r); err != nil {
		return nil, err
	}

	go func() {
		if s.kafka != nil {
			ev := events.RideRequestedEvent{
				RideID:      r.ID.String(),
				RiderName:   r.RiderName,
				Pickup:      r.Pickup,
				Dropoff:     r.Dropoff,
				ServiceType: r.ServiceType,
				RequestedAt: r.CreatedAt.Format(time.RFC3339),
			}
			if err := s.kafka.Publish(context.Background(), kafka.TopicRideRequested, r.ID.String(), ev); err != nil {
				log.Printf("[rides] failed to publish ride.requested: %v", err)
			}
		}
		if s.notifier != nil {
			s.notifier.RideBooked(context.Background(), notifications.RideEvent{
				RideID:    r.ID,
				RiderName: r.RiderName,
				Pickup:    r.Pickup,
				Dropoff:   r.Dropoff,
			})
		}
	}()

	return r, nil
}

// GetByID fetches a ride by primary key.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Ride, error) {
	return s.store.GetByID(ctx, id)
}

// UpdateStatus applies a driver-requested status transition and fans the
// result out to Kafka, notifications and live subscribers.
func (s *Service) UpdateStatus(ctx context.Context, rideID, driverID uuid.UUID, requested string) (*Ride, error) {
	newStatus := strings.ToLower(strings.TrimSpace(requested))
	now := time.Now().UTC()

	r, err := s.store.Transition(ctx, rideID, driverID, newStatus, now)
	if err != nil {
		return nil, err
	}

	go s.fanOutStatus(r, driverID, newStatus, now)
	return r, nil
}

// AssignedRide returns the driver's current active ride, or nil.
func (s *Service) AssignedRide(ctx context.Context, driverID uuid.UUID) (*Ride, error) {
	return s.store.ActiveByDriver(ctx, driverID)
}

// ActiveRideID reports the id of the driver's current active ride, for
// routing live location updates to its subscribers.
func (s *Service) ActiveRideID(ctx context.Context, driverID uuid.UUID) (string, bool) {
	r, err := s.store.ActiveByDriver(ctx, driverID)
	if err != nil || r == nil {
		return "", false
	}
	return r.ID.String(), true
}

// ListMine returns the driver's ride history, optionally filtered by status.
func (s *Service) ListMine(ctx context.Context, driverID uuid.UUID, status string, limit int) ([]Ride, error) {
	if status != "" {
		status = strings.ToLower(strings.TrimSpace(status))
		if !allowedUpdates[status] && status != StatusRequested {
			return nil, ErrInvalidStatus
		}
	}
	return s.store.ListByDriver(ctx, driverID, status, limit)
}

func (s *Service) fanOutStatus(r *Ride, driverID uuid.UUID, status string, at time.Time) {
	ctx := context.Background()

	if s.kafka != nil {
		ev := events.RideStatusChangedEvent{
			RideID:    r.ID.String(),
			DriverID:  driverID.String(),
			Status:    status,
			ChangedAt: at.Format(time.RFC3339),
		}
		if err := s.kafka.Publish(ctx, kafka.TopicRideStatusChanged, r.ID.String(), ev); err != nil {
			log.Printf("[rides] failed to publish ride.status_changed: %v", err)
		}
	}

	if s.notifier != nil {
		driverName := ""
		if s.drivers != nil {
			if d, err := s.drivers.GetByID(ctx, driverID); err == nil {
				driverName = d.Name
			}
		}
		s.notifier.RideStatusChanged(ctx, notifications.RideEvent{
			RideID:     r.ID,
			DriverID:   &driverID,
			DriverName: driverName,
			RiderName:  r.RiderName,
			Pickup:     r.Pickup,
			Dropoff:    r.Dropoff,
		}, status)
	}

	if s.hub != nil {
		s.hub.BroadcastStatus(r.ID.String(), status, at)
	}
}
