package payments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"globapp-api/internal/config"
	"globapp-api/internal/pricing"
	"globapp-api/internal/rides"
)

// Option is one payment method offered to the rider.
type Option struct {
	Provider    string `json:"provider"`
	DisplayName string `json:"display_name"`
}

// Service contains payment business logic. The relational record is
// best-effort bookkeeping; the provider response is the source of truth.
type Service struct {
	rides    rides.Store
	recorder Recorder
	cfg      *config.Config
}

// NewService creates a payment service.
func NewService(rideStore rides.Store, recorder Recorder, cfg *config.Config) *Service {
	return &Service{rides: rideStore, recorder: recorder, cfg: cfg}
}

// Options lists the payment methods available in this deployment.
func (s *Service) Options() []Option {
	opts := []Option{{Provider: ProviderCash, DisplayName: "Cash"}}
	if s.cfg.CardGatewayURL != "" {
		opts = append(opts, Option{Provider: ProviderCard, DisplayName: "Credit or debit card"})
	}
	return opts
}

// CreateIntent opens a payment intent for a ride's estimated fare.
func (s *Service) CreateIntent(ctx context.Context, rideID uuid.UUID, providerTag string) (*Intent, error) {
	provider, err := NewProvider(providerTag, s.cfg)
	if err != nil {
		return nil, err
	}

	r, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	amountCents := pricing.USDToCents(r.EstimatedPriceUSD)

	intent, err := provider.CreateIntent(ctx, rideID.String(), amountCents)
	if err != nil {
		return nil, err
	}

	s.record(ctx, r.ID, provider.Name(), amountCents, intent)
	return intent, nil
}

// Confirm settles a previously created intent.
func (s *Service) Confirm(ctx context.Context, rideID uuid.UUID, providerTag, ref string) (*Intent, error) {
	provider, err := NewProvider(providerTag, s.cfg)
	if err != nil {
		return nil, err
	}

	r, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	intent, err := provider.Confirm(ctx, ref)
	if err != nil {
		return nil, err
	}

	s.record(ctx, r.ID, provider.Name(), pricing.USDToCents(r.EstimatedPriceUSD), intent)
	return intent, nil
}

// History returns all recorded payment attempts for a ride.
func (s *Service) History(ctx context.Context, rideID uuid.UUID) ([]Payment, error) {
	return s.recorder.ListByRide(ctx, rideID)
}

func (s *Service) record(ctx context.Context, rideID uuid.UUID, provider string, amountCents int64, intent *Intent) {
	if s.recorder == nil {
		return
	}
	ref := intent.Ref
	s.recorder.Record(ctx, &Payment{
		ID:          uuid.New(),
		RideID:      rideID,
		Provider:    provider,
		AmountCents: amountCents,
		Currency:    "usd",
		Status:      intent.Status,
		ExternalRef: &ref,
		CreatedAt:   time.Now().UTC(),
	})
}
