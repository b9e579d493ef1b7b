package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"globapp-api/internal/config"
	"globapp-api/internal/rides"
)

type fakeRideStore struct {
	ride *rides.Ride
}

func (f *fakeRideStore) Insert(context.Context, *rides.Ride) error { return nil }

func (f *fakeRideStore) GetByID(_ context.Context, id uuid.UUID) (*rides.Ride, error) {
	if f.ride == nil || f.ride.ID != id {
		return nil, rides.ErrRideNotFound
	}
	cp := *f.ride
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

type fakeRecorder struct {
	recorded []Payment
}

func (f *fakeRecorder) Record(_ context.Context, p *Payment) bool {
	f.recorded = append(f.recorded, *p)
	return true
}

func (f *fakeRecorder) ListByRide(_ context.Context, rideID uuid.UUID) ([]Payment, error) {
	var out []Payment
	for _, p := range f.recorded {
		if p.RideID == rideID {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestNewProviderUnknownTag(t *testing.T) {
	t.Parallel()

	_, err := NewProvider("crypto", &config.Config{})
	var unknown *UnknownProviderError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownProviderError", err)
	}
	if unknown.Provider != "crypto" {
		t.Fatalf("provider = %q, want crypto", unknown.Provider)
	}
}

func TestNewProviderCardNeedsGateway(t *testing.T) {
	t.Parallel()

	if _, err := NewProvider(ProviderCard, &config.Config{}); err == nil {
		t.Fatal("card provider resolved without a gateway")
	}
	p, err := NewProvider(ProviderCard, &config.Config{CardGatewayURL: "https://gateway.example"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Name() != ProviderCard {
		t.Fatalf("name = %q, want %q", p.Name(), ProviderCard)
	}
}

func TestOptionsReflectConfiguration(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeRideStore{}, &fakeRecorder{}, &config.Config{})
	if got := len(svc.Options()); got != 1 {
		t.Fatalf("options without gateway = %d, want 1 (cash)", got)
	}

	svc = NewService(&fakeRideStore{}, &fakeRecorder{}, &config.Config{CardGatewayURL: "https://gateway.example"})
	if got := len(svc.Options()); got != 2 {
		t.Fatalf("options with gateway = %d, want 2", got)
	}
}

func TestCashIntentFlow(t *testing.T) {
	t.Parallel()

	ride := &rides.Ride{ID: uuid.New(), EstimatedPriceUSD: 17.25}
	recorder := &fakeRecorder{}
	svc := NewService(&fakeRideStore{ride: ride}, recorder, &config.Config{})
	ctx := context.Background()

	intent, err := svc.CreateIntent(ctx, ride.ID, ProviderCash)
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if !strings.HasPrefix(intent.Ref, "cash_") {
		t.Fatalf("ref = %q, want cash_ prefix", intent.Ref)
	}
	if intent.Status != "requires_confirmation" {
		t.Fatalf("status = %q, want requires_confirmation", intent.Status)
	}

	confirmed, err := svc.Confirm(ctx, ride.ID, ProviderCash, intent.Ref)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != "succeeded" {
		t.Fatalf("confirmed status = %q, want succeeded", confirmed.Status)
	}

	if len(recorder.recorded) != 2 {
		t.Fatalf("recorded %d payments, want 2", len(recorder.recorded))
	}
	if recorder.recorded[0].AmountCents != 1725 {
		t.Fatalf("amount = %d cents, want 1725", recorder.recorded[0].AmountCents)
	}
}

func TestCreateIntentUnknownRide(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeRideStore{}, &fakeRecorder{}, &config.Config{})
	_, err := svc.CreateIntent(context.Background(), uuid.New(), ProviderCash)
	if !errors.Is(err, rides.ErrRideNotFound) {
		t.Fatalf("err = %v, want %v", err, rides.ErrRideNotFound)
	}
}

func TestCardProviderGatewayCalls(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotPath string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "pi_123",
			"status": "requires_confirmation",
		})
	}))
	defer gateway.Close()

	p := NewCardProvider(gateway.URL, "sk_test")
	intent, err := p.CreateIntent(context.Background(), "ride-1", 1725)
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if intent.Ref != "pi_123" {
		t.Fatalf("ref = %q, want pi_123", intent.Ref)
	}
	if gotAuth != "Bearer sk_test" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotPath != "/v1/intents" {
		t.Fatalf("path = %q, want /v1/intents", gotPath)
	}

	if _, err := p.Confirm(context.Background(), "pi_123"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if gotPath != "/v1/intents/pi_123/confirm" {
		t.Fatalf("confirm path = %q", gotPath)
	}
}

func TestCardProviderGatewayError(t *testing.T) {
	t.Parallel()

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer gateway.Close()

	p := NewCardProvider(gateway.URL, "sk_test")
	if _, err := p.CreateIntent(context.Background(), "ride-1", 100); err == nil {
		t.Fatal("gateway error did not surface")
	}
}
