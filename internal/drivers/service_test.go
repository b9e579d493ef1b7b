package drivers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"globapp-api/internal/config"
	"globapp-api/pkg/phone"
	"globapp-api/pkg/pin"
)

type fakeStore struct {
	byID    map[uuid.UUID]*Driver
	byPhone map[string]*Driver
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: make(map[uuid.UUID]*Driver), byPhone: make(map[string]*Driver)}
}

func (f *fakeStore) Insert(_ context.Context, d *Driver) error {
	if _, ok := f.byPhone[d.Phone]; ok {
		return ErrPhoneExists
	}
	cp := *d
	f.byID[d.ID] = &cp
	f.byPhone[d.Phone] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*Driver, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, _ int) ([]Driver, error) {
	var out []Driver
	for _, d := range f.byID {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeStore) SetPin(_ context.Context, id uuid.UUID, salt, hash string) error {
	d, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	d.PinSalt = &salt
	d.PinHash = &hash
	return nil
}

func strPtr(s string) *string { return &s }

func TestCreateNormalizesPhoneAndHashesPin(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store, nil, &config.Config{})

	d, err := svc.Create(context.Background(), CreateRequest{
		Name:  "Max Rider",
		Phone: "(555) 123-0000",
		Pin:   strPtr("4821"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Phone != "+15551230000" {
		t.Fatalf("phone = %q, want +15551230000", d.Phone)
	}
	if !d.IsActive {
		t.Fatal("driver not active by default")
	}
	if d.PinSalt == nil || d.PinHash == nil {
		t.Fatal("pin not hashed")
	}
	if *d.PinHash == "4821" {
		t.Fatal("raw pin stored as hash")
	}
	if !pin.Verify("4821", *d.PinSalt, *d.PinHash) {
		t.Fatal("stored hash does not verify the pin")
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), nil, &config.Config{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Name: "X", Phone: "5551230000"}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("short name err = %v, want %v", err, ErrInvalidName)
	}
	if _, err := svc.Create(ctx, CreateRequest{Name: "Max", Phone: "12"}); !errors.Is(err, phone.ErrInvalid) {
		t.Fatalf("bad phone err = %v, want %v", err, phone.ErrInvalid)
	}
	if _, err := svc.Create(ctx, CreateRequest{Name: "Max", Phone: "5551230000", Pin: strPtr("12")}); !errors.Is(err, ErrInvalidPin) {
		t.Fatalf("bad pin err = %v, want %v", err, ErrInvalidPin)
	}
}

func TestCreateDuplicatePhone(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), nil, &config.Config{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Name: "Max", Phone: "5551230000"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateRequest{Name: "Moritz", Phone: "5551230000"}); !errors.Is(err, ErrPhoneExists) {
		t.Fatalf("err = %v, want %v", err, ErrPhoneExists)
	}
}

func TestSetPinReplacesCredential(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store, nil, &config.Config{})
	ctx := context.Background()

	d, err := svc.Create(ctx, CreateRequest{Name: "Max", Phone: "5551230000", Pin: strPtr("4821")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.SetPin(ctx, d.ID, "999999"); err != nil {
		t.Fatalf("SetPin: %v", err)
	}
	stored := store.byID[d.ID]
	if pin.Verify("4821", *stored.PinSalt, *stored.PinHash) {
		t.Fatal("old pin still verifies")
	}
	if !pin.Verify("999999", *stored.PinSalt, *stored.PinHash) {
		t.Fatal("new pin does not verify")
	}

	if err := svc.SetPin(ctx, uuid.New(), "4821"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown driver err = %v, want %v", err, ErrNotFound)
	}
}

func TestPresenceClassification(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		PresenceOnline: 60 * time.Second,
		PresenceStale:  600 * time.Second,
	}
	svc := NewService(newFakeStore(), nil, cfg)
	now := time.Now().UTC()

	if got := svc.Presence(nil, now); got != PresenceOffline {
		t.Fatalf("nil last seen = %q, want %q", got, PresenceOffline)
	}

	fresh := now.Add(-30 * time.Second)
	if got := svc.Presence(&fresh, now); got != PresenceOnline {
		t.Fatalf("30s = %q, want %q", got, PresenceOnline)
	}

	stale := now.Add(-5 * time.Minute)
	if got := svc.Presence(&stale, now); got != PresenceStale {
		t.Fatalf("5m = %q, want %q", got, PresenceStale)
	}

	gone := now.Add(-time.Hour)
	if got := svc.Presence(&gone, now); got != PresenceOffline {
		t.Fatalf("1h = %q, want %q", got, PresenceOffline)
	}
}
