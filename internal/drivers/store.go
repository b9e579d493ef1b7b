package drivers

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("driver not found")
	ErrPhoneExists = errors.New("driver with this phone already exists")
)

// Store persists driver rows.
type Store interface {
	Insert(ctx context.Context, d *Driver) error
	GetByID(ctx context.Context, id uuid.UUID) (*Driver, error)
	List(ctx context.Context, limit int) ([]Driver, error)
	SetPin(ctx context.Context, id uuid.UUID, salt, hash string) error
}
