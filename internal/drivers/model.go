package drivers

import (
	"time"

	"github.com/google/uuid"
)

// Driver represents a driver account. PIN credentials are nullable: a driver
// without them cannot log in. Drivers are never physically deleted.
type Driver struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Vehicle   *string   `json:"vehicle,omitempty"`
	IsActive  bool      `json:"is_active"`
	PinSalt   *string   `json:"-"`
	PinHash   *string   `json:"-"`
	CreatedAt time.Time `json:"created_at_utc"`
}

// CreateRequest is the body for POST /api/v1/drivers.
type CreateRequest struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Vehicle  *string `json:"vehicle,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	Pin      *string `json:"pin,omitempty"`
}

// SetPinRequest is the body for POST /api/v1/drivers/{id}/pin.
type SetPinRequest struct {
	Pin string `json:"pin"`
}

// LocationUpsert is the body for PUT /api/v1/driver/location.
type LocationUpsert struct {
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	HeadingDeg *float64 `json:"heading_deg,omitempty"`
	SpeedMph   *float64 `json:"speed_mph,omitempty"`
	AccuracyM  *float64 `json:"accuracy_m,omitempty"`
}
