package auth

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persisted form of a refresh credential. Only the
// SHA-256 hash of the raw token is ever stored; the raw value exists solely
// in the login/refresh response that issued it.
type RefreshToken struct {
	ID        uuid.UUID
	DriverID  uuid.UUID
	TokenHash string
	DeviceID  *string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Credentials is the slice of a driver row needed to authenticate a login.
type Credentials struct {
	DriverID uuid.UUID
	PinSalt  *string
	PinHash  *string
	IsActive bool
}

// Session is returned from login and refresh.
type Session struct {
	DriverID                  uuid.UUID `json:"driver_id"`
	AccessToken               string    `json:"access_token"`
	AccessTokenExpiresMinutes int       `json:"access_token_expires_minutes"`
	RefreshToken              string    `json:"refresh_token"`
	RefreshTokenExpiresDays   int       `json:"refresh_token_expires_days"`
}

// LoginRequest is the body for POST /api/v1/driver/login.
type LoginRequest struct {
	Phone    string  `json:"phone"`
	Pin      string  `json:"pin"`
	DeviceID *string `json:"device_id,omitempty"`
}

// RefreshRequest is the body for POST /api/v1/driver/refresh.
type RefreshRequest struct {
	RefreshToken string  `json:"refresh_token"`
	DeviceID     *string `json:"device_id,omitempty"`
}
