package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDriverInactive      = errors.New("driver is inactive")
	ErrPinNotSet           = errors.New("driver PIN is not set")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRevokedRefreshToken = errors.New("refresh token revoked")
	ErrExpiredRefreshToken = errors.New("refresh token expired")
)

// CredentialStore looks up login credentials by canonical phone number.
// A missing driver surfaces as ErrInvalidCredentials so callers cannot probe
// which phone numbers exist.
type CredentialStore interface {
	FindCredentials(ctx context.Context, phone string) (*Credentials, error)
}

// TokenStore persists refresh-token records.
//
// Rotate must atomically revoke the predecessor and insert the successor:
// both commit or neither does. A predecessor that is already revoked (lost
// race or replay) fails with ErrRevokedRefreshToken.
type TokenStore interface {
	Insert(ctx context.Context, t *RefreshToken) error
	FindByHash(ctx context.Context, hash string) (*RefreshToken, error)
	Rotate(ctx context.Context, oldID uuid.UUID, revokedAt time.Time, next *RefreshToken) error
}
