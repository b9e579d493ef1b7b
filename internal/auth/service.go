package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"globapp-api/internal/config"
	"globapp-api/pkg/jwt"
	"globapp-api/pkg/phone"
	"globapp-api/pkg/pin"
)

// Service implements driver login and refresh-token rotation.
type Service struct {
	credentials CredentialStore
	tokens      TokenStore
	issuer      *jwt.Issuer
	cfg         *config.Config
	now         func() time.Time
}

// NewService creates the auth service.
func NewService(credentials CredentialStore, tokens TokenStore, issuer *jwt.Issuer, cfg *config.Config) *Service {
	return &Service{
		credentials: credentials,
		tokens:      tokens,
		issuer:      issuer,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Login authenticates a driver by phone and PIN and opens a new session.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	normalized, err := phone.Normalize(req.Phone)
	if err != nil {
		return nil, err
	}

	creds, err := s.credentials.FindCredentials(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if !creds.IsActive {
		return nil, ErrDriverInactive
	}
	if creds.PinSalt == nil || creds.PinHash == nil {
		return nil, ErrPinNotSet
	}
	if !pin.Verify(req.Pin, *creds.PinSalt, *creds.PinHash) {
		return nil, ErrInvalidCredentials
	}

	raw, rec, err := s.newRefreshToken(creds.DriverID, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return s.session(creds.DriverID, raw)
}

// Refresh rotates a refresh token: the presented token is revoked and a
// successor issued atomically, then a fresh access token is minted. A token
// that was already rotated fails with ErrRevokedRefreshToken — the
// reuse-detection signal for replayed or compromised tokens.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (*Session, error) {
	rec, err := s.tokens.FindByHash(ctx, HashRefreshToken(req.RefreshToken))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if rec.RevokedAt != nil {
		return nil, ErrRevokedRefreshToken
	}
	if now.After(rec.ExpiresAt) {
		return nil, ErrExpiredRefreshToken
	}

	// Device id is advisory metadata only: the successor records the caller's
	// device, but a mismatch with the predecessor does not fail the rotation.
	raw, next, err := s.newRefreshToken(rec.DriverID, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Rotate(ctx, rec.ID, now, next); err != nil {
		return nil, err
	}
	return s.session(rec.DriverID, raw)
}

func (s *Service) newRefreshToken(driverID uuid.UUID, deviceID *string) (string, *RefreshToken, error) {
	raw, err := NewRefreshToken()
	if err != nil {
		return "", nil, err
	}
	now := s.now().UTC()
	return raw, &RefreshToken{
		ID:        uuid.New(),
		DriverID:  driverID,
		TokenHash: HashRefreshToken(raw),
		DeviceID:  deviceID,
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
		CreatedAt: now,
	}, nil
}

func (s *Service) session(driverID uuid.UUID, rawRefresh string) (*Session, error) {
	access, err := s.issuer.MintAccess(driverID)
	if err != nil {
		return nil, err
	}
	return &Session{
		DriverID:                  driverID,
		AccessToken:               access,
		AccessTokenExpiresMinutes: s.cfg.AccessTokenMinutes(),
		RefreshToken:              rawRefresh,
		RefreshTokenExpiresDays:   s.cfg.RefreshTokenDays(),
	}, nil
}
