package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements CredentialStore and TokenStore against Postgres.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates the auth store backed by the given pool.
func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) FindCredentials(ctx context.Context, phone string) (*Credentials, error) {
	var c Credentials
	err := s.db.QueryRow(ctx,
		`SELECT id, pin_salt, pin_hash, is_active FROM drivers WHERE phone=$1 LIMIT 1`, phone).
		Scan(&c.DriverID, &c.PinSalt, &c.PinHash, &c.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find credentials: %w", err)
	}
	return &c, nil
}

func (s *PGStore) Insert(ctx context.Context, t *RefreshToken) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO driver_refresh_tokens (id, driver_id, token_hash, device_id, expires_at_utc, created_at_utc)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.DriverID, t.TokenHash, t.DeviceID, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (s *PGStore) FindByHash(ctx context.Context, hash string) (*RefreshToken, error) {
	var t RefreshToken
	err := s.db.QueryRow(ctx,
		`SELECT id, driver_id, token_hash, device_id, expires_at_utc, revoked_at_utc, created_at_utc
		 FROM driver_refresh_tokens WHERE token_hash=$1 LIMIT 1`, hash).
		Scan(&t.ID, &t.DriverID, &t.TokenHash, &t.DeviceID, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &t, nil
}

// Rotate revokes the old record and inserts its successor in one transaction.
// The revoke is guarded on revoked_at IS NULL so two concurrent rotations of
// the same token cannot both succeed: the loser observes zero rows updated
// and fails with ErrRevokedRefreshToken.
func (s *PGStore) Rotate(ctx context.Context, oldID uuid.UUID, revokedAt time.Time, next *RefreshToken) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin rotate: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE driver_refresh_tokens SET revoked_at_utc=$1 WHERE id=$2 AND revoked_at_utc IS NULL`,
		revokedAt, oldID)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRevokedRefreshToken
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO driver_refresh_tokens (id, driver_id, token_hash, device_id, expires_at_utc, created_at_utc)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		next.ID, next.DriverID, next.TokenHash, next.DeviceID, next.ExpiresAt, next.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rotated token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rotate: %w", err)
	}
	return nil
}
