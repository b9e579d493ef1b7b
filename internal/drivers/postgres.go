package drivers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the pgx-backed driver store.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a driver store backed by the given pool.
func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Insert(ctx context.Context, d *Driver) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO drivers (id, name, phone, vehicle, is_active, pin_salt, pin_hash, created_at_utc)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.Name, d.Phone, d.Vehicle, d.IsActive, d.PinSalt, d.PinHash, d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrPhoneExists
		}
		return fmt.Errorf("insert driver: %w", err)
	}
	return nil
}

func (s *PGStore) GetByID(ctx context.Context, id uuid.UUID) (*Driver, error) {
	var d Driver
	err := s.db.QueryRow(ctx,
		`SELECT id, name, phone, vehicle, is_active, pin_salt, pin_hash, created_at_utc
		 FROM drivers WHERE id=$1`, id).
		Scan(&d.ID, &d.Name, &d.Phone, &d.Vehicle, &d.IsActive, &d.PinSalt, &d.PinHash, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get driver: %w", err)
	}
	return &d, nil
}

func (s *PGStore) List(ctx context.Context, limit int) ([]Driver, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, phone, vehicle, is_active, pin_salt, pin_hash, created_at_utc
		 FROM drivers ORDER BY created_at_utc DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var out []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.Vehicle, &d.IsActive,
			&d.PinSalt, &d.PinHash, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PGStore) SetPin(ctx context.Context, id uuid.UUID, salt, hash string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE drivers SET pin_salt=$1, pin_hash=$2 WHERE id=$3`, salt, hash, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
