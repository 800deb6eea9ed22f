package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/ports/repository"
)

var _ repository.KeyValueStore = (*KVStore)(nil)

// KVStore keeps opaque values in the kv_entries table. Expired rows read as missing
// and are removed by PurgeExpired.
type KVStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewKVStore(pool *pgxpool.Pool) *KVStore {
	return &KVStore{pool: pool, now: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	const q = `
SELECT value FROM kv_entries
WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`

	var v string
	err := s.pool.QueryRow(ctx, q, key, s.now().UTC()).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv get %s: %w", key, err)
	}
	return v, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	const q = `
INSERT INTO kv_entries (key, value, expires_at, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`

	now := s.now().UTC()
	var expires *time.Time
	if ttl > 0 {
		t := now.Add(ttl)
		expires = &t
	}
	if _, err := s.pool.Exec(ctx, q, key, value, expires, now); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes rows whose expiry has passed and returns how many went.
func (s *KVStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM kv_entries WHERE expires_at IS NOT NULL AND expires_at <= $1`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("kv purge: %w", err)
	}
	return tag.RowsAffected(), nil
}
