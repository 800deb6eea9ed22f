package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/ports/repository"
)

var _ repository.KeyValueStore = (*KVStore)(nil)

// KVStore exposes Redis string keys as the generic key/value collaborator.
type KVStore struct {
	client RedisClient
}

func NewKVStore(client RedisClient) *KVStore {
	return &KVStore{client: client}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key)
	if errors.Is(err, Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
