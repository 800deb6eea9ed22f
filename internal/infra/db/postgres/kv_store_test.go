//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"medstaff-dashboard/internal/domain"
)

func TestKVStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	store := NewKVStore(testPool)

	t.Run("should upsert and read back", func(t *testing.T) {
		cleanup(t)
		if err := store.Set(ctx, "kycFormProgress:u1", "v1", 0); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := store.Set(ctx, "kycFormProgress:u1", "v2", time.Hour); err != nil {
			t.Fatalf("overwrite: %v", err)
		}
		got, err := store.Get(ctx, "kycFormProgress:u1")
		if err != nil || got != "v2" {
			t.Fatalf("expected v2, got %q (%v)", got, err)
		}
	})

	t.Run("expired rows read as missing and are purged", func(t *testing.T) {
		cleanup(t)
		past := time.Now().Add(-2 * time.Hour)
		store.now = func() time.Time { return past }
		if err := store.Set(ctx, "old", "x", time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}
		store.now = time.Now

		if _, err := store.Get(ctx, "old"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		n, err := store.PurgeExpired(ctx)
		if err != nil {
			t.Fatalf("purge: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 purged row, got %d", n)
		}
	})

	t.Run("delete of a missing key is not an error", func(t *testing.T) {
		cleanup(t)
		if err := store.Delete(ctx, "missing"); err != nil {
			t.Fatalf("delete: %v", err)
		}
	})
}
