package revocation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestMemoryRegistry_RevokeIsRevoked(t *testing.T) {
	r := NewMemoryRegistry(zerolog.Nop())
	ctx := context.Background()

	if ok, _ := r.IsRevoked(ctx, "tok"); ok {
		t.Fatalf("empty registry reported token as revoked")
	}
	if err := r.Revoke(ctx, "tok", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := r.IsRevoked(ctx, "tok"); !ok {
		t.Fatalf("expected token to be revoked")
	}
	if ok, _ := r.IsRevoked(ctx, "other"); ok {
		t.Fatalf("unrelated token reported as revoked")
	}
}

func TestMemoryRegistry_Idempotent(t *testing.T) {
	r := NewMemoryRegistry(zerolog.Nop())
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	for i := 0; i < 3; i++ {
		if err := r.Revoke(ctx, "tok", exp); err != nil {
			t.Fatalf("revoke #%d: %v", i, err)
		}
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Len())
	}
}

func TestMemoryRegistry_EntriesSurviveExpiryWithoutSweeper(t *testing.T) {
	r := NewMemoryRegistry(zerolog.Nop())
	ctx := context.Background()

	_ = r.Revoke(ctx, "tok", time.Now().Add(-time.Hour))
	if ok, _ := r.IsRevoked(ctx, "tok"); !ok {
		t.Fatalf("revoked token must stay revoked until pruned")
	}
}

func TestMemoryRegistry_Prune(t *testing.T) {
	r := NewMemoryRegistry(zerolog.Nop())
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	_ = r.Revoke(ctx, "expired", now.Add(-time.Second))
	_ = r.Revoke(ctx, "live", now.Add(time.Hour))

	if removed := r.Prune(); removed != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", removed)
	}
	if ok, _ := r.IsRevoked(ctx, "live"); !ok {
		t.Fatalf("live entry must not be pruned")
	}
	if ok, _ := r.IsRevoked(ctx, "expired"); ok {
		t.Fatalf("expired entry should have been pruned")
	}
}

func TestMemoryRegistry_RevokeKeepsLaterExpiry(t *testing.T) {
	r := NewMemoryRegistry(zerolog.Nop())
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	_ = r.Revoke(ctx, "tok", now.Add(time.Hour))
	_ = r.Revoke(ctx, "tok", now.Add(-time.Hour))
	r.Prune()

	if ok, _ := r.IsRevoked(ctx, "tok"); !ok {
		t.Fatalf("earlier expiry must not shorten an existing entry")
	}
}

func TestMemoryRegistry_Concurrent(t *testing.T) {
	r := NewMemoryRegistry(zerolog.Nop())
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.Revoke(ctx, fmt.Sprintf("tok-%d", i), exp)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = r.IsRevoked(ctx, fmt.Sprintf("tok-%d", i))
		}(i)
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", r.Len())
	}
}

func TestMemoryRegistry_SweeperStopsWithContext(t *testing.T) {
	r := NewMemoryRegistry(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	_ = r.Revoke(ctx, "expired", time.Now().Add(-time.Minute))
	r.StartSweeper(ctx, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for r.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if r.Len() != 0 {
		t.Fatalf("sweeper did not prune expired entry")
	}
}
