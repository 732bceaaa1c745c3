// Package revocation holds the in-process registry of session tokens that were
// closed by logout before their natural expiry.
//
// The registry lives only in memory: restarting the process forgets every
// entry, so tokens revoked before a restart are accepted again until they
// expire. Deployments that cannot accept this should use the Redis backend
// (see internal/infrastructure/db/redis).
package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/usermanagement/user-api/internal/api/metrics"
)

// MemoryRegistry is a concurrency-safe set of revoked tokens keyed by the raw
// token string. Entries are kept for the lifetime of the process unless
// StartSweeper is running.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]time.Time // token -> natural expiry
	now     func() time.Time
	log     zerolog.Logger
}

func NewMemoryRegistry(log zerolog.Logger) *MemoryRegistry {
	return &MemoryRegistry{
		entries: make(map[string]time.Time),
		now:     time.Now,
		log:     log,
	}
}

// Revoke adds token to the registry. Revoking an already revoked token keeps
// the later of the two expiries.
func (r *MemoryRegistry) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	r.mu.Lock()
	if prev, ok := r.entries[token]; !ok || expiresAt.After(prev) {
		r.entries[token] = expiresAt
	}
	size := len(r.entries)
	r.mu.Unlock()

	metrics.RevocationRegistrySize.Set(float64(size))
	return nil
}

func (r *MemoryRegistry) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	_, ok := r.entries[token]
	r.mu.RUnlock()
	return ok, nil
}

// Len returns the number of entries currently held.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Prune drops entries whose token has already expired on its own and returns
// how many were removed. An expired token fails signature verification
// anyway, so pruning never re-admits a session.
func (r *MemoryRegistry) Prune() int {
	now := r.now()

	r.mu.Lock()
	removed := 0
	for token, exp := range r.entries {
		if !exp.After(now) {
			delete(r.entries, token)
			removed++
		}
	}
	size := len(r.entries)
	r.mu.Unlock()

	metrics.RevocationRegistrySize.Set(float64(size))
	return removed
}

// StartSweeper prunes the registry every interval until ctx is cancelled.
// A non-positive interval disables sweeping and entries are kept forever.
func (r *MemoryRegistry) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Prune(); n > 0 {
					r.log.Debug().Int("removed", n).Int("remaining", r.Len()).Msg("revocation registry pruned")
				}
			}
		}
	}()
}
