package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// PhaseCache implements domain.PhaseCache using JSON-serialized PhaseResult
// values under short-TTL string keys. The display tier reads these keys
// directly; a missing entry simply means the poller has not classified the
// market yet and the phase must be recomputed.
//
// Key schema:
//
//	matka:phase:{marketID} - JSON-encoded PhaseResult
type PhaseCache struct {
	rdb *redis.Client
}

// NewPhaseCache creates a PhaseCache backed by the given Client.
func NewPhaseCache(c *Client) *PhaseCache {
	return &PhaseCache{rdb: c.Underlying()}
}

func phaseKey(marketID string) string { return "matka:phase:" + marketID }

// Set stores the market's current phase with the given TTL.
func (pc *PhaseCache) Set(ctx context.Context, marketID string, result domain.PhaseResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis: marshal phase %s: %w", marketID, err)
	}

	if err := pc.rdb.Set(ctx, phaseKey(marketID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set phase %s: %w", marketID, err)
	}
	return nil
}

// Get retrieves the cached phase for a market.
// It returns domain.ErrNotFound when the key does not exist or has expired.
func (pc *PhaseCache) Get(ctx context.Context, marketID string) (domain.PhaseResult, error) {
	data, err := pc.rdb.Get(ctx, phaseKey(marketID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PhaseResult{}, domain.ErrNotFound
		}
		return domain.PhaseResult{}, fmt.Errorf("redis: get phase %s: %w", marketID, err)
	}

	var result domain.PhaseResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.PhaseResult{}, fmt.Errorf("redis: unmarshal phase %s: %w", marketID, err)
	}
	return result, nil
}

// Compile-time interface check.
var _ domain.PhaseCache = (*PhaseCache)(nil)
