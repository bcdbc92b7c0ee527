package domain

import (
	"context"
	"time"
)

// PhaseCache stores the most recent PhaseResult per market so the external
// display tier can read phases without recomputing them. Entries carry a
// short TTL; a stale or missing entry is always recomputable from scratch.
type PhaseCache interface {
	Set(ctx context.Context, marketID string, result PhaseResult, ttl time.Duration) error
	Get(ctx context.Context, marketID string) (PhaseResult, error)
}

// LockManager provides distributed locking. Settlement acquires a lock keyed
// on (marketID, date, side) so that a concurrent re-declaration or a retried
// settlement job cannot double-pay.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// StreamMessage is a single entry from a durable stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus provides pub/sub for result-declared events and a durable stream
// of settlement outcomes.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
}
