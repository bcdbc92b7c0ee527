package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and time filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// MarketStore persists market configuration written by the admin workflow.
type MarketStore interface {
	Upsert(ctx context.Context, market Market) error
	GetByID(ctx context.Context, id string) (Market, error)
	ListActive(ctx context.Context, opts ListOpts) ([]Market, error)
	Count(ctx context.Context) (int64, error)
}

// BetStore persists bets and their settlement outcomes.
type BetStore interface {
	Create(ctx context.Context, bet Bet) error
	GetByID(ctx context.Context, id string) (Bet, error)
	// ListByMarketDay returns every bet placed on the market for the given
	// market day, settled or not.
	ListByMarketDay(ctx context.Context, marketID, date string) ([]Bet, error)
	// SetPayout records a payout exactly once. It returns ErrAlreadySettled
	// when the bet's settled flag is already set, leaving the stored payout
	// untouched.
	SetPayout(ctx context.Context, id string, payout int64, settledAt time.Time) error
	// ListSettledBefore returns settled bets whose settlement happened
	// strictly before the cutoff, for archival.
	ListSettledBefore(ctx context.Context, before time.Time) ([]Bet, error)
}

// ResultStore persists declared results. Declarations are append-only: a
// second declaration for the same (market, date, side) must be rejected with
// ErrAlreadyDeclared, never overwritten.
type ResultStore interface {
	Get(ctx context.Context, marketID, date string) (Result, error)
	DeclareOpen(ctx context.Context, marketID, date, digits string, at time.Time) error
	DeclareClose(ctx context.Context, marketID, date, digits string, at time.Time) error
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
