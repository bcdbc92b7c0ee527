// Package worker contains the long-running loops: the phase poller, the
// settlement worker, and cold-storage archival, coordinated by the
// Orchestrator.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/clock"
	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// pollerBatch caps how many markets one sweep classifies.
const pollerBatch = 500

// Poller periodically classifies every active market and writes the result
// to the phase cache so the display tier reads phases without touching the
// clock or the market store.
type Poller struct {
	markets  domain.MarketStore
	phases   domain.PhaseCache
	memo     *clock.Memo
	ticker   *clock.Ticker
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewPoller creates a Poller driven by the shared ticker. cacheTTL should
// exceed the ticker interval so entries do not expire between sweeps.
func NewPoller(
	markets domain.MarketStore,
	phases domain.PhaseCache,
	memo *clock.Memo,
	ticker *clock.Ticker,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		markets:  markets,
		phases:   phases,
		memo:     memo,
		ticker:   ticker,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// RunLoop subscribes to the shared ticker and sweeps on every tick until the
// context is cancelled. The first sweep runs immediately.
func (p *Poller) RunLoop(ctx context.Context) error {
	p.Sweep(ctx, time.Now())

	ticks := make(chan time.Time, 1)
	unsubscribe := p.ticker.Subscribe(func(now time.Time) {
		select {
		case ticks <- now:
		default: // a sweep is still running; skip this tick
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticks:
			p.Sweep(ctx, now)
		}
	}
}

// Sweep classifies every active market at the given instant and writes each
// phase to the cache. A failing market is logged and skipped; one bad
// schedule must not block the rest of the sweep.
func (p *Poller) Sweep(ctx context.Context, now time.Time) {
	markets, err := p.markets.ListActive(ctx, domain.ListOpts{Limit: pollerBatch})
	if err != nil {
		p.logger.ErrorContext(ctx, "poller: list active markets", slog.String("error", err.Error()))
		return
	}

	for _, m := range markets {
		result := p.memo.Classify(m.ID, now, m.Schedule())
		if result.ScheduleErr {
			p.logger.WarnContext(ctx, "poller: market schedule malformed, failing closed",
				slog.String("market_id", m.ID),
				slog.String("open", m.OpenTime),
				slog.String("close", m.CloseTime),
			)
		}
		if err := p.phases.Set(ctx, m.ID, result, p.cacheTTL); err != nil {
			p.logger.WarnContext(ctx, "poller: phase cache set failed",
				slog.String("market_id", m.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	p.memo.Cleanup(now)
}
