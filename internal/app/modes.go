package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/clock"
	"github.com/shaikhsameershabbir/matka-core/internal/service"
	"github.com/shaikhsameershabbir/matka-core/internal/worker"
)

// WorkerMode runs the phase poller and the settlement worker without the
// archival loop. This is the footprint for horizontally scaled workers that
// share one Redis and one database.
func (a *App) WorkerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting worker mode")
	return a.runOrchestrator(ctx, deps, false)
}

// ArchiveMode performs a single cold-storage archival pass and exits. It is
// intended to be invoked from an external scheduler.
func (a *App) ArchiveMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting archive mode")

	if deps.Archiver == nil {
		return fmt.Errorf("app: archive mode requires s3 to be enabled")
	}

	cutoff := time.Now().UTC().Add(-a.cfg.Archive.Retention.Duration)
	count, err := deps.Archiver.ArchiveSettledBets(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("app: archive settled bets: %w", err)
	}

	a.logger.InfoContext(ctx, "archive pass complete",
		slog.Int64("count", count),
		slog.Time("cutoff", cutoff),
	)
	return nil
}

// FullMode runs every loop: phase polling, settlement, and periodic archival
// when object storage is configured.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")
	return a.runOrchestrator(ctx, deps, true)
}

// runOrchestrator builds the services and workers and blocks until the
// context is cancelled.
func (a *App) runOrchestrator(ctx context.Context, deps *Dependencies, withArchival bool) error {
	settlementSvc := service.NewSettlementService(
		deps.BetStore, deps.ResultStore, deps.LockManager, deps.SignalBus,
		deps.AuditStore, deps.Rates, a.logger,
	)

	ticker := clock.NewTicker(a.cfg.Clock.PollInterval.Duration)
	poller := worker.NewPoller(
		deps.MarketStore, deps.PhaseCache, deps.Memo, ticker,
		a.cfg.Clock.PhaseTTL.Duration, a.logger,
	)
	settlementWorker := worker.NewSettlementWorker(deps.SignalBus, settlementSvc, a.logger)

	archiver := deps.Archiver
	if !withArchival {
		archiver = nil
	}

	orch := worker.NewOrchestrator(
		poller, settlementWorker, archiver,
		a.cfg.Archive.Interval.Duration,
		a.cfg.Archive.Retention.Duration,
		a.logger,
	)
	return orch.Run(ctx)
}
