package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// Orchestrator manages the long-running goroutines: phase polling, the
// settlement worker, and periodic cold-storage archival.
type Orchestrator struct {
	poller           *Poller
	settlementWorker *SettlementWorker
	archiver         domain.Archiver
	archiveInterval  time.Duration
	archiveRetention time.Duration
	logger           *slog.Logger
}

// NewOrchestrator creates an Orchestrator. The archiver may be nil, in which
// case the archival loop is not started.
func NewOrchestrator(
	poller *Poller,
	settlementWorker *SettlementWorker,
	archiver domain.Archiver,
	archiveInterval time.Duration,
	archiveRetention time.Duration,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		poller:           poller,
		settlementWorker: settlementWorker,
		archiver:         archiver,
		archiveInterval:  archiveInterval,
		archiveRetention: archiveRetention,
		logger:           logger,
	}
}

// Run starts all loops as concurrent goroutines using an errgroup. Each
// goroutine respects ctx cancellation. If any goroutine returns a non-context
// error, the errgroup cancels the shared context and Run returns that error.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("orchestrator starting",
		slog.Duration("archive_interval", o.archiveInterval),
		slog.Bool("archival_enabled", o.archiver != nil),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		o.logger.Info("starting phase poller loop")
		err := o.poller.RunLoop(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("phase poller: %w", err)
	})

	g.Go(func() error {
		o.logger.Info("starting settlement worker loop")
		err := o.settlementWorker.RunLoop(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("settlement worker: %w", err)
	})

	if o.archiver != nil {
		g.Go(func() error {
			o.logger.Info("starting archival loop")
			err := o.runArchival(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("archival: %w", err)
		})
	}

	err := g.Wait()
	if err != nil {
		o.logger.Error("orchestrator stopped with error", slog.String("error", err.Error()))
		return err
	}

	o.logger.Info("orchestrator stopped cleanly")
	return nil
}

// runArchival periodically moves settled bets older than the retention
// window to cold storage.
func (o *Orchestrator) runArchival(ctx context.Context) error {
	ticker := time.NewTicker(o.archiveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-o.archiveRetention)
			count, err := o.archiver.ArchiveSettledBets(ctx, cutoff)
			if err != nil {
				o.logger.Error("archival run failed", slog.String("error", err.Error()))
				continue
			}
			if count > 0 {
				o.logger.Info("archived settled bets",
					slog.Int64("count", count),
					slog.Time("cutoff", cutoff),
				)
			}
		}
	}
}
