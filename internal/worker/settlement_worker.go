package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
	"github.com/shaikhsameershabbir/matka-core/internal/service"
)

// Settler runs one settlement sweep over a market day. SettlementService
// satisfies it.
type Settler interface {
	SettleMarketDay(ctx context.Context, marketID, date string, side domain.Side) (service.SettlementSummary, error)
}

// SettlementWorker listens for result-declared events and triggers a
// settlement sweep for each one.
type SettlementWorker struct {
	bus         domain.SignalBus
	settlements Settler
	logger      *slog.Logger
}

// NewSettlementWorker creates a SettlementWorker.
func NewSettlementWorker(bus domain.SignalBus, settlements Settler, logger *slog.Logger) *SettlementWorker {
	return &SettlementWorker{
		bus:         bus,
		settlements: settlements,
		logger:      logger,
	}
}

// RunLoop subscribes to the result-declared channel and sweeps on every
// event until the context is cancelled. A lock held by a concurrent worker
// is not an error; that worker is doing the same job.
func (w *SettlementWorker) RunLoop(ctx context.Context) error {
	events, err := w.bus.Subscribe(ctx, service.ResultDeclaredChannel)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			w.handle(ctx, payload)
		}
	}
}

func (w *SettlementWorker) handle(ctx context.Context, payload []byte) {
	var event service.ResultDeclared
	if err := json.Unmarshal(payload, &event); err != nil {
		w.logger.WarnContext(ctx, "settlement_worker: bad event payload",
			slog.String("error", err.Error()),
		)
		return
	}

	summary, err := w.settlements.SettleMarketDay(ctx, event.MarketID, event.Date, domain.Side(event.Side))
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			w.logger.InfoContext(ctx, "settlement_worker: sweep already running elsewhere",
				slog.String("market_id", event.MarketID),
				slog.String("date", event.Date),
				slog.String("side", event.Side),
			)
			return
		}
		w.logger.ErrorContext(ctx, "settlement_worker: sweep failed",
			slog.String("market_id", event.MarketID),
			slog.String("date", event.Date),
			slog.String("error", err.Error()),
		)
		return
	}

	w.logger.InfoContext(ctx, "settlement_worker: sweep complete",
		slog.String("market_id", event.MarketID),
		slog.String("date", event.Date),
		slog.String("side", event.Side),
		slog.Int("settled", summary.Settled),
		slog.Int("pending", summary.Pending),
		slog.Int("failed", summary.Failed),
		slog.Int64("total_payout", summary.TotalPayout),
	)
}
