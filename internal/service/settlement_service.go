package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
	"github.com/shaikhsameershabbir/matka-core/internal/engine"
)

// SettlementStream is the durable stream settlement outcomes are appended to.
const SettlementStream = "settlements"

// settleLockTTL bounds how long a settlement run can hold the market-day
// lock. A crashed worker's lock expires on its own.
const settleLockTTL = 2 * time.Minute

// SettlementSummary reports the outcome of one settlement sweep over a
// market day.
type SettlementSummary struct {
	MarketID    string `json:"market_id"`
	Date        string `json:"date"`
	Settled     int    `json:"settled"`
	Pending     int    `json:"pending"`
	AlreadyDone int    `json:"already_done"`
	Failed      int    `json:"failed"`
	TotalPayout int64  `json:"total_payout"`
}

// settlementRecord is the per-bet payload appended to the settlement stream.
type settlementRecord struct {
	BetID       string `json:"bet_id"`
	UserID      string `json:"user_id"`
	MarketID    string `json:"market_id"`
	Date        string `json:"date"`
	GameType    string `json:"game_type"`
	Side        string `json:"side"`
	Stake       int64  `json:"stake"`
	BaseWin     int64  `json:"base_win"`
	DigitSumWin int64  `json:"digit_sum_win"`
	Payout      int64  `json:"payout"`
}

// SettlementService pays out a market day against its declared result. A
// distributed lock serializes concurrent runs; the bet store's settled flag
// makes each individual payout at-most-once, so a retried or overlapping run
// is harmless.
type SettlementService struct {
	bets    domain.BetStore
	results domain.ResultStore
	locks   domain.LockManager
	bus     domain.SignalBus
	audit   domain.AuditStore
	rates   engine.RateTable
	logger  *slog.Logger
}

// NewSettlementService creates a SettlementService with all required
// dependencies. The rate table must already be validated.
func NewSettlementService(
	bets domain.BetStore,
	results domain.ResultStore,
	locks domain.LockManager,
	bus domain.SignalBus,
	audit domain.AuditStore,
	rates engine.RateTable,
	logger *slog.Logger,
) *SettlementService {
	return &SettlementService{
		bets:    bets,
		results: results,
		locks:   locks,
		bus:     bus,
		audit:   audit,
		rates:   rates,
		logger:  logger,
	}
}

// SettleMarketDay sweeps every bet on the market day and pays out those the
// declared result can settle. Bets whose required side is not yet declared
// stay pending for a later sweep; a bet that fails to settle is counted and
// skipped without aborting the rest of the run.
//
// The side names which declaration triggered the run and scopes the lock, so
// the open sweep and the close sweep of the same day do not contend.
func (s *SettlementService) SettleMarketDay(ctx context.Context, marketID, date string, side domain.Side) (SettlementSummary, error) {
	summary := SettlementSummary{MarketID: marketID, Date: date}

	lockName := fmt.Sprintf("settle:%s:%s:%s", marketID, date, side)
	unlock, err := s.locks.Acquire(ctx, lockName, settleLockTTL)
	if err != nil {
		return summary, fmt.Errorf("settlement: acquire %s: %w", lockName, err)
	}
	defer unlock()

	result, err := s.results.Get(ctx, marketID, date)
	if err != nil {
		return summary, fmt.Errorf("settlement: result %s/%s: %w", marketID, date, err)
	}

	bets, err := s.bets.ListByMarketDay(ctx, marketID, date)
	if err != nil {
		return summary, fmt.Errorf("settlement: list bets %s/%s: %w", marketID, date, err)
	}
	if len(bets) == 0 {
		return summary, nil
	}

	// The digit-sum cross-payout needs the day's full single-digit stakes,
	// unfiltered: the exposure floor and legacy exclusions do not apply to
	// settlement.
	report := engine.Aggregate(bets, engine.Filter{})
	pools := engine.SinglePools{
		domain.SideOpen:  engine.SinglesFor(report, domain.SideOpen),
		domain.SideClose: engine.SinglesFor(report, domain.SideClose),
	}

	for _, bet := range bets {
		if bet.Settled {
			summary.AlreadyDone++
			continue
		}

		breakdown, err := engine.ComputePayout(bet, result, s.rates, pools)
		if err != nil {
			if errors.Is(err, domain.ErrUnsettleable) {
				summary.Pending++
				continue
			}
			summary.Failed++
			s.logger.ErrorContext(ctx, "settlement: compute payout failed",
				slog.String("bet_id", bet.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := s.bets.SetPayout(ctx, bet.ID, breakdown.Total, time.Now().UTC()); err != nil {
			if errors.Is(err, domain.ErrAlreadySettled) {
				summary.AlreadyDone++
				continue
			}
			summary.Failed++
			s.logger.ErrorContext(ctx, "settlement: set payout failed",
				slog.String("bet_id", bet.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		summary.Settled++
		summary.TotalPayout += breakdown.Total

		record := settlementRecord{
			BetID:       bet.ID,
			UserID:      bet.UserID,
			MarketID:    marketID,
			Date:        date,
			GameType:    string(bet.GameType),
			Side:        string(bet.Side),
			Stake:       bet.TotalAmount,
			BaseWin:     breakdown.BaseWin,
			DigitSumWin: breakdown.DigitSumWin,
			Payout:      breakdown.Total,
		}
		if payload, err := json.Marshal(record); err == nil {
			if err := s.bus.StreamAppend(ctx, SettlementStream, payload); err != nil {
				s.logger.WarnContext(ctx, "settlement: stream append failed",
					slog.String("bet_id", bet.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if err := s.audit.Log(ctx, "settlement.run", map[string]any{
		"market_id":    marketID,
		"date":         date,
		"side":         string(side),
		"settled":      summary.Settled,
		"pending":      summary.Pending,
		"already_done": summary.AlreadyDone,
		"failed":       summary.Failed,
		"total_payout": summary.TotalPayout,
	}); err != nil {
		s.logger.WarnContext(ctx, "settlement: audit log failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}

	return summary, nil
}
