// Package service contains the application services that tie the lifecycle
// clock, the settlement engine, and the persistence layers together.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/clock"
	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// phaseTTL is how long a classified phase stays in the external cache. It is
// short; phases change on minute boundaries and a stale entry is always
// recomputable.
const phaseTTL = 60 * time.Second

// MarketService handles market configuration reads and phase classification.
type MarketService struct {
	markets domain.MarketStore
	phases  domain.PhaseCache
	memo    *clock.Memo
	logger  *slog.Logger
}

// NewMarketService creates a MarketService with all required dependencies.
func NewMarketService(
	markets domain.MarketStore,
	phases domain.PhaseCache,
	memo *clock.Memo,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		markets: markets,
		phases:  phases,
		memo:    memo,
		logger:  logger,
	}
}

// UpsertMarket writes market configuration received from the admin workflow.
func (s *MarketService) UpsertMarket(ctx context.Context, m domain.Market) error {
	if err := s.markets.Upsert(ctx, m); err != nil {
		return fmt.Errorf("market_service: upsert %q: %w", m.ID, err)
	}
	return nil
}

// GetMarket retrieves a market by ID.
func (s *MarketService) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	m, err := s.markets.GetByID(ctx, id)
	if err != nil {
		return domain.Market{}, fmt.Errorf("market_service: get by id %q: %w", id, err)
	}
	return m, nil
}

// ListActive returns active markets from the persistent store.
func (s *MarketService) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	markets, err := s.markets.ListActive(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("market_service: list active: %w", err)
	}
	return markets, nil
}

// Count returns the total number of markets in the persistent store.
func (s *MarketService) Count(ctx context.Context) (int64, error) {
	count, err := s.markets.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("market_service: count: %w", err)
	}
	return count, nil
}

// PhaseFor classifies the market's current phase, checking the external
// cache first and falling back to a memoized local classification on a miss.
// An inactive market is always ClosedForDay regardless of its schedule.
func (s *MarketService) PhaseFor(ctx context.Context, marketID string, now time.Time) (domain.PhaseResult, error) {
	if cached, err := s.phases.Get(ctx, marketID); err == nil {
		return cached, nil
	}

	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return domain.PhaseResult{}, fmt.Errorf("market_service: phase for %q: %w", marketID, err)
	}
	if !m.Active {
		return domain.PhaseResult{Phase: domain.PhaseClosedForDay}, nil
	}

	result := s.memo.Classify(marketID, now, m.Schedule())

	// Back-fill the cache; log but do not fail on cache write errors.
	if cacheErr := s.phases.Set(ctx, marketID, result, phaseTTL); cacheErr != nil {
		s.logger.WarnContext(ctx, "market_service: phase cache set failed",
			slog.String("market_id", marketID),
			slog.String("error", cacheErr.Error()),
		)
	}

	return result, nil
}

// CanAccept reports whether a bet on the given side may be accepted right
// now. It returns ErrMarketInactive for inactive markets and ErrBettingClosed
// when the current phase does not allow the side.
func (s *MarketService) CanAccept(ctx context.Context, marketID string, side domain.Side, now time.Time) error {
	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return fmt.Errorf("market_service: can accept %q: %w", marketID, err)
	}
	if !m.Active {
		return fmt.Errorf("market_service: %q: %w", marketID, domain.ErrMarketInactive)
	}

	phase := s.memo.Classify(marketID, now, m.Schedule())
	if !phase.CanPlay(side) {
		return fmt.Errorf("market_service: %q side %s in phase %s: %w",
			marketID, side, phase.Phase, domain.ErrBettingClosed)
	}
	return nil
}
