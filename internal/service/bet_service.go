package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
	"github.com/shaikhsameershabbir/matka-core/internal/engine"
)

// Gatekeeper decides whether a bet side may be accepted on a market right
// now. MarketService satisfies it.
type Gatekeeper interface {
	CanAccept(ctx context.Context, marketID string, side domain.Side, now time.Time) error
}

// BetService handles bet intake: normalizing the client's number payload,
// validating the bet, gating it against the market's current phase, and
// persisting it.
type BetService struct {
	bets   domain.BetStore
	gate   Gatekeeper
	audit  domain.AuditStore
	logger *slog.Logger
}

// NewBetService creates a BetService with all required dependencies.
func NewBetService(bets domain.BetStore, gate Gatekeeper, audit domain.AuditStore, logger *slog.Logger) *BetService {
	return &BetService{
		bets:   bets,
		gate:   gate,
		audit:  audit,
		logger: logger,
	}
}

// PlaceBet accepts a raw number payload in any of the three client shapes,
// normalizes it, and persists one validated bet per side the payload touches.
// A split payload therefore yields separate open and close bets. Every side
// is gated against the market's current phase before anything is written; a
// single closed side rejects the whole payload.
//
// The market day is the calendar day of now.
func (s *BetService) PlaceBet(
	ctx context.Context,
	userID, marketID string,
	gt domain.GameType,
	side domain.Side,
	raw map[string]any,
	now time.Time,
) ([]domain.Bet, error) {
	lines, warnings := engine.NormalizeRaw(gt, side, raw)
	for _, w := range warnings {
		s.logger.WarnContext(ctx, "bet_service: dropped malformed entry",
			slog.String("user_id", userID),
			slog.String("market_id", marketID),
			slog.String("reason", w),
		)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("bet_service: no valid numbers in payload: %w", domain.ErrInvalidBet)
	}

	bySide := make(map[domain.Side][]engine.Line)
	for _, line := range lines {
		bySide[line.Side] = append(bySide[line.Side], line)
	}

	date := now.Format("2006-01-02")
	var bets []domain.Bet
	for _, betSide := range []domain.Side{domain.SideOpen, domain.SideClose, domain.SideBoth} {
		sideLines, ok := bySide[betSide]
		if !ok {
			continue
		}
		bet, err := engine.BetFromLines(uuid.New().String(), userID, marketID, date, gt, betSide, sideLines)
		if err != nil {
			return nil, fmt.Errorf("bet_service: build %s bet: %w", betSide, err)
		}
		bet.CreatedAt = now

		if err := s.gate.CanAccept(ctx, marketID, bet.Side, now); err != nil {
			return nil, fmt.Errorf("bet_service: gate: %w", err)
		}
		bets = append(bets, bet)
	}

	for _, bet := range bets {
		if err := s.bets.Create(ctx, bet); err != nil {
			return nil, fmt.Errorf("bet_service: create: %w", err)
		}

		if err := s.audit.Log(ctx, "bet.placed", map[string]any{
			"bet_id":    bet.ID,
			"user_id":   userID,
			"market_id": marketID,
			"game_type": string(gt),
			"side":      string(bet.Side),
			"amount":    bet.TotalAmount,
			"date":      date,
		}); err != nil {
			// The bet is already committed; the audit trail is best-effort here.
			s.logger.WarnContext(ctx, "bet_service: audit log failed",
				slog.String("bet_id", bet.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return bets, nil
}

// GetBet retrieves a bet by ID.
func (s *BetService) GetBet(ctx context.Context, id string) (domain.Bet, error) {
	bet, err := s.bets.GetByID(ctx, id)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("bet_service: get %q: %w", id, err)
	}
	return bet, nil
}
