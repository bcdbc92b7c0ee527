package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/clock"
	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// ResultDeclaredChannel is the pub/sub channel settlement workers listen on.
const ResultDeclaredChannel = "result.declared"

// ResultDeclared is the event payload published when a result side lands.
type ResultDeclared struct {
	MarketID   string    `json:"market_id"`
	Date       string    `json:"date"`
	Side       string    `json:"side"`
	Digits     string    `json:"digits"`
	Ank        int       `json:"ank"`
	MainDigits string    `json:"main_digits,omitempty"`
	DeclaredAt time.Time `json:"declared_at"`
}

// ResultService records declared results. Declarations are append-only and
// only accepted once betting on the declared side has closed.
type ResultService struct {
	results domain.ResultStore
	markets domain.MarketStore
	memo    *clock.Memo
	bus     domain.SignalBus
	audit   domain.AuditStore
	logger  *slog.Logger
}

// NewResultService creates a ResultService with all required dependencies.
func NewResultService(
	results domain.ResultStore,
	markets domain.MarketStore,
	memo *clock.Memo,
	bus domain.SignalBus,
	audit domain.AuditStore,
	logger *slog.Logger,
) *ResultService {
	return &ResultService{
		results: results,
		markets: markets,
		memo:    memo,
		bus:     bus,
		audit:   audit,
		logger:  logger,
	}
}

// Declare records a three-digit panna for one side of a market day and
// publishes a result-declared event. It rejects declarations while betting
// on that side is still open, rejects re-declarations with
// ErrAlreadyDeclared, and never overwrites a stored result.
func (s *ResultService) Declare(ctx context.Context, marketID, date string, side domain.Side, digits string, now time.Time) (domain.Result, error) {
	if side != domain.SideOpen && side != domain.SideClose {
		return domain.Result{}, fmt.Errorf("result_service: cannot declare side %q", side)
	}
	if len(digits) != 3 {
		return domain.Result{}, fmt.Errorf("result_service: result %q is not a three-digit panna", digits)
	}
	ank, err := domain.Ank(digits)
	if err != nil {
		return domain.Result{}, fmt.Errorf("result_service: declare %s/%s: %w", marketID, date, err)
	}

	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("result_service: declare %s/%s: %w", marketID, date, err)
	}
	if !m.Active {
		return domain.Result{}, fmt.Errorf("result_service: %q: %w", marketID, domain.ErrMarketInactive)
	}

	// No result while bets on this side are still being taken.
	phase := s.memo.Classify(marketID, now, m.Schedule())
	if phase.CanPlay(side) {
		return domain.Result{}, fmt.Errorf("result_service: %s betting still open on %q: %w",
			side, marketID, domain.ErrBettingClosed)
	}

	switch side {
	case domain.SideOpen:
		err = s.results.DeclareOpen(ctx, marketID, date, digits, now)
	case domain.SideClose:
		err = s.results.DeclareClose(ctx, marketID, date, digits, now)
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("result_service: declare %s %s/%s: %w", side, marketID, date, err)
	}

	result, err := s.results.Get(ctx, marketID, date)
	if err != nil {
		return domain.Result{}, fmt.Errorf("result_service: reload %s/%s: %w", marketID, date, err)
	}

	event := ResultDeclared{
		MarketID:   marketID,
		Date:       date,
		Side:       string(side),
		Digits:     digits,
		Ank:        ank,
		DeclaredAt: now,
	}
	if main, ok := result.MainDigits(); ok {
		event.MainDigits = main
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return result, fmt.Errorf("result_service: marshal event: %w", err)
	}
	if err := s.bus.Publish(ctx, ResultDeclaredChannel, payload); err != nil {
		// The declaration is durable; a dropped notification only delays the
		// settlement worker until its next sweep.
		s.logger.WarnContext(ctx, "result_service: publish failed",
			slog.String("market_id", marketID),
			slog.String("side", string(side)),
			slog.String("error", err.Error()),
		)
	}

	if err := s.audit.Log(ctx, "result.declared", map[string]any{
		"market_id": marketID,
		"date":      date,
		"side":      string(side),
		"digits":    digits,
		"ank":       ank,
	}); err != nil {
		s.logger.WarnContext(ctx, "result_service: audit log failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}

	return result, nil
}

// Get returns the declared result for a market day.
func (s *ResultService) Get(ctx context.Context, marketID, date string) (domain.Result, error) {
	result, err := s.results.Get(ctx, marketID, date)
	if err != nil {
		return domain.Result{}, fmt.Errorf("result_service: get %s/%s: %w", marketID, date, err)
	}
	return result, nil
}
