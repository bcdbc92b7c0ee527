package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
	"github.com/shaikhsameershabbir/matka-core/internal/engine"
)

func newSettlementFixture(t *testing.T, bets ...domain.Bet) (*SettlementService, *fakeBetStore, *fakeResultStore, *fakeBus) {
	t.Helper()
	store := newFakeBetStore(bets...)
	results := newFakeResultStore()
	bus := newFakeBus()
	svc := NewSettlementService(store, results, newFakeLockManager(), bus, &fakeAuditStore{},
		engine.DefaultRates(), discardLogger())
	return svc, store, results, bus
}

func marketDayBet(id string, gt domain.GameType, side domain.Side, numbers map[string]int64) domain.Bet {
	var total int64
	for _, amt := range numbers {
		total += amt
	}
	return domain.Bet{
		ID:          id,
		UserID:      "u1",
		MarketID:    "kalyan",
		GameType:    gt,
		Side:        side,
		Numbers:     numbers,
		TotalAmount: total,
		Date:        "2024-07-01",
	}
}

func TestSettleMarketDayOpenSweep(t *testing.T) {
	ctx := context.Background()
	svc, store, results, bus := newSettlementFixture(t,
		marketDayBet("b-panna", domain.GameSinglePanna, domain.SideOpen, map[string]int64{"128": 100}),
		marketDayBet("b-single", domain.GameSingle, domain.SideOpen, map[string]int64{"1": 50}),
		marketDayBet("b-jodi", domain.GameJodi, domain.SideBoth, map[string]int64{"17": 20}),
	)
	if err := results.DeclareOpen(ctx, "kalyan", "2024-07-01", "128", monday.Add(10*time.Hour)); err != nil {
		t.Fatalf("declare open: %v", err)
	}

	summary, err := svc.SettleMarketDay(ctx, "kalyan", "2024-07-01", domain.SideOpen)
	if err != nil {
		t.Fatalf("SettleMarketDay: %v", err)
	}
	if summary.Settled != 2 {
		t.Errorf("settled = %d, want 2", summary.Settled)
	}
	if summary.Pending != 1 {
		t.Errorf("pending = %d, want 1 (jodi needs close)", summary.Pending)
	}
	if summary.Failed != 0 {
		t.Errorf("failed = %d, want 0", summary.Failed)
	}

	// Panna 128 wins 100 x 150, plus the ank-1 singles pool of 50 x 10.
	panna, _ := store.GetByID(ctx, "b-panna")
	if panna.Payout == nil || *panna.Payout != 15500 {
		t.Errorf("panna payout = %v, want 15500", panna.Payout)
	}
	// Single on the open ank wins 50 x 10.
	single, _ := store.GetByID(ctx, "b-single")
	if single.Payout == nil || *single.Payout != 500 {
		t.Errorf("single payout = %v, want 500", single.Payout)
	}
	if summary.TotalPayout != 16000 {
		t.Errorf("total payout = %d, want 16000", summary.TotalPayout)
	}

	// The jodi is untouched until close declares.
	jodi, _ := store.GetByID(ctx, "b-jodi")
	if jodi.Settled {
		t.Error("jodi settled before close declaration")
	}

	if n := len(bus.streams[SettlementStream]); n != 2 {
		t.Errorf("settlement stream entries = %d, want 2", n)
	}
}

func TestSettleMarketDayCloseSweepFinishesPending(t *testing.T) {
	ctx := context.Background()
	svc, store, results, _ := newSettlementFixture(t,
		marketDayBet("b-jodi", domain.GameJodi, domain.SideBoth, map[string]int64{"17": 20}),
		marketDayBet("b-sangam", domain.GameFullSangam, domain.SideBoth, map[string]int64{"128-467": 10}),
	)
	if err := results.DeclareOpen(ctx, "kalyan", "2024-07-01", "128", monday.Add(10*time.Hour)); err != nil {
		t.Fatalf("declare open: %v", err)
	}
	if err := results.DeclareClose(ctx, "kalyan", "2024-07-01", "467", monday.Add(14*time.Hour)); err != nil {
		t.Fatalf("declare close: %v", err)
	}

	summary, err := svc.SettleMarketDay(ctx, "kalyan", "2024-07-01", domain.SideClose)
	if err != nil {
		t.Fatalf("SettleMarketDay: %v", err)
	}
	if summary.Settled != 2 {
		t.Fatalf("settled = %d, want 2", summary.Settled)
	}

	// Main digits 17: open ank 1, close ank 7.
	jodi, _ := store.GetByID(ctx, "b-jodi")
	if jodi.Payout == nil || *jodi.Payout != 20*90 {
		t.Errorf("jodi payout = %v, want 1800", jodi.Payout)
	}
	sangam, _ := store.GetByID(ctx, "b-sangam")
	if sangam.Payout == nil || *sangam.Payout != 10*10000 {
		t.Errorf("sangam payout = %v, want 100000", sangam.Payout)
	}
}

func TestSettleMarketDayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store, results, bus := newSettlementFixture(t,
		marketDayBet("b-single", domain.GameSingle, domain.SideOpen, map[string]int64{"1": 50}),
	)
	if err := results.DeclareOpen(ctx, "kalyan", "2024-07-01", "128", monday.Add(10*time.Hour)); err != nil {
		t.Fatalf("declare open: %v", err)
	}

	first, err := svc.SettleMarketDay(ctx, "kalyan", "2024-07-01", domain.SideOpen)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.SettleMarketDay(ctx, "kalyan", "2024-07-01", domain.SideOpen)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.Settled != 1 || second.Settled != 0 {
		t.Errorf("settled = %d then %d, want 1 then 0", first.Settled, second.Settled)
	}
	if second.AlreadyDone != 1 {
		t.Errorf("already done = %d, want 1", second.AlreadyDone)
	}

	bet, _ := store.GetByID(ctx, "b-single")
	if bet.Payout == nil || *bet.Payout != 500 {
		t.Errorf("payout = %v, want unchanged 500", bet.Payout)
	}
	if n := len(bus.streams[SettlementStream]); n != 1 {
		t.Errorf("stream entries = %d, want 1 (no duplicate on rerun)", n)
	}
}

func TestSettleMarketDayLosingBetsSettleAtZero(t *testing.T) {
	ctx := context.Background()
	svc, store, results, _ := newSettlementFixture(t,
		marketDayBet("b-lose", domain.GameSingle, domain.SideOpen, map[string]int64{"9": 50}),
	)
	if err := results.DeclareOpen(ctx, "kalyan", "2024-07-01", "128", monday.Add(10*time.Hour)); err != nil {
		t.Fatalf("declare open: %v", err)
	}

	summary, err := svc.SettleMarketDay(ctx, "kalyan", "2024-07-01", domain.SideOpen)
	if err != nil {
		t.Fatalf("SettleMarketDay: %v", err)
	}
	if summary.Settled != 1 || summary.TotalPayout != 0 {
		t.Fatalf("summary = %+v, want one settled bet at zero", summary)
	}

	bet, _ := store.GetByID(ctx, "b-lose")
	if !bet.Settled || bet.Payout == nil || *bet.Payout != 0 {
		t.Errorf("losing bet = settled %v payout %v, want settled at 0", bet.Settled, bet.Payout)
	}
}

func TestSettleMarketDayWithoutResult(t *testing.T) {
	svc, _, _, _ := newSettlementFixture(t,
		marketDayBet("b-single", domain.GameSingle, domain.SideOpen, map[string]int64{"1": 50}),
	)

	_, err := svc.SettleMarketDay(context.Background(), "kalyan", "2024-07-01", domain.SideOpen)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSettleMarketDayLockContention(t *testing.T) {
	ctx := context.Background()
	locks := newFakeLockManager()
	store := newFakeBetStore()
	results := newFakeResultStore()
	svc := NewSettlementService(store, results, locks, newFakeBus(), &fakeAuditStore{},
		engine.DefaultRates(), discardLogger())

	unlock, err := locks.Acquire(ctx, "settle:kalyan:2024-07-01:open", time.Minute)
	if err != nil {
		t.Fatalf("pre-acquire: %v", err)
	}
	defer unlock()

	_, err = svc.SettleMarketDay(ctx, "kalyan", "2024-07-01", domain.SideOpen)
	if !errors.Is(err, domain.ErrLockHeld) {
		t.Fatalf("err = %v, want ErrLockHeld", err)
	}
}
