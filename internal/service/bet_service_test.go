package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/clock"
	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

func newBetFixture(t *testing.T, m domain.Market) (*BetService, *fakeBetStore, *fakeAuditStore) {
	t.Helper()
	bets := newFakeBetStore()
	audit := &fakeAuditStore{}
	gate := NewMarketService(newFakeMarketStore(m), newFakePhaseCache(), clock.NewMemo(0), discardLogger())
	return NewBetService(bets, gate, audit, discardLogger()), bets, audit
}

func TestPlaceBetSplitPayloadYieldsBetPerSide(t *testing.T) {
	svc, bets, audit := newBetFixture(t, testMarket())
	now := monday.Add(9 * time.Hour) // open betting, every side accepted

	placed, err := svc.PlaceBet(context.Background(), "u1", "kalyan", domain.GameSingle, domain.SideOpen,
		map[string]any{
			"open":  map[string]any{"5": 100, "7": 50},
			"close": map[string]any{"3": 25},
		}, now)
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if len(placed) != 2 {
		t.Fatalf("placed %d bets, want 2", len(placed))
	}

	bySide := make(map[domain.Side]domain.Bet)
	for _, b := range placed {
		bySide[b.Side] = b
		stored, err := bets.GetByID(context.Background(), b.ID)
		if err != nil {
			t.Fatalf("bet %s not persisted: %v", b.ID, err)
		}
		if stored.Date != "2024-07-01" {
			t.Errorf("bet date = %q, want 2024-07-01", stored.Date)
		}
	}
	if got := bySide[domain.SideOpen].TotalAmount; got != 150 {
		t.Errorf("open total = %d, want 150", got)
	}
	if got := bySide[domain.SideClose].TotalAmount; got != 25 {
		t.Errorf("close total = %d, want 25", got)
	}
	if n := audit.count("bet.placed"); n != 2 {
		t.Errorf("audit bet.placed count = %d, want 2", n)
	}
}

func TestPlaceBetFlatPayloadInheritsSide(t *testing.T) {
	svc, _, _ := newBetFixture(t, testMarket())
	now := monday.Add(10*time.Hour + 30*time.Minute) // close betting

	placed, err := svc.PlaceBet(context.Background(), "u1", "kalyan", domain.GameSingle, domain.SideClose,
		map[string]any{"4": 60, "9": 40}, now)
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if len(placed) != 1 {
		t.Fatalf("placed %d bets, want 1", len(placed))
	}
	if placed[0].Side != domain.SideClose {
		t.Errorf("side = %s, want close", placed[0].Side)
	}
	if placed[0].TotalAmount != 100 {
		t.Errorf("total = %d, want 100", placed[0].TotalAmount)
	}
}

func TestPlaceBetRejectsClosedSideWithoutPersisting(t *testing.T) {
	svc, bets, _ := newBetFixture(t, testMarket())
	now := monday.Add(10*time.Hour + 30*time.Minute) // open side closed

	_, err := svc.PlaceBet(context.Background(), "u1", "kalyan", domain.GameSingle, domain.SideOpen,
		map[string]any{
			"open":  map[string]any{"5": 100},
			"close": map[string]any{"3": 25},
		}, now)
	if !errors.Is(err, domain.ErrBettingClosed) {
		t.Fatalf("err = %v, want ErrBettingClosed", err)
	}

	// One closed side rejects the whole payload; the close half must not
	// have been written either.
	stored, err := bets.ListByMarketDay(context.Background(), "kalyan", "2024-07-01")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("stored %d bets, want 0", len(stored))
	}
}

func TestPlaceBetRejectsEmptyPayload(t *testing.T) {
	svc, _, _ := newBetFixture(t, testMarket())

	_, err := svc.PlaceBet(context.Background(), "u1", "kalyan", domain.GameSingle, domain.SideOpen,
		map[string]any{}, monday.Add(9*time.Hour))
	if !errors.Is(err, domain.ErrInvalidBet) {
		t.Fatalf("err = %v, want ErrInvalidBet", err)
	}
}

func TestPlaceBetRejectsAllMalformedEntries(t *testing.T) {
	svc, _, _ := newBetFixture(t, testMarket())

	_, err := svc.PlaceBet(context.Background(), "u1", "kalyan", domain.GameSingle, domain.SideOpen,
		map[string]any{"5": "not-a-number", "7": -3}, monday.Add(9*time.Hour))
	if !errors.Is(err, domain.ErrInvalidBet) {
		t.Fatalf("err = %v, want ErrInvalidBet", err)
	}
}

func TestPlaceBetSangamRequiresBothOpen(t *testing.T) {
	svc, _, _ := newBetFixture(t, testMarket())

	// During close betting the both side is rejected, and sangams only ride
	// the both side.
	_, err := svc.PlaceBet(context.Background(), "u1", "kalyan", domain.GameFullSangam, domain.SideBoth,
		map[string]any{"128-467": 100}, monday.Add(10*time.Hour+30*time.Minute))
	if !errors.Is(err, domain.ErrBettingClosed) {
		t.Fatalf("err = %v, want ErrBettingClosed", err)
	}

	placed, err := svc.PlaceBet(context.Background(), "u1", "kalyan", domain.GameFullSangam, domain.SideBoth,
		map[string]any{"128-467": 100}, monday.Add(9*time.Hour))
	if err != nil {
		t.Fatalf("PlaceBet during open betting: %v", err)
	}
	if len(placed) != 1 || placed[0].GameType != domain.GameFullSangam {
		t.Fatalf("placed = %+v, want one full_sangam bet", placed)
	}
}
