package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMarketStore struct {
	markets map[string]domain.Market
}

func newFakeMarketStore(markets ...domain.Market) *fakeMarketStore {
	s := &fakeMarketStore{markets: make(map[string]domain.Market)}
	for _, m := range markets {
		s.markets[m.ID] = m
	}
	return s
}

func (s *fakeMarketStore) Upsert(_ context.Context, m domain.Market) error {
	s.markets[m.ID] = m
	return nil
}

func (s *fakeMarketStore) GetByID(_ context.Context, id string) (domain.Market, error) {
	m, ok := s.markets[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (s *fakeMarketStore) ListActive(_ context.Context, _ domain.ListOpts) ([]domain.Market, error) {
	var out []domain.Market
	for _, m := range s.markets {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMarketStore) Count(_ context.Context) (int64, error) {
	return int64(len(s.markets)), nil
}

type fakeBetStore struct {
	mu   sync.Mutex
	bets map[string]domain.Bet
}

func newFakeBetStore(bets ...domain.Bet) *fakeBetStore {
	s := &fakeBetStore{bets: make(map[string]domain.Bet)}
	for _, b := range bets {
		s.bets[b.ID] = b
	}
	return s
}

func (s *fakeBetStore) Create(_ context.Context, bet domain.Bet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bets[bet.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.bets[bet.ID] = bet
	return nil
}

func (s *fakeBetStore) GetByID(_ context.Context, id string) (domain.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bets[id]
	if !ok {
		return domain.Bet{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *fakeBetStore) ListByMarketDay(_ context.Context, marketID, date string) ([]domain.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Bet
	for _, b := range s.bets {
		if b.MarketID == marketID && b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBetStore) SetPayout(_ context.Context, id string, payout int64, settledAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bets[id]
	if !ok {
		return domain.ErrNotFound
	}
	if b.Settled {
		return domain.ErrAlreadySettled
	}
	b.Settled = true
	b.Payout = &payout
	b.SettledAt = &settledAt
	s.bets[id] = b
	return nil
}

func (s *fakeBetStore) ListSettledBefore(_ context.Context, before time.Time) ([]domain.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Bet
	for _, b := range s.bets {
		if b.Settled && b.SettledAt != nil && b.SettledAt.Before(before) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeResultStore struct {
	results map[string]domain.Result
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{results: make(map[string]domain.Result)}
}

func resultKey(marketID, date string) string { return marketID + "|" + date }

func (s *fakeResultStore) Get(_ context.Context, marketID, date string) (domain.Result, error) {
	r, ok := s.results[resultKey(marketID, date)]
	if !ok {
		return domain.Result{}, domain.ErrNotFound
	}
	return r, nil
}

func (s *fakeResultStore) DeclareOpen(_ context.Context, marketID, date, digits string, at time.Time) error {
	key := resultKey(marketID, date)
	r := s.results[key]
	if r.OpenDigits != nil {
		return domain.ErrAlreadyDeclared
	}
	r.MarketID, r.Date = marketID, date
	r.OpenDigits, r.OpenDeclaredAt = &digits, &at
	s.results[key] = r
	return nil
}

func (s *fakeResultStore) DeclareClose(_ context.Context, marketID, date, digits string, at time.Time) error {
	key := resultKey(marketID, date)
	r := s.results[key]
	if r.CloseDigits != nil {
		return domain.ErrAlreadyDeclared
	}
	r.MarketID, r.Date = marketID, date
	r.CloseDigits, r.CloseDeclaredAt = &digits, &at
	s.results[key] = r
	return nil
}

type auditRecord struct {
	event  string
	detail map[string]any
}

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []auditRecord
}

func (s *fakeAuditStore) Log(_ context.Context, event string, detail map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, auditRecord{event: event, detail: detail})
	return nil
}

func (s *fakeAuditStore) List(_ context.Context, _ domain.ListOpts) ([]domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AuditEntry
	for i, e := range s.entries {
		out = append(out, domain.AuditEntry{ID: int64(i + 1), Event: e.event, Detail: e.detail})
	}
	return out, nil
}

func (s *fakeAuditStore) count(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.event == event {
			n++
		}
	}
	return n
}

type fakeLockManager struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLockManager() *fakeLockManager {
	return &fakeLockManager{held: make(map[string]bool)}
}

func (lm *fakeLockManager) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if lm.held[key] {
		return nil, domain.ErrLockHeld
	}
	lm.held[key] = true
	return func() {
		lm.mu.Lock()
		defer lm.mu.Unlock()
		delete(lm.held, key)
	}, nil
}

type fakeBus struct {
	mu        sync.Mutex
	published map[string][][]byte
	streams   map[string][][]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		published: make(map[string][][]byte),
		streams:   make(map[string][][]byte),
	}
}

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[channel] = append(b.published[channel], payload)
	return nil
}

func (b *fakeBus) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (b *fakeBus) StreamAppend(_ context.Context, stream string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streams[stream] = append(b.streams[stream], payload)
	return nil
}

type fakePhaseCache struct {
	mu      sync.Mutex
	entries map[string]domain.PhaseResult
}

func newFakePhaseCache() *fakePhaseCache {
	return &fakePhaseCache{entries: make(map[string]domain.PhaseResult)}
}

func (c *fakePhaseCache) Set(_ context.Context, marketID string, result domain.PhaseResult, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[marketID] = result
	return nil
}

func (c *fakePhaseCache) Get(_ context.Context, marketID string) (domain.PhaseResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[marketID]
	if !ok {
		return domain.PhaseResult{}, domain.ErrNotFound
	}
	return r, nil
}
