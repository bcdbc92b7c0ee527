package clock

import (
	"sync"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// defaultMemoWindow bounds how long a cached classification is reused.
const defaultMemoWindow = 30 * time.Second

// Memo caches Classify results per (marketID, floored minute) so that a UI
// tier polling many markets does not recompute identical answers every tick.
// It is an optimization only: entries expire within the window, and callers
// may always bypass the memo and call Classify directly. Safe for concurrent
// use.
type Memo struct {
	window  time.Duration
	mu      sync.Mutex
	entries map[string]memoEntry
}

type memoEntry struct {
	at     time.Time
	result domain.PhaseResult
}

// NewMemo creates a Memo with the given reuse window. A non-positive window
// falls back to the default of 30 seconds.
func NewMemo(window time.Duration) *Memo {
	if window <= 0 {
		window = defaultMemoWindow
	}
	return &Memo{
		window:  window,
		entries: make(map[string]memoEntry),
	}
}

// Classify returns the cached phase for (marketID, now floored to the minute)
// when a fresh entry exists, computing and recording it otherwise.
func (m *Memo) Classify(marketID string, now time.Time, schedule domain.MarketSchedule) domain.PhaseResult {
	key := marketID + "@" + now.Truncate(time.Minute).Format("2006-01-02T15:04")

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && now.Sub(e.at) < m.window {
		return e.result
	}

	result := Classify(now, schedule)
	m.entries[key] = memoEntry{at: now, result: result}
	return result
}

// Cleanup removes entries older than the reuse window. Call it periodically
// to prevent unbounded growth across minutes and markets.
func (m *Memo) Cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.entries {
		if now.Sub(e.at) >= m.window {
			delete(m.entries, key)
		}
	}
}
