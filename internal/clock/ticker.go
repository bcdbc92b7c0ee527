package clock

import (
	"sync"
	"time"
)

// Ticker is a single shared periodic ticker with a subscriber registry. All
// subscribers are notified from one timer, so polling a thousand markets
// costs one goroutine rather than a thousand. The underlying timer starts
// when the first subscriber registers and stops when the last unsubscribes.
type Ticker struct {
	interval time.Duration

	mu     sync.Mutex
	subs   map[int]func(time.Time)
	nextID int
	stop   chan struct{} // non-nil while the tick loop is running
}

// NewTicker creates a Ticker that fires every interval. No timer runs until
// the first Subscribe call.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{
		interval: interval,
		subs:     make(map[int]func(time.Time)),
	}
}

// Subscribe registers fn to be invoked on every tick and returns an
// unsubscribe function. The unsubscribe function is idempotent; when it
// removes the last subscriber the shared timer is stopped.
func (t *Ticker) Subscribe(fn func(time.Time)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn

	if t.stop == nil {
		t.stop = make(chan struct{})
		go t.loop(t.stop)
	}
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			if len(t.subs) == 0 && t.stop != nil {
				close(t.stop)
				t.stop = nil
			}
			t.mu.Unlock()
		})
	}
}

// loop runs the shared timer until stop is closed. Callbacks are invoked
// outside the registry lock so a slow subscriber cannot block Subscribe.
func (t *Ticker) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			t.mu.Lock()
			fns := make([]func(time.Time), 0, len(t.subs))
			for _, fn := range t.subs {
				fns = append(fns, fn)
			}
			t.mu.Unlock()

			for _, fn := range fns {
				fn(now)
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (t *Ticker) SubscriberCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}
