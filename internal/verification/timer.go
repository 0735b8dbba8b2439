package verification

import (
	"sync"
	"time"
)

// Timer is the resend-cooldown countdown. It ticks once per Interval with
// the remaining seconds and fires the expired callback exactly once when it
// reaches zero. It emits events and nothing else; the flow owns what the
// ticks mean.
type Timer struct {
	// Interval is the tick resolution. One second in production; tests
	// shrink it so countdowns finish quickly.
	Interval time.Duration

	onTick    func(remaining int)
	onExpired func()

	mu        sync.Mutex
	remaining int
	stop      chan struct{}
}

// NewTimer constructs a stopped timer. Either callback may be nil.
func NewTimer(onTick func(remaining int), onExpired func()) *Timer {
	return &Timer{
		Interval:  time.Second,
		onTick:    onTick,
		onExpired: onExpired,
	}
}

// Start begins a countdown of the given number of seconds. Starting a
// running timer restarts it.
func (t *Timer) Start(seconds int) {
	t.mu.Lock()
	if t.stop != nil {
		close(t.stop)
	}
	stop := make(chan struct{})
	t.stop = stop
	t.remaining = seconds
	interval := t.Interval
	t.mu.Unlock()

	if seconds <= 0 {
		t.Cancel()
		if t.onExpired != nil {
			t.onExpired()
		}
		return
	}

	go t.run(stop, interval)
}

func (t *Timer) run(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.stop != stop {
				// cancelled and possibly restarted; this countdown is dead
				t.mu.Unlock()
				return
			}
			t.remaining--
			rem := t.remaining
			if rem <= 0 {
				t.stop = nil
			}
			t.mu.Unlock()

			if t.onTick != nil {
				t.onTick(rem)
			}
			if rem <= 0 {
				if t.onExpired != nil {
					t.onExpired()
				}
				return
			}
		}
	}
}

// Cancel stops the countdown and resets it to zero. Safe to call at any
// time, any number of times; a cancelled countdown never fires expired.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.remaining = 0
}

// Remaining returns the seconds left, zero when idle.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Running reports whether a countdown is active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}
