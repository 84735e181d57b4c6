package engine

import (
	"sync"
	"time"
)

// countdown drives a final-exam session's clock. It is the single authority
// over the session's remaining seconds: it ticks once per interval while the
// session is IN_PROGRESS and routes expiry through the same guarded submit
// path as a manual submit. The tick interval is one second in production;
// tests shrink it.
type countdown struct {
	interval time.Duration
	stopOnce sync.Once
	done     chan struct{}
}

func newCountdown(interval time.Duration) *countdown {
	return &countdown{interval: interval, done: make(chan struct{})}
}

// run loops until the session expires, leaves IN_PROGRESS, or stop is called.
// Call in a goroutine.
func (c *countdown) run(s *Session, results ResultStore) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			expired, live := s.tickSecond()
			if !live {
				return
			}
			if expired {
				s.expire(results)
				return
			}
		}
	}
}

// stop cancels the countdown. Safe to call more than once and concurrently
// with a tick.
func (c *countdown) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// startCountdown attaches and launches the countdown for a final session.
func (s *Session) startCountdown(interval time.Duration, results ResultStore) {
	c := newCountdown(interval)
	s.mu.Lock()
	s.countdown = c
	s.mu.Unlock()
	go c.run(s, results)
}
