package quiz

import (
	"sync"
	"time"
)

// clock is the per-question countdown. It decrements once per tick interval
// (one real-time second in production) and fires expire exactly once when the
// countdown passes zero. Freeze suspends decrementing without resetting the
// remaining time.
//
// Each Start bumps an internal generation counter and the ticking goroutine
// checks it on every tick, so starting a new countdown cancels the previous
// one and a stale goroutine can never touch a later question's time.
type clock struct {
	mu       sync.Mutex
	interval time.Duration
	gen      uint64
	timeLeft int
	frozen   bool
	running  bool

	// onTick receives the remaining seconds after each decrement; onExpire
	// fires once when the countdown reaches zero. Both are invoked without
	// the clock lock held.
	onTick   func(timeLeft int)
	onExpire func()
}

func newClock(interval time.Duration, onTick func(int), onExpire func()) *clock {
	if interval <= 0 {
		interval = time.Second
	}
	return &clock{interval: interval, onTick: onTick, onExpire: onExpire}
}

// Start resets the countdown to durationSeconds and begins ticking, cancelling
// any countdown already in flight.
func (c *clock) Start(durationSeconds int) {
	c.mu.Lock()
	c.gen++
	myGen := c.gen
	c.timeLeft = durationSeconds
	c.frozen = false
	c.running = true
	c.mu.Unlock()

	go c.run(myGen)
}

func (c *clock) run(myGen uint64) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for range ticker.C {
		tl, expired, ok := c.step(myGen)
		if !ok {
			return
		}
		if tl >= 0 && c.onTick != nil {
			c.onTick(tl)
		}
		if expired {
			if c.onExpire != nil {
				c.onExpire()
			}
			return
		}
	}
}

// step applies one tick. It returns the post-decrement time (-1 when frozen),
// whether the countdown just expired, and whether this goroutine still owns
// the clock.
func (c *clock) step(myGen uint64) (timeLeft int, expired bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != myGen || !c.running {
		return 0, false, false
	}
	if c.frozen {
		return -1, false, true
	}
	c.timeLeft--
	if c.timeLeft <= 0 {
		c.timeLeft = 0
		c.running = false
		return 0, true, true
	}
	return c.timeLeft, false, true
}

// Freeze suspends decrementing; the remaining time is preserved.
func (c *clock) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// Unfreeze resumes a frozen countdown. No-op if the clock is not frozen.
func (c *clock) Unfreeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = false
}

// Stop halts the countdown permanently for the current question.
func (c *clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.running = false
}

// TimeLeft reports the remaining seconds.
func (c *clock) TimeLeft() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeLeft
}

// Generation identifies the current countdown; deferred effects capture it to
// detect that the clock has since moved on.
func (c *clock) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}
