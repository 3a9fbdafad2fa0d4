// Package carousel implements the hero slide timer shared by live sessions.
package carousel

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the auto-advance period when none is configured.
const DefaultInterval = 5500 * time.Millisecond

// Carousel tracks the active slide and advances it on a timer. Manual moves
// restart the countdown. onChange is called outside the lock with the new
// index, from the caller's goroutine for manual moves and from a timer
// goroutine for automatic ones.
type Carousel struct {
	clock    clockwork.Clock
	interval time.Duration
	onChange func(index int)

	mu      sync.Mutex
	index   int
	length  int
	started bool
	stopped bool
	timer   clockwork.Timer
	epoch   uint64
}

// New creates a stopped carousel with no slides.
func New(clock clockwork.Clock, interval time.Duration, onChange func(index int)) *Carousel {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onChange == nil {
		onChange = func(int) {}
	}
	return &Carousel{clock: clock, interval: interval, onChange: onChange}
}

// Start begins auto-advancing. The carousel stops when ctx is done.
func (c *Carousel) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.armLocked()
	c.mu.Unlock()

	context.AfterFunc(ctx, c.Stop)
}

// Stop cancels the timer. It is safe to call more than once.
func (c *Carousel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.disarmLocked()
}

// Index returns the active slide.
func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Len returns the slide count.
func (c *Carousel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.length
}

// SetLength adapts to a new slide count. The index is clamped into range and
// a count below two stops advancing.
func (c *Carousel) SetLength(n int) {
	c.mu.Lock()
	n = max(n, 0)
	if n == c.length {
		// Same slide set: keep the running countdown.
		c.mu.Unlock()
		return
	}
	changed := false
	c.length = n
	if c.index >= n {
		c.index = 0
		changed = n > 0
	}
	c.armLocked()
	idx := c.index
	c.mu.Unlock()

	if changed {
		c.onChange(idx)
	}
}

// Next shows the following slide, wrapping around.
func (c *Carousel) Next() { c.move(func(i, n int) int { return (i + 1) % n }) }

// Prev shows the previous slide, wrapping around.
func (c *Carousel) Prev() { c.move(func(i, n int) int { return (i - 1 + n) % n }) }

// Select shows slide i. Out of range indexes are ignored.
func (c *Carousel) Select(i int) {
	c.move(func(cur, n int) int {
		if i < 0 || i >= n {
			return cur
		}
		return i
	})
}

func (c *Carousel) move(pick func(index, length int) int) {
	c.mu.Lock()
	if c.length == 0 {
		c.mu.Unlock()
		return
	}
	c.index = pick(c.index, c.length)
	c.armLocked()
	idx := c.index
	c.mu.Unlock()

	c.onChange(idx)
}

// armLocked restarts the countdown when the carousel is running.
func (c *Carousel) armLocked() {
	c.disarmLocked()
	if !c.started || c.stopped || c.length < 2 {
		return
	}
	epoch := c.epoch
	c.timer = c.clock.AfterFunc(c.interval, func() { c.tick(epoch) })
}

func (c *Carousel) disarmLocked() {
	c.epoch++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Carousel) tick(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || c.stopped || c.length < 2 {
		c.mu.Unlock()
		return
	}
	c.index = (c.index + 1) % c.length
	c.armLocked()
	idx := c.index
	c.mu.Unlock()

	c.onChange(idx)
}
