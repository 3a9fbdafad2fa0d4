package carousel

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCarousel(t *testing.T) (*Carousel, *clockwork.FakeClock, chan int) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	changes := make(chan int, 16)
	c := New(clock, 0, func(i int) { changes <- i })
	t.Cleanup(c.Stop)
	return c, clock, changes
}

func nextChange(t *testing.T, changes chan int) int {
	t.Helper()
	select {
	case i := <-changes:
		return i
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for carousel change")
		return -1
	}
}

func assertNoChange(t *testing.T, changes chan int) {
	t.Helper()
	select {
	case i := <-changes:
		t.Fatalf("unexpected carousel change to %d", i)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCarousel_AutoAdvanceWraps(t *testing.T) {
	c, clock, changes := newTestCarousel(t)
	c.SetLength(3)
	c.Start(context.Background())

	for _, want := range []int{1, 2, 0} {
		clock.Advance(DefaultInterval)
		assert.Equal(t, want, nextChange(t, changes))
	}
	assert.Equal(t, 0, c.Index())
}

func TestCarousel_ManualMoveRestartsCountdown(t *testing.T) {
	c, clock, changes := newTestCarousel(t)
	c.SetLength(4)
	c.Start(context.Background())

	clock.Advance(4 * time.Second)
	c.Next()
	require.Equal(t, 1, nextChange(t, changes))

	clock.Advance(4 * time.Second)
	assertNoChange(t, changes)

	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, 2, nextChange(t, changes))
}

func TestCarousel_PrevAndSelect(t *testing.T) {
	c, _, changes := newTestCarousel(t)
	c.SetLength(3)

	c.Prev()
	assert.Equal(t, 2, nextChange(t, changes))

	c.Select(1)
	assert.Equal(t, 1, nextChange(t, changes))

	c.Select(7)
	assert.Equal(t, 1, nextChange(t, changes))
	assert.Equal(t, 1, c.Index())
}

func TestCarousel_NoSlides(t *testing.T) {
	c, clock, changes := newTestCarousel(t)
	c.Start(context.Background())

	c.Next()
	clock.Advance(time.Minute)
	assertNoChange(t, changes)
	assert.Equal(t, 0, c.Len())
}

func TestCarousel_ShrinkingClampsIndex(t *testing.T) {
	c, _, changes := newTestCarousel(t)
	c.SetLength(6)
	c.Select(5)
	require.Equal(t, 5, nextChange(t, changes))

	c.SetLength(2)
	assert.Equal(t, 0, nextChange(t, changes))
	assert.Equal(t, 2, c.Len())
}

func TestCarousel_StopIsIdempotent(t *testing.T) {
	c, clock, changes := newTestCarousel(t)
	c.SetLength(2)
	c.Start(context.Background())

	c.Stop()
	c.Stop()
	clock.Advance(time.Minute)
	assertNoChange(t, changes)
}

func TestCarousel_StopsWithContext(t *testing.T) {
	c, clock, changes := newTestCarousel(t)
	c.SetLength(2)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	cancel()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.stopped
	}, time.Second, 5*time.Millisecond)

	clock.Advance(time.Minute)
	assertNoChange(t, changes)
}

func TestCarousel_CustomInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	changes := make(chan int, 4)
	c := New(clock, time.Second, func(i int) { changes <- i })
	defer c.Stop()
	c.SetLength(2)
	c.Start(context.Background())

	clock.Advance(time.Second)
	assert.Equal(t, 1, nextChange(t, changes))
}

func TestCarousel_SameLengthKeepsCountdown(t *testing.T) {
	c, clock, changes := newTestCarousel(t)
	c.SetLength(3)
	c.Start(context.Background())

	clock.Advance(5 * time.Second)
	c.SetLength(3)
	assertNoChange(t, changes)

	clock.Advance(time.Second)
	assert.Equal(t, 1, nextChange(t, changes))
}

func TestCarousel_NewLengthRestartsCountdown(t *testing.T) {
	c, clock, changes := newTestCarousel(t)
	c.SetLength(3)
	c.Start(context.Background())

	clock.Advance(5 * time.Second)
	c.SetLength(4)

	clock.Advance(time.Second)
	assertNoChange(t, changes)

	clock.Advance(5 * time.Second)
	assert.Equal(t, 1, nextChange(t, changes))
}
