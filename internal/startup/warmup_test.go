package startup

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anivibe/anivibe/internal/backend"
)

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(&backend.StatusError{Code: 502, Path: "/api/manga/trending"}))
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", &backend.StatusError{Code: 503})))
	assert.False(t, IsTransient(&backend.StatusError{Code: 404}))
	assert.True(t, IsTransient(errors.New("dial tcp 10.0.0.1:443: connection refused")))
	assert.False(t, IsTransient(errors.New("failed to decode backend response")))
}

func TestWarmup_RetriesUntilAwake(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var calls atomic.Int32
	ping := func(context.Context) error {
		if calls.Add(1) < 3 {
			return &backend.StatusError{Code: 503}
		}
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- Warmup(context.Background(), clock, DefaultRetryConfig(), ping, zerolog.Nop())
	}()

	for want := 1; want < 3; want++ {
		require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
		clock.Advance(time.Minute)
	}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("warm-up did not finish")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestWarmup_StopsOnPermanentError(t *testing.T) {
	var calls int
	err := Warmup(context.Background(), clockwork.NewFakeClock(), DefaultRetryConfig(), func(context.Context) error {
		calls++
		return &backend.StatusError{Code: 404}
	}, zerolog.Nop())

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWarmup_GivesUp(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: time.Second, MaxAttempts: 2, Multiplier: 2}
	done := make(chan error, 1)
	go func() {
		done <- Warmup(context.Background(), clock, cfg, func(context.Context) error {
			return errors.New("connection refused")
		}, zerolog.Nop())
	}()

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(time.Second)

	select {
	case err := <-done:
		assert.EqualError(t, err, "connection refused")
	case <-time.After(5 * time.Second):
		t.Fatal("warm-up did not give up")
	}
}

func TestWarmup_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := clockwork.NewFakeClock()
	done := make(chan error, 1)
	go func() {
		done <- Warmup(ctx, clock, DefaultRetryConfig(), func(context.Context) error {
			return errors.New("i/o timeout")
		}, zerolog.Nop())
	}()

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
