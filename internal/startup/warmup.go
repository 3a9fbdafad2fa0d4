// Package startup wakes the metadata API when the server boots.
package startup

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/anivibe/anivibe/internal/backend"
)

// RetryConfig configures the exponential backoff between warm-up attempts.
type RetryConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
	Multiplier   float64
}

// DefaultRetryConfig covers a hosted backend waking from sleep, which can
// take close to a minute.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialDelay: 5 * time.Second,
		MaxDelay:     30 * time.Second,
		MaxAttempts:  6,
		Multiplier:   2.0,
	}
}

// IsTransient reports whether err is worth another attempt: network
// failures and 5xx answers from a proxy in front of a sleeping backend.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= http.StatusInternalServerError
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"connection refused",
		"no such host",
		"i/o timeout",
		"connection reset",
		"network is unreachable",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// Warmup calls ping until it succeeds, fails with a non-transient error or
// runs out of attempts. Page loads never wait on it.
func Warmup(ctx context.Context, clock clockwork.Clock, cfg RetryConfig, ping func(context.Context) error, logger zerolog.Logger) error {
	logger = logger.With().Str("component", "warmup").Logger()

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := ping(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info().Int("attempt", attempt).Msg("backend awake after retry")
			} else {
				logger.Debug().Msg("backend awake")
			}
			return nil
		}
		lastErr = err

		if !IsTransient(err) {
			logger.Error().Err(err).Msg("backend warm-up failed, not retrying")
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("maxAttempts", cfg.MaxAttempts).
			Dur("nextRetryIn", delay).
			Msg("backend not ready, will retry")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	logger.Error().Err(lastErr).Int("attempts", cfg.MaxAttempts).Msg("backend warm-up gave up")
	return lastErr
}
