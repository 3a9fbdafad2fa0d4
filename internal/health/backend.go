package health

import (
	"context"
	"fmt"
	"time"
)

// BackendItemID is the health item of the metadata API.
const BackendItemID = "metadata-api"

const (
	defaultCheckTimeout = 10 * time.Second
	// A hosted backend waking from sleep answers, but slowly.
	defaultSlowThreshold = 3 * time.Second
)

// Pinger reaches a remote dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendChecker pings the metadata API and records the result: error when
// unreachable, warning when slower than the threshold, OK otherwise.
type BackendChecker struct {
	health  *Service
	pinger  Pinger
	timeout time.Duration
	slow    time.Duration
}

// NewBackendChecker registers the backend health item. name is shown in
// health responses, typically the backend base URL.
func NewBackendChecker(svc *Service, pinger Pinger, name string) *BackendChecker {
	svc.RegisterItem(CategoryBackend, BackendItemID, name)
	return &BackendChecker{
		health:  svc,
		pinger:  pinger,
		timeout: defaultCheckTimeout,
		slow:    defaultSlowThreshold,
	}
}

// Check pings the backend once.
func (c *BackendChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := c.health.clock.Now()
	if err := c.pinger.Ping(ctx); err != nil {
		c.health.SetError(CategoryBackend, BackendItemID, err.Error())
		return err
	}

	if elapsed := c.health.clock.Since(start); elapsed > c.slow {
		c.health.SetWarning(CategoryBackend, BackendItemID,
			fmt.Sprintf("slow response: %s", elapsed.Round(100*time.Millisecond)))
		return nil
	}
	c.health.ClearStatus(CategoryBackend, BackendItemID)
	return nil
}
