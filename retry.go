package adminapi

import (
	"context"
	"time"

	"github.com/mostafamerzk/admin-client-sub001/internal/backoff"
)

// RetryPolicy decides whether a failed attempt is re-issued and after how
// long. status is the observed transport status; transport-level failures
// with no response are reported as 500. retry is the 1-based number of the
// retry being considered.
type RetryPolicy interface {
	ShouldRetry(status, retry int) (time.Duration, bool)
}

// ExponentialRetryPolicy re-issues server-side failures (5xx) with capped
// exponential backoff, up to MaxRetries times. Client errors (4xx) are
// deterministic, so retrying them only wastes a round trip; they fail
// immediately.
type ExponentialRetryPolicy struct {
	cfg RetryConfig
}

// NewExponentialRetryPolicy builds a policy from the given bounds.
func NewExponentialRetryPolicy(cfg RetryConfig) *ExponentialRetryPolicy {
	return &ExponentialRetryPolicy{cfg: cfg}
}

// ShouldRetry implements RetryPolicy.
func (p *ExponentialRetryPolicy) ShouldRetry(status, retry int) (time.Duration, bool) {
	if retry > p.cfg.MaxRetries {
		return 0, false
	}
	if status < 500 || status > 599 {
		return 0, false
	}
	return backoff.Exponential(retry, p.cfg.InitialDelay, p.cfg.MaxDelay, p.cfg.Jitter), true
}

// sleep waits for the backoff delay, aborting early when ctx is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
