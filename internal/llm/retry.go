package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryProvider retries transient failures with capped exponential backoff.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
	log   *zap.Logger
}

// WithRetry wraps p. A config with no attempts makes exactly one call.
func WithRetry(p Provider, cfg RetryConfig, log *zap.Logger) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RetryProvider{inner: p, cfg: cfg, log: log}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		err         error
		invalidSeen bool
	)
	for attempt := range r.cfg.MaxAttempts {
		if attempt > 0 {
			wait := r.delay(attempt-1, err)
			r.log.Debug("retrying llm request", append(CallFrom(ctx).fields(),
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
				zap.Error(err))...)
			if serr := sleep(ctx, wait); serr != nil {
				return nil, serr
			}
		}

		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !retryable(err, &invalidSeen) {
			return nil, err
		}
	}
	return nil, err
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Name() string { return r.inner.Name() }

// retryable reports whether another attempt could succeed. A schema
// mismatch gets one more try; rejected and truncated requests would fail
// the same way again.
func retryable(err error, invalidSeen *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch KindOf(err) {
	case KindRejected, KindTruncated:
		return false
	case KindInvalid:
		if *invalidSeen {
			return false
		}
		*invalidSeen = true
	}
	return true
}

// delay is the wait before retry n (0-based). A server-supplied
// Retry-After wins over the computed backoff.
func (r *RetryProvider) delay(n int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	wait := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(n))
	wait = math.Min(wait, float64(r.cfg.MaxWait))
	wait *= 0.8 + 0.4*rand.Float64()
	return time.Duration(wait)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
