package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"UpriseScanner/internal/model"
)

// RetryPolicy bounds how a failed fetch is retried.
type RetryPolicy struct {
	MaxAttempts int           `yaml:"max_attempts" validate:"gte=1,lte=10"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    5 * time.Second,
}

// backoff is BaseDelay doubled per attempt, capped at MaxDelay.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay << uint(attempt)
	if d <= 0 || (p.MaxDelay > 0 && d > p.MaxDelay) {
		return p.MaxDelay
	}
	return d
}

// retryable reports whether err may succeed on a later attempt. Malformed
// data, missing data and cancellation are final.
func retryable(err error) bool {
	return !errors.Is(err, model.ErrMalformedInput) &&
		!errors.Is(err, model.ErrDataUnavailable) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func retry[T any](ctx context.Context, p RetryPolicy, op, code string, fn func() (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !retryable(err) || i == attempts-1 {
			break
		}
		wait := p.backoff(i)
		log.Warn().Err(err).Str("op", op).Str("code", code).
			Int("attempt", i+1).Int("max_attempts", attempts).Dur("backoff", wait).
			Msg("fetch failed, retrying")
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
	}
	if !retryable(lastErr) {
		return zero, lastErr
	}
	return zero, fmt.Errorf("%s %s: %d attempts exhausted: %w", op, code, attempts, lastErr)
}

type retrying struct {
	inner  Provider
	policy RetryPolicy
}

// WithRetry wraps p so that transient failures are retried with exponential
// backoff under policy.
func WithRetry(p Provider, policy RetryPolicy) Provider {
	return &retrying{inner: p, policy: policy}
}

func (r *retrying) Name() string { return r.inner.Name() }

func (r *retrying) FetchHistory(ctx context.Context, code string, days int) (model.Series, error) {
	return retry(ctx, r.policy, "history", code, func() (model.Series, error) {
		return r.inner.FetchHistory(ctx, code, days)
	})
}

func (r *retrying) FetchFundamentals(ctx context.Context, code string) (model.Fundamentals, error) {
	return retry(ctx, r.policy, "fundamentals", code, func() (model.Fundamentals, error) {
		return r.inner.FetchFundamentals(ctx, code)
	})
}

type retryingSource struct {
	inner  CandidateSource
	policy RetryPolicy
}

// SourceWithRetry is WithRetry for candidate discovery.
func SourceWithRetry(s CandidateSource, policy RetryPolicy) CandidateSource {
	return &retryingSource{inner: s, policy: policy}
}

func (r *retryingSource) DiscoverCandidates(ctx context.Context, limit int) ([]model.Candidate, error) {
	return retry(ctx, r.policy, "candidates", "", func() ([]model.Candidate, error) {
		return r.inner.DiscoverCandidates(ctx, limit)
	})
}
