package duraclient

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arkareza/duraclient/internal/backoff"
)

// BackoffStrategy selects the delay calculation algorithm.
type BackoffStrategy int

const (
	// ExponentialJitter is exponential backoff with uniform jitter (default).
	ExponentialJitter BackoffStrategy = iota
	// DecorrelatedJitter is AWS-style decorrelated jitter.
	DecorrelatedJitter
)

// RetryPolicy bounds the retry behavior of one operation. It is a value
// object: construct it once and share freely.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      float64
	Strategy    BackoffStrategy

	// Retryable decides whether an error is worth another attempt.
	// Non-retryable errors propagate immediately without consuming the
	// remaining budget. Nil means IsRetryable.
	Retryable func(error) bool
}

// NewRetryPolicy returns a policy with the given attempt bound and delays,
// exponential-jitter strategy and the default retryable predicate.
func NewRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		Multiplier:  2.0,
		Retryable:   IsRetryable,
	}
}

// Delay returns the wait before the next try after the given 1-based failed
// attempt: min(base * multiplier^(attempt-1), max), plus jitter when set.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	var s backoff.Strategy
	switch p.Strategy {
	case DecorrelatedJitter:
		s = backoff.DecorrelatedJitterStrategy{}
	default:
		s = backoff.ExponentialJitterStrategy{}
	}
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	return s.Calculate(attempt-1, p.BaseDelay, p.MaxDelay, multiplier, p.Jitter)
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return IsRetryable(err)
}

// RetryController wraps a single operation with bounded backoff, delegating
// the "is it even worth trying" decision to a circuit breaker.
type RetryController struct {
	policy  RetryPolicy
	logger  Logger
	debug   *DebugConfig
	metrics *MetricsCollector
}

// NewRetryController creates a controller from the given policy.
func NewRetryController(policy RetryPolicy, logger Logger, debug *DebugConfig, metrics *MetricsCollector) *RetryController {
	if logger == nil {
		logger = NopLogger{}
	}
	return &RetryController{policy: policy, logger: logger, debug: debug, metrics: metrics}
}

// Do executes op through the breaker until it succeeds, the retry budget is
// exhausted, a non-retryable error occurs, or the breaker opens. No attempt is
// made once the breaker is open: the caller receives a CircuitOpen error
// instead of burning retry budget. Backoff waits honor ctx cancellation.
func (rc *RetryController) Do(ctx context.Context, cb *CircuitBreaker, endpoint string, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= rc.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !cb.Allow() {
			if rc.debug != nil && rc.debug.Enabled && rc.debug.LogCircuit {
				rc.logger.Warn("Circuit breaker open", "endpoint", endpoint, "state", cb.State().String())
			}
			if rc.metrics != nil {
				rc.metrics.RecordError(ErrorTypeCircuitOpen, endpoint)
			}
			return &ClientError{
				Type:      ErrorTypeCircuitOpen,
				Message:   "circuit breaker is open",
				Endpoint:  endpoint,
				Attempt:   attempt,
				Timestamp: time.Now(),
			}
		}

		if attempt > 1 {
			if rc.debug != nil && rc.debug.Enabled && rc.debug.LogRetries {
				rc.logger.Info("Retry attempt", "attempt", attempt, "maxAttempts", rc.policy.MaxAttempts, "endpoint", endpoint)
			}
			if rc.metrics != nil {
				rc.metrics.RecordRetry(endpoint, attempt)
			}
		}

		err := op(ctx)
		if err == nil {
			cb.RecordSuccess()
			return nil
		}
		cb.RecordFailure()
		lastErr = err

		if !rc.policy.retryable(err) {
			return err
		}
		if attempt == rc.policy.MaxAttempts {
			break
		}

		delay := retryAfterHint(err)
		if delay == 0 {
			delay = rc.policy.Delay(attempt)
		}

		if rc.debug != nil && rc.debug.Enabled && rc.debug.LogRetries {
			rc.logger.Info("Scheduling retry", "attempt", attempt+1, "backoff", delay, "endpoint", endpoint)
		}

		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
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

// retryAfterHint extracts a server-provided delay from the error, if any.
func retryAfterHint(err error) time.Duration {
	var clientErr *ClientError
	if errors.As(err, &clientErr) && clientErr.RetryAfter > 0 {
		return clientErr.RetryAfter
	}
	return 0
}

// parseRetryAfter parses a Retry-After header value, accepting both
// delay-seconds and HTTP-date formats. The result is capped at one hour.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if seconds > 0 {
			delay := time.Duration(seconds) * time.Second
			if delay > time.Hour {
				delay = time.Hour
			}
			return delay
		}
		return 0
	}

	if t, err := http.ParseTime(value); err == nil {
		delay := time.Until(t)
		if delay > 0 && delay <= time.Hour {
			return delay
		}
	}

	return 0
}
