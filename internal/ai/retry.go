package ai

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"
)

// retryPolicy holds the backoff knobs shared by the HTTP runtimes.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
}

// do runs fn until it succeeds, returns a non-retryable error, or attempts
// run out. Only the last error is returned. A RateLimitError carrying a
// Retry-After overrides the capped exponential backoff for that attempt.
func (p retryPolicy) do(ctx context.Context, fn func() error) error {
	attempts := p.attempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(p.baseDelay),
		retry.MaxJitter(p.baseDelay/5+time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		// retry.MaxDelay would also clip Retry-After, so the cap applies to
		// the computed backoff only.
		retry.DelayType(func(n uint, err error, cfg *retry.Config) time.Duration {
			var rl *RateLimitError
			if errors.As(err, &rl) && rl.RetryAfter > 0 {
				return rl.RetryAfter
			}
			d := backoff(n, err, cfg)
			if p.maxDelay > 0 && d > p.maxDelay {
				d = p.maxDelay
			}
			return d
		}),
		retry.OnRetry(func(n uint, err error) {
			logrus.WithFields(logrus.Fields{"attempt": n + 1, "error": err}).Debug("retrying AI request")
		}),
	)
}

// isRetryable reports whether a request failure is transient: rate limits,
// provider 5xx responses and network timeouts.
func isRetryable(err error) bool {
	var rl *RateLimitError
	var se *ServerError
	switch {
	case errors.As(err, &rl), errors.As(err, &se):
		return true
	}
	return isRetryableNetErr(err)
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
