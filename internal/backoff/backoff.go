package backoff

import (
	"context"
	"math/rand"
	"time"

	"github.com/avast/retry-go/v4"
)

// Policy is the retry/backoff policy: delay(n) = min(cap, base*2^n) *
// (1 + U[-jitter, +jitter]). The attempt counter this closes over resets on
// every successful Connected transition, since Connection constructs a fresh
// Policy.Delay call chain per reconnect episode.
type Policy struct {
	Base   time.Duration
	Cap    time.Duration
	Jitter float64 // fractional, e.g. 0.1 for +/-10%
}

// DefaultPolicy returns the connection manager's default retry policy:
// base=250ms, cap=30s, jitter=0.1.
func DefaultPolicy() Policy {
	return Policy{Base: 250 * time.Millisecond, Cap: 30 * time.Second, Jitter: 0.1}
}

// Delay computes the backoff duration for the given zero-indexed attempt
// number, including jitter. Safe against exponent overflow for large attempt
// counts: the exponential term saturates at Cap before jitter is applied.
func (p Policy) Delay(attempt uint) time.Duration {
	d := p.Base
	for i := uint(0); i < attempt && d < p.Cap; i++ {
		d *= 2
		if d <= 0 { // overflowed past time.Duration's range
			d = p.Cap
			break
		}
	}
	if d > p.Cap {
		d = p.Cap
	}
	if p.Jitter <= 0 {
		return d
	}
	spread := float64(d) * p.Jitter
	delta := (rand.Float64()*2 - 1) * spread
	result := time.Duration(float64(d) + delta)
	if result < 0 {
		return 0
	}
	return result
}

// RetryOptions adapts Policy to retry-go: unlimited attempts (the caller
// cancels ctx to stop), Policy.Delay as the custom delay function, and
// onRetry invoked before each sleep so Connection can emit a
// RetryScheduled signal.
func (p Policy) RetryOptions(ctx context.Context, onRetry func(attempt uint, err error)) []retry.Option {
	opts := []retry.Option{
		retry.Attempts(0), // unbounded; ctx cancellation is the only stop condition
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return p.Delay(n)
		}),
	}
	if onRetry != nil {
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			onRetry(n, err)
		}))
	}
	return opts
}
