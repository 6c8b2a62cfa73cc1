// Package backoff implements the connection retry policy: capped exponential
// backoff with multiplicative jitter, wired into github.com/avast/retry-go/v4
// so the reconnect loop gets cancellation, attempt counting, and an
// on-retry hook for free instead of a hand-rolled sleep loop.
package backoff
