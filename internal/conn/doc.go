// Package conn wraps a transport.Transport with a retry policy, a liveness
// watchdog, and a level-triggered signal queue. It implements the
// Idle → Connecting → Connected → (Disconnected → RetryScheduled →
// Connecting)+ → Closed state machine: poll() never blocks and never makes
// a syscall itself, but a single background goroutine per disconnect
// episode runs the actual (blocking, real-time-sleeping) redial loop.
package conn
