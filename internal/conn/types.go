package conn

import (
	"errors"
	"time"

	"github.com/locar77i/wirekrak/internal/backoff"
)

// State is a position in the connection state machine.
type State int

const (
	Idle State = iota
	Connecting
	Connected
	Disconnected
	RetryScheduled
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case RetryScheduled:
		return "retry_scheduled"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Signal is a level-triggered, exactly-once-per-transition event drained by
// PollSignal.
type Signal int

const (
	SignalConnected Signal = iota
	SignalDisconnected
	SignalRetryImmediate
	SignalRetryScheduled
	SignalLivenessThreatened
)

func (s Signal) String() string {
	switch s {
	case SignalConnected:
		return "connected"
	case SignalDisconnected:
		return "disconnected"
	case SignalRetryImmediate:
		return "retry_immediate"
	case SignalRetryScheduled:
		return "retry_scheduled"
	case SignalLivenessThreatened:
		return "liveness_threatened"
	default:
		return "unknown"
	}
}

// Config configures a Connection's retry and liveness behavior.
type Config struct {
	URL         string
	Policy      backoff.Policy
	WarnWindow  time.Duration
	KillWindow  time.Duration
	SignalQueue int
}

// DefaultConfig returns the documented defaults: 10s liveness warning
// window, 20s kill window, the default retry policy.
func DefaultConfig(url string) Config {
	return Config{
		URL:         url,
		Policy:      backoff.DefaultPolicy(),
		WarnWindow:  10 * time.Second,
		KillWindow:  20 * time.Second,
		SignalQueue: 32,
	}
}

// ErrClosed is returned by Open once the Connection has been closed. Send
// reports the same condition by returning false.
var ErrClosed = errors.New("conn: closed")

// Stats snapshots connection-level counters.
type Stats struct {
	Epoch         uint64
	RetryAttempts uint64
	State         State
}
