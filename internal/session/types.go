package session

import (
	"errors"

	"github.com/locar77i/wirekrak/internal/conn"
)

// Signal is a level-triggered, exactly-once-per-transition event drained by
// PollSignal. Unlike conn.Signal these describe session-level facts: what a
// caller actually needs to react to, not the connection's internal retry
// bookkeeping.
type Signal int

const (
	SignalConnected Signal = iota
	SignalDisconnected
	SignalPongObserved
	SignalStatusChanged
	SignalRejectionObserved
	SignalLivenessWarning
)

func (s Signal) String() string {
	switch s {
	case SignalConnected:
		return "connected"
	case SignalDisconnected:
		return "disconnected"
	case SignalPongObserved:
		return "pong_observed"
	case SignalStatusChanged:
		return "status_changed"
	case SignalRejectionObserved:
		return "rejection_observed"
	case SignalLivenessWarning:
		return "liveness_warning"
	default:
		return "unknown"
	}
}

// InvalidReqID is returned by Subscribe/Unsubscribe when the call was a
// no-op (every requested symbol was already active or already pending) and
// sent nothing; the req_id drawn for that call is discarded.
const InvalidReqID int64 = 0

// Config configures a Session's Connection and signal queue depth.
type Config struct {
	URL         string
	ConnConfig  conn.Config
	SignalQueue int
	SendPing    bool // issue an application-level ping on LivenessThreatened
}

// DefaultConfig returns the documented connection defaults with pings
// enabled, using url as both the dial target and the connection config seed.
func DefaultConfig(url string) Config {
	return Config{
		URL:         url,
		ConnConfig:  conn.DefaultConfig(url),
		SignalQueue: 32,
		SendPing:    true,
	}
}

var (
	// ErrUnsupportedChannel is returned by Subscribe/Unsubscribe for a
	// request whose Channel() this Session does not manage.
	ErrUnsupportedChannel = errors.New("session: unsupported channel")
	// ErrClosed is returned once the Session has been closed.
	ErrClosed = errors.New("session: closed")
)
