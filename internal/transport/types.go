package transport

import (
	"errors"
	"time"
)

var (
	// ErrOpenFailed wraps a dial/TLS/HTTP-upgrade failure from Open.
	ErrOpenFailed = errors.New("transport: open failed")
	// ErrNotOpen names the not-yet-opened condition. No function in this
	// package returns it: Send reports that case by returning false.
	ErrNotOpen = errors.New("transport: not open")
	// ErrAlreadyClosed is returned by Open when called on a closed transport.
	ErrAlreadyClosed = errors.New("transport: already closed")
)

// Config configures a single WebSocket dial.
type Config struct {
	URL              string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	RingCapacity     int
}

// DefaultConfig returns sane dial/write timeouts and the documented ring
// capacity for the given URL.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		RingCapacity:     1024,
	}
}

// Stats snapshots the transport's telemetry counters.
type Stats struct {
	BytesRx        uint64
	MessagesRx     uint64
	FragmentsTotal uint64
	RingDropped    uint64
}
