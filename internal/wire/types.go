package wire

import "errors"

// Channel is a Kraken v2 logical feed name.
type Channel string

const (
	ChannelTrade     Channel = "trade"
	ChannelBook      Channel = "book"
	ChannelTicker    Channel = "ticker"
	ChannelStatus    Channel = "status"
	ChannelHeartbeat Channel = "heartbeat"
)

func (c Channel) isData() bool {
	switch c {
	case ChannelTrade, ChannelBook, ChannelTicker:
		return true
	default:
		return false
	}
}

// Method is a Kraken v2 outbound verb.
type Method string

const (
	MethodSubscribe   Method = "subscribe"
	MethodUnsubscribe Method = "unsubscribe"
	MethodPing        Method = "ping"
	MethodPong        Method = "pong"
)

// ValidDepths enumerates the book depths Kraken v2 accepts.
var ValidDepths = [...]int{10, 25, 100, 500, 1000}

// ValidDepth reports whether d is one of the accepted book depths.
func ValidDepth(d int) bool {
	for _, v := range ValidDepths {
		if d == v {
			return true
		}
	}
	return false
}

var (
	// ErrEmptySymbols is returned when a request is constructed with no symbols.
	ErrEmptySymbols = errors.New("wire: symbols must be non-empty")
	// ErrInvalidDepth is returned when a book request uses an unsupported depth.
	ErrInvalidDepth = errors.New("wire: depth must be one of 10, 25, 100, 500, 1000")
	// ErrBufferTooSmall is returned by Encode when the caller's buffer is undersized.
	ErrBufferTooSmall = errors.New("wire: buffer too small")
	// ErrUnrecognizedMessage is returned by Classify when raw matches none
	// of the known inbound shapes. Callers discard silently per the parse
	// error policy; this is not itself a protocol violation.
	ErrUnrecognizedMessage = errors.New("wire: unrecognized message shape")
)
