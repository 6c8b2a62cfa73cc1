package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/locar77i/wirekrak/internal/ring"
	"github.com/locar77i/wirekrak/internal/wirekrakmetrics"
)

const assemblyScratchSize = 8 * 1024

// Transport owns exactly one WebSocket connection. Open attempts a single
// upgrade with no retries of its own — Connection owns the retry policy.
// A dedicated goroutine runs the blocking receive loop; every other method
// is safe to call from the session's poll loop.
type Transport struct {
	cfg    Config
	logger *slog.Logger
	m      *wirekrakmetrics.Metrics

	conn    *websocket.Conn
	writeMu sync.Mutex

	ring *ring.Ring

	closeOnce   sync.Once
	closeSignal chan struct{}
	closed      atomic.Bool

	lastActivityNs atomic.Int64

	bytesRx        atomic.Uint64
	messagesRx     atomic.Uint64
	fragmentsTotal atomic.Uint64
}

// New creates an unopened Transport. metrics may be nil.
func New(cfg Config, logger *slog.Logger, m *wirekrakmetrics.Metrics) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	capacity := cfg.RingCapacity
	if capacity == 0 {
		capacity = ring.DefaultCapacity
	}
	return &Transport{
		cfg:         cfg,
		logger:      logger,
		m:           m,
		ring:        ring.New(capacity),
		closeSignal: make(chan struct{}),
	}
}

// Open performs exactly one WebSocket upgrade attempt and, on success,
// starts the receive goroutine. Returns ErrAlreadyClosed if this Transport
// was already closed, or a wrapped ErrOpenFailed on any dial failure.
func (t *Transport) Open(ctx context.Context) error {
	if t.closed.Load() {
		return ErrAlreadyClosed
	}

	dialer := websocket.Dialer{HandshakeTimeout: t.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, t.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	t.conn = conn
	t.lastActivityNs.Store(time.Now().UnixNano())

	conn.SetPingHandler(func(data string) error {
		t.lastActivityNs.Store(time.Now().UnixNano())
		t.writeMu.Lock()
		defer t.writeMu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	conn.SetPongHandler(func(string) error {
		t.lastActivityNs.Store(time.Now().UnixNano())
		return nil
	})

	go t.receiveLoop()

	return nil
}

// Send synchronously writes data as a single text frame. Returns false on
// any error, including "not open" and write-deadline timeouts; the caller
// never blocks beyond WriteTimeout.
func (t *Transport) Send(data []byte) bool {
	if t.conn == nil || t.closed.Load() {
		return false
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout)); err != nil {
		return false
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.logger.Debug("transport send failed", "error", err)
		return false
	}
	return true
}

// Close is idempotent and guarantees the close signal fires exactly once,
// regardless of whether it is triggered here, by a server close frame, or
// by a receive-loop I/O error.
func (t *Transport) Close() {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		if t.conn != nil {
			t.writeMu.Lock()
			_ = t.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			t.writeMu.Unlock()
			_ = t.conn.Close()
		}
		close(t.closeSignal)
	})
}

// CloseSignal returns a channel that is closed exactly once, when this
// Transport transitions to closed for any reason.
func (t *Transport) CloseSignal() <-chan struct{} {
	return t.closeSignal
}

// PeekMessage returns the oldest unreleased message block, or false if none
// is queued. Valid only until ReleaseMessage is called.
func (t *Transport) PeekMessage() (ring.MessageBlock, bool) {
	return t.ring.Peek()
}

// ReleaseMessage releases the block last returned by PeekMessage.
func (t *Transport) ReleaseMessage() {
	t.ring.Release()
}

// LastActivityNs returns the Unix nanosecond timestamp of the most recent
// inbound traffic: an assembled message, a ping, or a pong.
func (t *Transport) LastActivityNs() int64 {
	return t.lastActivityNs.Load()
}

// Idle reports whether the consumer ring currently holds no messages.
func (t *Transport) Idle() bool {
	return t.ring.Len() == 0
}

// Stats snapshots the transport's telemetry counters.
func (t *Transport) Stats() Stats {
	return Stats{
		BytesRx:        t.bytesRx.Load(),
		MessagesRx:     t.messagesRx.Load(),
		FragmentsTotal: t.fragmentsTotal.Load(),
		RingDropped:    t.ring.Dropped(),
	}
}

// receiveLoop is the transport's one dedicated goroutine. It blocks on
// NextReader, reassembles fragments, and publishes completed messages into
// the ring. Any error — including a server close frame — closes the
// transport and returns.
func (t *Transport) receiveLoop() {
	for {
		_, r, err := t.conn.NextReader()
		if err != nil {
			t.Close()
			return
		}

		start := time.Now()
		data, fragments, err := assemble(r)
		if err != nil {
			t.Close()
			return
		}

		t.lastActivityNs.Store(time.Now().UnixNano())
		t.bytesRx.Add(uint64(len(data)))
		t.messagesRx.Add(1)
		t.fragmentsTotal.Add(uint64(fragments))

		if t.m != nil {
			t.m.BytesReceivedTotal.Add(float64(len(data)))
			t.m.MessagesReceivedTotal.Inc()
			t.m.FragmentsTotal.Add(float64(fragments))
			t.m.AssemblyDuration.Observe(time.Since(start).Seconds())
		}

		if !t.ring.Push(ring.MessageBlock{Data: data}) {
			t.logger.Warn("message ring full, dropping newest message")
			if t.m != nil {
				t.m.RingDroppedTotal.Inc()
			}
		}
	}
}

// assemble drains r into a single contiguous buffer, counting the number of
// underlying Read calls that returned data. gorilla/websocket's NextReader
// already hides WS-level frame boundaries for the common case, so fragments
// here approximates (rather than exactly counts) server-side framing — a
// single Read-to-EOF is the zero-copy-equivalent fast path described for
// single-frame messages.
func assemble(r io.Reader) ([]byte, int, error) {
	buf := make([]byte, assemblyScratchSize)
	var assembled []byte
	fragments := 0

	for {
		n, err := r.Read(buf)
		if n > 0 {
			fragments++
			assembled = append(assembled, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fragments, err
		}
	}
	if fragments == 0 {
		fragments = 1
	}
	return assembled, fragments, nil
}
