package conn

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/locar77i/wirekrak/internal/ring"
	"github.com/locar77i/wirekrak/internal/transport"
	"github.com/locar77i/wirekrak/internal/wirekrakmetrics"
)

// Connection wraps a transport.Transport with the retry policy, liveness
// watchdog, and signal queue described in the connection design. Open and
// Send are callable from the caller's thread; Poll/PollSignal must be
// called regularly from the same "session thread" and never block.
type Connection struct {
	cfg    Config
	logger *slog.Logger
	m      *wirekrakmetrics.Metrics

	mu        sync.Mutex
	state     State
	epoch     uint64
	tr        *transport.Transport
	retryCancel context.CancelFunc
	warned    bool // LivenessThreatened already emitted for the current silence epoch

	retryAttempts    atomic.Uint64
	pendingTransport chan *transport.Transport
	signals          chan Signal
	closed           atomic.Bool
}

// New creates an unopened Connection.
func New(cfg Config, logger *slog.Logger, m *wirekrakmetrics.Metrics) *Connection {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SignalQueue == 0 {
		cfg.SignalQueue = 32
	}
	return &Connection{
		cfg:              cfg,
		logger:           logger,
		m:                m,
		pendingTransport: make(chan *transport.Transport, 1),
		signals:          make(chan Signal, cfg.SignalQueue),
	}
}

// Open makes exactly one dial attempt. On success the Connection becomes
// Connected and epoch increments. On failure the error is returned directly
// to the caller — the Connection stays Idle, since no "disconnect" ever
// occurred to justify starting the retry loop. Every later failure,
// by contrast, is internal and surfaces only as a signal.
func (c *Connection) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = Connecting
	c.mu.Unlock()

	tr := transport.New(transport.DefaultConfig(c.cfg.URL), c.logger, c.m)
	if err := tr.Open(ctx); err != nil {
		c.mu.Lock()
		c.state = Idle
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.tr = tr
	c.state = Connected
	c.epoch++
	c.warned = false
	c.retryAttempts.Store(0)
	c.mu.Unlock()

	if c.m != nil {
		c.m.TransportEpoch.Set(float64(c.Epoch()))
	}
	c.enqueueSignal(SignalConnected)
	go c.watchClose(tr)
	return nil
}

// Send forwards data to the transport. Valid only while Connected.
func (c *Connection) Send(data []byte) bool {
	c.mu.Lock()
	tr := c.tr
	connected := c.state == Connected
	c.mu.Unlock()
	if !connected || tr == nil {
		return false
	}
	return tr.Send(data)
}

// Poll drains the outcome of any in-flight reconnect and runs the liveness
// check. It never blocks and never performs a syscall: reconnect dialing
// itself happens on a dedicated background goroutine per disconnect
// episode; Poll only observes its result.
func (c *Connection) Poll() {
	select {
	case tr := <-c.pendingTransport:
		c.mu.Lock()
		c.tr = tr
		c.state = Connected
		c.epoch++
		c.warned = false
		c.retryAttempts.Store(0)
		c.mu.Unlock()
		if c.m != nil {
			c.m.TransportEpoch.Set(float64(c.Epoch()))
		}
		c.enqueueSignal(SignalConnected)
		go c.watchClose(tr)
	default:
	}

	c.mu.Lock()
	tr := c.tr
	connected := c.state == Connected
	warned := c.warned
	c.mu.Unlock()
	if !connected || tr == nil {
		return
	}

	elapsed := time.Duration(time.Now().UnixNano()-tr.LastActivityNs()) * time.Nanosecond
	if elapsed >= c.cfg.KillWindow {
		c.logger.Warn("liveness kill window exceeded, forcing reconnect", "elapsed", elapsed)
		tr.Close() // watchClose observes this and starts the retry episode
		return
	}
	if elapsed >= c.cfg.WarnWindow && !warned {
		c.mu.Lock()
		c.warned = true
		c.mu.Unlock()
		if c.m != nil {
			c.m.LivenessWarnings.Inc()
		}
		c.enqueueSignal(SignalLivenessThreatened)
	}
}

// PollSignal pulls at most one queued signal. Returns false if none is queued.
func (c *Connection) PollSignal() (Signal, bool) {
	select {
	case s := <-c.signals:
		return s, true
	default:
		return 0, false
	}
}

// IsIdle reports whether there is nothing left for Poll to do: no queued
// signals, no buffered messages, and no reconnect in flight.
func (c *Connection) IsIdle() bool {
	c.mu.Lock()
	tr := c.tr
	state := c.state
	c.mu.Unlock()

	if len(c.signals) > 0 {
		return false
	}
	if state == RetryScheduled || state == Connecting {
		return false
	}
	if tr != nil && !tr.Idle() {
		return false
	}
	return true
}

// Close transitions to Closed, cancels any pending retry episode, and
// closes the underlying transport if one is open. Idempotent.
func (c *Connection) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.mu.Lock()
	c.state = Closed
	tr := c.tr
	cancel := c.retryCancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if tr != nil {
		tr.Close()
	}
}

// ForceClose tears down the current transport without changing the
// Connection's own lifecycle state, letting tests (and operators) exercise
// the reconnect path on demand.
func (c *Connection) ForceClose() {
	c.mu.Lock()
	tr := c.tr
	c.mu.Unlock()
	if tr != nil {
		tr.Close()
	}
}

// PeekMessage returns the oldest unreleased inbound message, or false if
// none is queued or no transport is currently attached.
func (c *Connection) PeekMessage() (ring.MessageBlock, bool) {
	c.mu.Lock()
	tr := c.tr
	c.mu.Unlock()
	if tr == nil {
		return ring.MessageBlock{}, false
	}
	return tr.PeekMessage()
}

// ReleaseMessage releases the block last returned by PeekMessage.
func (c *Connection) ReleaseMessage() {
	c.mu.Lock()
	tr := c.tr
	c.mu.Unlock()
	if tr != nil {
		tr.ReleaseMessage()
	}
}

// Epoch returns the current transport epoch.
func (c *Connection) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// State returns the current connection state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats snapshots connection-level counters.
func (c *Connection) Stats() Stats {
	return Stats{
		Epoch:         c.Epoch(),
		RetryAttempts: c.retryAttempts.Load(),
		State:         c.State(),
	}
}

// watchClose waits for tr's close signal and, unless this Connection has
// itself been closed in the meantime, starts a reconnect episode.
func (c *Connection) watchClose(tr *transport.Transport) {
	<-tr.CloseSignal()

	if c.closed.Load() {
		return
	}

	c.mu.Lock()
	if c.tr == tr {
		c.state = Disconnected
	}
	c.mu.Unlock()
	c.enqueueSignal(SignalDisconnected)

	c.startReconnect()
}

// startReconnect runs exactly one background redial episode: an immediate
// first attempt, then capped-exponential-backoff-with-jitter attempts
// until success or Close cancels the context.
func (c *Connection) startReconnect() {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.state = RetryScheduled
	c.retryCancel = cancel
	c.mu.Unlock()

	c.enqueueSignal(SignalRetryImmediate)

	go func() {
		opts := c.cfg.Policy.RetryOptions(ctx, func(attempt uint, err error) {
			c.mu.Lock()
			if !c.closed.Load() {
				c.state = RetryScheduled
			}
			c.mu.Unlock()
			c.retryAttempts.Add(1)
			if c.m != nil {
				c.m.RetryAttemptsTotal.Inc()
			}
			c.enqueueSignal(SignalRetryScheduled)
		})

		_ = retry.Do(func() error {
			c.mu.Lock()
			closed := c.closed.Load()
			if !closed {
				c.state = Connecting
			}
			c.mu.Unlock()
			if closed {
				return nil
			}
			tr := transport.New(transport.DefaultConfig(c.cfg.URL), c.logger, c.m)
			if err := tr.Open(ctx); err != nil {
				return err
			}
			select {
			case c.pendingTransport <- tr:
				return nil
			case <-ctx.Done():
				tr.Close()
				return nil
			}
		}, opts...)
	}()
}

// enqueueSignal is a non-blocking publish; when the queue is full the new
// signal is dropped and logged, since poll() must never block here.
func (c *Connection) enqueueSignal(s Signal) {
	select {
	case c.signals <- s:
	default:
		c.logger.Warn("signal queue full, dropping signal", "signal", s.String())
	}
}
