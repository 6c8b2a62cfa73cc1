package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/locar77i/wirekrak/internal/channel"
	"github.com/locar77i/wirekrak/internal/conn"
	"github.com/locar77i/wirekrak/internal/replay"
	"github.com/locar77i/wirekrak/internal/ring"
	"github.com/locar77i/wirekrak/internal/symbol"
	"github.com/locar77i/wirekrak/internal/wire"
	"github.com/locar77i/wirekrak/internal/wirekrakmetrics"
)

// replayRequest bundles one acknowledged request with the callback the user
// originally supplied, so a reconnect replay can restore both: the wire
// request is re-encoded and re-sent, and the callback is re-registered in
// the dispatcher under the same req_id once the table hands it back.
type replayRequest struct {
	req      wire.Request
	callback Callback
}

// channelState is one data channel's subscription bookkeeping: the pending/
// active state machine, the acknowledged-subscription replay store, and the
// live callback dispatcher.
type channelState struct {
	mgr  *channel.Manager
	tbl  *replay.Table[*replayRequest]
	disp *dispatcher
}

// Session orchestrates one Connection against the trade and book channels:
// minting req_ids, tracking pending/active/acknowledged subscriptions per
// channel, routing inbound messages to the right bookkeeping and the right
// user callback, and replaying acknowledged subscriptions verbatim after a
// reconnect.
type Session struct {
	logger *slog.Logger
	m      *wirekrakmetrics.Metrics

	connection *conn.Connection
	interner   *symbol.Interner
	sendPing   bool

	reqIDCounter atomic.Int64

	mu              sync.Mutex
	channels        map[wire.Channel]*channelState
	pendingRequests map[int64]*replayRequest
	observedEpoch   uint64

	pongFact      ring.Slot[wire.Pong]
	statusFact    ring.Slot[wire.StatusUpdate]
	rejectionFact ring.Slot[wire.RejectionNotice]

	signals chan Signal
	closed  atomic.Bool
}

// New creates an unopened Session. m may be nil.
func New(cfg Config, logger *slog.Logger, m *wirekrakmetrics.Metrics) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SignalQueue == 0 {
		cfg.SignalQueue = 32
	}

	s := &Session{
		logger:          logger,
		m:               m,
		connection:      conn.New(cfg.ConnConfig, logger, m),
		interner:        symbol.NewInterner(),
		sendPing:        cfg.SendPing,
		pendingRequests: make(map[int64]*replayRequest),
		signals:         make(chan Signal, cfg.SignalQueue),
	}
	s.channels = map[wire.Channel]*channelState{
		wire.ChannelTrade: newChannelState(logger),
		wire.ChannelBook:  newChannelState(logger),
	}
	return s
}

func newChannelState(logger *slog.Logger) *channelState {
	return &channelState{
		mgr:  channel.NewManager(logger),
		tbl:  replay.NewTable[*replayRequest](logger),
		disp: newDispatcher(),
	}
}

// Connect makes one dial attempt on the underlying Connection.
func (s *Session) Connect(ctx context.Context) error {
	return s.connection.Open(ctx)
}

// Subscribe mints a fresh req_id, filters symbols per the channel's
// idempotency rules, registers the callback, and sends the request. Returns
// InvalidReqID if every symbol was already active or already pending — the
// caller's req_id is then unused and may be discarded.
func (s *Session) Subscribe(req wire.Request, callback Callback) (int64, error) {
	if s.closed.Load() {
		return InvalidReqID, ErrClosed
	}
	cs, ok := s.channels[req.Channel()]
	if !ok {
		return InvalidReqID, ErrUnsupportedChannel
	}
	names := req.Symbols()
	if len(names) == 0 {
		return InvalidReqID, wire.ErrEmptySymbols
	}

	ids := s.internAll(names)
	reqID := s.reqIDCounter.Add(1)
	req.SetReqID(reqID)

	added := cs.mgr.RegisterSubscription(ids, reqID)
	if len(added) == 0 {
		return InvalidReqID, nil
	}

	rr := &replayRequest{req: req, callback: callback}
	s.mu.Lock()
	s.pendingRequests[reqID] = rr
	s.mu.Unlock()
	cs.disp.register(reqID, s.lookupAll(added), callback)

	s.send(req)
	return reqID, nil
}

// Unsubscribe mints a fresh req_id, filters symbols to those currently
// active, and sends the request. Returns InvalidReqID if no symbol was
// active.
func (s *Session) Unsubscribe(req wire.Request) (int64, error) {
	if s.closed.Load() {
		return InvalidReqID, ErrClosed
	}
	cs, ok := s.channels[req.Channel()]
	if !ok {
		return InvalidReqID, ErrUnsupportedChannel
	}
	names := req.Symbols()
	if len(names) == 0 {
		return InvalidReqID, wire.ErrEmptySymbols
	}

	ids := s.internAll(names)
	reqID := s.reqIDCounter.Add(1)
	req.SetReqID(reqID)

	moved := cs.mgr.RegisterUnsubscription(ids, reqID)
	if len(moved) == 0 {
		return InvalidReqID, nil
	}

	s.send(req)
	return reqID, nil
}

// Poll drains the connection's signals and inbound messages. It must be
// called regularly from a single "session thread"; it never blocks.
func (s *Session) Poll() {
	if s.closed.Load() {
		return
	}
	s.connection.Poll()
	s.drainConnectionSignals()
	s.drainMessages()
}

// PollSignal pulls at most one queued session-level signal.
func (s *Session) PollSignal() (Signal, bool) {
	select {
	case sig := <-s.signals:
		return sig, true
	default:
		return 0, false
	}
}

// IsIdle reports whether there is nothing left for Poll to do.
func (s *Session) IsIdle() bool {
	if len(s.signals) > 0 {
		return false
	}
	if !s.connection.IsIdle() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cs := range s.channels {
		if cs.mgr.PendingCount() > 0 {
			return false
		}
	}
	return true
}

// TransportEpoch returns the current transport epoch, as observed by the
// underlying Connection.
func (s *Session) TransportEpoch() uint64 {
	return s.connection.Epoch()
}

// ActiveSymbols returns the currently active symbol names for ch, or nil if
// ch is not a channel this Session manages.
func (s *Session) ActiveSymbols(ch wire.Channel) []string {
	cs, ok := s.channels[ch]
	if !ok {
		return nil
	}
	ids := cs.mgr.ActiveSymbols()
	return s.lookupAll(ids)
}

// LastPong returns the most recently observed pong fact.
func (s *Session) LastPong() (wire.Pong, bool) { return s.pongFact.Load() }

// LastStatus returns the most recently observed status update fact.
func (s *Session) LastStatus() (wire.StatusUpdate, bool) { return s.statusFact.Load() }

// LastRejection returns the most recently observed rejection notice fact.
func (s *Session) LastRejection() (wire.RejectionNotice, bool) { return s.rejectionFact.Load() }

// Close tears down the underlying Connection. Idempotent.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.connection.Close()
}

func (s *Session) internAll(names []string) []symbol.ID {
	ids := make([]symbol.ID, len(names))
	for i, nm := range names {
		ids[i] = s.interner.Intern(symbol.Symbol(nm))
	}
	return ids
}

func (s *Session) lookupAll(ids []symbol.ID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if nm, ok := s.interner.Lookup(id); ok {
			names = append(names, string(nm))
		}
	}
	return names
}

func (s *Session) send(req wire.Request) {
	buf := make([]byte, req.MaxEncodedLen())
	n, err := req.Encode(buf)
	if err != nil {
		s.logger.Error("failed to encode outbound request", "method", req.Method(), "channel", req.Channel(), "error", err)
		return
	}
	if !s.connection.Send(buf[:n]) {
		s.logger.Debug("outbound request not delivered, connection not open", "method", req.Method(), "channel", req.Channel(), "req_id", req.ReqID())
	}
}

func (s *Session) enqueueSignal(sig Signal) {
	select {
	case s.signals <- sig:
	default:
		s.logger.Warn("session signal queue full, dropping signal", "signal", sig.String())
	}
}
