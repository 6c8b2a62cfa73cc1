package session

import (
	"github.com/locar77i/wirekrak/internal/conn"
	"github.com/locar77i/wirekrak/internal/symbol"
	"github.com/locar77i/wirekrak/internal/wire"
)

// drainConnectionSignals applies every queued conn.Signal: a fresh epoch
// triggers replay, liveness pressure triggers an application ping, and each
// is translated into the session-level signal a caller actually needs.
func (s *Session) drainConnectionSignals() {
	for {
		sig, ok := s.connection.PollSignal()
		if !ok {
			return
		}
		switch sig {
		case conn.SignalConnected:
			epoch := s.connection.Epoch()
			s.mu.Lock()
			isNewEpoch := epoch > s.observedEpoch
			if isNewEpoch {
				s.observedEpoch = epoch
			}
			s.mu.Unlock()
			if isNewEpoch {
				s.replayOnReconnect()
			}
			s.enqueueSignal(SignalConnected)
		case conn.SignalDisconnected:
			s.enqueueSignal(SignalDisconnected)
		case conn.SignalLivenessThreatened:
			s.maybeSendPing()
			s.enqueueSignal(SignalLivenessWarning)
		case conn.SignalRetryImmediate, conn.SignalRetryScheduled:
			// Internal reconnect bookkeeping only; nothing a caller needs to see.
		}
	}
}

// drainMessages peeks and classifies every buffered inbound message.
func (s *Session) drainMessages() {
	for {
		mb, ok := s.connection.PeekMessage()
		if !ok {
			return
		}
		s.routeMessage(mb.Data)
		s.connection.ReleaseMessage()
	}
}

// routeMessage classifies raw and dispatches it per the message's kind.
// Anything Classify fails to recognize is discarded silently: a malformed
// message must never crash the session or corrupt its bookkeeping.
func (s *Session) routeMessage(raw []byte) {
	kind, payload, err := wire.Classify(raw)
	if err != nil {
		s.logger.Debug("discarding unrecognized inbound message", "error", err)
		return
	}
	switch kind {
	case wire.KindAck:
		s.handleAck(payload.(wire.Ack))
	case wire.KindStatus:
		s.statusFact.Store(payload.(wire.StatusUpdate))
		s.enqueueSignal(SignalStatusChanged)
	case wire.KindData:
		s.handleData(payload)
	case wire.KindPong:
		s.pongFact.Store(payload.(wire.Pong))
		s.enqueueSignal(SignalPongObserved)
	case wire.KindRejection:
		s.handleRejection(payload.(wire.RejectionNotice))
	}
}

// handleAck reconciles a subscribe/unsubscribe ACK against the owning
// channel's Manager, Replay Database, and dispatcher.
func (s *Session) handleAck(ack wire.Ack) {
	cs, ok := s.channels[ack.Result.Channel]
	if !ok {
		return
	}
	sym := s.interner.Intern(symbol.Symbol(ack.Result.Symbol))

	if s.m != nil {
		outcome := "success"
		if !ack.Success {
			outcome = "failure"
		}
		s.m.AcksTotal.WithLabelValues(string(ack.Method), outcome).Inc()
	}

	switch ack.Method {
	case wire.MethodSubscribe:
		if !cs.mgr.ProcessSubscribeAck(ack.ReqID, sym, ack.Success) {
			s.logger.Warn("subscribe ack for unknown (req_id, symbol)", "req_id", ack.ReqID, "symbol", ack.Result.Symbol)
			return
		}
		if ack.Success {
			s.mu.Lock()
			rr, hasPending := s.pendingRequests[ack.ReqID]
			s.mu.Unlock()
			if hasPending {
				cs.tbl.Add(rr, []symbol.ID{sym}, ack.ReqID)
			}
		} else {
			cs.disp.removeSymbol(ack.ReqID, ack.Result.Symbol)
		}
	case wire.MethodUnsubscribe:
		if !cs.mgr.ProcessUnsubscribeAck(ack.ReqID, sym, ack.Success) {
			s.logger.Warn("unsubscribe ack for unknown (req_id, symbol)", "req_id", ack.ReqID, "symbol", ack.Result.Symbol)
			return
		}
		// The unsubscribe request minted its own req_id, never the
		// subscribe's, so the dispatch entry can only be found by symbol.
		// On failure the symbol goes back to active (see ProcessUnsubscribeAck)
		// and its callback must stay registered.
		if ack.Success {
			cs.tbl.EraseSymbol(sym)
			cs.disp.detachSymbol(ack.Result.Symbol)
		}
	}
}

// handleRejection reconciles a channel-less rejection notice, which also
// covers a failure ACK that Classify routed here for lack of a symbol. With
// no req_id there is nothing to reconcile beyond publishing the fact. With
// a req_id but no symbol, every symbol still queued under that req_id
// across every channel is dropped, since the channel itself isn't named.
func (s *Session) handleRejection(rej wire.RejectionNotice) {
	s.rejectionFact.Store(rej)
	s.enqueueSignal(SignalRejectionObserved)
	if s.m != nil {
		s.m.RejectionsTotal.Inc()
	}

	if !rej.HasReqID {
		return
	}

	if rej.HasSymbol {
		sym := s.interner.Intern(symbol.Symbol(rej.Symbol))
		for _, cs := range s.channels {
			if cs.mgr.TryProcessRejection(rej.ReqID, sym) {
				cs.tbl.TryProcessRejection(rej.ReqID, sym)
				cs.disp.removeSymbol(rej.ReqID, rej.Symbol)
				return
			}
		}
		return
	}

	for _, cs := range s.channels {
		removed := cs.mgr.DropRequest(rej.ReqID)
		for _, sym := range removed {
			cs.tbl.TryProcessRejection(rej.ReqID, sym)
		}
		cs.disp.removeByReqID(rej.ReqID)
	}
}

// handleData fans a parsed trade/book message out to one dispatch call per
// symbol, so each callback sees exactly the slice of data it subscribed to.
// A book update with neither bids nor asks is treated as malformed and
// dropped: no callback fires, no bookkeeping changes.
func (s *Session) handleData(payload any) {
	switch msg := payload.(type) {
	case wire.TradeMessage:
		cs := s.channels[wire.ChannelTrade]
		for _, entry := range msg.Data {
			single := wire.TradeMessage{Type: msg.Type, Data: []wire.TradeEntry{entry}}
			cs.disp.dispatch(entry.Symbol, wire.KindData, single)
		}
	case wire.BookMessage:
		cs := s.channels[wire.ChannelBook]
		for _, d := range msg.Data {
			if len(d.Bids) == 0 && len(d.Asks) == 0 {
				s.logger.Debug("discarding book entry with no levels", "symbol", d.Symbol, "type", msg.Type)
				continue
			}
			single := wire.BookMessage{Type: msg.Type, Data: []wire.BookData{d}}
			cs.disp.dispatch(d.Symbol, wire.KindData, single)
		}
	}
}

// maybeSendPing issues an application-level ping when the liveness watchdog
// reports pressure, if this Session is configured to do so.
func (s *Session) maybeSendPing() {
	if !s.sendPing {
		return
	}
	req := wire.NewPingRequest()
	req.SetReqID(s.reqIDCounter.Add(1))
	s.send(req)
}

// replayOnReconnect clears every channel's pending/active state and live
// dispatcher, then re-issues every acknowledged subscription the Replay
// Database drained, reusing each request's original req_id and restoring
// its original callback. Fires at most once per epoch: TakeSubscriptions
// only returns what has actually been acknowledged since the last drain.
func (s *Session) replayOnReconnect() {
	replayed := false
	for _, cs := range s.channels {
		cs.mgr.ClearAll()
		cs.disp.clear()

		subs := cs.tbl.TakeSubscriptions()
		for _, sub := range subs {
			replayed = true
			rr := sub.Request
			rr.req.SetReqID(sub.ReqID)
			// Re-send only the symbols still owned after rejections and
			// unsubscribes, not the request's original symbol list.
			names := s.lookupAll(sub.Symbols)
			switch r := rr.req.(type) {
			case *wire.TradeSubscribeRequest:
				r.Symbol = names
			case *wire.BookSubscribeRequest:
				r.Symbol = names
			}
			cs.mgr.RegisterSubscription(sub.Symbols, sub.ReqID)
			cs.disp.register(sub.ReqID, names, rr.callback)
			s.send(rr.req)
		}
	}
	if replayed && s.m != nil {
		s.m.ReplaysTotal.Inc()
	}
}
