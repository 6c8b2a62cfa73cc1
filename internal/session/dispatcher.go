package session

import (
	"sync"

	"github.com/locar77i/wirekrak/internal/wire"
)

// Callback is invoked synchronously, from Poll, once per matching inbound
// data message. kind is always wire.KindData; payload is a single-symbol
// wire.TradeMessage or wire.BookMessage.
type Callback func(kind wire.Kind, payload any)

// dispatchEntry is one registered subscription's callback, tracked by the
// remaining symbols it still owns so a partial rejection or unsubscribe can
// shrink it without disturbing sibling symbols registered under the same
// req_id.
type dispatchEntry struct {
	reqID    int64
	symbols  map[string]struct{}
	callback Callback
}

// dispatcher routes inbound data to user callbacks by symbol, and retires
// entries by req_id as ACKs/rejections resolve them. Registration order is
// preserved per symbol so multiple overlapping subscriptions fire in the
// order they were registered.
type dispatcher struct {
	mu       sync.Mutex
	byReqID  map[int64]*dispatchEntry
	bySymbol map[string][]*dispatchEntry
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		byReqID:  make(map[int64]*dispatchEntry),
		bySymbol: make(map[string][]*dispatchEntry),
	}
}

// register adds a new entry under reqID, invoked for every symbol in symbols.
func (d *dispatcher) register(reqID int64, symbols []string, cb Callback) {
	if cb == nil || len(symbols) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	e := &dispatchEntry{reqID: reqID, symbols: set, callback: cb}
	d.byReqID[reqID] = e
	for _, s := range symbols {
		d.bySymbol[s] = append(d.bySymbol[s], e)
	}
}

// removeSymbol detaches sym from whichever entry owns it (if any), fully
// retiring that entry once its last symbol is gone. Used for a failed
// subscribe ACK or a rejection naming exactly one symbol under reqID.
func (d *dispatcher) removeSymbol(reqID int64, sym string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.byReqID[reqID]
	if !ok {
		return
	}
	if _, owns := e.symbols[sym]; !owns {
		return
	}
	delete(e.symbols, sym)
	d.detachFromSymbol(sym, e)
	if len(e.symbols) == 0 {
		delete(d.byReqID, reqID)
	}
}

// detachSymbol removes sym from whichever entry currently owns it in
// bySymbol, regardless of that entry's req_id, fully retiring the entry once
// its last symbol is gone. Used when the caller only knows the symbol, not
// the req_id that originally registered it — an unsubscribe ACK carries the
// unsubscribe's own freshly-minted req_id, never the subscribe's, so
// removeSymbol's req_id lookup would never match.
func (d *dispatcher) detachSymbol(sym string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range append([]*dispatchEntry(nil), d.bySymbol[sym]...) {
		delete(e.symbols, sym)
		d.detachFromSymbol(sym, e)
		if len(e.symbols) == 0 {
			delete(d.byReqID, e.reqID)
		}
	}
}

// removeByReqID fully retires the entry for reqID regardless of how many
// symbols it still owns. Used for whole-request drops (a channel-less
// rejection with no symbol).
func (d *dispatcher) removeByReqID(reqID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.byReqID[reqID]
	if !ok {
		return
	}
	for sym := range e.symbols {
		d.detachFromSymbol(sym, e)
	}
	delete(d.byReqID, reqID)
}

// dispatch invokes every callback currently registered for sym, in
// registration order.
func (d *dispatcher) dispatch(sym string, kind wire.Kind, payload any) {
	d.mu.Lock()
	entries := append([]*dispatchEntry(nil), d.bySymbol[sym]...)
	d.mu.Unlock()

	for _, e := range entries {
		e.callback(kind, payload)
	}
}

// clear retires every entry, used on a fresh reconnect epoch before replay
// re-registers the surviving acknowledged subscriptions.
func (d *dispatcher) clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byReqID = make(map[int64]*dispatchEntry)
	d.bySymbol = make(map[string][]*dispatchEntry)
}

// detachFromSymbol removes e from bySymbol[sym]; called while holding mu.
func (d *dispatcher) detachFromSymbol(sym string, e *dispatchEntry) {
	list := d.bySymbol[sym]
	for i, cand := range list {
		if cand == e {
			d.bySymbol[sym] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(d.bySymbol[sym]) == 0 {
		delete(d.bySymbol, sym)
	}
}
