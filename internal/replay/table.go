package replay

import (
	"log/slog"
	"sync"

	"github.com/locar77i/wirekrak/internal/symbol"
)

// Subscription is one acknowledged, replayable request: the original typed
// request (for re-encoding) plus the symbols currently owned under reqID.
// R is typically a wire.Request implementation.
type Subscription[R any] struct {
	ReqID   int64
	Symbols []symbol.ID
	Request R
}

// Table is the per-channel, req_id-keyed acknowledged-subscription store.
type Table[R any] struct {
	mu     sync.Mutex
	byReq  map[int64]*Subscription[R]
	owner  map[symbol.ID]int64 // symbol -> owning req_id
	logger *slog.Logger
}

// NewTable creates an empty Table.
func NewTable[R any](logger *slog.Logger) *Table[R] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table[R]{
		byReq:  make(map[int64]*Subscription[R]),
		owner:  make(map[symbol.ID]int64),
		logger: logger,
	}
}

// Add records symbols as acknowledged under reqID, using request as the
// replayable payload the first time reqID is seen. Symbols already owned
// by a different reqID are dropped (first-write-wins, logged); if every
// symbol is such a duplicate, the add is rejected outright and Add returns
// false. Returns the symbols actually (newly or already) recorded under
// reqID.
func (t *Table[R]) Add(request R, symbols []symbol.ID, reqID int64) ([]symbol.ID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var kept []symbol.ID
	for _, s := range symbols {
		if owner, ok := t.owner[s]; ok {
			if owner != reqID {
				t.logger.Warn("replay: dropping symbol already owned by another request",
					"symbol_id", s, "owner_req_id", owner, "requested_req_id", reqID)
				continue
			}
			kept = append(kept, s) // already owned by this reqID, idempotent
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return nil, false
	}

	sub, ok := t.byReq[reqID]
	if !ok {
		sub = &Subscription[R]{ReqID: reqID, Request: request}
		t.byReq[reqID] = sub
	}
	for _, s := range kept {
		if _, already := t.owner[s]; !already {
			sub.Symbols = append(sub.Symbols, s)
		}
		t.owner[s] = reqID
	}
	return kept, true
}

// TryProcessRejection removes sym from the subscription under reqID, if it
// is there, erasing the subscription entirely if it becomes empty. Returns
// whether a removal occurred.
func (t *Table[R]) TryProcessRejection(reqID int64, sym symbol.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	sub, ok := t.byReq[reqID]
	if !ok {
		return false
	}
	if !sub.owns(sym) {
		return false
	}
	sub.remove(sym)
	delete(t.owner, sym)
	if len(sub.Symbols) == 0 {
		delete(t.byReq, reqID)
	}
	return true
}

// EraseSymbol removes sym from whichever subscription owns it, erasing
// that subscription if it becomes empty. Used on a successful unsubscribe
// ACK.
func (t *Table[R]) EraseSymbol(sym symbol.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reqID, ok := t.owner[sym]
	if !ok {
		return
	}
	delete(t.owner, sym)
	if sub, ok := t.byReq[reqID]; ok {
		sub.remove(sym)
		if len(sub.Symbols) == 0 {
			delete(t.byReq, reqID)
		}
	}
}

// TakeSubscriptions moves out every stored subscription for replay and
// clears the table. Replay fires at most once per epoch: the caller drains
// this exactly once per reconnect.
func (t *Table[R]) TakeSubscriptions() []Subscription[R] {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Subscription[R], 0, len(t.byReq))
	for _, sub := range t.byReq {
		out = append(out, *sub)
	}
	t.byReq = make(map[int64]*Subscription[R])
	t.owner = make(map[symbol.ID]int64)
	return out
}

// Clear discards all stored subscriptions without returning them.
func (t *Table[R]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byReq = make(map[int64]*Subscription[R])
	t.owner = make(map[symbol.ID]int64)
}

// TotalRequests returns the number of distinct req_ids stored.
func (t *Table[R]) TotalRequests() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byReq)
}

// TotalSymbols returns the number of distinct symbols stored across all requests.
func (t *Table[R]) TotalSymbols() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.owner)
}

// ContainsSymbol reports whether sym is currently owned by any stored request.
func (t *Table[R]) ContainsSymbol(sym symbol.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.owner[sym]
	return ok
}

// CheckInvariants asserts that the sum of per-subscription symbol counts
// equals the size of the owner map. Intended for tests, not the hot path.
func (t *Table[R]) CheckInvariants() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0
	for _, sub := range t.byReq {
		total += len(sub.Symbols)
	}
	if total != len(t.owner) {
		return errInvariant
	}
	return nil
}

func (s *Subscription[R]) owns(sym symbol.ID) bool {
	for _, s2 := range s.Symbols {
		if s2 == sym {
			return true
		}
	}
	return false
}

func (s *Subscription[R]) remove(sym symbol.ID) {
	for i, s2 := range s.Symbols {
		if s2 == sym {
			s.Symbols = append(s.Symbols[:i], s.Symbols[i+1:]...)
			return
		}
	}
}
