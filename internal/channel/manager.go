package channel

import (
	"log/slog"
	"sync"

	"github.com/locar77i/wirekrak/internal/symbol"
)

// Manager owns one channel's subscription state: which symbols are active,
// which are awaiting a subscribe ACK, and which are awaiting an unsubscribe
// ACK. All operations are idempotent with respect to repeated calls
// describing the same intent.
type Manager struct {
	mu sync.Mutex

	active map[symbol.ID]struct{}

	pendingSubscribe      map[symbol.ID]int64
	pendingSubscribeByReq map[int64]map[symbol.ID]struct{}

	pendingUnsubscribe      map[symbol.ID]int64
	pendingUnsubscribeByReq map[int64]map[symbol.ID]struct{}

	logger *slog.Logger
}

// NewManager creates an empty Channel Manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		active:                  make(map[symbol.ID]struct{}),
		pendingSubscribe:        make(map[symbol.ID]int64),
		pendingSubscribeByReq:   make(map[int64]map[symbol.ID]struct{}),
		pendingUnsubscribe:      make(map[symbol.ID]int64),
		pendingUnsubscribeByReq: make(map[int64]map[symbol.ID]struct{}),
		logger:                  logger,
	}
}

// RegisterSubscription filters symbols per the idempotency rules and adds
// the survivors to pending_subscribe under reqID. Returns the symbols
// actually added; an empty result means reqID consumed nothing and the
// caller should recycle it.
func (m *Manager) RegisterSubscription(symbols []symbol.ID, reqID int64) []symbol.ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	var added []symbol.ID
	for _, s := range symbols {
		if _, ok := m.active[s]; ok {
			continue
		}
		if _, ok := m.pendingSubscribe[s]; ok {
			continue
		}
		if oldReq, ok := m.pendingUnsubscribe[s]; ok {
			m.cancelPendingUnsubscribe(oldReq, s)
			m.active[s] = struct{}{}
			continue
		}
		m.pendingSubscribe[s] = reqID
		if m.pendingSubscribeByReq[reqID] == nil {
			m.pendingSubscribeByReq[reqID] = make(map[symbol.ID]struct{})
		}
		m.pendingSubscribeByReq[reqID][s] = struct{}{}
		added = append(added, s)
	}
	return added
}

// RegisterUnsubscription filters symbols per the idempotency rules and
// moves the survivors from active to pending_unsubscribe under reqID.
// Returns the symbols actually moved.
func (m *Manager) RegisterUnsubscription(symbols []symbol.ID, reqID int64) []symbol.ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	var moved []symbol.ID
	for _, s := range symbols {
		if _, ok := m.active[s]; !ok {
			continue
		}
		if _, ok := m.pendingUnsubscribe[s]; ok {
			continue
		}
		delete(m.active, s)
		m.pendingUnsubscribe[s] = reqID
		if m.pendingUnsubscribeByReq[reqID] == nil {
			m.pendingUnsubscribeByReq[reqID] = make(map[symbol.ID]struct{})
		}
		m.pendingUnsubscribeByReq[reqID][s] = struct{}{}
		moved = append(moved, s)
	}
	return moved
}

// ProcessSubscribeAck applies a subscribe ACK. Returns false if (reqID,
// sym) was not pending, in which case state is unchanged (caller logs at
// warn).
func (m *Manager) ProcessSubscribeAck(reqID int64, sym symbol.ID, success bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if got, ok := m.pendingSubscribe[sym]; !ok || got != reqID {
		return false
	}
	m.removePendingSubscribe(reqID, sym)
	if success {
		m.active[sym] = struct{}{}
	}
	return true
}

// ProcessUnsubscribeAck applies an unsubscribe ACK. On success the symbol
// leaves both pending_unsubscribe and active. On failure it is returned to
// active, per the "symbol remains active on unsubscribe failure" policy.
func (m *Manager) ProcessUnsubscribeAck(reqID int64, sym symbol.ID, success bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if got, ok := m.pendingUnsubscribe[sym]; !ok || got != reqID {
		return false
	}
	m.removePendingUnsubscribe(reqID, sym)
	if !success {
		m.active[sym] = struct{}{}
	}
	return true
}

// TryProcessRejection attempts to remove sym from whichever pending set it
// occupies under reqID, used when the exchange rejects without an explicit
// success=false ACK context. Returns true if anything was removed.
func (m *Manager) TryProcessRejection(reqID int64, sym symbol.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if got, ok := m.pendingSubscribe[sym]; ok && got == reqID {
		m.removePendingSubscribe(reqID, sym)
		return true
	}
	if got, ok := m.pendingUnsubscribe[sym]; ok && got == reqID {
		m.removePendingUnsubscribe(reqID, sym)
		m.active[sym] = struct{}{}
		return true
	}
	return false
}

// DropRequest removes every symbol queued under reqID, in either pending
// set, with no symbol-level detail to guide the removal. This covers
// whole-request failures (a subscribe ACK failure or top-level rejection
// that names a req_id but no symbol). Returns the symbols removed.
func (m *Manager) DropRequest(reqID int64) []symbol.ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []symbol.ID
	if syms, ok := m.pendingSubscribeByReq[reqID]; ok {
		for s := range syms {
			removed = append(removed, s)
		}
		for _, s := range removed {
			m.removePendingSubscribe(reqID, s)
		}
	}
	if syms, ok := m.pendingUnsubscribeByReq[reqID]; ok {
		var unsubbed []symbol.ID
		for s := range syms {
			unsubbed = append(unsubbed, s)
		}
		for _, s := range unsubbed {
			m.removePendingUnsubscribe(reqID, s)
			m.active[s] = struct{}{}
		}
		removed = append(removed, unsubbed...)
	}
	return removed
}

// ClearAll resets the manager to empty: no symbol is active or pending
// anything. Called on reconnect, since a fresh transport starts with no
// server-side subscriptions.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = make(map[symbol.ID]struct{})
	m.pendingSubscribe = make(map[symbol.ID]int64)
	m.pendingSubscribeByReq = make(map[int64]map[symbol.ID]struct{})
	m.pendingUnsubscribe = make(map[symbol.ID]int64)
	m.pendingUnsubscribeByReq = make(map[int64]map[symbol.ID]struct{})
}

// IsActive reports whether sym is currently active.
func (m *Manager) IsActive(sym symbol.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[sym]
	return ok
}

// ActiveSymbols returns a snapshot of the active set.
func (m *Manager) ActiveSymbols() []symbol.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]symbol.ID, 0, len(m.active))
	for s := range m.active {
		out = append(out, s)
	}
	return out
}

// PendingCount returns the total number of symbols currently awaiting either
// a subscribe or an unsubscribe ACK, used by idleness checks.
func (m *Manager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pendingSubscribe) + len(m.pendingUnsubscribe)
}

// CheckInvariants asserts the disjointness and index-consistency invariants
// named in the channel manager's design. Intended for debug builds and
// tests, not the hot path.
func (m *Manager) CheckInvariants() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for s := range m.active {
		if _, ok := m.pendingSubscribe[s]; ok {
			return errDisjointness
		}
		if _, ok := m.pendingUnsubscribe[s]; ok {
			return errDisjointness
		}
	}
	count := 0
	for _, syms := range m.pendingSubscribeByReq {
		count += len(syms)
	}
	if count != len(m.pendingSubscribe) {
		return errIndexMismatch
	}
	count = 0
	for _, syms := range m.pendingUnsubscribeByReq {
		count += len(syms)
	}
	if count != len(m.pendingUnsubscribe) {
		return errIndexMismatch
	}
	return nil
}

func (m *Manager) removePendingSubscribe(reqID int64, sym symbol.ID) {
	delete(m.pendingSubscribe, sym)
	if byReq, ok := m.pendingSubscribeByReq[reqID]; ok {
		delete(byReq, sym)
		if len(byReq) == 0 {
			delete(m.pendingSubscribeByReq, reqID)
		}
	}
}

func (m *Manager) removePendingUnsubscribe(reqID int64, sym symbol.ID) {
	delete(m.pendingUnsubscribe, sym)
	if byReq, ok := m.pendingUnsubscribeByReq[reqID]; ok {
		delete(byReq, sym)
		if len(byReq) == 0 {
			delete(m.pendingUnsubscribeByReq, reqID)
		}
	}
}

// cancelPendingUnsubscribe is called while already holding m.mu.
func (m *Manager) cancelPendingUnsubscribe(reqID int64, sym symbol.ID) {
	m.removePendingUnsubscribe(reqID, sym)
}
