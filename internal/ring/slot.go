package ring

import "sync"

// Slot holds the last-written value of a level-triggered fact (pong, status,
// rejection). Writes happen from the session's poll loop as messages are
// routed; reads happen from user code calling the fact accessors at any
// time. A plain RWMutex stands in for the lock-free double-buffered variant
// named as an alternative: these payloads contain strings/slices, so they
// are not trivially copyable, and an RWMutex is the idiomatic Go shape for
// a read-mostly last-value cell.
type Slot[T any] struct {
	mu  sync.RWMutex
	val T
	set bool
}

// Store publishes v as the new last value.
func (s *Slot[T]) Store(v T) {
	s.mu.Lock()
	s.val = v
	s.set = true
	s.mu.Unlock()
}

// Load returns the last stored value and whether anything has been stored yet.
func (s *Slot[T]) Load() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val, s.set
}
