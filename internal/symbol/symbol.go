package symbol

import (
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

// Symbol is an exchange instrument name, e.g. "BTC/USD".
type Symbol string

// ID is a process-wide interned handle for a Symbol. Cheap to copy and hash.
// The zero value is Invalid and never assigned to a real symbol.
type ID uint32

// Invalid is the reserved "unassigned" id.
const Invalid ID = 0

var normalizer = cases.Upper(language.Und)

// canonical folds width variants (fullwidth/halfwidth) and case so that
// symbols differing only in those respects intern to the same ID.
func canonical(s Symbol) string {
	return normalizer.String(width.Fold.String(string(s)))
}

// Interner is a process-wide, read-mostly string-to-ID table. The monotonic
// mapping never reuses an ID and never forgets one once minted.
type Interner struct {
	mu     sync.RWMutex
	byName map[string]ID
	byID   []Symbol // index 0 is an unused placeholder for Invalid
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{
		byName: make(map[string]ID),
		byID:   make([]Symbol, 1),
	}
}

// Intern returns the ID for s, minting a new one on first sight. The first
// spelling seen for a given canonical form is the one Lookup returns later,
// satisfying "the interner maps it back to the original Symbol".
func (in *Interner) Intern(s Symbol) ID {
	key := canonical(s)

	in.mu.RLock()
	if id, ok := in.byName[key]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.byName[key]; ok {
		return id
	}
	id := ID(len(in.byID))
	in.byID = append(in.byID, s)
	in.byName[key] = id
	return id
}

// Lookup returns the original Symbol for id, or false if id was never minted.
func (in *Interner) Lookup(id ID) (Symbol, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == Invalid || int(id) >= len(in.byID) {
		return "", false
	}
	return in.byID[id], true
}

// Len returns the number of distinct symbols interned so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.byID) - 1
}
