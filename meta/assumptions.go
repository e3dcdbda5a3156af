package meta

import "sync"

// ---------------------------------------------------------------------------
// Compilation assumptions
// ---------------------------------------------------------------------------

// Assumption records an optimistic fact the compiler relied on. If the fact
// is later invalidated the compiled code must be discarded.
type Assumption struct {
	Kind   string // e.g. "inlined-callee", "intrinsified"
	Target string // method or field key the assumption is about
}

// Assumptions is an append-only log of assumptions made while building one
// graph. Writers are the inlining driver and plugins; readers are the code
// cache and dependency tracking. Safe for concurrent use.
type Assumptions struct {
	mu      sync.Mutex
	entries []Assumption
}

// NewAssumptions creates an empty assumption log.
func NewAssumptions() *Assumptions {
	return &Assumptions{}
}

// Record appends an assumption.
func (a *Assumptions) Record(as Assumption) {
	a.mu.Lock()
	a.entries = append(a.entries, as)
	a.mu.Unlock()
}

// Snapshot returns a copy of all recorded assumptions.
func (a *Assumptions) Snapshot() []Assumption {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Assumption, len(a.entries))
	copy(out, a.entries)
	return out
}

// Len returns the number of recorded assumptions.
func (a *Assumptions) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}
