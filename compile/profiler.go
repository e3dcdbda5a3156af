// Package compile connects hot-method detection to background graph
// building: a profiler counts invocations, a driver compiles hot methods
// off-thread and keeps the finished graphs, and an optional SQLite-backed
// store records every attempt.
package compile

import (
	"sync"
	"sync/atomic"

	"github.com/chazu/graft/meta"
)

// MethodProfile holds profiling data for a single method.
type MethodProfile struct {
	InvocationCount uint64 // atomic counter for invocations
	IsHot           bool   // true once the threshold is exceeded
}

// Profiler tracks method invocation counts to identify hot code for
// compilation. Counting is lock-free; the hot transition fires OnHot
// exactly once per method.
type Profiler struct {
	profiles sync.Map // *meta.Method -> *MethodProfile

	// HotThreshold is the invocation count at which a method becomes
	// hot.
	HotThreshold uint64

	// OnHot is called once when a method crosses the threshold.
	OnHot func(m *meta.Method)

	hotCount uint64
}

// NewProfiler creates a profiler with the given hot threshold.
func NewProfiler(hotThreshold uint64) *Profiler {
	if hotThreshold == 0 {
		hotThreshold = 100
	}
	return &Profiler{HotThreshold: hotThreshold}
}

// RecordInvocation increments the invocation count for a method. Returns
// true if this invocation made the method hot.
func (p *Profiler) RecordInvocation(m *meta.Method) bool {
	if m == nil {
		return false
	}
	profile := p.profile(m)
	count := atomic.AddUint64(&profile.InvocationCount, 1)
	if count != p.HotThreshold {
		return false
	}
	profile.IsHot = true
	atomic.AddUint64(&p.hotCount, 1)
	if p.OnHot != nil {
		p.OnHot(m)
	}
	return true
}

// Profile returns the profile for a method, or nil if it was never invoked.
func (p *Profiler) Profile(m *meta.Method) *MethodProfile {
	if v, ok := p.profiles.Load(m); ok {
		return v.(*MethodProfile)
	}
	return nil
}

// HotCount returns the number of methods that have become hot.
func (p *Profiler) HotCount() uint64 {
	return atomic.LoadUint64(&p.hotCount)
}

func (p *Profiler) profile(m *meta.Method) *MethodProfile {
	if v, ok := p.profiles.Load(m); ok {
		return v.(*MethodProfile)
	}
	v, _ := p.profiles.LoadOrStore(m, &MethodProfile{})
	return v.(*MethodProfile)
}
