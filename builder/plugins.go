package builder

import (
	"fmt"

	"github.com/chazu/graft/graph"
	"github.com/chazu/graft/meta"
)

// ---------------------------------------------------------------------------
// Intrinsic and snippet plugins
// ---------------------------------------------------------------------------

// InlineFn emits the intrinsic expansion of a call directly into the
// caller's graph. args are the already-appended argument nodes in call
// order. The function must append its nodes through ctx and push the result
// itself (via AddPush) for non-void callees. A returned error must come from
// ctx.Bailout.
type InlineFn func(ctx Context, args []graph.ValueNode) error

// Plugin substitutes a method at call sites. Exactly one of Inline and
// Substitute must be set: Inline expands in place, Substitute names a
// bytecode body parsed in a child replacement scope.
type Plugin struct {
	Inline     InlineFn
	Substitute *meta.Method

	// Intrinsic marks the substitution atomic with respect to
	// deoptimization.
	Intrinsic bool
}

// Plugins is the registry consulted at every call site before inlining.
// Registration happens before compilation starts; lookups are read-only
// afterwards.
type Plugins struct {
	byKey map[string]Plugin
}

// NewPlugins creates an empty registry.
func NewPlugins() *Plugins {
	return &Plugins{byKey: make(map[string]Plugin)}
}

// Register installs a plugin for the method with the given "Class>>name"
// key. Registering a key twice or an ill-formed plugin is an error.
func (p *Plugins) Register(key string, plugin Plugin) error {
	if (plugin.Inline == nil) == (plugin.Substitute == nil) {
		return fmt.Errorf("builder: plugin for %s must set exactly one of Inline and Substitute", key)
	}
	if _, dup := p.byKey[key]; dup {
		return fmt.Errorf("builder: plugin for %s already registered", key)
	}
	p.byKey[key] = plugin
	return nil
}

// Lookup finds the plugin for a method, if any.
func (p *Plugins) Lookup(m *meta.Method) (Plugin, bool) {
	if p == nil {
		return Plugin{}, false
	}
	plugin, ok := p.byKey[m.Key()]
	return plugin, ok
}

// Len returns the number of registered plugins.
func (p *Plugins) Len() int {
	if p == nil {
		return 0
	}
	return len(p.byKey)
}
