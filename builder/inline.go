package builder

import (
	"fmt"

	"github.com/chazu/graft/graph"
	"github.com/chazu/graft/meta"
)

// ---------------------------------------------------------------------------
// Call sites: intrinsics, inlining, residual invokes
// ---------------------------------------------------------------------------

// parseInvoke expands a call site. Plugins take priority over inlining;
// calls that neither intrinsify nor inline become InvokeNodes.
func (p *Parser) parseInvoke(c *parserContext, index int) error {
	target, err := p.providers.MetaAccess.MethodAt(index)
	if err != nil {
		return p.bailout(c, err.Error())
	}

	// The call-site snapshot is taken while the arguments are still on
	// the stack: a deoptimization that rewinds to the call re-executes
	// it from scratch.
	var callSiteState *graph.FrameState
	plugin, hasPlugin := p.plugins.Lookup(target)
	if hasPlugin && plugin.Intrinsic {
		callSiteState = graph.NewFrameState(c.method, c.bci, c.frame.localNodes(), c.frame.stackNodes(), c.outerState)
	}

	args, err := p.popArgs(c, target)
	if err != nil {
		return err
	}

	if hasPlugin {
		return p.applyPlugin(c, target, plugin, args, callSiteState)
	}
	if p.shouldInline(c, target) {
		return p.parseInlined(c, target, args, nil, nil)
	}
	return p.emitInvoke(c, target, args)
}

// popArgs pops the callee's arguments, last parameter first, and returns
// them in call order.
func (p *Parser) popArgs(c *parserContext, target *meta.Method) ([]slot, error) {
	params := target.Sig.Params
	args := make([]slot, len(params))
	for i := len(params) - 1; i >= 0; i-- {
		s, err := c.frame.popKind(params[i])
		if err != nil {
			return nil, p.bailout(c, fmt.Sprintf("argument %d of %s: %s", i, target.Key(), err))
		}
		args[i] = s
	}
	return args, nil
}

// shouldInline applies the inlining policy.
func (p *Parser) shouldInline(c *parserContext, target *meta.Method) bool {
	if !target.CanInline || len(target.Code) == 0 {
		return false
	}
	if c.Depth() >= p.opts.MaxInlineDepth {
		return false
	}
	return len(target.Code) <= p.opts.InlineCodeLimit
}

// applyPlugin expands an intrinsified or substituted call.
func (p *Parser) applyPlugin(c *parserContext, target *meta.Method, plugin Plugin, args []slot, callSiteState *graph.FrameState) error {
	p.providers.Assumptions.Record(meta.Assumption{Kind: "intrinsified", Target: target.Key()})
	if plugin.Inline != nil {
		nodes := make([]graph.ValueNode, len(args))
		for i, s := range args {
			nodes[i] = s.node
		}
		log.Debugf("expanding %s via inline plugin in %s", target.Key(), c.method.Key())
		return plugin.Inline(c, nodes)
	}
	repl := NewReplacement(target, plugin.Substitute, plugin.Intrinsic)
	log.Debugf("parsing %s for %s at depth %d", repl, c.method.Key(), c.Depth()+1)
	return p.parseInlined(c, plugin.Substitute, args, repl, callSiteState)
}

// parseInlined parses a callee body in a child context and pushes its
// result in the caller. The child's lifetime is strictly nested: it is
// popped before this function returns.
func (p *Parser) parseInlined(c *parserContext, body *meta.Method, args []slot, repl *Replacement, callSiteState *graph.FrameState) error {
	outer := graph.NewFrameState(c.method, c.bci, c.frame.localNodes(), c.frame.stackNodes(), c.outerState)
	child := p.pushContext(body, args, repl, outer)
	child.intrinsicState = callSiteState
	if repl == nil {
		p.providers.Assumptions.Record(meta.Assumption{Kind: "inlined-callee", Target: body.Key()})
		log.Debugf("inlining %s into %s at depth %d", body.Key(), c.method.Key(), child.Depth())
	}
	err := p.parse(child)
	p.contexts.pop()
	if err != nil {
		return err
	}
	if ret := body.Sig.Return; ret != meta.Void {
		if child.returned == nil {
			return p.bailout(c, fmt.Sprintf("inlined %s produced no return value", body.Key()))
		}
		c.Push(ret.StackKind(), child.returned)
	}
	return nil
}

// emitInvoke appends a residual call node.
func (p *Parser) emitInvoke(c *parserContext, target *meta.Method, args []slot) error {
	nodes := make([]graph.ValueNode, len(args))
	for i, s := range args {
		nodes[i] = s.node
	}
	ret := target.Sig.Return
	n := graph.NewInvoke(target, p.providers.Stamps.ForKind(ret), nodes...)
	if ret == meta.Void {
		Add(c, n)
	} else {
		AddPushKind(c, ret.StackKind(), n)
	}
	return nil
}
