// Package builder implements the bytecode-to-graph builder: the protocol a
// bytecode parser follows while translating a method's bytecode into the
// typed dataflow graph, including frame state snapshotting, nested method
// inlining, and replacement scopes for compiler intrinsics.
package builder

import (
	"github.com/chazu/graft/graph"
	"github.com/chazu/graft/meta"
)

// ---------------------------------------------------------------------------
// Builder context
// ---------------------------------------------------------------------------

// Context is the graph builder's view of one (method, inlining position)
// parsing frame. Bytecode handlers and plugins interface with the builder
// exclusively through it.
//
// Append and Push are the two primitive operations; Add, AddPush and
// AddPushKind are helpers layered on top of them. Callers must always use
// the node returned by Append — value numbering may hand back an equivalent
// pre-existing node and discard the argument unlinked.
type Context interface {
	// Append adds a node to the graph without touching inputs or the
	// operand stack, returning the canonical node.
	Append(n graph.ValueNode) graph.ValueNode

	// RecursiveAppend appends the node and, transitively, every input
	// not yet in the graph, returning the canonical node.
	RecursiveAppend(n graph.ValueNode) graph.ValueNode

	// Push records the appended node as the new top of the operand stack
	// at the given kind. The kind may be wider than the node's own kind
	// when the instruction folds a widening conversion into the push.
	Push(kind meta.Kind, n graph.ValueNode)

	// CreateStateAfter snapshots locals and operand stack as they will
	// be immediately after the current instruction completes, tagged
	// with the bci of the next instruction. Inside an intrinsic it
	// returns the call-site state instead: intrinsics are atomic with
	// respect to deoptimization.
	CreateStateAfter() *graph.FrameState

	// Graph returns the graph under construction. All contexts of one
	// compilation share it.
	Graph() *graph.Graph

	StampProvider() graph.StampProvider
	MetaAccess() meta.MetaAccess
	ConstantReflection() meta.ConstantReflection
	SnippetReflection() meta.SnippetReflection
	Assumptions() *meta.Assumptions

	// Parent returns the context of the method that inlines this one,
	// nil exactly at depth 0.
	Parent() Context

	// RootMethod returns the outermost method of the compilation.
	RootMethod() *meta.Method

	// Method returns the method this context is parsing.
	Method() *meta.Method

	// BCI returns the index of the instruction currently being parsed.
	BCI() int

	// Depth returns the inline depth; 0 is the root method.
	Depth() int

	// Replacement returns the active replacement scope, nil outside one.
	Replacement() *Replacement

	// ParsingReplacement reports whether a replacement scope is active;
	// true exactly when Replacement() is non-nil.
	ParsingReplacement() bool

	// EagerResolving reports whether symbolic operands are resolved up
	// front rather than at first use.
	EagerResolving() bool

	// Bailout aborts the compilation attempt with a descriptive message,
	// freezing the graph. The returned error propagates to the
	// compilation driver.
	Bailout(msg string) error
}

// Providers bundles the read-only lookups the builder consumes. All entries
// must be safe for concurrent reads.
type Providers struct {
	MetaAccess  meta.MetaAccess
	Constants   meta.ConstantReflection
	Snippets    meta.SnippetReflection
	Assumptions *meta.Assumptions
	Stamps      graph.StampProvider
}

// Options controls parsing policy.
type Options struct {
	// MaxInlineDepth bounds the inlining chain; 0 disables inlining.
	MaxInlineDepth int

	// InlineCodeLimit is the largest callee bytecode size considered for
	// inlining.
	InlineCodeLimit int

	// EagerResolving resolves all symbolic operands before parsing
	// starts, turning resolution failures into immediate bailouts.
	EagerResolving bool
}

// DefaultOptions returns the parsing policy used when the embedder supplies
// none.
func DefaultOptions() Options {
	return Options{MaxInlineDepth: 5, InlineCodeLimit: 64}
}

// ---------------------------------------------------------------------------
// Context stack
// ---------------------------------------------------------------------------

// contextStack holds the active parsing contexts of one compilation. The
// parent chain is an index into this stack rather than a pointer chain:
// child lifetimes are strictly nested, so the stack discipline is enough.
type contextStack struct {
	contexts []*parserContext
}

func (s *contextStack) push(c *parserContext) {
	c.index = len(s.contexts)
	s.contexts = append(s.contexts, c)
}

func (s *contextStack) pop() {
	s.contexts = s.contexts[:len(s.contexts)-1]
}

// parserContext is the Context implementation used by the parser.
type parserContext struct {
	parser *Parser
	stack  *contextStack
	index  int

	method  *meta.Method
	frame   *frame
	bci     int
	nextBCI int

	// replacement is non-nil while parsing a substituted body.
	replacement *Replacement

	// intrinsicState is the call-site snapshot deoptimization rewinds to
	// while parsing an intrinsic body.
	intrinsicState *graph.FrameState

	// outerState links inlined frame states to the caller's state.
	outerState *graph.FrameState

	// returned holds the callee's result once a return instruction has
	// been parsed.
	returned graph.ValueNode
	done     bool
}

var _ Context = (*parserContext)(nil)

func (c *parserContext) Append(n graph.ValueNode) graph.ValueNode {
	return c.parser.graph.Add(n)
}

func (c *parserContext) RecursiveAppend(n graph.ValueNode) graph.ValueNode {
	return c.parser.graph.AddTree(n)
}

func (c *parserContext) Push(kind meta.Kind, n graph.ValueNode) {
	c.frame.push(kind, n)
}

func (c *parserContext) CreateStateAfter() *graph.FrameState {
	if r := c.replacement; r != nil && r.IsIntrinsic() {
		return c.intrinsicState
	}
	return graph.NewFrameState(c.method, c.nextBCI, c.frame.localNodes(), c.frame.stackNodes(), c.outerState)
}

func (c *parserContext) Graph() *graph.Graph { return c.parser.graph }

func (c *parserContext) StampProvider() graph.StampProvider { return c.parser.providers.Stamps }

func (c *parserContext) MetaAccess() meta.MetaAccess { return c.parser.providers.MetaAccess }

func (c *parserContext) ConstantReflection() meta.ConstantReflection {
	return c.parser.providers.Constants
}

func (c *parserContext) SnippetReflection() meta.SnippetReflection {
	return c.parser.providers.Snippets
}

func (c *parserContext) Assumptions() *meta.Assumptions { return c.parser.providers.Assumptions }

func (c *parserContext) Parent() Context {
	if c.index == 0 {
		return nil
	}
	return c.stack.contexts[c.index-1]
}

func (c *parserContext) RootMethod() *meta.Method { return c.stack.contexts[0].method }

func (c *parserContext) Method() *meta.Method { return c.method }

func (c *parserContext) BCI() int { return c.bci }

func (c *parserContext) Depth() int { return c.index }

func (c *parserContext) Replacement() *Replacement { return c.replacement }

func (c *parserContext) ParsingReplacement() bool { return c.replacement != nil }

func (c *parserContext) EagerResolving() bool { return c.parser.opts.EagerResolving }

func (c *parserContext) Bailout(msg string) error {
	return c.parser.bailout(c, msg)
}
