package builder

import (
	"fmt"

	"github.com/chazu/graft/graph"
	"github.com/chazu/graft/meta"
)

// ---------------------------------------------------------------------------
// Interpreter frame model
// ---------------------------------------------------------------------------

// slot pairs a node with the kind it was pushed or stored at. The kind may
// be wider than the node's own kind.
type slot struct {
	kind meta.Kind
	node graph.ValueNode
}

// frame tracks the parser's view of the interpreter's locals and operand
// stack for one context. It exists purely for type checking and frame state
// creation — it never touches the graph.
type frame struct {
	ctx    *parserContext
	locals []slot
	stack  []slot
	slots  int // stack depth in frame slots (two-slot kinds count double)
}

func newFrame(ctx *parserContext, maxLocals int) *frame {
	return &frame{ctx: ctx, locals: make([]slot, maxLocals)}
}

// push records node as the new stack top at the given kind. Violations here
// are programming errors in the bytecode handling logic, not bad input, so
// they panic.
func (f *frame) push(kind meta.Kind, n graph.ValueNode) {
	if n == nil {
		panic("builder.Push: nil node")
	}
	if n.Graph() != f.ctx.parser.graph {
		panic(fmt.Sprintf("builder.Push: node %s has not been appended", nodeDesc(n)))
	}
	if kind == meta.Void {
		panic("builder.Push: cannot push a void value")
	}
	if !f.ctx.ParsingReplacement() {
		// Outside a replacement only interpreter-visible stack kinds
		// flow through the frame.
		if !kind.IsJava() {
			panic(fmt.Sprintf("builder.Push: kind %s outside a replacement scope", kind))
		}
		if kind != kind.StackKind() {
			panic(fmt.Sprintf("builder.Push: %s is not a stack kind", kind))
		}
		if got := n.Kind().StackKind(); got != kind {
			panic(fmt.Sprintf("builder.Push: kind mismatch, pushing %s as %s", got, kind))
		}
	}
	f.stack = append(f.stack, slot{kind: kind, node: n})
	f.slots += kind.SlotCount()
}

// pop removes and returns the stack top. Underflow means the incoming
// bytecode is malformed, which is a bailout, not a panic.
func (f *frame) pop() (slot, error) {
	if len(f.stack) == 0 {
		return slot{}, fmt.Errorf("operand stack underflow")
	}
	s := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	f.slots -= s.kind.SlotCount()
	return s, nil
}

// popKind pops the stack top and checks it against the expected stack kind.
// Inside a replacement the check is relaxed: bodies may traffic in raw
// kinds.
func (f *frame) popKind(kind meta.Kind) (slot, error) {
	s, err := f.pop()
	if err != nil {
		return slot{}, err
	}
	if !f.ctx.ParsingReplacement() && s.kind.StackKind() != kind.StackKind() {
		return slot{}, fmt.Errorf("operand stack type mismatch: want %s, have %s", kind.StackKind(), s.kind)
	}
	return s, nil
}

// peek returns the stack top without removing it.
func (f *frame) peek() (slot, error) {
	if len(f.stack) == 0 {
		return slot{}, fmt.Errorf("operand stack underflow")
	}
	return f.stack[len(f.stack)-1], nil
}

// local returns the slot at a local index.
func (f *frame) local(i int) (slot, error) {
	if i < 0 || i >= len(f.locals) {
		return slot{}, fmt.Errorf("local index %d out of range (max %d)", i, len(f.locals))
	}
	s := f.locals[i]
	if s.node == nil {
		return slot{}, fmt.Errorf("load of undefined local %d", i)
	}
	return s, nil
}

// setLocal stores a slot at a local index.
func (f *frame) setLocal(i int, s slot) error {
	if i < 0 || i >= len(f.locals) {
		return fmt.Errorf("local index %d out of range (max %d)", i, len(f.locals))
	}
	f.locals[i] = s
	return nil
}

// localNodes returns the current local values for frame state capture.
// Unset slots are nil.
func (f *frame) localNodes() []graph.ValueNode {
	out := make([]graph.ValueNode, len(f.locals))
	for i, s := range f.locals {
		out[i] = s.node
	}
	return out
}

// stackNodes returns the current operand stack, bottom first, for frame
// state capture.
func (f *frame) stackNodes() []graph.ValueNode {
	out := make([]graph.ValueNode, len(f.stack))
	for i, s := range f.stack {
		out[i] = s.node
	}
	return out
}

// depth returns the number of logical stack entries.
func (f *frame) depth() int { return len(f.stack) }

func nodeDesc(n graph.ValueNode) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%s)", n.Name(), n.Kind())
}
