package graph

import (
	"fmt"

	"github.com/chazu/graft/meta"
)

// ---------------------------------------------------------------------------
// Frame states
// ---------------------------------------------------------------------------

// FrameState is an immutable snapshot of the interpreter state at a bytecode
// position: the method, the bci of the next instruction to execute on
// restart, and the values occupying locals and operand stack at that point.
// For inlined contexts Outer links to the caller's state, forming the
// virtual frame chain a deoptimization rebuilds.
type FrameState struct {
	method *meta.Method
	bci    int
	locals []ValueNode
	stack  []ValueNode
	outer  *FrameState
}

// NewFrameState captures a snapshot. The locals and stack slices are copied;
// the snapshot never aliases the builder's live frame.
func NewFrameState(method *meta.Method, bci int, locals, stack []ValueNode, outer *FrameState) *FrameState {
	fs := &FrameState{
		method: method,
		bci:    bci,
		locals: make([]ValueNode, len(locals)),
		stack:  make([]ValueNode, len(stack)),
		outer:  outer,
	}
	copy(fs.locals, locals)
	copy(fs.stack, stack)
	return fs
}

// Method returns the method the snapshot belongs to.
func (fs *FrameState) Method() *meta.Method { return fs.method }

// BCI returns the bytecode index execution resumes at after restart.
func (fs *FrameState) BCI() int { return fs.bci }

// Locals returns the captured local variable values. Callers must not
// mutate the returned slice.
func (fs *FrameState) Locals() []ValueNode { return fs.locals }

// Stack returns the captured operand stack, bottom first. Callers must not
// mutate the returned slice.
func (fs *FrameState) Stack() []ValueNode { return fs.stack }

// Outer returns the caller's state for inlined frames, nil at the root.
func (fs *FrameState) Outer() *FrameState { return fs.outer }

// Depth returns the number of frames in the virtual frame chain.
func (fs *FrameState) Depth() int {
	d := 1
	for o := fs.outer; o != nil; o = o.outer {
		d++
	}
	return d
}

func (fs *FrameState) String() string {
	return fmt.Sprintf("state[%s @ %d, locals=%d, stack=%d]",
		fs.method.Key(), fs.bci, len(fs.locals), len(fs.stack))
}
