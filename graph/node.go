// Package graph implements the typed dataflow IR built by the bytecode
// parser.
//
// This package contains:
//   - ValueNode, the interface all IR nodes implement
//   - Graph, which owns nodes for one compilation and value-numbers them
//   - FrameState, the immutable deoptimization snapshot
//   - StateSplit, the capability marking nodes that need a FrameState
package graph

import (
	"fmt"

	"github.com/chazu/graft/meta"
)

// ---------------------------------------------------------------------------
// Nodes
// ---------------------------------------------------------------------------

// ValueNode is a node in the IR graph. Nodes start detached; appending them
// to a Graph transfers ownership. A node belongs to at most one graph for
// its whole lifetime.
type ValueNode interface {
	// Name returns the operation mnemonic, e.g. "Const" or "Invoke".
	Name() string

	// Kind returns the runtime representation category of the produced
	// value. Void for nodes that produce no value.
	Kind() meta.Kind

	// Stamp returns the static type information of the produced value.
	Stamp() Stamp

	// Inputs returns the data inputs of this node. The returned slice is
	// the node's live input list; only the owning graph may mutate it.
	Inputs() []ValueNode

	// Graph returns the owning graph, or nil while detached.
	Graph() *Graph

	// ID returns the node id assigned at append time, -1 while detached.
	ID() int

	base() *baseNode
}

// baseNode carries the bookkeeping shared by all node implementations.
// Concrete nodes embed it and gain ValueNode's plumbing for free.
type baseNode struct {
	id     int
	owner  *Graph
	stamp  Stamp
	inputs []ValueNode
}

func newBase(stamp Stamp, inputs ...ValueNode) baseNode {
	return baseNode{id: -1, stamp: stamp, inputs: inputs}
}

func (b *baseNode) Kind() meta.Kind     { return b.stamp.Kind }
func (b *baseNode) Stamp() Stamp        { return b.stamp }
func (b *baseNode) Inputs() []ValueNode { return b.inputs }
func (b *baseNode) Graph() *Graph       { return b.owner }
func (b *baseNode) ID() int             { return b.id }
func (b *baseNode) base() *baseNode     { return b }

// ---------------------------------------------------------------------------
// StateSplit
// ---------------------------------------------------------------------------

// StateSplit marks nodes whose execution boundary requires a FrameState so
// deoptimization can restart the interpreter after the operation. The state
// is set exactly once, at append time, by the builder.
type StateSplit interface {
	ValueNode

	// StateAfter returns the attached frame state, nil if not yet set.
	StateAfter() *FrameState

	// SetStateAfter attaches the frame state. Attaching twice is a
	// contract violation and panics.
	SetStateAfter(fs *FrameState)
}

// stateSplit is the embeddable StateSplit implementation.
type stateSplit struct {
	stateAfter *FrameState
}

func (s *stateSplit) StateAfter() *FrameState { return s.stateAfter }

func (s *stateSplit) SetStateAfter(fs *FrameState) {
	if s.stateAfter != nil {
		panic("graph.SetStateAfter: frame state already set")
	}
	s.stateAfter = fs
}

// describeNode formats a node for error messages.
func describeNode(n ValueNode) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d(%s)", n.Name(), n.ID(), n.Kind())
}
