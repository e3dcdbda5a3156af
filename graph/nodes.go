package graph

import (
	"fmt"

	"github.com/chazu/graft/meta"
)

// ---------------------------------------------------------------------------
// Concrete node types
// ---------------------------------------------------------------------------

// Numbered is implemented by pure nodes that participate in value numbering.
// The graph coalesces nodes with equal keys: appending a Numbered node whose
// key is already present returns the existing node instead.
type Numbered interface {
	ValueNode

	// ValueKey returns the global-value-numbering key. Keys may only
	// reference inputs by id, so inputs must be appended first.
	ValueKey() string
}

// ConstantNode produces a compile-time constant.
type ConstantNode struct {
	baseNode
	Value meta.Constant
}

// NewConstant creates a detached constant node.
func NewConstant(c meta.Constant, stamp Stamp) *ConstantNode {
	return &ConstantNode{baseNode: newBase(stamp), Value: c}
}

func (n *ConstantNode) Name() string { return "Const" }

// ValueKey implements Numbered.
func (n *ConstantNode) ValueKey() string {
	return fmt.Sprintf("const:%s:%#x:%v", n.Value.Kind, n.Value.Bits, n.Value.Object)
}

func (n *ConstantNode) String() string {
	return fmt.Sprintf("Const(%s)", n.Value)
}

// ParameterNode produces the value of an incoming method parameter.
type ParameterNode struct {
	baseNode
	Index int
}

// NewParameter creates a detached parameter node.
func NewParameter(index int, stamp Stamp) *ParameterNode {
	return &ParameterNode{baseNode: newBase(stamp), Index: index}
}

func (n *ParameterNode) Name() string { return "Param" }

func (n *ParameterNode) String() string {
	return fmt.Sprintf("Param(%d)", n.Index)
}

// ValueKey implements Numbered.
func (n *ParameterNode) ValueKey() string {
	return fmt.Sprintf("param:%d", n.Index)
}

// ArithOp enumerates the pure arithmetic operations.
type ArithOp uint8

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
)

var arithNames = [...]string{OpAdd: "Add", OpSub: "Sub", OpMul: "Mul"}

func (op ArithOp) String() string { return arithNames[op] }

// ArithNode is a pure two-operand arithmetic node. Division is not an
// ArithNode: it can trap, so it is a StateSplit (DivNode).
type ArithNode struct {
	baseNode
	Op ArithOp
}

// NewArith creates a detached arithmetic node. Both operands must share the
// node's stack kind.
func NewArith(op ArithOp, stamp Stamp, x, y ValueNode) *ArithNode {
	return &ArithNode{baseNode: newBase(stamp, x, y), Op: op}
}

func (n *ArithNode) Name() string { return n.Op.String() }

// ValueKey implements Numbered.
func (n *ArithNode) ValueKey() string {
	return fmt.Sprintf("arith:%d:%s:%d:%d", n.Op, n.Kind(), n.inputs[0].ID(), n.inputs[1].ID())
}

// DivNode divides its first input by its second. Division can deoptimize
// (division by zero), so the node is a StateSplit.
type DivNode struct {
	baseNode
	stateSplit
}

// NewDiv creates a detached division node.
func NewDiv(stamp Stamp, x, y ValueNode) *DivNode {
	return &DivNode{baseNode: newBase(stamp, x, y)}
}

func (n *DivNode) Name() string { return "Div" }

// LoadFieldNode reads a field from an object. Reads can deoptimize on a
// null receiver, so the node is a StateSplit.
type LoadFieldNode struct {
	baseNode
	stateSplit
	Field *meta.Field
}

// NewLoadField creates a detached field load.
func NewLoadField(f *meta.Field, stamp Stamp, object ValueNode) *LoadFieldNode {
	return &LoadFieldNode{baseNode: newBase(stamp, object), Field: f}
}

func (n *LoadFieldNode) Name() string { return "LoadField" }

func (n *LoadFieldNode) String() string {
	return fmt.Sprintf("LoadField(%s)", n.Field.Key())
}

// StoreFieldNode writes a field of an object. Void kind, StateSplit.
type StoreFieldNode struct {
	baseNode
	stateSplit
	Field *meta.Field
}

// NewStoreField creates a detached field store.
func NewStoreField(f *meta.Field, object, value ValueNode) *StoreFieldNode {
	return &StoreFieldNode{baseNode: newBase(Stamp{Kind: meta.Void}, object, value), Field: f}
}

func (n *StoreFieldNode) Name() string { return "StoreField" }

func (n *StoreFieldNode) String() string {
	return fmt.Sprintf("StoreField(%s)", n.Field.Key())
}

// InvokeNode is a call that was not inlined or intrinsified. Calls are
// execution boundaries, so the node is a StateSplit. Kind is the callee's
// return kind (possibly Void).
type InvokeNode struct {
	baseNode
	stateSplit
	Target *meta.Method
}

// NewInvoke creates a detached invoke node.
func NewInvoke(target *meta.Method, stamp Stamp, args ...ValueNode) *InvokeNode {
	return &InvokeNode{baseNode: newBase(stamp, args...), Target: target}
}

func (n *InvokeNode) Name() string { return "Invoke" }

func (n *InvokeNode) String() string {
	return fmt.Sprintf("Invoke(%s)", n.Target.Key())
}

// ReturnNode terminates the method, optionally yielding a value.
type ReturnNode struct {
	baseNode
}

// NewReturn creates a detached return node. result may be nil for void
// returns.
func NewReturn(result ValueNode) *ReturnNode {
	if result == nil {
		return &ReturnNode{baseNode: newBase(Stamp{Kind: meta.Void})}
	}
	return &ReturnNode{baseNode: newBase(Stamp{Kind: meta.Void}, result)}
}

func (n *ReturnNode) Name() string { return "Return" }

// WordReadNode reads a raw machine word at a fixed offset from its input.
// It produces a Word kind, which only replacement bodies may handle. The
// read is an execution boundary (StateSplit), but inside a replacement its
// frame state is deliberately left unset: restart semantics do not apply to
// raw values.
type WordReadNode struct {
	baseNode
	stateSplit
	Offset int
}

// NewWordRead creates a detached raw word read.
func NewWordRead(offset int, stamp Stamp, address ValueNode) *WordReadNode {
	return &WordReadNode{baseNode: newBase(stamp, address), Offset: offset}
}

func (n *WordReadNode) Name() string { return "WordRead" }

func (n *WordReadNode) String() string {
	return fmt.Sprintf("WordRead(+%d)", n.Offset)
}

// WordCastNode reinterprets a raw machine word as an int. It is how a
// replacement body hands a value back to Java-kinded code: raw words may
// not escape the replacement scope.
type WordCastNode struct {
	baseNode
}

// NewWordCast creates a detached word-to-int cast.
func NewWordCast(stamp Stamp, word ValueNode) *WordCastNode {
	return &WordCastNode{baseNode: newBase(stamp, word)}
}

func (n *WordCastNode) Name() string { return "WordCast" }
