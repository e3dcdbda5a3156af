package graph

import (
	"strings"
	"testing"

	"github.com/chazu/graft/meta"
)

func intConst(v int32) *ConstantNode {
	return NewConstant(meta.Constant{Kind: meta.Int, Bits: uint64(uint32(v))}, Stamp{Kind: meta.Int})
}

// ---------------------------------------------------------------------------
// Append and ownership
// ---------------------------------------------------------------------------

func TestAddAssignsOwnership(t *testing.T) {
	g := New("t")
	n := intConst(1)
	if n.Graph() != nil || n.ID() != -1 {
		t.Fatalf("detached node already owned")
	}
	got := g.Add(n)
	if got != ValueNode(n) {
		t.Fatalf("Add returned a different node for a fresh constant")
	}
	if n.Graph() != g {
		t.Errorf("node not owned by graph after Add")
	}
	if n.ID() != 0 {
		t.Errorf("node id = %d, want 0", n.ID())
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
}

func TestAddIsIdempotentForOwnedNodes(t *testing.T) {
	g := New("t")
	n := g.Add(intConst(1))
	if again := g.Add(n); again != n {
		t.Errorf("re-adding an owned node returned a different node")
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
}

func TestAddValueNumbersEquivalentNodes(t *testing.T) {
	g := New("t")
	first := g.Add(intConst(42))
	second := g.Add(intConst(42))
	if first != second {
		t.Errorf("equivalent constants were not coalesced")
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
	other := g.Add(intConst(43))
	if other == first {
		t.Errorf("distinct constants were coalesced")
	}
}

func TestAddPanicsOnForeignNode(t *testing.T) {
	g1 := New("one")
	g2 := New("two")
	n := g1.Add(intConst(1))

	defer func() {
		if recover() == nil {
			t.Errorf("adding a node owned by another graph should panic")
		}
	}()
	g2.Add(n)
}

func TestAddPanicsOnUnappendedInput(t *testing.T) {
	g := New("t")
	// Both inputs detached: Add (non-recursive) must refuse.
	n := NewArith(OpAdd, Stamp{Kind: meta.Int}, intConst(1), intConst(2))

	defer func() {
		if recover() == nil {
			t.Errorf("adding a node with detached inputs should panic")
		}
	}()
	g.Add(n)
}

func TestFrozenGraphRejectsAdds(t *testing.T) {
	g := New("t")
	g.Add(intConst(1))
	g.Freeze()
	if !g.Frozen() {
		t.Fatalf("Frozen() = false after Freeze")
	}
	defer func() {
		if recover() == nil {
			t.Errorf("Add on a frozen graph should panic")
		}
	}()
	g.Add(intConst(2))
}

// ---------------------------------------------------------------------------
// Recursive append
// ---------------------------------------------------------------------------

func TestAddTreeAppendsInputsFirst(t *testing.T) {
	g := New("t")
	tree := NewArith(OpAdd, Stamp{Kind: meta.Int}, intConst(2), intConst(3))
	got := g.AddTree(tree)
	if got != ValueNode(tree) {
		t.Fatalf("AddTree returned a different node for a fresh tree")
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
	for i, in := range tree.Inputs() {
		if in.Graph() != g {
			t.Errorf("input %d not appended", i)
		}
	}
}

func TestAddTreeIsIdempotent(t *testing.T) {
	g := New("t")
	g.AddTree(NewArith(OpAdd, Stamp{Kind: meta.Int}, intConst(2), intConst(3)))
	before := g.NodeCount()

	// A graph-equal tree appends nothing new: every node value-numbers
	// to an existing one.
	again := g.AddTree(NewArith(OpAdd, Stamp{Kind: meta.Int}, intConst(2), intConst(3)))
	if g.NodeCount() != before {
		t.Errorf("second AddTree grew the graph from %d to %d nodes", before, g.NodeCount())
	}
	if again.Graph() != g {
		t.Errorf("AddTree result not owned by graph")
	}
}

func TestAddTreeCanonicalizesSharedInputs(t *testing.T) {
	g := New("t")
	existing := g.Add(intConst(7))
	tree := NewArith(OpMul, Stamp{Kind: meta.Int}, intConst(7), intConst(7))
	got := g.AddTree(tree)
	ins := got.Inputs()
	if ins[0] != existing || ins[1] != existing {
		t.Errorf("shared constant inputs were not canonicalized to the existing node")
	}
}

// ---------------------------------------------------------------------------
// State splits
// ---------------------------------------------------------------------------

func TestStateSplitSetOnce(t *testing.T) {
	g := New("t")
	x := g.Add(intConst(6))
	y := g.Add(intConst(3))
	div := g.Add(NewDiv(Stamp{Kind: meta.Int}, x, y)).(*DivNode)

	if div.StateAfter() != nil {
		t.Fatalf("fresh DivNode has a frame state")
	}
	m := &meta.Method{Class: "T", Name: "m"}
	fs := NewFrameState(m, 4, nil, []ValueNode{div}, nil)
	div.SetStateAfter(fs)
	if div.StateAfter() != fs {
		t.Fatalf("StateAfter() did not return the attached state")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("second SetStateAfter should panic")
		}
	}()
	div.SetStateAfter(fs)
}

func TestFrameStateIsSnapshot(t *testing.T) {
	g := New("t")
	n := g.Add(intConst(5))
	locals := []ValueNode{n, nil}
	stack := []ValueNode{n}
	m := &meta.Method{Class: "T", Name: "m"}
	fs := NewFrameState(m, 9, locals, stack, nil)

	locals[0] = nil
	stack[0] = nil
	if fs.Locals()[0] != n || fs.Stack()[0] != n {
		t.Errorf("frame state aliased the caller's slices")
	}
	if fs.BCI() != 9 {
		t.Errorf("BCI() = %d, want 9", fs.BCI())
	}
	if fs.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", fs.Depth())
	}

	outer := NewFrameState(m, 2, nil, nil, nil)
	inner := NewFrameState(m, 0, nil, nil, outer)
	if inner.Depth() != 2 || inner.Outer() != outer {
		t.Errorf("outer chain broken: depth=%d", inner.Depth())
	}
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

func TestFormatListsNodes(t *testing.T) {
	g := New("demo")
	x := g.Add(intConst(6))
	y := g.Add(intConst(3))
	g.Add(NewDiv(Stamp{Kind: meta.Int}, x, y))

	out := Format(g)
	for _, want := range []string{"demo", "Const(6)", "Const(3)", "Div", "state[unset]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format output missing %q:\n%s", want, out)
		}
	}
}
