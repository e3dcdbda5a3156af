package graph

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// Graph
// ---------------------------------------------------------------------------

// Graph owns the nodes of one compilation unit. Exactly one Graph exists
// per root compilation; nested inlining contexts share it. A Graph is not
// safe for concurrent mutation: one compilation runs on one goroutine.
type Graph struct {
	name   string
	nodes  []ValueNode
	unique map[string]ValueNode
	frozen bool
}

// New creates an empty graph. The name identifies the root method in dumps
// and error messages.
func New(name string) *Graph {
	return &Graph{
		name:   name,
		unique: make(map[string]ValueNode),
	}
}

// Name returns the graph's display name.
func (g *Graph) Name() string { return g.name }

// NodeCount returns the number of nodes owned by the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Nodes returns the owned nodes in append order. Callers must not mutate
// the returned slice.
func (g *Graph) Nodes() []ValueNode { return g.nodes }

// Frozen reports whether the graph has been frozen by a bailout. Frozen
// graphs reject all further mutation.
func (g *Graph) Frozen() bool { return g.frozen }

// Freeze marks the graph dead after a bailout. Any later Add panics, which
// catches drivers that keep parsing past an abort.
func (g *Graph) Freeze() { g.frozen = true }

// Add appends a node to the graph and returns its canonical version: either
// the node itself or a pre-existing equivalent chosen by value numbering.
// Callers must use the returned node for all further references.
//
// Adding a node owned by a different graph is an internal consistency error
// and panics. Adding a node this graph already owns returns it unchanged.
func (g *Graph) Add(n ValueNode) ValueNode {
	if g.frozen {
		panic(fmt.Sprintf("graph.Add: graph %q is frozen after bailout", g.name))
	}
	if n == nil {
		panic("graph.Add: nil node")
	}
	if owner := n.Graph(); owner != nil {
		if owner != g {
			panic(fmt.Sprintf("graph.Add: node %s is owned by graph %q, not %q",
				describeNode(n), owner.name, g.name))
		}
		return n
	}
	if vn, ok := n.(Numbered); ok {
		key := vn.ValueKey()
		if existing, dup := g.unique[key]; dup {
			return existing
		}
		g.adopt(n)
		g.unique[key] = n
		return n
	}
	g.adopt(n)
	return n
}

// AddTree appends a node after transitively appending every input not yet
// owned by the graph, bottom-up, so one call suffices for a whole detached
// subexpression tree. Inputs that value-number to existing nodes are
// replaced in their users. Shared subexpressions are appended once; owned
// nodes short-circuit the traversal, and an input cycle panics instead of
// looping forever.
func (g *Graph) AddTree(n ValueNode) ValueNode {
	return g.addTree(n, make(map[ValueNode]bool))
}

func (g *Graph) addTree(n ValueNode, visiting map[ValueNode]bool) ValueNode {
	if n.Graph() == g {
		return n
	}
	if visiting[n] {
		panic(fmt.Sprintf("graph.AddTree: input cycle through %s", describeNode(n)))
	}
	visiting[n] = true
	inputs := n.Inputs()
	for i, in := range inputs {
		canonical := g.addTree(in, visiting)
		if canonical != in {
			inputs[i] = canonical
		}
	}
	delete(visiting, n)
	return g.Add(n)
}

// adopt transfers ownership of a detached node to this graph.
func (g *Graph) adopt(n ValueNode) {
	for _, in := range n.Inputs() {
		if in.Graph() != g {
			panic(fmt.Sprintf("graph.Add: input %s of %s has not been added to graph %q",
				describeNode(in), describeNode(n), g.name))
		}
	}
	b := n.base()
	b.owner = g
	b.id = len(g.nodes)
	g.nodes = append(g.nodes, n)
}
