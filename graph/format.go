package graph

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Text formatting
// ---------------------------------------------------------------------------

// Format renders the graph as a human-readable node listing, one node per
// line in append order.
func Format(g *Graph) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "graph %q (%d nodes)\n", g.Name(), g.NodeCount())
	for _, n := range g.Nodes() {
		fmt.Fprintf(&sb, "%4d | %-12s %-8s", n.ID(), nodeLabel(n), n.Kind())
		if ins := n.Inputs(); len(ins) > 0 {
			ids := make([]string, len(ins))
			for i, in := range ins {
				ids[i] = fmt.Sprintf("#%d", in.ID())
			}
			fmt.Fprintf(&sb, " <- %s", strings.Join(ids, ", "))
		}
		if ss, ok := n.(StateSplit); ok {
			if fs := ss.StateAfter(); fs != nil {
				fmt.Fprintf(&sb, "  %s", fs)
			} else {
				sb.WriteString("  state[unset]")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// nodeLabel prefers a node's String method over its bare mnemonic.
func nodeLabel(n ValueNode) string {
	if s, ok := n.(fmt.Stringer); ok {
		return s.String()
	}
	return n.Name()
}
