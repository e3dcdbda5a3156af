// Package dump serializes finished graphs for offline inspection. The wire
// format is canonical CBOR: deterministic output makes dumps diffable
// across runs.
package dump

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/graft/graph"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dump: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// GraphDump is the serialized form of one graph.
type GraphDump struct {
	Name  string     `cbor:"name"`
	Nodes []NodeDump `cbor:"nodes"`
}

// NodeDump is the serialized form of one node. Inputs reference other nodes
// by id.
type NodeDump struct {
	ID     int        `cbor:"id"`
	Op     string     `cbor:"op"`
	Kind   string     `cbor:"kind"`
	Inputs []int      `cbor:"inputs,omitempty"`
	State  *StateDump `cbor:"state,omitempty"`
}

// StateDump is the serialized form of a frame state. Locals and Stack
// reference nodes by id, -1 for unset local slots.
type StateDump struct {
	Method string     `cbor:"method"`
	BCI    int        `cbor:"bci"`
	Locals []int      `cbor:"locals,omitempty"`
	Stack  []int      `cbor:"stack,omitempty"`
	Outer  *StateDump `cbor:"outer,omitempty"`
}

// FromGraph flattens a graph into its serializable form.
func FromGraph(g *graph.Graph) *GraphDump {
	d := &GraphDump{
		Name:  g.Name(),
		Nodes: make([]NodeDump, 0, g.NodeCount()),
	}
	for _, n := range g.Nodes() {
		nd := NodeDump{
			ID:   n.ID(),
			Op:   n.Name(),
			Kind: n.Kind().String(),
		}
		for _, in := range n.Inputs() {
			nd.Inputs = append(nd.Inputs, in.ID())
		}
		if ss, ok := n.(graph.StateSplit); ok {
			nd.State = stateDump(ss.StateAfter())
		}
		d.Nodes = append(d.Nodes, nd)
	}
	return d
}

func stateDump(fs *graph.FrameState) *StateDump {
	if fs == nil {
		return nil
	}
	sd := &StateDump{
		Method: fs.Method().Key(),
		BCI:    fs.BCI(),
		Outer:  stateDump(fs.Outer()),
	}
	for _, n := range fs.Locals() {
		if n == nil {
			sd.Locals = append(sd.Locals, -1)
		} else {
			sd.Locals = append(sd.Locals, n.ID())
		}
	}
	for _, n := range fs.Stack() {
		sd.Stack = append(sd.Stack, n.ID())
	}
	return sd
}

// Marshal serializes a graph to CBOR bytes.
func Marshal(g *graph.Graph) ([]byte, error) {
	return cborEncMode.Marshal(FromGraph(g))
}

// Unmarshal deserializes a graph dump from CBOR bytes.
func Unmarshal(data []byte) (*GraphDump, error) {
	var d GraphDump
	if err := cbor.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("dump: unmarshal graph: %w", err)
	}
	return &d, nil
}
