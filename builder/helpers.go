package builder

import (
	"fmt"

	"github.com/chazu/graft/graph"
	"github.com/chazu/graft/meta"
)

// ---------------------------------------------------------------------------
// Derived operations over Append and Push
// ---------------------------------------------------------------------------
// These helpers encode the ordering and snapshot contract once, against the
// Context interface, instead of leaving it to every bytecode handler.

// Add appends a void-kind node to the graph. If the appended node is a
// StateSplit its frame state is synthesized and attached. Passing a
// non-void node is a caller bug and panics.
func Add(ctx Context, n graph.ValueNode) graph.ValueNode {
	if n.Kind() != meta.Void {
		panic(fmt.Sprintf("builder.Add: node kind must be void, got %s", n.Kind()))
	}
	appended := ctx.Append(n)
	attachStateAfter(ctx, appended)
	return appended
}

// AddPush appends a non-void node, pushes it at its own stack kind, and
// attaches a frame state if the appended node is a StateSplit. It returns
// the canonical node, which callers must use instead of the argument.
func AddPush(ctx Context, n graph.ValueNode) graph.ValueNode {
	return AddPushKind(ctx, n.Kind().StackKind(), n)
}

// AddPushKind is AddPush with an explicit kind for the push, for
// instructions whose stack kind differs from the node's own kind.
//
// Ordering is load-bearing: the push records the appended (possibly
// deduplicated) node, and the frame state is created after the push so the
// snapshot reflects the post-push stack.
func AddPushKind(ctx Context, kind meta.Kind, n graph.ValueNode) graph.ValueNode {
	appended := ctx.Append(n)
	ctx.Push(kind, appended)
	attachStateAfter(ctx, appended)
	return appended
}

// attachStateAfter sets the frame state on StateSplit nodes. Raw values
// inside replacement bodies carry no state: kind checking and restart
// semantics do not apply to them.
func attachStateAfter(ctx Context, n graph.ValueNode) {
	ss, ok := n.(graph.StateSplit)
	if !ok {
		return
	}
	if ss.StateAfter() != nil {
		panic(fmt.Sprintf("builder: frame state of %s#%d already set", n.Name(), n.ID()))
	}
	if ctx.ParsingReplacement() && !n.Kind().IsJava() {
		return
	}
	ss.SetStateAfter(ctx.CreateStateAfter())
}
