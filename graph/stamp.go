package graph

import (
	"github.com/chazu/graft/meta"
)

// ---------------------------------------------------------------------------
// Stamps
// ---------------------------------------------------------------------------

// Stamp is the static type information carried by every node: its kind plus
// optional refinement for object references.
type Stamp struct {
	Kind    meta.Kind
	NonNull bool   // meaningful only for Object stamps
	Type    string // exact type name for object stamps, "" if unknown
}

func (s Stamp) String() string {
	if s.Kind == meta.Object {
		out := "object"
		if s.Type != "" {
			out += ":" + s.Type
		}
		if s.NonNull {
			out += "!"
		}
		return out
	}
	return s.Kind.String()
}

// StampProvider fabricates stamps during graph building. Replacement bodies
// use it to stamp raw words and bare pointers that have no interpreter-level
// type.
type StampProvider interface {
	ForKind(k meta.Kind) Stamp
	ObjectNonNull(typeName string) Stamp
	Word() Stamp
}

// DefaultStamps is the stock StampProvider.
type DefaultStamps struct{}

// ForKind implements StampProvider.
func (DefaultStamps) ForKind(k meta.Kind) Stamp {
	return Stamp{Kind: k}
}

// ObjectNonNull implements StampProvider.
func (DefaultStamps) ObjectNonNull(typeName string) Stamp {
	return Stamp{Kind: meta.Object, NonNull: true, Type: typeName}
}

// Word implements StampProvider.
func (DefaultStamps) Word() Stamp {
	return Stamp{Kind: meta.Word}
}

var _ StampProvider = DefaultStamps{}
