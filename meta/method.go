package meta

import "fmt"

// ---------------------------------------------------------------------------
// Resolved methods
// ---------------------------------------------------------------------------

// Signature describes the parameter and return kinds of a method.
type Signature struct {
	Params []Kind
	Return Kind
}

// ArgSlots returns the number of operand stack entries consumed by a call
// with this signature.
func (s Signature) ArgSlots() int {
	return len(s.Params)
}

// Method is a resolved method: the unit the graph builder parses. It pairs
// a class-qualified name with raw bytecode and the frame dimensions the
// parser needs.
type Method struct {
	Class     string
	Name      string
	Sig       Signature
	MaxLocals int
	Code      []byte

	// CanInline marks the method as a candidate for inlining at call sites.
	CanInline bool
}

// Key returns the "Class>>name" key used throughout registries and logs.
func (m *Method) Key() string {
	if m.Class == "" {
		return fmt.Sprintf("<detached>>>%s", m.Name)
	}
	return fmt.Sprintf("%s>>%s", m.Class, m.Name)
}

func (m *Method) String() string {
	return m.Key()
}

// Field is a resolved field reference, the target of field load and store
// instructions.
type Field struct {
	Class string
	Name  string
	Kind  Kind
}

// Key returns the "Class.name" key for the field.
func (f *Field) Key() string {
	return fmt.Sprintf("%s.%s", f.Class, f.Name)
}
