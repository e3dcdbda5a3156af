package meta

// ---------------------------------------------------------------------------
// Value kinds
// ---------------------------------------------------------------------------

// Kind is the runtime representation category of a value flowing through
// the graph builder: the primitive categories, object references, and the
// raw machine word kind that only replacement bodies may use.
type Kind uint8

const (
	Void Kind = iota
	Boolean
	Byte
	Short
	Char
	Int
	Long
	Float
	Double
	Object
	Word    // raw machine word; legal only inside replacement bodies
	Illegal // placeholder for unusable frame slots
)

var kindNames = [...]string{
	Void:    "void",
	Boolean: "boolean",
	Byte:    "byte",
	Short:   "short",
	Char:    "char",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	Object:  "object",
	Word:    "word",
	Illegal: "illegal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind?"
}

// StackKind returns the kind a value of this kind occupies on the operand
// stack. Sub-int kinds widen to Int; everything else is unchanged.
func (k Kind) StackKind() Kind {
	switch k {
	case Boolean, Byte, Short, Char:
		return Int
	default:
		return k
	}
}

// IsJava reports whether this kind is visible to the interpreter's frame
// model. Word and Illegal are compiler-internal kinds: they may only appear
// while parsing a replacement body.
func (k Kind) IsJava() bool {
	switch k {
	case Word, Illegal:
		return false
	default:
		return true
	}
}

// SlotCount returns the number of frame slots a value of this kind
// occupies: 2 for Long and Double, 0 for Void, 1 otherwise.
func (k Kind) SlotCount() int {
	switch k {
	case Void:
		return 0
	case Long, Double:
		return 2
	default:
		return 1
	}
}

// IsNumeric reports whether arithmetic is defined on this kind.
func (k Kind) IsNumeric() bool {
	switch k.StackKind() {
	case Int, Long, Float, Double:
		return true
	default:
		return false
	}
}
