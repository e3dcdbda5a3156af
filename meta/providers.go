package meta

import (
	"fmt"
	"math"
	"sync"
)

// ---------------------------------------------------------------------------
// Provider bundle
// ---------------------------------------------------------------------------
// The graph builder consumes type and constant information through this
// bundle. All providers must be safe for concurrent reads: independent
// compilations share them.

// Constant is an immutable compile-time constant. Primitive constants store
// their bit pattern; object constants carry the boxed value.
type Constant struct {
	Kind   Kind
	Bits   uint64
	Object any
}

// IsNull reports whether this is the null object constant.
func (c Constant) IsNull() bool {
	return c.Kind == Object && c.Object == nil
}

func (c Constant) String() string {
	switch c.Kind {
	case Int:
		return fmt.Sprintf("%d", int32(c.Bits))
	case Long:
		return fmt.Sprintf("%dL", int64(c.Bits))
	case Double:
		return fmt.Sprintf("%g", math.Float64frombits(c.Bits))
	case Object:
		if c.Object == nil {
			return "null"
		}
		return fmt.Sprintf("obj(%v)", c.Object)
	default:
		return fmt.Sprintf("%s(%#x)", c.Kind, c.Bits)
	}
}

// MetaAccess resolves the symbolic operands of bytecode instructions:
// method indices at call sites and field indices at field accesses.
type MetaAccess interface {
	// MethodAt resolves the method referenced by an invoke operand.
	MethodAt(index int) (*Method, error)

	// FieldAt resolves the field referenced by a field access operand.
	FieldAt(index int) (*Field, error)

	// LookupMethod finds a registered method by its "Class>>name" key,
	// or nil if unknown.
	LookupMethod(key string) *Method
}

// ConstantReflection builds and inspects primitive constants.
type ConstantReflection interface {
	ForInt(v int32) Constant
	ForLong(v int64) Constant
	ForDouble(v float64) Constant
	Null() Constant

	// AsInt64 extracts an integral value, widening as needed.
	AsInt64(c Constant) (int64, error)
}

// SnippetReflection wraps arbitrary host values as object constants so
// replacement bodies can reference them.
type SnippetReflection interface {
	ForObject(v any) Constant
	AsObject(c Constant) (any, error)
}

// ---------------------------------------------------------------------------
// Resolver: the in-memory provider implementation
// ---------------------------------------------------------------------------

// Resolver is the default MetaAccess/ConstantReflection/SnippetReflection
// implementation backed by registration tables. Registration happens before
// compilation starts; lookups afterwards are read-only and therefore safe
// for concurrent use.
type Resolver struct {
	mu      sync.RWMutex
	methods []*Method
	fields  []*Field
	byKey   map[string]*Method
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{byKey: make(map[string]*Method)}
}

// RegisterMethod adds a method and returns its invoke index.
func (r *Resolver) RegisterMethod(m *Method) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := len(r.methods)
	r.methods = append(r.methods, m)
	r.byKey[m.Key()] = m
	return idx
}

// RegisterField adds a field and returns its access index.
func (r *Resolver) RegisterField(f *Field) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := len(r.fields)
	r.fields = append(r.fields, f)
	return idx
}

// MethodAt implements MetaAccess.
func (r *Resolver) MethodAt(index int) (*Method, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.methods) {
		return nil, fmt.Errorf("meta: no method registered at index %d", index)
	}
	return r.methods[index], nil
}

// FieldAt implements MetaAccess.
func (r *Resolver) FieldAt(index int) (*Field, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.fields) {
		return nil, fmt.Errorf("meta: no field registered at index %d", index)
	}
	return r.fields[index], nil
}

// LookupMethod implements MetaAccess.
func (r *Resolver) LookupMethod(key string) *Method {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[key]
}

// ForInt implements ConstantReflection.
func (r *Resolver) ForInt(v int32) Constant {
	return Constant{Kind: Int, Bits: uint64(uint32(v))}
}

// ForLong implements ConstantReflection.
func (r *Resolver) ForLong(v int64) Constant {
	return Constant{Kind: Long, Bits: uint64(v)}
}

// ForDouble implements ConstantReflection.
func (r *Resolver) ForDouble(v float64) Constant {
	return Constant{Kind: Double, Bits: math.Float64bits(v)}
}

// Null implements ConstantReflection.
func (r *Resolver) Null() Constant {
	return Constant{Kind: Object}
}

// AsInt64 implements ConstantReflection.
func (r *Resolver) AsInt64(c Constant) (int64, error) {
	switch c.Kind.StackKind() {
	case Int:
		return int64(int32(c.Bits)), nil
	case Long:
		return int64(c.Bits), nil
	default:
		return 0, fmt.Errorf("meta: constant %s is not integral", c)
	}
}

// ForObject implements SnippetReflection.
func (r *Resolver) ForObject(v any) Constant {
	return Constant{Kind: Object, Object: v}
}

// AsObject implements SnippetReflection.
func (r *Resolver) AsObject(c Constant) (any, error) {
	if c.Kind != Object {
		return nil, fmt.Errorf("meta: constant %s is not an object", c)
	}
	return c.Object, nil
}
