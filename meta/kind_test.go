package meta

import "testing"

func TestKindStackKind(t *testing.T) {
	tests := []struct {
		kind Kind
		want Kind
	}{
		{Boolean, Int},
		{Byte, Int},
		{Short, Int},
		{Char, Int},
		{Int, Int},
		{Long, Long},
		{Float, Float},
		{Double, Double},
		{Object, Object},
		{Word, Word},
		{Void, Void},
	}
	for _, tt := range tests {
		if got := tt.kind.StackKind(); got != tt.want {
			t.Errorf("%s.StackKind() = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestKindIsJava(t *testing.T) {
	for k := Void; k <= Illegal; k++ {
		want := k != Word && k != Illegal
		if got := k.IsJava(); got != want {
			t.Errorf("%s.IsJava() = %v, want %v", k, got, want)
		}
	}
}

func TestKindSlotCount(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Void, 0},
		{Int, 1},
		{Long, 2},
		{Double, 2},
		{Object, 1},
		{Word, 1},
	}
	for _, tt := range tests {
		if got := tt.kind.SlotCount(); got != tt.want {
			t.Errorf("%s.SlotCount() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestKindIsNumeric(t *testing.T) {
	numeric := map[Kind]bool{
		Boolean: true, Byte: true, Short: true, Char: true,
		Int: true, Long: true, Float: true, Double: true,
	}
	for k := Void; k <= Illegal; k++ {
		if got := k.IsNumeric(); got != numeric[k] {
			t.Errorf("%s.IsNumeric() = %v, want %v", k, got, numeric[k])
		}
	}
}

func TestMethodKey(t *testing.T) {
	m := &Method{Class: "Widget", Name: "resize"}
	if got := m.Key(); got != "Widget>>resize" {
		t.Errorf("Key() = %q, want %q", got, "Widget>>resize")
	}
	detached := &Method{Name: "orphan"}
	if got := detached.Key(); got != "<detached>>>orphan" {
		t.Errorf("Key() = %q, want %q", got, "<detached>>>orphan")
	}
}

func TestResolverMethods(t *testing.T) {
	r := NewResolver()
	m := &Method{Class: "A", Name: "run"}
	idx := r.RegisterMethod(m)

	got, err := r.MethodAt(idx)
	if err != nil {
		t.Fatalf("MethodAt(%d): %v", idx, err)
	}
	if got != m {
		t.Errorf("MethodAt(%d) returned wrong method", idx)
	}
	if r.LookupMethod("A>>run") != m {
		t.Errorf("LookupMethod did not find registered method")
	}
	if _, err := r.MethodAt(99); err == nil {
		t.Errorf("MethodAt(99) should fail")
	}
}

func TestResolverConstants(t *testing.T) {
	r := NewResolver()

	c := r.ForInt(-7)
	if v, err := r.AsInt64(c); err != nil || v != -7 {
		t.Errorf("AsInt64(ForInt(-7)) = %d, %v", v, err)
	}
	c = r.ForLong(1 << 40)
	if v, err := r.AsInt64(c); err != nil || v != 1<<40 {
		t.Errorf("AsInt64(ForLong(1<<40)) = %d, %v", v, err)
	}
	if !r.Null().IsNull() {
		t.Errorf("Null() is not null")
	}
	if _, err := r.AsInt64(r.ForDouble(1.5)); err == nil {
		t.Errorf("AsInt64 of a double should fail")
	}

	obj := struct{ name string }{"payload"}
	oc := r.ForObject(obj)
	back, err := r.AsObject(oc)
	if err != nil || back != obj {
		t.Errorf("AsObject round trip failed: %v, %v", back, err)
	}
}

func TestAssumptions(t *testing.T) {
	a := NewAssumptions()
	a.Record(Assumption{Kind: "inlined-callee", Target: "A>>run"})
	a.Record(Assumption{Kind: "intrinsified", Target: "B>>read"})

	snap := a.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() has %d entries, want 2", len(snap))
	}
	if snap[0].Target != "A>>run" || snap[1].Kind != "intrinsified" {
		t.Errorf("Snapshot() order or content wrong: %+v", snap)
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
}
