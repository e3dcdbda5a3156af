package bytecode

import (
	"bytes"
	"testing"
)

func TestAssembleProgram(t *testing.T) {
	src := `
	# sum two constants
	push 2
	push 3
	add
	ret
	`
	code, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	b := NewBuilder()
	b.EmitInt32(OpPushI32, 2)
	b.EmitInt32(OpPushI32, 3)
	b.Emit(OpAdd)
	b.Emit(OpRet)

	if !bytes.Equal(code, b.Bytes()) {
		t.Errorf("Assemble produced %x, want %x", code, b.Bytes())
	}
}

func TestAssembleOperandForms(t *testing.T) {
	tests := []struct {
		src  string
		want []byte
	}{
		{"nop", []byte{byte(OpNOP)}},
		{"load 2", []byte{byte(OpLoad), 2}},
		{"invoke 258", []byte{byte(OpInvoke), 2, 1}},
		{"wordread 8", []byte{byte(OpWordRead), 8, 0}},
		{"w2i", []byte{byte(OpWordToInt)}},
		{"pushnull", []byte{byte(OpPushNull)}},
	}
	for _, tt := range tests {
		code, err := Assemble(tt.src)
		if err != nil {
			t.Errorf("Assemble(%q): %v", tt.src, err)
			continue
		}
		if !bytes.Equal(code, tt.want) {
			t.Errorf("Assemble(%q) = %x, want %x", tt.src, code, tt.want)
		}
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown mnemonic", "frobnicate"},
		{"missing operand", "push"},
		{"extra operand", "add 1"},
		{"bad operand", "load many"},
		{"operand out of range", "load 300"},
	}
	for _, tt := range tests {
		if _, err := Assemble(tt.src); err == nil {
			t.Errorf("%s: Assemble(%q) should fail", tt.name, tt.src)
		}
	}
}

func TestAssembleDisassembleRoundTrip(t *testing.T) {
	src := "push 10\npush 5\ndiv\nret"
	code, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	out, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	for _, want := range []string{"PUSH_I32 10", "PUSH_I32 5", "DIV", "RET"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("round trip missing %q:\n%s", want, out)
		}
	}
}
