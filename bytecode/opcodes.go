// Package bytecode defines the stack bytecode consumed by the graph
// builder: opcode metadata, an emitter, a reader, a disassembler, and a
// small line-oriented assembler used by tests and the CLI.
package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode represents a single bytecode instruction.
type Opcode byte

// Stack Operations
const (
	OpNOP Opcode = 0x00 // no operation
	OpPOP Opcode = 0x01 // discard top of stack
	OpDUP Opcode = 0x02 // duplicate top of stack
)

// Push Constants
const (
	OpPushI32  Opcode = 0x10 // push 32-bit signed integer
	OpPushI64  Opcode = 0x11 // push 64-bit signed integer
	OpPushF64  Opcode = 0x12 // push inline float64 (8 bytes)
	OpPushNull Opcode = 0x13 // push null reference
)

// Local Variables
const (
	OpLoad  Opcode = 0x20 // push local (8-bit index)
	OpStore Opcode = 0x21 // pop into local (8-bit index)
)

// Arithmetic
const (
	OpAdd Opcode = 0x30 // pop 2, push sum
	OpSub Opcode = 0x31 // pop 2, push difference
	OpMul Opcode = 0x32 // pop 2, push product
	OpDiv Opcode = 0x33 // pop 2, push quotient; can deoptimize
)

// Field Access
const (
	OpGetField Opcode = 0x40 // pop object, push field (16-bit field index)
	OpPutField Opcode = 0x41 // pop value and object, store field (16-bit field index)
)

// Calls
const (
	OpInvoke Opcode = 0x50 // call method (16-bit method index)
)

// Returns
const (
	OpRet     Opcode = 0x60 // return top of stack
	OpRetVoid Opcode = 0x61 // return nothing
)

// Raw Word Operations (legal only in replacement bodies)
const (
	OpWordRead  Opcode = 0x70 // pop address, push raw word (16-bit offset)
	OpWordToInt Opcode = 0x71 // pop raw word, push int
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name         string // human-readable name
	OperandBytes int    // number of operand bytes
}

// opcodeTable maps opcodes to their metadata.
var opcodeTable = map[Opcode]OpcodeInfo{
	OpNOP: {"NOP", 0},
	OpPOP: {"POP", 0},
	OpDUP: {"DUP", 0},

	OpPushI32:  {"PUSH_I32", 4},
	OpPushI64:  {"PUSH_I64", 8},
	OpPushF64:  {"PUSH_F64", 8},
	OpPushNull: {"PUSH_NULL", 0},

	OpLoad:  {"LOAD", 1},
	OpStore: {"STORE", 1},

	OpAdd: {"ADD", 0},
	OpSub: {"SUB", 0},
	OpMul: {"MUL", 0},
	OpDiv: {"DIV", 0},

	OpGetField: {"GETFIELD", 2},
	OpPutField: {"PUTFIELD", 2},

	OpInvoke: {"INVOKE", 2},

	OpRet:     {"RET", 0},
	OpRetVoid: {"RETVOID", 0},

	OpWordRead:  {"WORDREAD", 2},
	OpWordToInt: {"W2I", 0},
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", byte(op))}
}

// Known reports whether the opcode is part of the instruction set.
func (op Opcode) Known() bool {
	_, ok := opcodeTable[op]
	return ok
}

// Name returns the human-readable name for an opcode.
func (op Opcode) Name() string {
	return op.Info().Name
}

// OperandBytes returns the number of operand bytes for an opcode.
func (op Opcode) OperandBytes() int {
	return op.Info().OperandBytes
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}

// ---------------------------------------------------------------------------
// Builder: helper for constructing bytecode
// ---------------------------------------------------------------------------

// Builder helps construct bytecode sequences.
type Builder struct {
	bytes []byte
}

// NewBuilder creates a new bytecode builder.
func NewBuilder() *Builder {
	return &Builder{bytes: make([]byte, 0, 64)}
}

// Bytes returns the constructed bytecode.
func (b *Builder) Bytes() []byte {
	return b.bytes
}

// Len returns the current length.
func (b *Builder) Len() int {
	return len(b.bytes)
}

// Emit appends an opcode with no operands.
func (b *Builder) Emit(op Opcode) {
	b.bytes = append(b.bytes, byte(op))
}

// EmitByte appends an opcode with a single byte operand.
func (b *Builder) EmitByte(op Opcode, operand byte) {
	b.bytes = append(b.bytes, byte(op), operand)
}

// EmitUint16 appends an opcode with a 16-bit operand (little-endian).
func (b *Builder) EmitUint16(op Opcode, operand uint16) {
	b.bytes = append(b.bytes, byte(op), byte(operand), byte(operand>>8))
}

// EmitInt32 appends an opcode with a 32-bit operand (little-endian).
func (b *Builder) EmitInt32(op Opcode, operand int32) {
	b.bytes = append(b.bytes, byte(op))
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(operand))
	b.bytes = append(b.bytes, buf[:]...)
}

// EmitInt64 appends an opcode with a 64-bit operand (little-endian).
func (b *Builder) EmitInt64(op Opcode, operand int64) {
	b.bytes = append(b.bytes, byte(op))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(operand))
	b.bytes = append(b.bytes, buf[:]...)
}

// EmitFloat64 appends an opcode with a 64-bit float operand.
func (b *Builder) EmitFloat64(op Opcode, operand float64) {
	b.bytes = append(b.bytes, byte(op))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(operand))
	b.bytes = append(b.bytes, buf[:]...)
}

// ---------------------------------------------------------------------------
// Reader: decoding for parsing and disassembly
// ---------------------------------------------------------------------------

// Reader reads bytecode for parsing or disassembly.
type Reader struct {
	bytes []byte
	pos   int
}

// NewReader creates a reader for bytecode.
func NewReader(bc []byte) *Reader {
	return &Reader{bytes: bc}
}

// Position returns the current read position.
func (r *Reader) Position() int {
	return r.pos
}

// HasMore returns true if there are more bytes to read.
func (r *Reader) HasMore() bool {
	return r.pos < len(r.bytes)
}

// ReadOpcode reads and returns the next opcode.
func (r *Reader) ReadOpcode() (Opcode, error) {
	if r.pos >= len(r.bytes) {
		return 0, fmt.Errorf("bytecode: underflow at %d", r.pos)
	}
	op := Opcode(r.bytes[r.pos])
	r.pos++
	return op, nil
}

// ReadByte reads a single operand byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.bytes) {
		return 0, fmt.Errorf("bytecode: operand underflow at %d", r.pos)
	}
	v := r.bytes[r.pos]
	r.pos++
	return v, nil
}

// ReadUint16 reads a little-endian 16-bit operand.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.bytes) {
		return 0, fmt.Errorf("bytecode: operand underflow at %d", r.pos)
	}
	v := binary.LittleEndian.Uint16(r.bytes[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadInt32 reads a little-endian 32-bit operand.
func (r *Reader) ReadInt32() (int32, error) {
	if r.pos+4 > len(r.bytes) {
		return 0, fmt.Errorf("bytecode: operand underflow at %d", r.pos)
	}
	v := int32(binary.LittleEndian.Uint32(r.bytes[r.pos:]))
	r.pos += 4
	return v, nil
}

// ReadInt64 reads a little-endian 64-bit operand.
func (r *Reader) ReadInt64() (int64, error) {
	if r.pos+8 > len(r.bytes) {
		return 0, fmt.Errorf("bytecode: operand underflow at %d", r.pos)
	}
	v := int64(binary.LittleEndian.Uint64(r.bytes[r.pos:]))
	r.pos += 8
	return v, nil
}

// ReadFloat64 reads a little-endian float64 operand.
func (r *Reader) ReadFloat64() (float64, error) {
	bits, err := r.ReadInt64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(bits)), nil
}

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// DisassembleInstruction disassembles a single instruction at the reader's
// position and advances past it.
func DisassembleInstruction(r *Reader) (string, error) {
	pos := r.Position()
	op, err := r.ReadOpcode()
	if err != nil {
		return "", err
	}
	switch op {
	case OpPushI32:
		v, err := r.ReadInt32()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%4d: %s %d", pos, op, v), nil
	case OpPushI64:
		v, err := r.ReadInt64()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%4d: %s %d", pos, op, v), nil
	case OpPushF64:
		v, err := r.ReadFloat64()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%4d: %s %g", pos, op, v), nil
	case OpLoad, OpStore:
		v, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%4d: %s %d", pos, op, v), nil
	case OpGetField, OpPutField, OpInvoke, OpWordRead:
		v, err := r.ReadUint16()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%4d: %s %d", pos, op, v), nil
	default:
		return fmt.Sprintf("%4d: %s", pos, op), nil
	}
}

// Disassemble returns a full disassembly of bytecode, one instruction per
// line.
func Disassemble(bc []byte) (string, error) {
	r := NewReader(bc)
	out := ""
	for r.HasMore() {
		line, err := DisassembleInstruction(r)
		if err != nil {
			return out, err
		}
		out += line + "\n"
	}
	return out, nil
}
