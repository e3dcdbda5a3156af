package bytecode

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Line assembler
// ---------------------------------------------------------------------------
// One instruction per line, lowercase mnemonic followed by an optional
// decimal operand. '#' starts a comment. Used by tests and the CLI; real
// front ends emit bytecode through Builder directly.

// mnemonics maps assembly names to opcodes.
var mnemonics = map[string]Opcode{
	"nop":      OpNOP,
	"pop":      OpPOP,
	"dup":      OpDUP,
	"push":     OpPushI32,
	"push64":   OpPushI64,
	"pushf":    OpPushF64,
	"pushnull": OpPushNull,
	"load":     OpLoad,
	"store":    OpStore,
	"add":      OpAdd,
	"sub":      OpSub,
	"mul":      OpMul,
	"div":      OpDiv,
	"getfield": OpGetField,
	"putfield": OpPutField,
	"invoke":   OpInvoke,
	"ret":      OpRet,
	"retvoid":  OpRetVoid,
	"wordread": OpWordRead,
	"w2i":      OpWordToInt,
}

// Assemble converts assembly text into bytecode.
func Assemble(src string) ([]byte, error) {
	b := NewBuilder()
	for lineNo, raw := range strings.Split(src, "\n") {
		line := raw
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		op, ok := mnemonics[strings.ToLower(fields[0])]
		if !ok {
			return nil, fmt.Errorf("bytecode: line %d: unknown mnemonic %q", lineNo+1, fields[0])
		}
		needsOperand := op.OperandBytes() > 0
		if needsOperand && len(fields) < 2 {
			return nil, fmt.Errorf("bytecode: line %d: %s requires an operand", lineNo+1, op)
		}
		if !needsOperand && len(fields) > 1 {
			return nil, fmt.Errorf("bytecode: line %d: %s takes no operand", lineNo+1, op)
		}
		if !needsOperand {
			b.Emit(op)
			continue
		}
		if err := emitWithOperand(b, op, fields[1]); err != nil {
			return nil, fmt.Errorf("bytecode: line %d: %w", lineNo+1, err)
		}
	}
	return b.Bytes(), nil
}

func emitWithOperand(b *Builder, op Opcode, operand string) error {
	switch op {
	case OpPushI32:
		v, err := strconv.ParseInt(operand, 10, 32)
		if err != nil {
			return fmt.Errorf("bad i32 operand %q: %w", operand, err)
		}
		b.EmitInt32(op, int32(v))
	case OpPushI64:
		v, err := strconv.ParseInt(operand, 10, 64)
		if err != nil {
			return fmt.Errorf("bad i64 operand %q: %w", operand, err)
		}
		b.EmitInt64(op, v)
	case OpPushF64:
		v, err := strconv.ParseFloat(operand, 64)
		if err != nil {
			return fmt.Errorf("bad f64 operand %q: %w", operand, err)
		}
		b.EmitFloat64(op, v)
	case OpLoad, OpStore:
		v, err := strconv.ParseUint(operand, 10, 8)
		if err != nil {
			return fmt.Errorf("bad local index %q: %w", operand, err)
		}
		b.EmitByte(op, byte(v))
	case OpGetField, OpPutField, OpInvoke, OpWordRead:
		v, err := strconv.ParseUint(operand, 10, 16)
		if err != nil {
			return fmt.Errorf("bad index operand %q: %w", operand, err)
		}
		b.EmitUint16(op, uint16(v))
	default:
		return fmt.Errorf("%s takes no operand", op)
	}
	return nil
}
