package builder

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/graft/bytecode"
	"github.com/chazu/graft/graph"
	"github.com/chazu/graft/meta"
)

var log = commonlog.GetLogger("graft.builder")

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser drives graph construction for one compilation: one graph, one
// context stack, one goroutine. The bytecode decode loop calls into the
// active Context once per instruction, in stack-effect order.
type Parser struct {
	graph     *graph.Graph
	providers Providers
	opts      Options
	plugins   *Plugins
	contexts  contextStack
	failed    *BailoutError
}

// Build parses a method into a fresh graph. plugins may be nil. On bailout
// the partially built graph is frozen and the returned error is a
// *BailoutError.
func Build(m *meta.Method, providers Providers, opts Options, plugins *Plugins) (*graph.Graph, error) {
	if providers.Stamps == nil {
		providers.Stamps = graph.DefaultStamps{}
	}
	if providers.Assumptions == nil {
		providers.Assumptions = meta.NewAssumptions()
	}
	p := &Parser{
		graph:     graph.New(m.Key()),
		providers: providers,
		opts:      opts,
		plugins:   plugins,
	}
	ctx := p.pushContext(m, nil, nil, nil)
	p.seedParameters(ctx)
	if err := p.parse(ctx); err != nil {
		return nil, err
	}
	p.contexts.pop()
	log.Debugf("built graph for %s: %d nodes", m.Key(), p.graph.NodeCount())
	return p.graph, nil
}

// pushContext creates a child context on the stack. args seed the callee's
// locals; nil args means the context is the root and parameters become
// ParameterNodes.
func (p *Parser) pushContext(m *meta.Method, args []slot, repl *Replacement, outer *graph.FrameState) *parserContext {
	ctx := &parserContext{
		parser:      p,
		stack:       &p.contexts,
		method:      m,
		replacement: repl,
		outerState:  outer,
	}
	ctx.frame = newFrame(ctx, maxLocals(m))
	for i, s := range args {
		ctx.frame.locals[i] = s
	}
	p.contexts.push(ctx)
	return ctx
}

// maxLocals never reports fewer locals than the signature needs.
func maxLocals(m *meta.Method) int {
	if m.MaxLocals < len(m.Sig.Params) {
		return len(m.Sig.Params)
	}
	return m.MaxLocals
}

// seedParameters appends a ParameterNode per root parameter and installs it
// in the corresponding local.
func (p *Parser) seedParameters(ctx *parserContext) {
	for i, k := range ctx.method.Sig.Params {
		n := ctx.Append(graph.NewParameter(i, p.providers.Stamps.ForKind(k)))
		ctx.frame.locals[i] = slot{kind: k.StackKind(), node: n}
	}
}

// bailout aborts the compilation: it freezes the graph so stray appends
// fail fast, records the error, and hands it to the caller.
func (p *Parser) bailout(c *parserContext, msg string) error {
	err := &BailoutError{Method: c.method.Key(), BCI: c.bci, Message: msg}
	if p.failed == nil {
		p.failed = err
		p.graph.Freeze()
		log.Warningf("%s", err)
	}
	return err
}

// ---------------------------------------------------------------------------
// Instruction decoding
// ---------------------------------------------------------------------------

// insn is one decoded instruction.
type insn struct {
	op  bytecode.Opcode
	u8  byte
	u16 uint16
	i32 int32
	i64 int64
	f64 float64
}

func decode(r *bytecode.Reader) (insn, error) {
	var in insn
	op, err := r.ReadOpcode()
	if err != nil {
		return in, err
	}
	in.op = op
	switch op {
	case bytecode.OpPushI32:
		in.i32, err = r.ReadInt32()
	case bytecode.OpPushI64:
		in.i64, err = r.ReadInt64()
	case bytecode.OpPushF64:
		in.f64, err = r.ReadFloat64()
	case bytecode.OpLoad, bytecode.OpStore:
		in.u8, err = r.ReadByte()
	case bytecode.OpGetField, bytecode.OpPutField, bytecode.OpInvoke, bytecode.OpWordRead:
		in.u16, err = r.ReadUint16()
	default:
		if op.OperandBytes() != 0 {
			err = fmt.Errorf("bytecode: no decoder for %s", op)
		}
	}
	return in, err
}

// ---------------------------------------------------------------------------
// Parse loop
// ---------------------------------------------------------------------------

func (p *Parser) parse(c *parserContext) error {
	if p.opts.EagerResolving {
		if err := p.resolveEagerly(c); err != nil {
			return err
		}
	}
	r := bytecode.NewReader(c.method.Code)
	for r.HasMore() {
		c.bci = r.Position()
		in, err := decode(r)
		if err != nil {
			return p.bailout(c, err.Error())
		}
		if !in.op.Known() {
			return p.bailout(c, fmt.Sprintf("unsupported instruction 0x%02X", byte(in.op)))
		}
		c.nextBCI = r.Position()
		if err := p.parseInstruction(c, in); err != nil {
			return err
		}
		if c.done {
			return nil
		}
	}
	return p.bailout(c, "control falls off the end of the method")
}

// resolveEagerly pre-resolves every symbolic operand so resolution failures
// surface before any node is built.
func (p *Parser) resolveEagerly(c *parserContext) error {
	r := bytecode.NewReader(c.method.Code)
	for r.HasMore() {
		c.bci = r.Position()
		in, err := decode(r)
		if err != nil {
			return p.bailout(c, err.Error())
		}
		switch in.op {
		case bytecode.OpInvoke:
			if _, err := p.providers.MetaAccess.MethodAt(int(in.u16)); err != nil {
				return p.bailout(c, err.Error())
			}
		case bytecode.OpGetField, bytecode.OpPutField:
			if _, err := p.providers.MetaAccess.FieldAt(int(in.u16)); err != nil {
				return p.bailout(c, err.Error())
			}
		}
	}
	c.bci = 0
	return nil
}

func (p *Parser) parseInstruction(c *parserContext, in insn) error {
	stamps := p.providers.Stamps
	consts := p.providers.Constants
	switch in.op {
	case bytecode.OpNOP:
		return nil

	case bytecode.OpPOP:
		_, err := c.frame.pop()
		if err != nil {
			return p.bailout(c, err.Error())
		}
		return nil

	case bytecode.OpDUP:
		s, err := c.frame.peek()
		if err != nil {
			return p.bailout(c, err.Error())
		}
		c.Push(s.kind, s.node)
		return nil

	case bytecode.OpPushI32:
		n := graph.NewConstant(consts.ForInt(in.i32), stamps.ForKind(meta.Int))
		AddPush(c, n)
		return nil

	case bytecode.OpPushI64:
		n := graph.NewConstant(consts.ForLong(in.i64), stamps.ForKind(meta.Long))
		AddPush(c, n)
		return nil

	case bytecode.OpPushF64:
		n := graph.NewConstant(consts.ForDouble(in.f64), stamps.ForKind(meta.Double))
		AddPush(c, n)
		return nil

	case bytecode.OpPushNull:
		n := graph.NewConstant(consts.Null(), stamps.ForKind(meta.Object))
		AddPush(c, n)
		return nil

	case bytecode.OpLoad:
		s, err := c.frame.local(int(in.u8))
		if err != nil {
			return p.bailout(c, err.Error())
		}
		c.Push(s.kind, s.node)
		return nil

	case bytecode.OpStore:
		s, err := c.frame.pop()
		if err != nil {
			return p.bailout(c, err.Error())
		}
		if err := c.frame.setLocal(int(in.u8), s); err != nil {
			return p.bailout(c, err.Error())
		}
		return nil

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul:
		return p.parseArith(c, in.op)

	case bytecode.OpDiv:
		y, err := c.frame.pop()
		if err != nil {
			return p.bailout(c, err.Error())
		}
		x, err := c.frame.popKind(y.kind)
		if err != nil {
			return p.bailout(c, err.Error())
		}
		kind := x.kind.StackKind()
		if !kind.IsNumeric() && !c.ParsingReplacement() {
			return p.bailout(c, fmt.Sprintf("DIV on non-numeric kind %s", kind))
		}
		AddPushKind(c, kind, graph.NewDiv(stamps.ForKind(kind), x.node, y.node))
		return nil

	case bytecode.OpGetField:
		field, err := p.providers.MetaAccess.FieldAt(int(in.u16))
		if err != nil {
			return p.bailout(c, err.Error())
		}
		obj, err := c.frame.popKind(meta.Object)
		if err != nil {
			return p.bailout(c, err.Error())
		}
		n := graph.NewLoadField(field, stamps.ForKind(field.Kind), obj.node)
		AddPushKind(c, field.Kind.StackKind(), n)
		return nil

	case bytecode.OpPutField:
		field, err := p.providers.MetaAccess.FieldAt(int(in.u16))
		if err != nil {
			return p.bailout(c, err.Error())
		}
		value, err := c.frame.popKind(field.Kind)
		if err != nil {
			return p.bailout(c, err.Error())
		}
		obj, err := c.frame.popKind(meta.Object)
		if err != nil {
			return p.bailout(c, err.Error())
		}
		Add(c, graph.NewStoreField(field, obj.node, value.node))
		return nil

	case bytecode.OpInvoke:
		return p.parseInvoke(c, int(in.u16))

	case bytecode.OpRet:
		s, err := c.frame.popKind(c.method.Sig.Return)
		if err != nil {
			return p.bailout(c, err.Error())
		}
		if c.index == 0 {
			c.Append(graph.NewReturn(s.node))
		}
		c.returned = s.node
		c.done = true
		return nil

	case bytecode.OpRetVoid:
		if c.method.Sig.Return != meta.Void {
			return p.bailout(c, fmt.Sprintf("RETVOID in method returning %s", c.method.Sig.Return))
		}
		if c.index == 0 {
			c.Append(graph.NewReturn(nil))
		}
		c.done = true
		return nil

	case bytecode.OpWordRead:
		if !c.ParsingReplacement() {
			return p.bailout(c, "raw word read outside a replacement scope")
		}
		addr, err := c.frame.pop()
		if err != nil {
			return p.bailout(c, err.Error())
		}
		n := graph.NewWordRead(int(in.u16), stamps.Word(), addr.node)
		AddPushKind(c, meta.Word, n)
		return nil

	case bytecode.OpWordToInt:
		if !c.ParsingReplacement() {
			return p.bailout(c, "raw word cast outside a replacement scope")
		}
		word, err := c.frame.pop()
		if err != nil {
			return p.bailout(c, err.Error())
		}
		AddPushKind(c, meta.Int, graph.NewWordCast(stamps.ForKind(meta.Int), word.node))
		return nil

	default:
		return p.bailout(c, fmt.Sprintf("unsupported instruction 0x%02X", byte(in.op)))
	}
}

func (p *Parser) parseArith(c *parserContext, op bytecode.Opcode) error {
	y, err := c.frame.pop()
	if err != nil {
		return p.bailout(c, err.Error())
	}
	x, err := c.frame.popKind(y.kind)
	if err != nil {
		return p.bailout(c, err.Error())
	}
	kind := x.kind.StackKind()
	if !kind.IsNumeric() && !c.ParsingReplacement() {
		return p.bailout(c, fmt.Sprintf("%s on non-numeric kind %s", op, kind))
	}
	var arith graph.ArithOp
	switch op {
	case bytecode.OpAdd:
		arith = graph.OpAdd
	case bytecode.OpSub:
		arith = graph.OpSub
	case bytecode.OpMul:
		arith = graph.OpMul
	}
	n := graph.NewArith(arith, p.providers.Stamps.ForKind(kind), x.node, y.node)
	AddPushKind(c, kind, n)
	return nil
}
