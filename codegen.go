package main

import (
	"fmt"
	"log/slog"
	"sort"
)

// paramBase is the frame offset of the first parameter, just above the
// saved frame pointer and return address.
const paramBase = 8

// Generator lowers a checked program to postfix instructions.
type Generator struct {
	out  Emitter
	info *Info
	opts Options
	log  *slog.Logger

	lbl int
	// externs holds the functions to emit as external references.
	// Runtime helpers map to nil.
	externs      map[string]*Symbol
	entryDefined bool
}

// frame tracks stack layout while a function body is emitted.
type frame struct {
	offset       int // lowest local offset handed out so far
	returnOffset int // slot holding the address of a struct result
	returnSeen   bool
}

type loopLabels struct {
	step, end string
}

// genCtx is the state that changes as generation descends into the tree.
type genCtx struct {
	fn     *Symbol
	frame  *frame
	inBody bool
	loops  []loopLabels
}

func (c genCtx) withLoop(l loopLabels) genCtx {
	c.loops = append(c.loops[:len(c.loops):len(c.loops)], l)
	return c
}

func (c genCtx) innermostLoop() (loopLabels, bool) {
	if len(c.loops) == 0 {
		return loopLabels{}, false
	}
	return c.loops[len(c.loops)-1], true
}

func NewGenerator(info *Info, out Emitter, opts Options) *Generator {
	g := &Generator{
		out:     out,
		info:    info,
		opts:    opts,
		log:     opts.logger(),
		externs: make(map[string]*Symbol),
	}
	return g
}

// Generate emits code for a program that passed type checking. An
// *InternalError is returned if generation meets a state checking should
// have ruled out; the output is then incomplete.
func Generate(prog *Program, info *Info, out Emitter, opts Options) error {
	return generate(NewGenerator(info, out, opts), prog)
}

// Unit emits every top-level item, then the external references if
// the unit defines the entry function.
func (g *Generator) Unit(prog *Program) {
	ctx := genCtx{}
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *VarDecl:
			g.globalDecl(d)
		case *FuncDecl:
			sym := g.info.Funcs[d]
			if sym == nil {
				internalf(d, "function '%s' was not checked", d.Name)
			}
			if !sym.Defined {
				g.externs[sym.Name] = sym
			}
		case *FuncDef:
			g.funcDef(d, ctx)
		case *Nop:
		default:
			internalf(decl, "unexpected %s at top level", nodeName(decl))
		}
	}
	if g.entryDefined {
		g.emitExterns()
	}
}

// Externs returns the sorted names that would be emitted as external
// references.
func (g *Generator) Externs() []string {
	var names []string
	for name, sym := range g.externs {
		if sym != nil && sym.Defined {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Generator) emitExterns() {
	names := g.Externs()
	for _, name := range names {
		g.emitName(EXTERN, name)
	}
	g.log.Debug("emitted externs", "count", len(names))
}

func (g *Generator) emit(op Opcode) {
	g.out.Emit(Instr{Op: op})
}

func (g *Generator) emitInt(op Opcode, v int) {
	g.out.Emit(Instr{Op: op, Int: v})
}

func (g *Generator) emitFloat(op Opcode, v float64) {
	g.out.Emit(Instr{Op: op, Float: v})
}

func (g *Generator) emitName(op Opcode, name string) {
	g.out.Emit(Instr{Op: op, Str: name})
}

func (g *Generator) emitGlobal(name string, kind SymbolKind) {
	g.out.Emit(Instr{Op: GLOBAL, Str: name, Int: int(kind)})
}

// callHelper calls a runtime support function.
func (g *Generator) callHelper(name string) {
	g.externs[name] = nil
	g.emitName(CALL, name)
}

func (g *Generator) newLabel() string {
	g.lbl++
	return fmt.Sprintf("_L%d", g.lbl)
}

func (g *Generator) typeOf(e Expr) *Type {
	return g.info.TypeOf(e)
}

// convert promotes an int on top of the stack when a double is wanted.
func (g *Generator) convert(from, to *Type) {
	if to.Is(KindDouble) && from.Is(KindInt) {
		g.emit(I2D)
	}
}

func (g *Generator) load(t *Type) {
	switch {
	case t.Is(KindDouble):
		g.emit(LDDOUBLE)
	case t.Is(KindStruct):
		// An aggregate is handled through its address.
	default:
		g.emit(LDINT)
	}
}

func (g *Generator) store(node Node, t *Type) {
	switch {
	case t.Is(KindDouble):
		g.emit(STDOUBLE)
	case t.Is(KindStruct):
		internalf(node, "cannot store a %s in a single slot", t)
	default:
		g.emit(STINT)
	}
}

// width returns how many bytes evaluating e leaves on the stack.
func (g *Generator) width(e Expr) int {
	t := g.typeOf(e)
	switch {
	case t.Is(KindVoid):
		return 0
	case t.Is(KindDouble):
		return 8
	case t.Is(KindStruct):
		if tuple, ok := unwrap(e).(*Tuple); ok && len(tuple.Values) > 1 {
			n := 0
			for _, v := range tuple.Values {
				n += g.width(v)
			}
			return n
		}
		return 4
	default:
		return 4
	}
}

// discard evaluates e for its side effects only.
func (g *Generator) discard(e Expr, ctx genCtx) {
	g.expr(e, ctx)
	if n := g.width(e); n > 0 {
		g.emitInt(TRASH, n)
	}
}

// Globals

func (g *Generator) globalDecl(d *VarDecl) {
	syms := g.info.Defs[d]
	if len(syms) == 0 {
		internalf(d, "declaration was not checked")
	}
	if d.Qualifier == QualRequire {
		for _, sym := range syms {
			g.emitName(EXTERN, sym.Name)
		}
		return
	}
	if d.Init == nil {
		sym := syms[0]
		g.emit(BSS)
		g.emit(ALIGN)
		if d.Qualifier == QualPublic {
			g.emitGlobal(sym.Name, SymObject)
		}
		g.emitName(LABEL, sym.Name)
		g.emitInt(SALLOC, sym.Type.Size())
		return
	}
	if len(syms) == 1 {
		g.globalData(d, syms[0], d.Init)
		return
	}
	tuple, ok := unwrap(d.Init).(*Tuple)
	if !ok || len(tuple.Values) != len(syms) {
		internalf(d, "global sequence declaration needs one literal per name")
	}
	for i, sym := range syms {
		g.globalData(d, sym, tuple.Values[i])
	}
}

func (g *Generator) globalData(d *VarDecl, sym *Symbol, init Expr) {
	g.emit(DATA)
	g.emit(ALIGN)
	if d.Qualifier == QualPublic {
		g.emitGlobal(sym.Name, SymObject)
	}
	g.emitName(LABEL, sym.Name)
	g.staticValue(init, sym.Type)
}

// staticValue lays out a literal as initialized data of type t.
func (g *Generator) staticValue(e Expr, t *Type) {
	switch e := e.(type) {
	case *IntLit:
		if t.Is(KindDouble) {
			g.emitFloat(SDOUBLE, float64(e.Value))
		} else {
			g.emitInt(SINT, e.Value)
		}
	case *DoubleLit:
		g.emitFloat(SDOUBLE, e.Value)
	case *StringLit:
		g.stringLiteral(e.Value, false)
	case *NullLit:
		g.emitInt(SINT, 0)
	case *Unary:
		switch x := e.X.(type) {
		case *IntLit:
			v := x.Value
			if e.Op == OpNeg {
				v = -v
			}
			g.staticValue(&IntLit{exprNode: x.exprNode, Value: v}, t)
		case *DoubleLit:
			v := x.Value
			if e.Op == OpNeg {
				v = -v
			}
			g.emitFloat(SDOUBLE, v)
		default:
			internalf(e, "global initializer is not a literal")
		}
	case *Tuple:
		if len(e.Values) == 1 {
			g.staticValue(e.Values[0], t)
			return
		}
		if !t.Is(KindStruct) || len(t.Components) != len(e.Values) {
			internalf(e, "tuple initializer does not match %s", t)
		}
		for i, v := range e.Values {
			g.staticValue(v, t.Components[i])
		}
	default:
		internalf(e, "global initializer is not a literal")
	}
}

// stringLiteral places s in read-only data and pushes (or, outside a
// function, lays out) its address.
func (g *Generator) stringLiteral(s string, inBody bool) {
	lbl := g.newLabel()
	g.emit(RODATA)
	g.emit(ALIGN)
	g.emitName(LABEL, lbl)
	g.out.Emit(Instr{Op: SSTRING, Str: s})
	if inBody {
		g.emit(TEXT)
		g.emitName(ADDR, lbl)
	} else {
		g.emit(DATA)
		g.emitName(SADDR, lbl)
	}
}

// Functions

func (g *Generator) funcDef(d *FuncDef, ctx genCtx) {
	sym := g.info.Funcs[d]
	if sym == nil {
		internalf(d, "function '%s' was not checked", d.Name)
	}
	delete(g.externs, sym.Name)
	entry := sym.Name == g.opts.EntryLabel
	if entry {
		g.entryDefined = true
	}

	fr := &frame{}
	off := paramBase
	for _, p := range d.Params {
		psyms := g.info.Defs[p]
		if len(psyms) != 1 {
			internalf(p, "parameter was not checked")
		}
		psyms[0].Offset = off
		off += psyms[0].Type.Size()
	}
	fr.returnOffset = off

	size := FrameSize(d, g.info)
	g.emit(TEXT)
	g.emit(ALIGN)
	if d.Qualifier == QualPublic || entry {
		g.emitGlobal(sym.Name, SymFunc)
	}
	g.emitName(LABEL, sym.Name)
	g.emitInt(ENTER, size)

	body := genCtx{fn: sym, frame: fr, inBody: true, loops: ctx.loops}
	g.stmt(d.Body, body)

	if -fr.offset != size {
		internalf(d, "function '%s' uses %d bytes of locals but its frame has %d", d.Name, -fr.offset, size)
	}
	if sym.Type.Is(KindVoid) {
		if !terminates(d.Body) {
			g.emit(LEAVE)
			g.emit(RET)
		}
	} else if !fr.returnSeen {
		internalf(d, "function '%s' of type %s never returns a value", d.Name, sym.Type)
	}

	g.log.Debug("generated function", "name", sym.Name, "frame", size, "params", off-paramBase)
}

// terminates reports whether control cannot fall off the end of n.
func terminates(n Node) bool {
	switch n := n.(type) {
	case *Return:
		return true
	case *Block:
		return len(n.Stmts) > 0 && terminates(n.Stmts[len(n.Stmts)-1])
	case *IfElse:
		return terminates(n.Then) && terminates(n.Else)
	default:
		return false
	}
}

// Statements

func (g *Generator) stmt(node Node, ctx genCtx) {
	switch n := node.(type) {
	case *VarDecl:
		g.localDecl(n, ctx)
	case *Block:
		for _, s := range n.Stmts {
			g.stmt(s, ctx)
		}
	case *Eval:
		g.discard(n.X, ctx)
	case *Print:
		for _, arg := range n.Args {
			g.expr(arg, ctx)
			t := g.typeOf(arg)
			switch {
			case t.Is(KindInt):
				g.callHelper("printi")
				g.emitInt(TRASH, 4)
			case t.Is(KindDouble):
				g.callHelper("printd")
				g.emitInt(TRASH, 8)
			case t.Is(KindString):
				g.callHelper("prints")
				g.emitInt(TRASH, 4)
			default:
				internalf(arg, "cannot print a value of type %s", t)
			}
		}
		if n.Newline {
			g.callHelper("println")
		}
	case *For:
		g.forLoop(n, ctx)
	case *If:
		end := g.newLabel()
		g.expr(n.Cond, ctx)
		g.emitName(JZ, end)
		g.stmt(n.Then, ctx)
		g.emitName(LABEL, end)
	case *IfElse:
		otherwise, end := g.newLabel(), g.newLabel()
		g.expr(n.Cond, ctx)
		g.emitName(JZ, otherwise)
		g.stmt(n.Then, ctx)
		g.emitName(JMP, end)
		g.emitName(LABEL, otherwise)
		g.stmt(n.Else, ctx)
		g.emitName(LABEL, end)
	case *Break:
		loop, ok := ctx.innermostLoop()
		if !ok {
			internalf(n, "break outside for")
		}
		g.emitName(JMP, loop.end)
	case *Continue:
		loop, ok := ctx.innermostLoop()
		if !ok {
			internalf(n, "continue outside for")
		}
		g.emitName(JMP, loop.step)
	case *Return:
		g.ret(n, ctx)
	case *Nop:
	default:
		internalf(node, "unexpected statement %s", nodeName(node))
	}
}

func (g *Generator) forLoop(n *For, ctx genCtx) {
	test, step, end := g.newLabel(), g.newLabel(), g.newLabel()

	for _, init := range n.Inits {
		switch init := init.(type) {
		case *VarDecl:
			g.localDecl(init, ctx)
		case Expr:
			g.discard(init, ctx)
		default:
			internalf(init, "unexpected %s in for initializers", nodeName(init))
		}
	}

	g.emit(ALIGN)
	g.emitName(LABEL, test)
	for _, cond := range n.Conds {
		g.expr(cond, ctx)
		g.emitName(JZ, end)
	}

	g.stmt(n.Body, ctx.withLoop(loopLabels{step: step, end: end}))

	g.emit(ALIGN)
	g.emitName(LABEL, step)
	for _, incr := range n.Incrs {
		g.discard(incr, ctx)
	}
	g.emitName(JMP, test)
	g.emit(ALIGN)
	g.emitName(LABEL, end)
}

func (g *Generator) ret(n *Return, ctx genCtx) {
	if ctx.fn == nil {
		internalf(n, "return outside function")
	}
	ft := ctx.fn.Type
	if n.Value == nil {
		if !ft.Is(KindVoid) {
			internalf(n, "return without a value in function of type %s", ft)
		}
	} else {
		vt := g.typeOf(n.Value)
		switch {
		case ft.Is(KindDouble):
			g.expr(n.Value, ctx)
			g.convert(vt, ft)
			g.emit(STFVAL64)
		case ft.Is(KindInt), ft.Is(KindPointer), ft.Is(KindString):
			g.expr(n.Value, ctx)
			g.emit(STFVAL32)
		case ft.Is(KindStruct):
			result := ctx.frame.returnOffset
			g.storeAggregate(n.Value, ft, func(off int) {
				g.emitInt(LOCAL, result)
				g.emit(LDINT)
				g.emitInt(INT, off)
				g.emit(ADD)
			}, ctx)
			g.emitInt(LOCAL, result)
			g.emit(LDINT)
			g.emit(STFVAL32)
		default:
			internalf(n, "cannot return a value from function of type %s", ft)
		}
	}
	g.emit(LEAVE)
	g.emit(RET)
	ctx.frame.returnSeen = true
}

// Locals

func (g *Generator) allocate(sym *Symbol, ctx genCtx) {
	ctx.frame.offset -= sym.Type.Size()
	sym.Offset = ctx.frame.offset
}

func (g *Generator) localDecl(d *VarDecl, ctx genCtx) {
	syms := g.info.Defs[d]
	if len(syms) == 0 {
		internalf(d, "declaration was not checked")
	}
	for _, sym := range syms {
		g.allocate(sym, ctx)
	}
	if d.Init == nil {
		return
	}

	if len(syms) == 1 {
		g.initLocal(syms[0], d.Init, ctx)
		return
	}

	if tuple, ok := unwrap(d.Init).(*Tuple); ok && len(tuple.Values) == len(syms) {
		for i, sym := range syms {
			g.initLocal(sym, tuple.Values[i], ctx)
		}
		return
	}

	// A single aggregate: evaluate it once and copy each component out.
	source := g.typeOf(d.Init)
	if !source.Is(KindStruct) || len(source.Components) != len(syms) {
		internalf(d, "cannot unpack %s into %d variables", source, len(syms))
	}
	g.expr(d.Init, ctx)
	off := 0
	for i, sym := range syms {
		st := source.Components[i]
		g.emit(DUP32)
		g.emitInt(INT, off)
		g.emit(ADD)
		g.load(st)
		g.convert(st, sym.Type)
		g.emitInt(LOCAL, sym.Offset)
		g.store(d, sym.Type)
		off += st.Size()
	}
	g.emitInt(TRASH, 4)
}

func (g *Generator) initLocal(sym *Symbol, init Expr, ctx genCtx) {
	t := sym.Type
	switch {
	case t.Is(KindInt), t.Is(KindString), t.Is(KindPointer):
		g.expr(init, ctx)
		g.emitInt(LOCAL, sym.Offset)
		g.emit(STINT)
	case t.Is(KindDouble):
		g.expr(init, ctx)
		g.convert(g.typeOf(init), t)
		g.emitInt(LOCAL, sym.Offset)
		g.emit(STDOUBLE)
	case t.Is(KindStruct):
		base := sym.Offset
		g.storeAggregate(init, t, func(off int) {
			g.emitInt(LOCAL, base+off)
		}, ctx)
	default:
		internalf(init, "cannot initialize a variable of type %s", t)
	}
}

// unwrap strips single-element tuples, which stand for their value.
func unwrap(e Expr) Expr {
	for {
		tuple, ok := e.(*Tuple)
		if !ok || len(tuple.Values) != 1 {
			return e
		}
		e = tuple.Values[0]
	}
}

// storeAggregate copies the components of value into the slots that dest
// addresses. A tuple literal is stored value by value; any other
// aggregate is evaluated once and read back through its address.
func (g *Generator) storeAggregate(value Expr, target *Type, dest func(off int), ctx genCtx) {
	if tuple, ok := unwrap(value).(*Tuple); ok && len(tuple.Values) > 1 {
		if len(tuple.Values) != len(target.Components) {
			internalf(value, "tuple of %d values does not match %s", len(tuple.Values), target)
		}
		off := 0
		for i, v := range tuple.Values {
			ct := target.Components[i]
			g.expr(v, ctx)
			g.convert(g.typeOf(v), ct)
			dest(off)
			g.store(v, ct)
			off += ct.Size()
		}
		return
	}

	source := g.typeOf(value)
	if !source.Is(KindStruct) || len(source.Components) != len(target.Components) {
		internalf(value, "cannot copy %s into %s", source, target)
	}
	g.expr(value, ctx)
	srcOff, dstOff := 0, 0
	for i, ct := range target.Components {
		st := source.Components[i]
		g.emit(DUP32)
		g.emitInt(INT, srcOff)
		g.emit(ADD)
		g.load(st)
		g.convert(st, ct)
		dest(dstOff)
		g.store(value, ct)
		srcOff += st.Size()
		dstOff += ct.Size()
	}
	g.emitInt(TRASH, 4)
}

// Expressions

func (g *Generator) expr(e Expr, ctx genCtx) {
	switch e := e.(type) {
	case *IntLit:
		if ctx.inBody {
			g.emitInt(INT, e.Value)
		} else {
			g.emitInt(SINT, e.Value)
		}
	case *DoubleLit:
		if ctx.inBody {
			g.emitFloat(DOUBLE, e.Value)
		} else {
			g.emitFloat(SDOUBLE, e.Value)
		}
	case *StringLit:
		g.stringLiteral(e.Value, ctx.inBody)
	case *NullLit:
		if ctx.inBody {
			g.emitInt(INT, 0)
		} else {
			g.emitInt(SINT, 0)
		}
	case *Read:
		switch t := g.typeOf(e); {
		case t.Is(KindDouble):
			g.callHelper("readd")
			g.emit(LDFVAL64)
		case t.Is(KindInt):
			g.callHelper("readi")
			g.emit(LDFVAL32)
		default:
			internalf(e, "cannot read a value of type %s", t)
		}
	case *Unary:
		g.expr(e.X, ctx)
		switch e.Op {
		case OpNeg:
			if g.typeOf(e).Is(KindDouble) {
				g.emit(DNEG)
			} else {
				g.emit(NEG)
			}
		case OpNot:
			g.emitInt(INT, 0)
			g.emit(EQ)
		}
	case *Binary:
		g.binary(e, ctx)
	case *Rvalue:
		g.address(e.L, ctx)
		g.load(g.typeOf(e))
	case *Assign:
		t := g.typeOf(e)
		g.expr(e.R, ctx)
		g.convert(g.typeOf(e.R), t)
		if t.Is(KindDouble) {
			g.emit(DUP64)
		} else {
			g.emit(DUP32)
		}
		g.address(e.L, ctx)
		g.store(e, t)
	case *AddressOf:
		g.address(e.L, ctx)
	case *Call:
		g.call(e, ctx)
	case *Tuple:
		for _, v := range e.Values {
			g.expr(v, ctx)
		}
	case *StackAlloc:
		g.expr(e.Count, ctx)
		g.emitInt(INT, elementSize(g.typeOf(e)))
		g.emit(MUL)
		g.emit(ALLOC)
		g.emit(SP)
	case *SizeOf:
		g.emitInt(INT, g.typeOf(e.X).Size())
	case Lvalue:
		internalf(e, "%s used as a value without a load", nodeName(e))
	default:
		internalf(e, "unexpected expression %s", nodeName(e))
	}
}

// elementSize is the scale of pointer arithmetic on p. Memory behind a
// pointer whose pointee is unknown is counted in bytes.
func elementSize(p *Type) int {
	if p.Is(KindPointer) {
		if size := p.Child.Size(); size > 0 {
			return size
		}
	}
	return 1
}

// address pushes the address an lvalue denotes.
func (g *Generator) address(l Lvalue, ctx genCtx) {
	switch l := l.(type) {
	case *Var:
		sym := g.info.Uses[l]
		if sym == nil {
			internalf(l, "variable '%s' was not resolved", l.Name)
		}
		if sym.Global() {
			g.emitName(ADDR, sym.Name)
		} else {
			g.emitInt(LOCAL, sym.Offset)
		}
	case *PointerIndex:
		g.expr(l.Base, ctx)
		g.expr(l.Index, ctx)
		g.emitInt(INT, elementSize(g.typeOf(l.Base)))
		g.emit(MUL)
		g.emit(ADD)
	case *TupleIndex:
		base := g.typeOf(l.Base)
		if !base.Is(KindStruct) {
			internalf(l, "tuple index on %s", base)
		}
		g.expr(l.Base, ctx)
		off := 0
		for _, c := range base.Components[:l.Index.Value-1] {
			off += c.Size()
		}
		g.emitInt(INT, off)
		g.emit(ADD)
	default:
		internalf(l, "unexpected lvalue %s", nodeName(l))
	}
}

func (g *Generator) binary(e *Binary, ctx genCtx) {
	lt, rt, t := g.typeOf(e.L), g.typeOf(e.R), g.typeOf(e)

	switch e.Op {
	case OpAnd, OpOr:
		lbl := g.newLabel()
		g.expr(e.L, ctx)
		g.emit(DUP32)
		if e.Op == OpAnd {
			g.emitName(JZ, lbl)
		} else {
			g.emitName(JNZ, lbl)
		}
		g.emitInt(TRASH, 4)
		g.expr(e.R, ctx)
		g.emit(ALIGN)
		g.emitName(LABEL, lbl)
		return
	}

	if e.Op == OpAdd || e.Op == OpSub {
		switch {
		case lt.Is(KindPointer) && rt.Is(KindInt):
			g.expr(e.L, ctx)
			g.expr(e.R, ctx)
			g.emitInt(INT, elementSize(lt))
			g.emit(MUL)
			g.emit(arith(e.Op, false))
			return
		case lt.Is(KindInt) && rt.Is(KindPointer):
			g.expr(e.L, ctx)
			g.emitInt(INT, elementSize(rt))
			g.emit(MUL)
			g.expr(e.R, ctx)
			g.emit(ADD)
			return
		case lt.Is(KindPointer) && rt.Is(KindPointer):
			g.expr(e.L, ctx)
			g.expr(e.R, ctx)
			g.emit(SUB)
			g.emitInt(INT, elementSize(lt))
			g.emit(DIV)
			return
		}
	}

	if e.Op.isComparison() {
		double := lt.Is(KindDouble) || rt.Is(KindDouble)
		g.expr(e.L, ctx)
		if double {
			g.convert(lt, TypeDouble)
		}
		g.expr(e.R, ctx)
		if double {
			g.convert(rt, TypeDouble)
			g.emit(DCMP)
			g.emitInt(INT, 0)
		}
		g.emit(comparison(e.Op))
		return
	}

	g.expr(e.L, ctx)
	g.convert(lt, t)
	g.expr(e.R, ctx)
	g.convert(rt, t)
	g.emit(arith(e.Op, t.Is(KindDouble)))
}

func arith(op BinaryOp, double bool) Opcode {
	switch op {
	case OpAdd:
		if double {
			return DADD
		}
		return ADD
	case OpSub:
		if double {
			return DSUB
		}
		return SUB
	case OpMul:
		if double {
			return DMUL
		}
		return MUL
	case OpDiv:
		if double {
			return DDIV
		}
		return DIV
	case OpMod:
		return MOD
	}
	panic("error: not an arithmetic operator: " + op.String())
}

func comparison(op BinaryOp) Opcode {
	switch op {
	case OpLt:
		return LT
	case OpLe:
		return LE
	case OpGt:
		return GT
	case OpGe:
		return GE
	case OpEq:
		return EQ
	case OpNe:
		return NE
	}
	panic("error: not a comparison operator: " + op.String())
}

func (g *Generator) call(c *Call, ctx genCtx) {
	sym := g.info.Calls[c]
	if sym == nil {
		internalf(c, "call to '%s' was not resolved", c.Name)
	}
	if !sym.Defined {
		g.externs[sym.Name] = sym
	}

	argBytes := 0
	if sym.Type.Is(KindStruct) {
		g.emitInt(INT, sym.Type.Size())
		g.emit(ALLOC)
		g.emit(SP)
		argBytes += 4
	}
	for i := len(c.Args) - 1; i >= 0; i-- {
		arg, pt := c.Args[i], sym.Params[i]
		g.expr(arg, ctx)
		g.convert(g.typeOf(arg), pt)
		argBytes += pt.Size()
	}

	g.emitName(CALL, sym.Name)
	if argBytes > 0 {
		g.emitInt(TRASH, argBytes)
	}
	switch {
	case sym.Type.Is(KindVoid):
	case sym.Type.Is(KindDouble):
		g.emit(LDFVAL64)
	default:
		g.emit(LDFVAL32)
	}
}
