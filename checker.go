package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Info records what type checking learned about a program. Later passes
// read it instead of re-deriving types and bindings.
type Info struct {
	Types map[Expr]*Type
	Defs  map[*VarDecl][]*Symbol // one symbol per declared name
	Uses  map[*Var]*Symbol
	Calls map[*Call]*Symbol
	Funcs map[Node]*Symbol // *FuncDecl and *FuncDef
}

func NewInfo() *Info {
	return &Info{
		Types: make(map[Expr]*Type),
		Defs:  make(map[*VarDecl][]*Symbol),
		Uses:  make(map[*Var]*Symbol),
		Calls: make(map[*Call]*Symbol),
		Funcs: make(map[Node]*Symbol),
	}
}

// TypeOf returns the resolved type of e, or the unspecified type.
func (info *Info) TypeOf(e Expr) *Type {
	if t, ok := info.Types[e]; ok && t != nil {
		return t
	}
	return TypeUnspecified
}

// resolve assigns e its type. A node is resolved once: overwriting a
// concrete type is a checker bug.
func (info *Info) resolve(e Expr, t *Type) {
	if prev := info.Types[e]; prev.Concrete() {
		panic(fmt.Sprintf("error: line %d: type %s resolved again as %s", e.Pos(), prev, t))
	}
	info.Types[e] = t
}

// refine replaces a pointer-to-unspecified type with a concrete pointer
// type, following single-element tuples down to the value they wrap.
func (info *Info) refine(e Expr, t *Type) {
	if prev := info.Types[e]; !hasUnspecifiedPointee(prev) {
		panic(fmt.Sprintf("error: line %d: cannot refine %s to %s", e.Pos(), prev, t))
	}
	info.Types[e] = t
	if tuple, ok := e.(*Tuple); ok && len(tuple.Values) == 1 {
		info.refine(tuple.Values[0], t)
	}
}

// TypeChecker validates one translation unit and fills in an Info.
type TypeChecker struct {
	symbols *SymbolTable
	info    *Info
	opts    Options
	log     *slog.Logger

	function  *Symbol // function whose body is being checked
	inferring bool    // function return type is inferred from returns
	returned  bool
	loops     int

	errors   ErrorCollection
	declLine map[*Symbol]int
}

func NewTypeChecker(st *SymbolTable, info *Info, opts Options) *TypeChecker {
	return &TypeChecker{
		symbols:  st,
		info:     info,
		opts:     opts,
		log:      opts.logger(),
		declLine: make(map[*Symbol]int),
	}
}

// CheckProgram type-checks every top-level item. A failing item is
// reported and checking moves on to the next one.
func CheckProgram(prog *Program, opts Options) (*Info, *ErrorCollection) {
	info := NewInfo()
	tc := NewTypeChecker(NewSymbolTable(), info, opts)
	for _, decl := range prog.Decls {
		if err := tc.CheckTopLevel(decl); err != nil {
			tc.errors.Add(decl.Pos(), err)
		}
	}
	tc.reportUninferred(tc.symbols.scopes[0].ordered)
	return info, &tc.errors
}

func (tc *TypeChecker) errorf(node Node, format string, args ...any) error {
	return &Diagnostic{Line: node.Pos(), Msg: fmt.Sprintf(format, args...)}
}

// symbolName maps the entry function to its emitted label.
func (tc *TypeChecker) symbolName(name string) string {
	if name == tc.opts.Entry {
		return tc.opts.EntryLabel
	}
	return name
}

func (tc *TypeChecker) typeOf(e Expr) *Type {
	return tc.info.TypeOf(e)
}

// CheckTopLevel checks a global declaration or a function.
func (tc *TypeChecker) CheckTopLevel(node Node) error {
	defer tc.log.Debug("checked top-level item", "line", node.Pos(), "node", fmt.Sprintf("%T", node))
	switch n := node.(type) {
	case *FuncDecl:
		return tc.checkFuncDecl(n)
	case *FuncDef:
		return tc.checkFuncDef(n)
	case *VarDecl:
		return tc.checkVarDecl(n)
	case *Nop:
		return nil
	default:
		return tc.errorf(node, "unexpected %s at top level", nodeName(node))
	}
}

// Expressions

// CheckExpression resolves the type of e and of everything below it. An
// expression that already has a concrete type is left untouched.
func (tc *TypeChecker) CheckExpression(e Expr) error {
	if tc.typeOf(e).Concrete() {
		return nil
	}

	switch e := e.(type) {
	case *IntLit:
		tc.info.resolve(e, TypeInt)
	case *DoubleLit:
		tc.info.resolve(e, TypeDouble)
	case *StringLit:
		tc.info.resolve(e, TypeString)
	case *NullLit:
		tc.info.resolve(e, PointerTo(TypeUnspecified))
	case *Read:
		tc.info.resolve(e, TypeUnspecified)
	case *Unary:
		return tc.checkUnary(e)
	case *Binary:
		return tc.checkBinary(e)
	case *Var:
		sym := tc.symbols.Lookup(e.Name)
		if sym == nil || sym.Function {
			return &undeclaredError{line: e.Pos(), name: e.Name}
		}
		tc.info.Uses[e] = sym
		tc.info.resolve(e, sym.Type)
	case *Rvalue:
		if err := tc.checkLvalue(e.L); err != nil {
			return err
		}
		tc.info.resolve(e, tc.typeOf(e.L))
	case *Assign:
		return tc.checkAssign(e)
	case *AddressOf:
		if err := tc.checkLvalue(e.L); err != nil {
			return err
		}
		tc.info.resolve(e, PointerTo(tc.typeOf(e.L)))
	case *Call:
		return tc.checkCall(e)
	case *Tuple:
		return tc.checkTuple(e)
	case *TupleIndex:
		return tc.checkTupleIndex(e)
	case *PointerIndex:
		if err := tc.CheckExpression(e.Base); err != nil {
			return err
		}
		base := tc.typeOf(e.Base)
		if !base.Is(KindPointer) {
			return tc.errorf(e, "pointer expected in pointer indexation base")
		}
		if err := tc.CheckExpression(e.Index); err != nil {
			return err
		}
		if !tc.typeOf(e.Index).Is(KindInt) {
			return tc.errorf(e, "integer expected in pointer indexation index")
		}
		tc.info.resolve(e, base.Child)
	case *StackAlloc:
		if err := tc.CheckExpression(e.Count); err != nil {
			return err
		}
		if !tc.typeOf(e.Count).Is(KindInt) {
			return tc.errorf(e, "argument of stack allocation must be integer")
		}
		tc.info.resolve(e, PointerTo(TypeUnspecified))
	case *SizeOf:
		if err := tc.CheckExpression(e.X); err != nil {
			return err
		}
		tc.info.resolve(e, TypeInt)
	default:
		return tc.errorf(e, "unexpected expression %s", nodeName(e))
	}
	return nil
}

// checkLvalue checks an lvalue and turns a failed lookup into a
// diagnostic.
func (tc *TypeChecker) checkLvalue(l Lvalue) error {
	err := tc.CheckExpression(l)
	var undeclared *undeclaredError
	if errors.As(err, &undeclared) {
		return &Diagnostic{Line: undeclared.line, Msg: fmt.Sprintf("undeclared variable '%s'", undeclared.name)}
	}
	return err
}

func (tc *TypeChecker) checkUnary(e *Unary) error {
	if err := tc.CheckExpression(e.X); err != nil {
		return err
	}
	t, err := tc.settle(e.X, TypeInt)
	if err != nil {
		return err
	}
	switch e.Op {
	case OpNot:
		if !t.Is(KindInt) {
			return tc.errorf(e, "wrong type in not expression: expected integer but got %s", t)
		}
		tc.info.resolve(e, TypeInt)
	default:
		if !ImplicitlyDouble(t) {
			name := "neg"
			if e.Op == OpIdentity {
				name = "identity"
			}
			return tc.errorf(e, "wrong type in %s expression: expected integer or double but got %s", name, t)
		}
		tc.info.resolve(e, t)
	}
	return nil
}

func (tc *TypeChecker) checkBinary(e *Binary) error {
	if err := tc.CheckExpression(e.L); err != nil {
		return err
	}
	if err := tc.CheckExpression(e.R); err != nil {
		return err
	}
	lt, err := tc.settle(e.L, tc.typeOf(e.R))
	if err != nil {
		return err
	}
	rt, err := tc.settle(e.R, lt)
	if err != nil {
		return err
	}
	bothInt := lt.Is(KindInt) && rt.Is(KindInt)
	bothDouble := ImplicitlyDouble(lt) && ImplicitlyDouble(rt)

	var result *Type
	switch e.Op {
	case OpAnd, OpOr:
		if !lt.Is(KindInt) {
			return tc.errorf(e, "wrong type in %s expression: expected integer in left argument but got %s", e.Op, lt)
		}
		if !rt.Is(KindInt) {
			return tc.errorf(e, "wrong type in %s expression: expected integer in right argument but got %s", e.Op, rt)
		}
		result = TypeInt
	case OpAdd, OpSub:
		switch {
		case bothInt:
			result = TypeInt
		case bothDouble:
			result = TypeDouble
		case lt.Is(KindPointer) && rt.Is(KindInt):
			if isGenericPointee(lt.Child) {
				return tc.errorf(e, "arithmetic operation not supported for unspecified or void types")
			}
			result = lt
		case e.Op == OpAdd && lt.Is(KindInt) && rt.Is(KindPointer):
			if isGenericPointee(rt.Child) {
				return tc.errorf(e, "arithmetic operation not supported for unspecified or void types")
			}
			result = rt
		case e.Op == OpSub && CompatiblePointers(lt, rt):
			result = TypeInt
		}
	case OpMul, OpDiv:
		switch {
		case bothInt:
			result = TypeInt
		case bothDouble:
			result = TypeDouble
		}
	case OpMod:
		if bothInt {
			result = TypeInt
		}
	case OpLt, OpLe, OpGt, OpGe:
		if bothInt || bothDouble {
			result = TypeInt
		}
	case OpEq, OpNe:
		if bothInt || bothDouble || CompatiblePointers(lt, rt) {
			result = TypeInt
		}
	}
	if result == nil {
		return tc.errorf(e, "wrong types in %s expression: %s and %s", e.Op, lt, rt)
	}
	tc.info.resolve(e, result)
	return nil
}

func (tc *TypeChecker) checkAssign(e *Assign) error {
	if err := tc.checkLvalue(e.L); err != nil {
		return err
	}
	if err := tc.CheckExpression(e.R); err != nil {
		return err
	}
	lt, rt := tc.typeOf(e.L), tc.typeOf(e.R)

	var result *Type
	switch {
	case lt.Is(KindInt) && rt.Is(KindInt):
		result = TypeInt
	case lt.Is(KindString) && rt.Is(KindString):
		result = TypeString
	case lt.Is(KindDouble) && ImplicitlyDouble(rt):
		result = TypeDouble
	case CompatiblePointers(lt, rt):
		if hasUnspecifiedPointee(rt) && !hasUnspecifiedPointee(lt) {
			tc.info.refine(e.R, lt)
		}
		result = lt
	case lt.Is(KindStruct) || rt.Is(KindStruct):
		// Aggregates fill a frame range; an assignment moves one slot.
		return tc.errorf(e, "wrong types in assignment expression: cannot assign %s to %s", rt, lt)
	case !lt.Concrete() && rt.Concrete():
		if err := tc.backfill(e.L, rt); err != nil {
			return err
		}
		result = rt
	case !rt.Concrete() && lt.Concrete():
		if err := tc.backfill(e.R, lt); err != nil {
			return err
		}
		result = lt
	default:
		return tc.errorf(e, "wrong types in assignment expression: cannot assign %s to %s", rt, lt)
	}
	tc.info.resolve(e, result)
	return nil
}

// settle resolves an operand still waiting for a type from its context:
// double next to a double, int otherwise.
func (tc *TypeChecker) settle(e Expr, other *Type) (*Type, error) {
	t := tc.typeOf(e)
	if t.Concrete() {
		return t, nil
	}
	want := TypeInt
	if other.Is(KindDouble) {
		want = TypeDouble
	}
	if err := tc.backfill(e, want); err != nil {
		return nil, err
	}
	return want, nil
}

// backfill gives an unspecified expression the type its context demands.
func (tc *TypeChecker) backfill(e Expr, t *Type) error {
	switch n := e.(type) {
	case *Read:
		if !ImplicitlyDouble(t) {
			return tc.errorf(e, "cannot read a value of type %s", t)
		}
	case *Tuple:
		if len(n.Values) == 1 {
			if err := tc.backfill(n.Values[0], t); err != nil {
				return err
			}
		}
	case *Rvalue:
		if err := tc.backfill(n.L, t); err != nil {
			return err
		}
	case *Var:
		if sym := tc.info.Uses[n]; sym != nil && !sym.Type.Concrete() {
			sym.Type = t
		}
	}
	if !tc.typeOf(e).Concrete() {
		tc.info.resolve(e, t)
	}
	return nil
}

func (tc *TypeChecker) checkCall(e *Call) error {
	sym := tc.symbols.Lookup(tc.symbolName(e.Name))
	if sym == nil {
		return tc.errorf(e, "symbol '%s' is undeclared", e.Name)
	}
	if !sym.Function {
		return tc.errorf(e, "symbol '%s' is not a function", e.Name)
	}
	if len(e.Args) != len(sym.Params) {
		return tc.errorf(e, "incorrect number of arguments in call to '%s': expected %d but got %d",
			e.Name, len(sym.Params), len(e.Args))
	}
	if !sym.Type.Concrete() {
		return tc.errorf(e, "cannot infer return type of '%s' before its definition", e.Name)
	}
	for i, arg := range e.Args {
		if err := tc.CheckExpression(arg); err != nil {
			return err
		}
		at, pt := tc.typeOf(arg), sym.Params[i]
		switch {
		case !at.Concrete():
			if err := tc.backfill(arg, pt); err != nil {
				return err
			}
		case TypesEqual(at, pt):
			if hasUnspecifiedPointee(at) && !hasUnspecifiedPointee(pt) {
				tc.info.refine(arg, pt)
			}
		case pt.Is(KindDouble) && at.Is(KindInt):
		default:
			return tc.errorf(arg, "incorrect argument type in call to '%s': argument %d expects %s but got %s",
				e.Name, i+1, pt, at)
		}
	}
	tc.info.Calls[e] = sym
	tc.info.resolve(e, sym.Type)
	return nil
}

func (tc *TypeChecker) checkTuple(e *Tuple) error {
	if len(e.Values) == 0 {
		return tc.errorf(e, "empty tuple")
	}
	for _, v := range e.Values {
		if err := tc.CheckExpression(v); err != nil {
			return err
		}
	}
	if len(e.Values) == 1 {
		tc.info.resolve(e, tc.typeOf(e.Values[0]))
		return nil
	}
	components := make([]*Type, len(e.Values))
	for i, v := range e.Values {
		if !tc.typeOf(v).Concrete() {
			if err := tc.backfill(v, TypeInt); err != nil {
				return err
			}
		}
		components[i] = tc.typeOf(v)
		if components[i].Is(KindStruct) {
			return tc.errorf(v, "tuples cannot contain tuples")
		}
	}
	tc.info.resolve(e, StructOf(components...))
	return nil
}

func (tc *TypeChecker) checkTupleIndex(e *TupleIndex) error {
	if err := tc.CheckExpression(e.Base); err != nil {
		return err
	}
	base := tc.typeOf(e.Base)
	if !base.Is(KindStruct) {
		return tc.errorf(e, "cannot tuple index an expression that is not a tuple")
	}
	if tuple, ok := e.Base.(*Tuple); ok && len(tuple.Values) > 1 {
		return tc.errorf(e, "cannot tuple index a tuple literal")
	}
	if err := tc.CheckExpression(e.Index); err != nil {
		return err
	}
	if e.Index.Value < 1 || e.Index.Value > len(base.Components) {
		return tc.errorf(e, "tuple index %d out of range for %s", e.Index.Value, base)
	}
	tc.info.resolve(e, base.Components[e.Index.Value-1])
	return nil
}

// Declarations

func (tc *TypeChecker) checkVarDecl(d *VarDecl) error {
	local := tc.function != nil
	if local && (d.Qualifier == QualPublic || d.Qualifier == QualRequire) {
		return tc.errorf(d, "can't define public or required variables inside function")
	}
	if len(d.Names) == 0 {
		return tc.errorf(d, "can't declare a variable with no identifier")
	}

	if d.Init == nil {
		if len(d.Names) > 1 {
			return tc.errorf(d, "multiple variable declaration without initializers not supported")
		}
		sym, err := tc.declare(d, d.Names[0], d.Type)
		if err != nil {
			return err
		}
		tc.info.Defs[d] = []*Symbol{sym}
		return nil
	}

	if !local {
		if d.Qualifier == QualRequire {
			return tc.errorf(d, "required variable '%s' cannot have an initializer", d.Names[0])
		}
		if !isLiteral(d.Init) {
			return tc.errorf(d, "global initializer must be a literal")
		}
	}
	if err := tc.CheckExpression(d.Init); err != nil {
		return err
	}
	it := tc.typeOf(d.Init)

	if len(d.Names) == 1 {
		dt, err := tc.initializedType(d, it)
		if err != nil {
			return err
		}
		sym, err := tc.declare(d, d.Names[0], dt)
		if err != nil {
			return err
		}
		tc.info.Defs[d] = []*Symbol{sym}
		return nil
	}

	if !it.Is(KindStruct) {
		return tc.errorf(d, "can't assign a non struct type to a sequence")
	}
	if len(it.Components) != len(d.Names) {
		if tuple, ok := d.Init.(*Tuple); ok && len(tuple.Values) > 1 {
			return tc.errorf(d, "can't declare a sequence of different lengths")
		}
		return tc.errorf(d, "can't declare a sequence of different lengths in struct")
	}
	if d.Type.Concrete() && !TypesEqual(d.Type, it) {
		return tc.errorf(d, "incompatible type in initializer: cannot initialize %s with %s", d.Type, it)
	}
	syms := make([]*Symbol, len(d.Names))
	for i, name := range d.Names {
		sym, err := tc.declare(d, name, it.Components[i])
		if err != nil {
			return err
		}
		syms[i] = sym
	}
	tc.info.Defs[d] = syms
	return nil
}

// initializedType decides the type of a single-name declaration from its
// declared type and the type of its initializer.
func (tc *TypeChecker) initializedType(d *VarDecl, it *Type) (*Type, error) {
	dt := d.Type
	switch {
	case !it.Concrete():
		if !dt.Concrete() {
			dt = TypeInt
		}
		if err := tc.backfill(d.Init, dt); err != nil {
			return nil, err
		}
	case TypesEqual(dt, it):
		if hasUnspecifiedPointee(it) && !hasUnspecifiedPointee(dt) {
			tc.info.refine(d.Init, dt)
		}
	case dt.Is(KindDouble) && it.Is(KindInt):
	case !dt.Concrete() && !it.Is(KindVoid):
		dt = it
	default:
		return nil, tc.errorf(d, "incompatible type in initializer: cannot initialize %s with %s", dt, it)
	}
	return dt, nil
}

func (tc *TypeChecker) declare(d *VarDecl, name string, t *Type) (*Symbol, error) {
	if t.Is(KindVoid) {
		return nil, tc.errorf(d, "variable '%s' cannot have type void", name)
	}
	sym := NewVariable(name, t, d.Qualifier)
	if err := tc.symbols.Insert(sym); err != nil {
		return nil, tc.errorf(d, "%v", err)
	}
	tc.declLine[sym] = d.Pos()
	return sym, nil
}

// isLiteral reports whether e can be laid out as static data.
func isLiteral(e Expr) bool {
	switch e := e.(type) {
	case *IntLit, *DoubleLit, *StringLit, *NullLit:
		return true
	case *Unary:
		if e.Op == OpNot {
			return false
		}
		switch e.X.(type) {
		case *IntLit, *DoubleLit:
			return true
		}
		return false
	case *Tuple:
		for _, v := range e.Values {
			if !isLiteral(v) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// reportUninferred diagnoses variables whose type never got resolved.
func (tc *TypeChecker) reportUninferred(syms []*Symbol) {
	for _, sym := range syms {
		if !sym.Function && !sym.Type.Concrete() {
			tc.errors.Add(tc.declLine[sym], &Diagnostic{
				Line: tc.declLine[sym],
				Msg:  fmt.Sprintf("cannot infer type of variable '%s'", sym.Name),
			})
		}
	}
}

// Functions

func (tc *TypeChecker) paramTypes(params []*VarDecl) ([]*Type, error) {
	types := make([]*Type, len(params))
	for i, p := range params {
		if p.Qualifier != QualPrivate || !p.Type.Concrete() || p.Init != nil {
			return nil, tc.errorf(p, "function arguments do not support public and require qualifiers or default values")
		}
		if p.Type.Is(KindStruct) {
			return nil, tc.errorf(p, "function arguments cannot be tuples")
		}
		if len(p.Names) != 1 {
			return nil, tc.errorf(p, "function arguments must declare exactly one identifier")
		}
		types[i] = p.Type
	}
	return types, nil
}

// matchPrevious compares a declaration or definition against an earlier
// declaration of the same function.
func (tc *TypeChecker) matchPrevious(node Node, prev *Symbol, declared *Type, params []*Type) error {
	if !TypesEqual(prev.declared(), declared) {
		return tc.errorf(node, "function type in declaration is different from the definition")
	}
	if len(prev.Params) != len(params) {
		return tc.errorf(node, "function with same identifier but different arguments length")
	}
	for i := range params {
		if !TypesEqual(prev.Params[i], params[i]) {
			return tc.errorf(node, "function with same identifier but different argument type")
		}
	}
	return nil
}

func (tc *TypeChecker) checkFuncDecl(d *FuncDecl) error {
	if tc.function != nil {
		return tc.errorf(d, "nested functions are not supported")
	}
	params, err := tc.paramTypes(d.Params)
	if err != nil {
		return err
	}
	name := tc.symbolName(d.Name)
	prev := tc.symbols.Lookup(name)
	switch {
	case prev == nil:
		sym := NewFunction(name, d.Type, d.Qualifier, params, false)
		if err := tc.symbols.Insert(sym); err != nil {
			return tc.errorf(d, "%v", err)
		}
		tc.info.Funcs[d] = sym
	case !prev.Function:
		return tc.errorf(d, "'%s' redeclared as a function", d.Name)
	default:
		if err := tc.matchPrevious(d, prev, d.Type, params); err != nil {
			return err
		}
		tc.info.Funcs[d] = prev
	}
	return nil
}

func (tc *TypeChecker) checkFuncDef(d *FuncDef) error {
	if tc.function != nil {
		return tc.errorf(d, "nested functions are not supported")
	}
	params, err := tc.paramTypes(d.Params)
	if err != nil {
		return err
	}
	name := tc.symbolName(d.Name)
	sym := tc.symbols.Lookup(name)
	switch {
	case sym == nil:
		sym = NewFunction(name, d.Type, d.Qualifier, params, true)
		if err := tc.symbols.Insert(sym); err != nil {
			return tc.errorf(d, "%v", err)
		}
	case !sym.Function:
		return tc.errorf(d, "'%s' redeclared as a function", d.Name)
	case sym.Defined:
		return tc.errorf(d, "function '%s' is already defined", d.Name)
	default:
		if err := tc.matchPrevious(d, sym, d.Type, params); err != nil {
			return err
		}
		sym.Defined = true
		sym.Qualifier = d.Qualifier
	}
	tc.info.Funcs[d] = sym

	tc.function = sym
	tc.inferring = !sym.declared().Concrete()
	tc.returned = false
	tc.symbols.Push()
	defer func() {
		tc.symbols.Pop()
		tc.function = nil
		tc.inferring = false
	}()

	for _, p := range d.Params {
		psym, err := tc.declare(p, p.Names[0], p.Type)
		if err != nil {
			return err
		}
		tc.info.Defs[p] = []*Symbol{psym}
	}

	if err := tc.CheckStatement(d.Body); err != nil {
		return err
	}

	if !tc.returned {
		switch {
		case tc.inferring && !sym.Type.Concrete():
			sym.Type = TypeVoid
		case !sym.Type.Is(KindVoid):
			return tc.errorf(d, "missing return statement in body of function '%s'", d.Name)
		}
	}
	if !sym.Type.Concrete() {
		sym.Type = TypeVoid
	}
	return nil
}

// Statements

// CheckStatement checks one statement inside a function body.
func (tc *TypeChecker) CheckStatement(node Node) error {
	switch n := node.(type) {
	case *VarDecl:
		return tc.checkVarDecl(n)
	case *Block:
		tc.symbols.Push()
		for _, stmt := range n.Stmts {
			if err := tc.CheckStatement(stmt); err != nil {
				tc.errors.Add(stmt.Pos(), err)
			}
		}
		tc.reportUninferred(tc.symbols.Pop())
	case *Eval:
		if err := tc.CheckExpression(n.X); err != nil {
			return err
		}
		if !tc.typeOf(n.X).Concrete() {
			return tc.backfill(n.X, TypeInt)
		}
	case *Print:
		for _, arg := range n.Args {
			if err := tc.CheckExpression(arg); err != nil {
				return err
			}
			t := tc.typeOf(arg)
			switch {
			case !t.Concrete():
				if err := tc.backfill(arg, TypeInt); err != nil {
					return err
				}
			case t.Is(KindInt), t.Is(KindDouble), t.Is(KindString):
			default:
				return tc.errorf(arg, "wrong type in print argument: %s", t)
			}
		}
	case *For:
		return tc.checkFor(n)
	case *If:
		if err := tc.checkCondition(n.Cond, "expected integer condition"); err != nil {
			return err
		}
		return tc.CheckStatement(n.Then)
	case *IfElse:
		if err := tc.checkCondition(n.Cond, "expected integer condition"); err != nil {
			return err
		}
		if err := tc.CheckStatement(n.Then); err != nil {
			return err
		}
		return tc.CheckStatement(n.Else)
	case *Break:
		if tc.loops == 0 {
			return tc.errorf(n, "break outside for")
		}
	case *Continue:
		if tc.loops == 0 {
			return tc.errorf(n, "continue outside for")
		}
	case *Return:
		return tc.checkReturn(n)
	case *Nop:
	case *FuncDecl, *FuncDef:
		return tc.errorf(node, "nested functions are not supported")
	case Expr:
		return tc.errorf(node, "expression used as a statement without evaluation")
	default:
		return tc.errorf(node, "unexpected statement %s", nodeName(node))
	}
	return nil
}

func (tc *TypeChecker) checkCondition(cond Expr, msg string) error {
	if err := tc.CheckExpression(cond); err != nil {
		return err
	}
	if _, err := tc.settle(cond, TypeInt); err != nil {
		return err
	}
	if !tc.typeOf(cond).Is(KindInt) {
		return tc.errorf(cond, "%s", msg)
	}
	return nil
}

func (tc *TypeChecker) checkFor(n *For) error {
	tc.symbols.Push()
	defer func() { tc.reportUninferred(tc.symbols.Pop()) }()

	for _, init := range n.Inits {
		switch init := init.(type) {
		case *VarDecl:
			if err := tc.checkVarDecl(init); err != nil {
				return err
			}
		case Expr:
			if err := tc.CheckExpression(init); err != nil {
				return err
			}
		default:
			return tc.errorf(init, "unexpected %s in for initializers", nodeName(init))
		}
	}
	for _, cond := range n.Conds {
		if err := tc.checkCondition(cond, "expected integer condition in for conditions"); err != nil {
			return err
		}
	}
	for _, incr := range n.Incrs {
		if err := tc.CheckExpression(incr); err != nil {
			return err
		}
	}

	tc.loops++
	defer func() { tc.loops-- }()
	return tc.CheckStatement(n.Body)
}

func (tc *TypeChecker) checkReturn(n *Return) error {
	fn := tc.function
	if fn == nil {
		return tc.errorf(n, "can't have return outside function")
	}
	tc.returned = true

	if n.Value == nil {
		if fn.Type.Is(KindVoid) || (tc.inferring && !fn.Type.Concrete()) {
			fn.Type = TypeVoid
			return nil
		}
		return tc.errorf(n, "return value type and function type mismatch: %s function returns nothing", fn.Type)
	}

	if err := tc.CheckExpression(n.Value); err != nil {
		return err
	}
	ft, rt := fn.Type, tc.typeOf(n.Value)

	switch {
	case !rt.Concrete():
		target := ft
		if !ft.Concrete() {
			target = TypeInt
		}
		if err := tc.backfill(n.Value, target); err != nil {
			return err
		}
		fn.Type = target
	case rt.Is(KindVoid):
		return tc.errorf(n, "cannot return the value of a void expression")
	case TypesEqual(ft, rt):
		if hasUnspecifiedPointee(rt) && !hasUnspecifiedPointee(ft) {
			tc.info.refine(n.Value, ft)
		}
	case ft.Is(KindDouble) && rt.Is(KindInt):
	case !ft.Concrete():
		fn.Type = rt
	case tc.inferring && ImplicitlyDouble(ft) && ImplicitlyDouble(rt):
		fn.Type = TypeDouble
	case tc.inferring && ft.Is(KindStruct) && rt.Is(KindStruct) && len(ft.Components) == len(rt.Components):
		merged, ok := mergeStructs(ft, rt)
		if !ok {
			return tc.errorf(n, "return value type and function type mismatch: %s and %s", ft, rt)
		}
		fn.Type = merged
	default:
		return tc.errorf(n, "return value type and function type mismatch: %s and %s", ft, rt)
	}
	return nil
}

// mergeStructs combines two struct types component by component,
// promoting int/double mismatches to double.
func mergeStructs(a, b *Type) (*Type, bool) {
	components := make([]*Type, len(a.Components))
	for i := range a.Components {
		ac, bc := a.Components[i], b.Components[i]
		switch {
		case TypesEqual(ac, bc):
			components[i] = ac
		case ImplicitlyDouble(ac) && ImplicitlyDouble(bc):
			components[i] = TypeDouble
		default:
			return nil, false
		}
	}
	return StructOf(components...), true
}

func nodeName(n Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*main.")
}
