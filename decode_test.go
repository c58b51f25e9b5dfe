package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestDecodeGlobals(t *testing.T) {
	prog, err := DecodeProgram(`(program
  (var public int count 3)
  (var require double rate)
  (var (ptr int) p)
  (var auto (a b) (tuple 1 2.5)))`)
	be.Err(t, err, nil)
	be.Equal(t, len(prog.Decls), 4)

	count := prog.Decls[0].(*VarDecl)
	be.Equal(t, count.Qualifier, QualPublic)
	be.Equal(t, count.Type, TypeInt)
	be.Equal(t, count.Names[0], "count")
	be.Equal(t, count.Init.(*IntLit).Value, 3)
	be.Equal(t, count.Pos(), 2)

	rate := prog.Decls[1].(*VarDecl)
	be.Equal(t, rate.Qualifier, QualRequire)
	be.Equal(t, rate.Type, TypeDouble)
	be.True(t, rate.Init == nil)

	p := prog.Decls[2].(*VarDecl)
	be.Equal(t, p.Qualifier, QualPrivate)
	be.Equal(t, p.Type.String(), "ptr<int>")

	ab := prog.Decls[3].(*VarDecl)
	be.Equal(t, ab.Type, TypeUnspecified)
	be.Equal(t, len(ab.Names), 2)
	be.Equal(t, ab.Names[1], "b")
	tuple := ab.Init.(*Tuple)
	be.Equal(t, len(tuple.Values), 2)
	be.Equal(t, tuple.Values[1].(*DoubleLit).Value, 2.5)
}

func TestDecodeFunctions(t *testing.T) {
	prog, err := DecodeProgram(`(program
  (func public (struct int double) pair ((var int x)))
  (func int og ()
    (block
      (println "hi" (call pair 1))
      (return 0))))`)
	be.Err(t, err, nil)

	decl := prog.Decls[0].(*FuncDecl)
	be.Equal(t, decl.Name, "pair")
	be.Equal(t, decl.Qualifier, QualPublic)
	be.Equal(t, decl.Type.String(), "struct<int, double>")
	be.Equal(t, len(decl.Params), 1)
	be.Equal(t, decl.Params[0].Names[0], "x")

	def := prog.Decls[1].(*FuncDef)
	be.Equal(t, def.Name, "og")
	be.Equal(t, def.Pos(), 3)
	be.Equal(t, len(def.Params), 0)
	be.Equal(t, len(def.Body.Stmts), 2)

	out := def.Body.Stmts[0].(*Print)
	be.True(t, out.Newline)
	be.Equal(t, out.Args[0].(*StringLit).Value, "hi")
	call := out.Args[1].(*Call)
	be.Equal(t, call.Name, "pair")
	be.Equal(t, len(call.Args), 1)
	be.Equal(t, out.Pos(), 5)

	ret := def.Body.Stmts[1].(*Return)
	be.Equal(t, ret.Value.(*IntLit).Value, 0)
	be.Equal(t, ret.Pos(), 6)
}

func TestDecodeStatements(t *testing.T) {
	prog, err := DecodeProgram(`(program
  (func void og ()
    (block
      (for ((var int i 0)) ((< i 10)) ((= i (+ i 1)))
        (if (== i 5) (break) (continue)))
      (if (not 0) (nop))
      (eval (read))
      (print 1.5)
      (return))))`)
	be.Err(t, err, nil)

	stmts := prog.Decls[0].(*FuncDef).Body.Stmts
	be.Equal(t, len(stmts), 5)

	loop := stmts[0].(*For)
	be.Equal(t, len(loop.Inits), 1)
	be.Equal(t, loop.Inits[0].(*VarDecl).Names[0], "i")
	cond := loop.Conds[0].(*Binary)
	be.Equal(t, cond.Op, OpLt)
	be.Equal(t, cond.L.(*Rvalue).L.(*Var).Name, "i")
	incr := loop.Incrs[0].(*Assign)
	be.Equal(t, incr.L.(*Var).Name, "i")
	be.Equal(t, incr.R.(*Binary).Op, OpAdd)

	branch := loop.Body.(*IfElse)
	be.Equal(t, branch.Cond.(*Binary).Op, OpEq)
	_, isBreak := branch.Then.(*Break)
	be.True(t, isBreak)
	_, isContinue := branch.Else.(*Continue)
	be.True(t, isContinue)

	when := stmts[1].(*If)
	be.Equal(t, when.Cond.(*Unary).Op, OpNot)
	_, isNop := when.Then.(*Nop)
	be.True(t, isNop)

	_, isRead := stmts[2].(*Eval).X.(*Read)
	be.True(t, isRead)

	out := stmts[3].(*Print)
	be.True(t, !out.Newline)
	be.Equal(t, out.Args[0].(*DoubleLit).Value, 1.5)

	be.True(t, stmts[4].(*Return).Value == nil)
}

func TestDecodeLvalues(t *testing.T) {
	prog, err := DecodeProgram(`(program
  (func void og ((var (ptr int) p) (var int n))
    (block
      (eval (= (index p 2) (at (call pair) 1)))
      (eval (addr (index p n)))
      (eval (alloc (sizeof n)))
      (eval null))))`)
	be.Err(t, err, nil)

	stmts := prog.Decls[0].(*FuncDef).Body.Stmts

	assign := stmts[0].(*Eval).X.(*Assign)
	idx := assign.L.(*PointerIndex)
	be.Equal(t, idx.Base.(*Rvalue).L.(*Var).Name, "p")
	be.Equal(t, idx.Index.(*IntLit).Value, 2)
	at := assign.R.(*Rvalue).L.(*TupleIndex)
	be.Equal(t, at.Index.Value, 1)
	be.Equal(t, at.Base.(*Call).Name, "pair")

	addr := stmts[1].(*Eval).X.(*AddressOf)
	_, ok := addr.L.(*PointerIndex)
	be.True(t, ok)

	alloc := stmts[2].(*Eval).X.(*StackAlloc)
	_, ok = alloc.Count.(*SizeOf)
	be.True(t, ok)

	_, ok = stmts[3].(*Eval).X.(*NullLit)
	be.True(t, ok)
}

func TestDecodeLineMetadata(t *testing.T) {
	prog, err := DecodeProgram(`(program
  (func int og () ^{line: 40}
    (block
      (return (+ 1 2) ^{line: 42}))))`)
	be.Err(t, err, nil)

	def := prog.Decls[0].(*FuncDef)
	be.Equal(t, def.Pos(), 40)
	ret := def.Body.Stmts[0].(*Return)
	be.Equal(t, ret.Pos(), 42)
	be.Equal(t, ret.Value.Pos(), 4)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"not a program", "(module)", "expected (program ...)"},
		{"unknown top level", "(program (print 1))", "expected var or func"},
		{"unknown type", "(program (var long x))", "unknown type long"},
		{"malformed var", "(program (var int))", "malformed variable declaration"},
		{"bad parameter", "(program (func int f (x)))", "expected parameter declaration"},
		{"bad body", "(program (func int f () (return 0)))", "expected function body"},
		{"unknown statement", "(program (func int f () (block (goto x))))", "expected statement"},
		{"unknown expression", "(program (func int f () (block (return (pow 2 3)))))", "unknown expression"},
		{"binary arity", "(program (func int f () (block (return (+ 1)))))", "wrong number of operands"},
		{"tuple index not literal", "(program (func int f () (block (return (at t i)))))", "tuple index must be an integer literal"},
		{"bad lvalue", "(program (func int f () (block (eval (= 1 2)))))", "expected lvalue"},
		{"syntax", "(program (var int x)", "unexpected end of input"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			prog, err := DecodeProgram(test.input)
			be.Err(t, err, test.expected)
			be.True(t, prog == nil)
		})
	}
}
