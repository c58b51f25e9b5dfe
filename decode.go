package main

import (
	"fmt"
	"strconv"

	"github.com/og-lang/ogc/sexy"
)

// DecodeProgram builds a syntax tree from its S-expression form:
//
//	(program
//	  (var public int count 0)
//	  (func int og () (block (println (call twice 21)) (return 0))))
//
// A list may carry ^{line: N} to set the source line of the node it
// builds; otherwise the line of the list in the text is used.
func DecodeProgram(src string) (*Program, error) {
	root, err := sexy.Parse(src)
	if err != nil {
		return nil, err
	}
	if root.Head() != "program" {
		return nil, fmt.Errorf("line %d: expected (program ...)", root.Line)
	}
	prog := &Program{}
	for _, item := range root.Items[1:] {
		decl, err := decodeTopLevel(item)
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog, nil
}

func lineOf(n *sexy.Node) int {
	if m := n.Meta("line"); m != nil && m.Type == sexy.NodeInteger {
		if v, err := strconv.Atoi(m.Text); err == nil {
			return v
		}
	}
	return n.Line
}

func decodeErrorf(n *sexy.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

// args returns the items of a list after its head, checking their count.
func args(n *sexy.Node, min, max int) ([]*sexy.Node, error) {
	rest := n.Items[1:]
	if len(rest) < min || (max >= 0 && len(rest) > max) {
		return nil, decodeErrorf(n, "wrong number of operands in %s", n)
	}
	return rest, nil
}

func decodeTopLevel(n *sexy.Node) (Node, error) {
	switch n.Head() {
	case "var":
		return decodeVar(n)
	case "func":
		return decodeFunc(n)
	case "nop":
		return &Nop{At{lineOf(n)}}, nil
	default:
		return nil, decodeErrorf(n, "expected var or func but got %s", n)
	}
}

func decodeType(n *sexy.Node) (*Type, error) {
	if n.Type == sexy.NodeSymbol {
		switch n.Text {
		case "int":
			return TypeInt, nil
		case "double":
			return TypeDouble, nil
		case "string":
			return TypeString, nil
		case "void":
			return TypeVoid, nil
		case "auto":
			return TypeUnspecified, nil
		}
		return nil, decodeErrorf(n, "unknown type %s", n.Text)
	}
	switch n.Head() {
	case "ptr":
		rest, err := args(n, 1, 1)
		if err != nil {
			return nil, err
		}
		child, err := decodeType(rest[0])
		if err != nil {
			return nil, err
		}
		return PointerTo(child), nil
	case "struct":
		rest, err := args(n, 1, -1)
		if err != nil {
			return nil, err
		}
		components := make([]*Type, len(rest))
		for i, c := range rest {
			if components[i], err = decodeType(c); err != nil {
				return nil, err
			}
		}
		return StructOf(components...), nil
	}
	return nil, decodeErrorf(n, "expected a type but got %s", n)
}

func decodeQualifier(items []*sexy.Node) (Qualifier, []*sexy.Node) {
	if len(items) > 0 && items[0].Type == sexy.NodeSymbol {
		switch items[0].Text {
		case "public":
			return QualPublic, items[1:]
		case "require":
			return QualRequire, items[1:]
		case "private":
			return QualPrivate, items[1:]
		}
	}
	return QualPrivate, items
}

// (var [qualifier] TYPE NAME [INIT]) or (var [qualifier] TYPE (NAME...) INIT)
func decodeVar(n *sexy.Node) (*VarDecl, error) {
	q, rest := decodeQualifier(n.Items[1:])
	if len(rest) < 2 || len(rest) > 3 {
		return nil, decodeErrorf(n, "malformed variable declaration %s", n)
	}
	t, err := decodeType(rest[0])
	if err != nil {
		return nil, err
	}
	d := &VarDecl{At: At{lineOf(n)}, Qualifier: q, Type: t}
	switch names := rest[1]; names.Type {
	case sexy.NodeSymbol:
		d.Names = []string{names.Text}
	case sexy.NodeList:
		for _, name := range names.Items {
			if name.Type != sexy.NodeSymbol {
				return nil, decodeErrorf(name, "expected identifier but got %s", name)
			}
			d.Names = append(d.Names, name.Text)
		}
	default:
		return nil, decodeErrorf(names, "expected identifier but got %s", names)
	}
	if len(rest) == 3 {
		if d.Init, err = decodeExpr(rest[2]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// (func [qualifier] TYPE NAME (PARAMS...) [BLOCK])
func decodeFunc(n *sexy.Node) (Node, error) {
	q, rest := decodeQualifier(n.Items[1:])
	if len(rest) < 3 || len(rest) > 4 {
		return nil, decodeErrorf(n, "malformed function %s", n)
	}
	t, err := decodeType(rest[0])
	if err != nil {
		return nil, err
	}
	if rest[1].Type != sexy.NodeSymbol {
		return nil, decodeErrorf(rest[1], "expected function name but got %s", rest[1])
	}
	name := rest[1].Text
	if rest[2].Type != sexy.NodeList {
		return nil, decodeErrorf(rest[2], "expected parameter list but got %s", rest[2])
	}
	var params []*VarDecl
	for _, p := range rest[2].Items {
		if p.Head() != "var" {
			return nil, decodeErrorf(p, "expected parameter declaration but got %s", p)
		}
		param, err := decodeVar(p)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	at := At{lineOf(n)}
	if len(rest) == 3 {
		return &FuncDecl{At: at, Qualifier: q, Type: t, Name: name, Params: params}, nil
	}
	if rest[3].Head() != "block" {
		return nil, decodeErrorf(rest[3], "expected function body but got %s", rest[3])
	}
	body, err := decodeBlock(rest[3])
	if err != nil {
		return nil, err
	}
	return &FuncDef{At: at, Qualifier: q, Type: t, Name: name, Params: params, Body: body}, nil
}

func decodeBlock(n *sexy.Node) (*Block, error) {
	b := &Block{At: At{lineOf(n)}}
	for _, item := range n.Items[1:] {
		stmt, err := decodeStmt(item)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, stmt)
	}
	return b, nil
}

func decodeStmt(n *sexy.Node) (Node, error) {
	at := At{lineOf(n)}
	switch n.Head() {
	case "var":
		return decodeVar(n)
	case "func":
		return decodeFunc(n)
	case "block":
		return decodeBlock(n)
	case "eval":
		rest, err := args(n, 1, 1)
		if err != nil {
			return nil, err
		}
		x, err := decodeExpr(rest[0])
		if err != nil {
			return nil, err
		}
		return &Eval{At: at, X: x}, nil
	case "print", "println":
		rest, err := args(n, 0, -1)
		if err != nil {
			return nil, err
		}
		exprs, err := decodeExprs(rest)
		if err != nil {
			return nil, err
		}
		return &Print{At: at, Args: exprs, Newline: n.Head() == "println"}, nil
	case "for":
		return decodeFor(n)
	case "if":
		rest, err := args(n, 2, 3)
		if err != nil {
			return nil, err
		}
		cond, err := decodeExpr(rest[0])
		if err != nil {
			return nil, err
		}
		then, err := decodeStmt(rest[1])
		if err != nil {
			return nil, err
		}
		if len(rest) == 2 {
			return &If{At: at, Cond: cond, Then: then}, nil
		}
		otherwise, err := decodeStmt(rest[2])
		if err != nil {
			return nil, err
		}
		return &IfElse{At: at, Cond: cond, Then: then, Else: otherwise}, nil
	case "break":
		return &Break{at}, nil
	case "continue":
		return &Continue{at}, nil
	case "return":
		rest, err := args(n, 0, 1)
		if err != nil {
			return nil, err
		}
		r := &Return{At: at}
		if len(rest) == 1 {
			if r.Value, err = decodeExpr(rest[0]); err != nil {
				return nil, err
			}
		}
		return r, nil
	case "nop":
		return &Nop{at}, nil
	default:
		return nil, decodeErrorf(n, "expected statement but got %s", n)
	}
}

// (for (INITS...) (CONDS...) (INCRS...) BODY)
func decodeFor(n *sexy.Node) (*For, error) {
	rest, err := args(n, 4, 4)
	if err != nil {
		return nil, err
	}
	for _, part := range rest[:3] {
		if part.Type != sexy.NodeList {
			return nil, decodeErrorf(part, "expected a list of for clauses but got %s", part)
		}
	}
	f := &For{At: At{lineOf(n)}}
	for _, item := range rest[0].Items {
		if item.Head() == "var" {
			d, err := decodeVar(item)
			if err != nil {
				return nil, err
			}
			f.Inits = append(f.Inits, d)
			continue
		}
		e, err := decodeExpr(item)
		if err != nil {
			return nil, err
		}
		f.Inits = append(f.Inits, e)
	}
	if f.Conds, err = decodeExprs(rest[1].Items); err != nil {
		return nil, err
	}
	if f.Incrs, err = decodeExprs(rest[2].Items); err != nil {
		return nil, err
	}
	if f.Body, err = decodeStmt(rest[3]); err != nil {
		return nil, err
	}
	return f, nil
}

var binaryOps = map[string]BinaryOp{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
	"<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe, "==": OpEq, "!=": OpNe,
	"and": OpAnd, "or": OpOr,
}

var unaryOps = map[string]UnaryOp{
	"neg": OpNeg, "identity": OpIdentity, "not": OpNot,
}

func decodeExprs(items []*sexy.Node) ([]Expr, error) {
	exprs := make([]Expr, 0, len(items))
	for _, item := range items {
		e, err := decodeExpr(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func decodeExpr(n *sexy.Node) (Expr, error) {
	line := lineOf(n)
	switch n.Type {
	case sexy.NodeInteger:
		v, err := strconv.Atoi(n.Text)
		if err != nil {
			return nil, decodeErrorf(n, "invalid integer %s", n.Text)
		}
		return &IntLit{exprNode: ex(line), Value: v}, nil
	case sexy.NodeFloat:
		v, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			return nil, decodeErrorf(n, "invalid double %s", n.Text)
		}
		return &DoubleLit{exprNode: ex(line), Value: v}, nil
	case sexy.NodeString:
		return &StringLit{exprNode: ex(line), Value: n.Text}, nil
	case sexy.NodeSymbol:
		if n.Text == "null" {
			return &NullLit{ex(line)}, nil
		}
		return &Rvalue{exprNode: ex(line), L: &Var{lvalueNode: lv(line), Name: n.Text}}, nil
	case sexy.NodeList:
	default:
		return nil, decodeErrorf(n, "expected expression but got %s", n)
	}

	head := n.Head()
	if op, ok := binaryOps[head]; ok {
		rest, err := args(n, 2, 2)
		if err != nil {
			return nil, err
		}
		operands, err := decodeExprs(rest)
		if err != nil {
			return nil, err
		}
		return &Binary{exprNode: ex(line), Op: op, L: operands[0], R: operands[1]}, nil
	}
	if op, ok := unaryOps[head]; ok {
		rest, err := args(n, 1, 1)
		if err != nil {
			return nil, err
		}
		x, err := decodeExpr(rest[0])
		if err != nil {
			return nil, err
		}
		return &Unary{exprNode: ex(line), Op: op, X: x}, nil
	}

	switch head {
	case "read":
		if _, err := args(n, 0, 0); err != nil {
			return nil, err
		}
		return &Read{ex(line)}, nil
	case "index", "at":
		l, err := decodeLvalue(n)
		if err != nil {
			return nil, err
		}
		return &Rvalue{exprNode: ex(line), L: l}, nil
	case "=":
		rest, err := args(n, 2, 2)
		if err != nil {
			return nil, err
		}
		l, err := decodeLvalue(rest[0])
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(rest[1])
		if err != nil {
			return nil, err
		}
		return &Assign{exprNode: ex(line), L: l, R: r}, nil
	case "addr":
		rest, err := args(n, 1, 1)
		if err != nil {
			return nil, err
		}
		l, err := decodeLvalue(rest[0])
		if err != nil {
			return nil, err
		}
		return &AddressOf{exprNode: ex(line), L: l}, nil
	case "alloc":
		rest, err := args(n, 1, 1)
		if err != nil {
			return nil, err
		}
		count, err := decodeExpr(rest[0])
		if err != nil {
			return nil, err
		}
		return &StackAlloc{exprNode: ex(line), Count: count}, nil
	case "sizeof":
		rest, err := args(n, 1, 1)
		if err != nil {
			return nil, err
		}
		x, err := decodeExpr(rest[0])
		if err != nil {
			return nil, err
		}
		return &SizeOf{exprNode: ex(line), X: x}, nil
	case "call":
		rest, err := args(n, 1, -1)
		if err != nil {
			return nil, err
		}
		if rest[0].Type != sexy.NodeSymbol {
			return nil, decodeErrorf(rest[0], "expected function name but got %s", rest[0])
		}
		callArgs, err := decodeExprs(rest[1:])
		if err != nil {
			return nil, err
		}
		return &Call{exprNode: ex(line), Name: rest[0].Text, Args: callArgs}, nil
	case "tuple":
		rest, err := args(n, 1, -1)
		if err != nil {
			return nil, err
		}
		values, err := decodeExprs(rest)
		if err != nil {
			return nil, err
		}
		return &Tuple{exprNode: ex(line), Values: values}, nil
	}
	return nil, decodeErrorf(n, "unknown expression %s", n)
}

func decodeLvalue(n *sexy.Node) (Lvalue, error) {
	line := lineOf(n)
	if n.Type == sexy.NodeSymbol {
		return &Var{lvalueNode: lv(line), Name: n.Text}, nil
	}
	switch n.Head() {
	case "index":
		rest, err := args(n, 2, 2)
		if err != nil {
			return nil, err
		}
		operands, err := decodeExprs(rest)
		if err != nil {
			return nil, err
		}
		return &PointerIndex{lvalueNode: lv(line), Base: operands[0], Index: operands[1]}, nil
	case "at":
		rest, err := args(n, 2, 2)
		if err != nil {
			return nil, err
		}
		base, err := decodeExpr(rest[0])
		if err != nil {
			return nil, err
		}
		if rest[1].Type != sexy.NodeInteger {
			return nil, decodeErrorf(rest[1], "tuple index must be an integer literal")
		}
		idx, err := decodeExpr(rest[1])
		if err != nil {
			return nil, err
		}
		return &TupleIndex{lvalueNode: lv(line), Base: base, Index: idx.(*IntLit)}, nil
	}
	return nil, decodeErrorf(n, "expected lvalue but got %s", n)
}
