package main

// Node is any element of the og syntax tree. The set of node types is
// closed: every pass handles them with a type switch.
type Node interface {
	Pos() int
	node()
}

// Expr is a node that produces a value and therefore owns a type.
type Expr interface {
	Node
	expr()
}

// Lvalue is an expression that denotes a storage location.
type Lvalue interface {
	Expr
	lvalue()
}

// At carries the source line of a node.
type At struct {
	Line int
}

func (a At) Pos() int { return a.Line }
func (At) node()      {}

type exprNode struct{ At }

func (exprNode) expr() {}

type lvalueNode struct{ exprNode }

func (lvalueNode) lvalue() {}

// Qualifier is the visibility of a declaration.
type Qualifier int

const (
	QualPrivate Qualifier = iota
	QualPublic
	QualRequire
)

func (q Qualifier) String() string {
	switch q {
	case QualPublic:
		return "public"
	case QualRequire:
		return "require"
	default:
		return "private"
	}
}

// UnaryOp enumerates prefix operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpIdentity
	OpNot
)

// BinaryOp enumerates infix operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr
)

var binaryOpNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=", OpEq: "==", OpNe: "!=",
	OpAnd: "and", OpOr: "or",
}

func (op BinaryOp) String() string { return binaryOpNames[op] }

func (op BinaryOp) isComparison() bool {
	return op >= OpLt && op <= OpNe
}

// Expressions

type IntLit struct {
	exprNode
	Value int
}

type DoubleLit struct {
	exprNode
	Value float64
}

type StringLit struct {
	exprNode
	Value string
}

// NullLit is the null pointer literal.
type NullLit struct{ exprNode }

// Read reads a value from input; its type comes from context.
type Read struct{ exprNode }

type Unary struct {
	exprNode
	Op UnaryOp
	X  Expr
}

type Binary struct {
	exprNode
	Op   BinaryOp
	L, R Expr
}

// Var names a variable.
type Var struct {
	lvalueNode
	Name string
}

// PointerIndex is base[index].
type PointerIndex struct {
	lvalueNode
	Base  Expr
	Index Expr
}

// TupleIndex is base@index with a 1-based constant index.
type TupleIndex struct {
	lvalueNode
	Base  Expr
	Index *IntLit
}

// Rvalue reads the value stored at an lvalue.
type Rvalue struct {
	exprNode
	L Lvalue
}

type Assign struct {
	exprNode
	L Lvalue
	R Expr
}

type AddressOf struct {
	exprNode
	L Lvalue
}

type Call struct {
	exprNode
	Name string
	Args []Expr
}

// Tuple is a parenthesized list of values. A one-element tuple is just
// that element.
type Tuple struct {
	exprNode
	Values []Expr
}

type StackAlloc struct {
	exprNode
	Count Expr
}

type SizeOf struct {
	exprNode
	X Expr
}

// Declarations and statements

// VarDecl declares one or more variables. Several names require a tuple
// initializer.
type VarDecl struct {
	At
	Qualifier Qualifier
	Type      *Type
	Names     []string
	Init      Expr
}

// FuncDecl is a forward declaration.
type FuncDecl struct {
	At
	Qualifier Qualifier
	Type      *Type
	Name      string
	Params    []*VarDecl
}

type FuncDef struct {
	At
	Qualifier Qualifier
	Type      *Type
	Name      string
	Params    []*VarDecl
	Body      *Block
}

// Block is a lexical scope.
type Block struct {
	At
	Stmts []Node
}

// Eval evaluates an expression and discards the result.
type Eval struct {
	At
	X Expr
}

type Print struct {
	At
	Args    []Expr
	Newline bool
}

// For holds initializers (declarations or expressions), conditions and
// increments.
type For struct {
	At
	Inits []Node
	Conds []Expr
	Incrs []Expr
	Body  Node
}

type If struct {
	At
	Cond Expr
	Then Node
}

type IfElse struct {
	At
	Cond Expr
	Then Node
	Else Node
}

type Break struct{ At }

type Continue struct{ At }

type Return struct {
	At
	Value Expr
}

// Nop does nothing.
type Nop struct{ At }

// Program is a translation unit.
type Program struct {
	Decls []Node
}

func ex(line int) exprNode   { return exprNode{At{line}} }
func lv(line int) lvalueNode { return lvalueNode{ex(line)} }
