package main

import "fmt"

// Symbol is a named entity: a variable, a parameter or a function.
type Symbol struct {
	Name      string
	Type      *Type
	Qualifier Qualifier
	Function  bool
	Params    []*Type // Function only
	Defined   bool    // Function only: a body has been seen

	// Offset is the frame-relative address of a local or parameter. It is
	// written by the code generator when the declaration is visited; zero
	// means the symbol lives at a global address.
	Offset int

	// declaredType is the return type as written. Type may later be
	// inferred from return statements.
	declaredType *Type
}

// NewVariable creates a variable symbol.
func NewVariable(name string, t *Type, q Qualifier) *Symbol {
	return &Symbol{Name: name, Type: t, Qualifier: q}
}

// NewFunction creates a function symbol.
func NewFunction(name string, t *Type, q Qualifier, params []*Type, defined bool) *Symbol {
	return &Symbol{Name: name, Type: t, Qualifier: q, Function: true, Params: params, Defined: defined, declaredType: t}
}

func (s *Symbol) declared() *Type {
	if s.declaredType != nil {
		return s.declaredType
	}
	return s.Type
}

// Global reports whether the symbol is addressed by name rather than by
// frame offset.
func (s *Symbol) Global() bool {
	return s.Offset == 0
}

type scope struct {
	names   map[string]*Symbol
	ordered []*Symbol
}

// SymbolTable is a stack of lexical scopes. The outermost scope holds
// the translation unit's globals and is never popped.
type SymbolTable struct {
	scopes []*scope
}

func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{}
	st.Push()
	return st
}

// Push opens a new innermost scope.
func (st *SymbolTable) Push() {
	st.scopes = append(st.scopes, &scope{names: make(map[string]*Symbol)})
}

// Pop closes the innermost scope and returns its symbols in declaration
// order.
func (st *SymbolTable) Pop() []*Symbol {
	if len(st.scopes) <= 1 {
		panic("error: cannot pop the global scope")
	}
	top := st.scopes[len(st.scopes)-1]
	st.scopes = st.scopes[:len(st.scopes)-1]
	return top.ordered
}

// Depth returns the number of open scopes, the global scope included.
func (st *SymbolTable) Depth() int {
	return len(st.scopes)
}

// Insert adds sym to the innermost scope. It fails if the name is
// already bound in that scope; shadowing an outer binding is allowed.
func (st *SymbolTable) Insert(sym *Symbol) error {
	top := st.scopes[len(st.scopes)-1]
	if _, exists := top.names[sym.Name]; exists {
		return fmt.Errorf("variable '%s' redeclared", sym.Name)
	}
	top.names[sym.Name] = sym
	top.ordered = append(top.ordered, sym)
	return nil
}

// Lookup searches from the innermost scope outwards.
func (st *SymbolTable) Lookup(name string) *Symbol {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i].names[name]; ok {
			return sym
		}
	}
	return nil
}

// LookupLocal searches the innermost scope only.
func (st *SymbolTable) LookupLocal(name string) *Symbol {
	return st.scopes[len(st.scopes)-1].names[name]
}
