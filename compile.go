package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Options configures a compilation.
type Options struct {
	// Entry is the source name of the program's entry function.
	Entry string
	// EntryLabel is the label the entry function is emitted under.
	EntryLabel string
	Logger     *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Entry:      "og",
		EntryLabel: "_main",
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// Result is everything a successful compilation produced.
type Result struct {
	Info    *Info
	Listing *Listing
	Externs []string
}

// Compile type-checks prog and, if it is free of diagnostics, generates
// its postfix code. Diagnostics come back as an *ErrorCollection; a
// generation failure as an *InternalError.
func Compile(prog *Program, opts Options) (*Result, error) {
	log := opts.logger()

	info, diags := CheckProgram(prog, opts)
	if diags.HasErrors() {
		log.Debug("type checking failed", "errors", diags.Len())
		return &Result{Info: info}, diags
	}

	listing := &Listing{}
	g := NewGenerator(info, listing, opts)
	if err := generate(g, prog); err != nil {
		return &Result{Info: info, Listing: listing}, fmt.Errorf("code generation: %w", err)
	}
	log.Debug("compiled", "instructions", len(listing.Instrs))
	return &Result{Info: info, Listing: listing, Externs: g.Externs()}, nil
}

// generate runs g over prog, turning an internal error panic into an
// error.
func generate(g *Generator, prog *Program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*InternalError)
			if !ok {
				panic(r)
			}
			err = ie
		}
	}()
	g.Unit(prog)
	return nil
}

// SymbolLayout renders every declared variable of prog, in declaration
// order, as (symbols (name type offset) ...). Offsets are those assigned
// during generation; globals keep offset 0.
func SymbolLayout(prog *Program, info *Info) string {
	var entries []string
	var visit func(n Node)
	visit = func(n Node) {
		switch n := n.(type) {
		case *VarDecl:
			for _, sym := range info.Defs[n] {
				entries = append(entries, fmt.Sprintf("(%s %s %d)", sym.Name, typeSexpr(sym.Type), sym.Offset))
			}
		case *FuncDef:
			for _, p := range n.Params {
				visit(p)
			}
			visit(n.Body)
		case *Block:
			for _, s := range n.Stmts {
				visit(s)
			}
		case *For:
			for _, init := range n.Inits {
				visit(init)
			}
			visit(n.Body)
		case *If:
			visit(n.Then)
		case *IfElse:
			visit(n.Then)
			visit(n.Else)
		}
	}
	for _, decl := range prog.Decls {
		visit(decl)
	}
	if len(entries) == 0 {
		return "(symbols)"
	}
	return "(symbols\n  " + strings.Join(entries, "\n  ") + ")"
}

// typeSexpr writes t the way programs spell types.
func typeSexpr(t *Type) string {
	switch {
	case t.Is(KindPointer):
		return "(ptr " + typeSexpr(t.Child) + ")"
	case t.Is(KindStruct):
		parts := make([]string, len(t.Components))
		for i, c := range t.Components {
			parts[i] = typeSexpr(c)
		}
		return "(struct " + strings.Join(parts, " ") + ")"
	default:
		return t.String()
	}
}
