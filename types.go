package main

import "strings"

// TypeKind represents the different kinds of types
type TypeKind int

const (
	KindUnspecified TypeKind = iota
	KindInt
	KindDouble
	KindString
	KindVoid
	KindPointer
	KindStruct
)

// Type represents a type in the og type system.
// Types are immutable once built; share them freely.
type Type struct {
	Kind       TypeKind
	Child      *Type   // For KindPointer: the pointee
	Components []*Type // For KindStruct: ordered component types
}

// Built-in types
var (
	TypeInt         = &Type{Kind: KindInt}
	TypeDouble      = &Type{Kind: KindDouble}
	TypeString      = &Type{Kind: KindString}
	TypeVoid        = &Type{Kind: KindVoid}
	TypeUnspecified = &Type{Kind: KindUnspecified}
)

// PointerTo returns a pointer type to the given pointee.
func PointerTo(child *Type) *Type {
	return &Type{Kind: KindPointer, Child: child}
}

// StructOf returns a struct type with the given components.
func StructOf(components ...*Type) *Type {
	return &Type{Kind: KindStruct, Components: components}
}

// Size returns the natural size of a type in bytes.
func (t *Type) Size() int {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case KindInt, KindString, KindPointer:
		return 4
	case KindDouble:
		return 8
	case KindStruct:
		size := 0
		for _, c := range t.Components {
			size += c.Size()
		}
		return size
	default:
		return 0
	}
}

// Is reports whether t is of the given kind. A nil type counts as unspecified.
func (t *Type) Is(kind TypeKind) bool {
	if t == nil {
		return kind == KindUnspecified
	}
	return t.Kind == kind
}

// Concrete reports whether the type has been resolved.
func (t *Type) Concrete() bool {
	return t != nil && t.Kind != KindUnspecified
}

// Pointee follows pointer indirections down to the innermost non-pointer type.
func (t *Type) Pointee() *Type {
	for t != nil && t.Kind == KindPointer {
		t = t.Child
	}
	return t
}

func (t *Type) String() string {
	if t == nil {
		return "auto"
	}
	switch t.Kind {
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindVoid:
		return "void"
	case KindUnspecified:
		return "auto"
	case KindPointer:
		return "ptr<" + t.Child.String() + ">"
	case KindStruct:
		parts := make([]string, len(t.Components))
		for i, c := range t.Components {
			parts[i] = c.String()
		}
		return "struct<" + strings.Join(parts, ", ") + ">"
	default:
		return "unknown"
	}
}

// ImplicitlyDouble reports whether a value of type t can be consumed where
// a double is expected.
func ImplicitlyDouble(t *Type) bool {
	return t.Is(KindInt) || t.Is(KindDouble)
}

// CompatiblePointers reports whether two pointer types may be mixed. Both
// sides are unwrapped in lockstep; the innermost types must agree unless
// either one is void or unspecified.
func CompatiblePointers(a, b *Type) bool {
	if !a.Is(KindPointer) || !b.Is(KindPointer) {
		return false
	}
	for a.Is(KindPointer) && b.Is(KindPointer) {
		a = a.Child
		b = b.Child
	}
	if isGenericPointee(a) || isGenericPointee(b) {
		return true
	}
	if a.Is(KindStruct) && b.Is(KindStruct) {
		return structsEqual(a, b)
	}
	return a.Kind == b.Kind
}

func isGenericPointee(t *Type) bool {
	return t.Is(KindVoid) || t.Is(KindUnspecified)
}

// TypesEqual checks structural equality. Pointers compare through
// CompatiblePointers.
func TypesEqual(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch {
	case a.Kind == KindPointer && b.Kind == KindPointer:
		return CompatiblePointers(a, b)
	case a.Kind == KindStruct && b.Kind == KindStruct:
		return structsEqual(a, b)
	case a.Kind == KindPointer, a.Kind == KindStruct:
		return false
	default:
		return a.Kind == b.Kind
	}
}

func structsEqual(a, b *Type) bool {
	if len(a.Components) != len(b.Components) {
		return false
	}
	for i := range a.Components {
		if !TypesEqual(a.Components[i], b.Components[i]) {
			return false
		}
	}
	return true
}

// hasUnspecifiedPointee reports whether t is a pointer whose innermost
// pointee is still unresolved.
func hasUnspecifiedPointee(t *Type) bool {
	return t.Is(KindPointer) && t.Pointee().Is(KindUnspecified)
}
