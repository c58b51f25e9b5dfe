package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestTypesEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *Type
		expected bool
	}{
		{
			name:     "same builtin types",
			a:        TypeInt,
			b:        &Type{Kind: KindInt},
			expected: true,
		},
		{
			name:     "different builtin types",
			a:        TypeInt,
			b:        TypeDouble,
			expected: false,
		},
		{
			name:     "different kinds",
			a:        TypeInt,
			b:        PointerTo(TypeInt),
			expected: false,
		},
		{
			name:     "same pointer types",
			a:        PointerTo(TypeInt),
			b:        PointerTo(TypeInt),
			expected: true,
		},
		{
			name:     "different pointer types",
			a:        PointerTo(TypeInt),
			b:        PointerTo(TypeDouble),
			expected: false,
		},
		{
			name:     "nested pointer types",
			a:        PointerTo(PointerTo(TypeDouble)),
			b:        PointerTo(PointerTo(TypeDouble)),
			expected: true,
		},
		{
			name:     "pointer depth mismatch",
			a:        PointerTo(PointerTo(TypeInt)),
			b:        PointerTo(TypeInt),
			expected: false,
		},
		{
			name:     "void pointer matches any pointer",
			a:        PointerTo(TypeVoid),
			b:        PointerTo(PointerTo(TypeString)),
			expected: true,
		},
		{
			name:     "unspecified pointee matches any pointer",
			a:        PointerTo(TypeDouble),
			b:        PointerTo(TypeUnspecified),
			expected: true,
		},
		{
			name:     "same structs",
			a:        StructOf(TypeInt, TypeDouble),
			b:        StructOf(TypeInt, TypeDouble),
			expected: true,
		},
		{
			name:     "struct arity mismatch",
			a:        StructOf(TypeInt, TypeDouble),
			b:        StructOf(TypeInt, TypeDouble, TypeInt),
			expected: false,
		},
		{
			name:     "struct component mismatch",
			a:        StructOf(TypeInt, TypeInt),
			b:        StructOf(TypeInt, TypeDouble),
			expected: false,
		},
		{
			name:     "struct against scalar",
			a:        StructOf(TypeInt),
			b:        TypeInt,
			expected: false,
		},
		{
			name:     "nil types",
			a:        nil,
			b:        nil,
			expected: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			be.Equal(t, test.expected, TypesEqual(test.a, test.b))
			be.Equal(t, test.expected, TypesEqual(test.b, test.a))
		})
	}
}

func TestCompatiblePointersSymmetric(t *testing.T) {
	pointers := []*Type{
		PointerTo(TypeInt),
		PointerTo(TypeDouble),
		PointerTo(TypeString),
		PointerTo(TypeVoid),
		PointerTo(TypeUnspecified),
		PointerTo(PointerTo(TypeInt)),
		PointerTo(PointerTo(TypeVoid)),
		PointerTo(StructOf(TypeInt, TypeDouble)),
	}

	for _, a := range pointers {
		for _, b := range pointers {
			be.Equal(t, CompatiblePointers(a, b), CompatiblePointers(b, a))
		}
		be.True(t, CompatiblePointers(a, a))
		be.True(t, CompatiblePointers(a, PointerTo(TypeVoid)))
		be.True(t, CompatiblePointers(a, PointerTo(TypeUnspecified)))
	}

	be.True(t, !CompatiblePointers(TypeInt, TypeInt))
	be.True(t, !CompatiblePointers(PointerTo(TypeInt), TypeInt))
}

func TestStructEqualityReflexive(t *testing.T) {
	structs := []*Type{
		StructOf(),
		StructOf(TypeInt),
		StructOf(TypeInt, TypeDouble),
		StructOf(PointerTo(TypeInt), TypeString),
	}

	for i, a := range structs {
		be.True(t, TypesEqual(a, a))
		for j, b := range structs {
			if i != j {
				be.True(t, !TypesEqual(a, b))
			}
		}
	}
}

func TestTypeSize(t *testing.T) {
	tests := []struct {
		name     string
		t        *Type
		expected int
	}{
		{"int", TypeInt, 4},
		{"double", TypeDouble, 8},
		{"string", TypeString, 4},
		{"pointer", PointerTo(TypeDouble), 4},
		{"void", TypeVoid, 0},
		{"unspecified", TypeUnspecified, 0},
		{"nil", nil, 0},
		{"struct", StructOf(TypeInt, TypeDouble, TypeString), 16},
		{"empty struct", StructOf(), 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			be.Equal(t, test.expected, test.t.Size())
		})
	}
}

func TestTypeToString(t *testing.T) {
	tests := []struct {
		name     string
		t        *Type
		expected string
	}{
		{"int", TypeInt, "int"},
		{"double", TypeDouble, "double"},
		{"string", TypeString, "string"},
		{"void", TypeVoid, "void"},
		{"unspecified", TypeUnspecified, "auto"},
		{"nil", nil, "auto"},
		{"pointer to int", PointerTo(TypeInt), "ptr<int>"},
		{"pointer to pointer", PointerTo(PointerTo(TypeDouble)), "ptr<ptr<double>>"},
		{"struct", StructOf(TypeInt, PointerTo(TypeString)), "struct<int, ptr<string>>"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			be.Equal(t, test.expected, test.t.String())
		})
	}
}

func TestTypePredicates(t *testing.T) {
	be.True(t, TypeInt.Concrete())
	be.True(t, !TypeUnspecified.Concrete())
	be.True(t, !(*Type)(nil).Concrete())
	be.True(t, (*Type)(nil).Is(KindUnspecified))

	be.True(t, ImplicitlyDouble(TypeInt))
	be.True(t, ImplicitlyDouble(TypeDouble))
	be.True(t, !ImplicitlyDouble(TypeString))
	be.True(t, !ImplicitlyDouble(PointerTo(TypeInt)))

	be.Equal(t, PointerTo(PointerTo(TypeDouble)).Pointee(), TypeDouble)
	be.Equal(t, TypeInt.Pointee(), TypeInt)

	be.True(t, hasUnspecifiedPointee(PointerTo(TypeUnspecified)))
	be.True(t, hasUnspecifiedPointee(PointerTo(PointerTo(TypeUnspecified))))
	be.True(t, !hasUnspecifiedPointee(PointerTo(TypeInt)))
	be.True(t, !hasUnspecifiedPointee(TypeUnspecified))
}
