package main

import (
	"bytes"
	"testing"

	"github.com/nalgeon/be"
)

func TestWriteLEB128(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    uint32
		expected []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}

	for _, test := range tests {
		var buf bytes.Buffer
		writeLEB128(&buf, test.input)
		be.True(t, bytes.Equal(buf.Bytes(), test.expected))
	}
}

func TestWriteLEB128Signed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    int64
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{-1, []byte{0x7F}},
		{127, []byte{0xFF, 0x00}},
		{-128, []byte{0x80, 0x7F}},
		{128, []byte{0x80, 0x01}},
		{-129, []byte{0xFF, 0x7E}},
	}

	for _, test := range tests {
		var buf bytes.Buffer
		writeLEB128Signed(&buf, test.input)
		be.True(t, bytes.Equal(buf.Bytes(), test.expected))
	}
}

func TestInstrString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       Instr
		expected string
	}{
		{Instr{Op: TEXT}, "TEXT"},
		{Instr{Op: INT, Int: 4}, "INT 4"},
		{Instr{Op: LOCAL, Int: -12}, "LOCAL -12"},
		{Instr{Op: DOUBLE, Float: 2.5}, "DOUBLE 2.5"},
		{Instr{Op: SDOUBLE, Float: 3}, "SDOUBLE 3"},
		{Instr{Op: LABEL, Str: "_L1"}, "LABEL _L1"},
		{Instr{Op: CALL, Str: "printi"}, "CALL printi"},
		{Instr{Op: SSTRING, Str: "hi\n"}, `SSTRING "hi\n"`},
		{Instr{Op: GLOBAL, Str: "_main", Int: int(SymFunc)}, "GLOBAL _main, FUNC"},
		{Instr{Op: GLOBAL, Str: "count", Int: int(SymObject)}, "GLOBAL count, OBJ"},
		{Instr{Op: Opcode(0)}, "OP(0)"},
		{Instr{Op: Opcode(250)}, "OP(250)"},
	}

	for _, test := range tests {
		be.Equal(t, test.in.String(), test.expected)
	}
}

func TestListing(t *testing.T) {
	t.Parallel()
	l := &Listing{}
	be.Equal(t, l.String(), "")

	l.Emit(Instr{Op: INT, Int: 1})
	l.Emit(Instr{Op: CALL, Str: "printi"})
	l.Emit(Instr{Op: TRASH, Int: 4})
	l.Emit(Instr{Op: CALL, Str: "printi"})
	l.Emit(Instr{Op: CALL, Str: "println"})

	be.Equal(t, l.String(), "INT 1\nCALL printi\nTRASH 4\nCALL printi\nCALL println")
	be.Equal(t, l.Count(CALL, ""), 3)
	be.Equal(t, l.Count(CALL, "printi"), 2)
	be.Equal(t, l.Count(JMP, ""), 0)
}

func TestEncodeListingHeader(t *testing.T) {
	t.Parallel()
	data := EncodeListing(nil)
	be.True(t, bytes.Equal(data, []byte{0x00, 'o', 'g', 'p', 0x01, 0x00}))
}

func TestEncodeListing(t *testing.T) {
	t.Parallel()
	data := EncodeListing([]Instr{
		{Op: TEXT},
		{Op: INT, Int: -1},
		{Op: LABEL, Str: "_L1"},
		{Op: GLOBAL, Str: "f", Int: int(SymObject)},
		{Op: DOUBLE, Float: 1},
		{Op: SSTRING, Str: "ok"},
	})

	expected := []byte{0x00, 'o', 'g', 'p', 0x01, 0x06}
	expected = append(expected, byte(TEXT))
	expected = append(expected, byte(INT), 0x7F)
	expected = append(expected, byte(LABEL), 0x03, '_', 'L', '1')
	expected = append(expected, byte(GLOBAL), 0x01, 'f', byte(SymObject))
	expected = append(expected, byte(DOUBLE), 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F)
	expected = append(expected, byte(SSTRING), 0x02, 'o', 'k')

	be.True(t, bytes.Equal(data, expected))
}
