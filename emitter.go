package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Opcode is a postfix stack-machine instruction.
type Opcode byte

// Postfix Opcode Constants
const (
	// Segments and layout
	TEXT Opcode = iota + 1
	DATA
	RODATA
	BSS
	ALIGN
	LABEL
	GLOBAL
	EXTERN

	// Static data
	SINT
	SDOUBLE
	SSTRING
	SADDR
	SALLOC

	// Immediates and addresses
	INT
	DOUBLE
	ADDR
	LOCAL

	// Memory
	LDINT
	LDDOUBLE
	STINT
	STDOUBLE
	DUP32
	DUP64
	TRASH
	ALLOC
	SP

	// Integer arithmetic and comparison
	ADD
	SUB
	MUL
	DIV
	MOD
	NEG
	LT
	LE
	GT
	GE
	EQ
	NE

	// Double arithmetic
	DADD
	DSUB
	DMUL
	DDIV
	DNEG
	DCMP
	I2D

	// Control flow
	JMP
	JZ
	JNZ
	CALL
	ENTER
	LEAVE
	RET
	LDFVAL32
	LDFVAL64
	STFVAL32
	STFVAL64
)

var opcodeNames = [...]string{
	TEXT: "TEXT", DATA: "DATA", RODATA: "RODATA", BSS: "BSS", ALIGN: "ALIGN",
	LABEL: "LABEL", GLOBAL: "GLOBAL", EXTERN: "EXTERN",
	SINT: "SINT", SDOUBLE: "SDOUBLE", SSTRING: "SSTRING", SADDR: "SADDR", SALLOC: "SALLOC",
	INT: "INT", DOUBLE: "DOUBLE", ADDR: "ADDR", LOCAL: "LOCAL",
	LDINT: "LDINT", LDDOUBLE: "LDDOUBLE", STINT: "STINT", STDOUBLE: "STDOUBLE",
	DUP32: "DUP32", DUP64: "DUP64", TRASH: "TRASH", ALLOC: "ALLOC", SP: "SP",
	ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV", MOD: "MOD", NEG: "NEG",
	LT: "LT", LE: "LE", GT: "GT", GE: "GE", EQ: "EQ", NE: "NE",
	DADD: "DADD", DSUB: "DSUB", DMUL: "DMUL", DDIV: "DDIV", DNEG: "DNEG", DCMP: "DCMP", I2D: "I2D",
	JMP: "JMP", JZ: "JZ", JNZ: "JNZ", CALL: "CALL", ENTER: "ENTER", LEAVE: "LEAVE", RET: "RET",
	LDFVAL32: "LDFVAL32", LDFVAL64: "LDFVAL64", STFVAL32: "STFVAL32", STFVAL64: "STFVAL64",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OP(%d)", byte(op))
}

// operand describes what an opcode carries besides itself.
type operand int

const (
	operandNone operand = iota
	operandInt
	operandFloat
	operandName
	operandString
	operandGlobal
)

func (op Opcode) operand() operand {
	switch op {
	case SINT, SALLOC, INT, LOCAL, TRASH, ENTER:
		return operandInt
	case SDOUBLE, DOUBLE:
		return operandFloat
	case LABEL, EXTERN, SADDR, ADDR, JMP, JZ, JNZ, CALL:
		return operandName
	case SSTRING:
		return operandString
	case GLOBAL:
		return operandGlobal
	default:
		return operandNone
	}
}

// SymbolKind qualifies a GLOBAL directive.
type SymbolKind int

const (
	SymFunc SymbolKind = iota
	SymObject
)

func (k SymbolKind) String() string {
	if k == SymFunc {
		return "FUNC"
	}
	return "OBJ"
}

// Instr is one emitted instruction. Only the field selected by the
// opcode's operand is meaningful.
type Instr struct {
	Op    Opcode
	Int   int
	Float float64
	Str   string
}

func (in Instr) String() string {
	switch in.Op.operand() {
	case operandInt:
		return fmt.Sprintf("%s %d", in.Op, in.Int)
	case operandFloat:
		return fmt.Sprintf("%s %s", in.Op, strconv.FormatFloat(in.Float, 'g', -1, 64))
	case operandName:
		return fmt.Sprintf("%s %s", in.Op, in.Str)
	case operandString:
		return fmt.Sprintf("%s %s", in.Op, strconv.Quote(in.Str))
	case operandGlobal:
		return fmt.Sprintf("%s %s, %s", in.Op, in.Str, SymbolKind(in.Int))
	default:
		return in.Op.String()
	}
}

// Emitter receives generated instructions in order.
type Emitter interface {
	Emit(in Instr)
}

// Listing is an Emitter that records everything it is given.
type Listing struct {
	Instrs []Instr
}

func (l *Listing) Emit(in Instr) {
	l.Instrs = append(l.Instrs, in)
}

// String renders one instruction per line.
func (l *Listing) String() string {
	lines := make([]string, len(l.Instrs))
	for i, in := range l.Instrs {
		lines[i] = in.String()
	}
	return strings.Join(lines, "\n")
}

// Count returns how many instructions match op and, when name is not
// empty, carry that name.
func (l *Listing) Count(op Opcode, name string) int {
	n := 0
	for _, in := range l.Instrs {
		if in.Op == op && (name == "" || in.Str == name) {
			n++
		}
	}
	return n
}

// Binary Encoding Utilities
func writeByte(buf *bytes.Buffer, b byte) {
	buf.WriteByte(b)
}

func writeBytes(buf *bytes.Buffer, data []byte) {
	buf.Write(data)
}

func writeLEB128(buf *bytes.Buffer, val uint32) {
	for val >= 0x80 {
		buf.WriteByte(byte(val&0x7F) | 0x80)
		val >>= 7
	}
	buf.WriteByte(byte(val & 0x7F))
}

func writeLEB128Signed(buf *bytes.Buffer, val int64) {
	for {
		b := byte(val & 0x7F)
		val >>= 7

		if (val == 0 && (b&0x40) == 0) || (val == -1 && (b&0x40) != 0) {
			buf.WriteByte(b)
			break
		}

		buf.WriteByte(b | 0x80)
	}
}

func writeName(buf *bytes.Buffer, s string) {
	writeLEB128(buf, uint32(len(s)))
	writeBytes(buf, []byte(s))
}

// listingMagic starts every encoded listing.
var listingMagic = []byte{0x00, 'o', 'g', 'p', 0x01}

// EncodeListing serializes instructions into a compact binary form: the
// magic header, then per instruction the opcode byte followed by its
// operand. Integers are signed LEB128, doubles are little-endian IEEE
// 754, names and strings are length-prefixed.
func EncodeListing(instrs []Instr) []byte {
	var buf bytes.Buffer
	writeBytes(&buf, listingMagic)
	writeLEB128(&buf, uint32(len(instrs)))
	for _, in := range instrs {
		writeByte(&buf, byte(in.Op))
		switch in.Op.operand() {
		case operandInt:
			writeLEB128Signed(&buf, int64(in.Int))
		case operandFloat:
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(in.Float))
			writeBytes(&buf, b[:])
		case operandName, operandString:
			writeName(&buf, in.Str)
		case operandGlobal:
			writeName(&buf, in.Str)
			writeByte(&buf, byte(in.Int))
		}
	}
	return buf.Bytes()
}
