package main

import (
	"testing"

	"github.com/nalgeon/be"
)

const nestedLocals = `(program
  (func void og ((var int n) (var double x))
    (block
      (var int a 1)
      (var double b 2.0)
      (block
        (var int c 3))
      (for ((var int i 0)) ((< i 3)) ((= i (+ i 1)))
        (block
          (var (struct int double) s (tuple i 1.5))))
      (if a (block (var int d 4)))
      (if (> a 0)
        (block (var int e 5))
        (block (var double f 6.0))))))`

func TestFrameSizeCountsNestedLocals(t *testing.T) {
	prog, info, diags := checkSource(t, nestedLocals)
	be.Err(t, diags.Err(), nil)

	def := prog.Decls[0].(*FuncDef)
	be.Equal(t, FrameSize(def, info), 48)
}

func TestFrameSizeExcludesParameters(t *testing.T) {
	prog, info, diags := checkSource(t, `(program
  (func int f ((var int a) (var double b))
    (block
      (return a))))`)
	be.Err(t, diags.Err(), nil)
	be.Equal(t, FrameSize(prog.Decls[0].(*FuncDef), info), 0)
}

func TestFrameMatchesAssignedOffsets(t *testing.T) {
	prog, err := DecodeProgram(nestedLocals)
	be.Err(t, err, nil)
	result, err := Compile(prog, DefaultOptions())
	be.Err(t, err, nil)

	be.Equal(t, result.Listing.Instrs[4], Instr{Op: ENTER, Int: 48})

	expected := `(symbols
  (n int 8)
  (x double 12)
  (a int -4)
  (b double -12)
  (c int -16)
  (i int -20)
  (s (struct int double) -32)
  (d int -36)
  (e int -40)
  (f double -48))`
	be.Equal(t, SymbolLayout(prog, result.Info), expected)
}
