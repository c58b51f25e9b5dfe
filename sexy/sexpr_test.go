package sexy

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"test_var", "test_var"},
		{"func-name", "func-name"},
		{"x", "x"},
		{"+", "+"},
		{"<=", "<="},
		{"!=", "!="},
		{"and", "and"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeSymbol)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		output   string
	}{
		{`"hello"`, "hello", `"hello"`},
		{`"hello world"`, "hello world", `"hello world"`},
		{`""`, "", `""`},
		{`"test\"quote"`, `test"quote`, `"test\"quote"`},
		{`"test\\backslash"`, `test\backslash`, `"test\\backslash"`},
		{`"line\nbreak"`, "line\nbreak", `"line\nbreak"`},
		{`"a\tb"`, "a\tb", `"a\tb"`},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeString)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.output)
	}
}

func TestParseInteger(t *testing.T) {
	tests := []string{"42", "0", "-123", "+7"}

	for _, test := range tests {
		result, err := Parse(test)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeInteger)
		be.Equal(t, result.Text, test)
	}
}

func TestParseFloat(t *testing.T) {
	tests := []string{"2.5", "-0.25", "1e3", "6.02e+23", "1.5E-3"}

	for _, test := range tests {
		t.Run(test, func(t *testing.T) {
			result, err := Parse(test)
			be.Err(t, err, nil)

			be.Equal(t, result.Type, NodeFloat)
			be.Equal(t, result.Text, test)
			be.Equal(t, result.String(), test)
		})
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		count    int
	}{
		{"()", "()", 0},
		{"(hello)", "(hello)", 1},
		{"(+ 1 2)", "(+ 1 2)", 3},
		{"(var int x 2.5)", "(var int x 2.5)", 4},
		{"(a (b c) (d (e)))", "(a (b c) (d (e)))", 3},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeList)
		be.Equal(t, len(result.Items), test.count)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestParseMap(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		keys     string
	}{
		{"{}", "{}", ""},
		{"{line: 3}", "{line: 3}", "line"},
		{"{a: 1, b: \"two\"}", "{a: 1, b: \"two\"}", "a b"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeMap)
		be.Equal(t, strings.Join(result.Keys, " "), test.keys)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestParseMeta(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"(return 0 ^{line: 12})", "(^{line: 12} return 0)"},
		{"(var ^{line: 3} int x)", "(^{line: 3} var int x)"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeList)
		be.Equal(t, result.String(), test.expected)

		// Check that metadata is present
		be.True(t, len(result.MetaKeys) > 0)
		be.True(t, len(result.MetaItems) > 0)
	}
}

func TestParseMetaMerging(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"Multiple metadata merged",
			"(^{a: 1} ^{b: 2} foo ^{c: 3})",
			"(^{a: 1, b: 2, c: 3} foo)",
		},
		{
			"Metadata with overlapping keys - later wins",
			"(^{line: 1} ^{line: 9} item)",
			"(^{line: 9} item)",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := Parse(test.input)
			be.Err(t, err, nil)

			be.Equal(t, result.Type, NodeList)
			be.Equal(t, result.String(), test.expected)
			be.Equal(t, len(result.MetaKeys), len(result.MetaItems))
		})
	}
}

func TestParseLines(t *testing.T) {
	src := `(program
  (var int x 1)

  (func int og ()
    (block (return x))))`

	result, err := Parse(src)
	be.Err(t, err, nil)

	be.Equal(t, result.Line, 1)
	be.Equal(t, result.Items[1].Line, 2)
	fn := result.Items[2]
	be.Equal(t, fn.Line, 4)
	be.Equal(t, fn.Items[4].Line, 5)
	be.Equal(t, fn.Items[4].Items[1].Line, 5)
}

func TestParseComplexExamples(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"Function definition",
			`(func int og ()
 (block
  (var auto (x y) (tuple 1 2.5))
  (return x)))`,
			"(func int og () (block (var auto (x y) (tuple 1 2.5)) (return x)))",
		},
		{
			"Loop",
			`(for ((var int i 0)) ((< i 10)) ((= i (+ i 1)))
  (if (== i 5) (break)))`,
			"(for ((var int i 0)) ((< i 10)) ((= i (+ i 1))) (if (== i 5) (break)))",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := Parse(test.input)
			be.Err(t, err, nil)
			be.Equal(t, result.String(), test.expected)
		})
	}
}

func TestRoundTripParsing(t *testing.T) {
	tests := []string{
		"hello",
		`"world"`,
		`"tab\there"`,
		"42",
		"-1",
		"0.5",
		"()",
		"(test)",
		"(1 2 3)",
		"{}",
		"{key: value}",
		"(binary \"+\" 1 2)",
		"(list ^{meta: data})",
		"(index p (- i 1))",
	}

	for _, test := range tests {
		t.Run(test, func(t *testing.T) {
			// Parse once
			result1, err := Parse(test)
			be.Err(t, err, nil)

			// Pretty-print
			output := result1.String()

			// Parse the pretty-printed output
			result2, err := Parse(output)
			be.Err(t, err, nil)

			// Should produce the same pretty-printed output
			be.Equal(t, result2.String(), output)
		})
	}
}

func TestParseComments(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"; comment\nhello", "hello"},
		{"hello ; trailing comment", "hello"},
		{"; entry point\n(func int og ())", "(func int og ())"},
		{"(test ; inline comment\n world)", "(test world)"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestSyntaxErrorHandling(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Single dot", ".", "line 1: unexpected character '.'"},
		{"Dollar", "$", "line 1: unexpected character '$'"},
		{"Backtick on a later line", "(a\n`)", "line 2: unexpected character '`'"},
		{"Unterminated string", `"abc`, "line 1: unterminated string"},
		{"Invalid escape", `"a\qb"`, "line 1: invalid escape sequence: \\q"},
		{"Extra tokens", "hello world", "line 1: expected EOF but got symbol"},
		{"Stray paren", ")", "line 1: unexpected token: ')'"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := Parse(test.input)
			be.True(t, err != nil)
			be.Equal(t, err.Error(), test.expected)
			be.True(t, result == nil)
		})
	}
}

func TestParseIncomplete(t *testing.T) {
	tests := []string{
		"(",
		"(hello",
		"(func int og ()\n  (block",
		"{",
		"(a ^{line: 1}",
	}

	for _, test := range tests {
		_, err := Parse(test)
		be.Err(t, err, ErrIncomplete)
	}

	// Errors that more input cannot fix are not incomplete.
	_, err := Parse("(a))")
	be.True(t, err != nil)
	be.True(t, !errors.Is(err, ErrIncomplete))
}

func TestNodeTypeHelpers(t *testing.T) {
	symbol := NewSymbol("test")
	be.True(t, symbol.IsAtom())
	be.True(t, symbol.IsSymbol("test"))
	be.True(t, !symbol.IsSymbol("other"))
	be.Equal(t, symbol.Head(), "")

	be.True(t, NewString("hello").IsAtom())
	be.True(t, NewInteger("42").IsAtom())
	be.True(t, NewFloat("4.2").IsAtom())
	be.True(t, !NewString("test").IsSymbol("test"))

	list := NewList([]*Node{NewSymbol("block"), NewInteger("1")})
	be.True(t, !list.IsAtom())
	be.Equal(t, list.Head(), "block")
	be.Equal(t, NewList(nil).Head(), "")
	be.Equal(t, NewList([]*Node{NewInteger("1")}).Head(), "")

	meta := NewListWithMeta([]*Node{NewSymbol("nop")}, []string{"line"}, []*Node{NewInteger("7")})
	be.Equal(t, meta.Meta("line").Text, "7")
	be.True(t, meta.Meta("file") == nil)
	be.True(t, list.Meta("line") == nil)

	metaMap := NewMap([]string{"key"}, []*Node{NewString("value")})
	be.True(t, !metaMap.IsAtom())
}
