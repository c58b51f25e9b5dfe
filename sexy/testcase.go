package sexy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType is the language of the fence holding a test's program.
type InputType string

const (
	InputTypeOgProgram InputType = "og-program"
)

// AssertionType is the language of a fence holding an expected result.
type AssertionType string

const (
	AssertionTypePostfix      AssertionType = "postfix"
	AssertionTypeSymbols      AssertionType = "symbols"
	AssertionTypeExterns      AssertionType = "externs"
	AssertionTypeCompileError AssertionType = "compile-error"
)

// Assertion is one expected result of a test case.
type Assertion struct {
	Type       AssertionType
	Content    string // fence body without the trailing newline
	ParsedSexy *Node  // set for symbols assertions
	Line       int
}

// TestCase is a "Test: name" section of a Markdown suite.
type TestCase struct {
	Name      string
	Line      int // line of the heading
	Input     string
	InputType InputType
	// Options holds key=value words following the input fence
	// language, as in "og-program entry=start".
	Options    map[string]string
	Assertions []Assertion
}

// Option returns the named input option, or def when it is absent.
func (tc *TestCase) Option(key, def string) string {
	if v, ok := tc.Options[key]; ok {
		return v
	}
	return def
}

// extractor collects test cases while walking a Markdown document.
type extractor struct {
	source  []byte
	cases   []TestCase
	current *TestCase
}

// ExtractTestCases parses a Markdown document and returns its test cases
// in document order.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	x := &extractor{source: []byte(markdownContent)}
	doc := goldmark.New().Parser().Parse(text.NewReader(x.source))

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var err error
		switch n := node.(type) {
		case *ast.Heading:
			err = x.heading(n)
		case *ast.FencedCodeBlock:
			err = x.fence(n)
		}
		if err != nil {
			return ast.WalkStop, err
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}
	if err := x.flush(); err != nil {
		return nil, err
	}
	return x.cases, nil
}

func (x *extractor) heading(n *ast.Heading) error {
	title := nodeText(n, x.source)
	name, ok := strings.CutPrefix(title, "Test: ")
	if !ok {
		return nil
	}
	if err := x.flush(); err != nil {
		return err
	}
	x.current = &TestCase{
		Name:       name,
		Line:       lineOf(n, x.source),
		Options:    map[string]string{},
		Assertions: []Assertion{},
	}
	return nil
}

func (x *extractor) fence(n *ast.FencedCodeBlock) error {
	language := string(n.Language(x.source))
	line := lineOf(n, x.source)
	known := isInputFence(language) || isAssertionFence(language)

	if x.current == nil {
		switch {
		case language == "":
			return nil
		case known:
			return fmt.Errorf("line %d: %s fence found outside of test case", line, language)
		default:
			return fmt.Errorf("line %d: unknown fence language '%s' found outside of test case", line, language)
		}
	}
	if language == "" {
		return nil
	}
	if !known {
		return fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, language, x.current.Name)
	}

	content := strings.TrimRight(fenceBody(n, x.source), "\n")
	if isInputFence(language) {
		if x.current.Input != "" {
			return fmt.Errorf("line %d: multiple input fences found in test '%s'", line, x.current.Name)
		}
		x.current.Input = content
		x.current.InputType = InputType(language)
		return x.options(n, line)
	}

	assertion := Assertion{Type: AssertionType(language), Content: content, Line: line}
	if assertion.Type == AssertionTypeSymbols {
		parsed, err := Parse(content)
		if err != nil {
			return fmt.Errorf("line %d: failed to parse Sexy assertion in test '%s': %w", line, x.current.Name, err)
		}
		assertion.ParsedSexy = parsed
	}
	x.current.Assertions = append(x.current.Assertions, assertion)
	return nil
}

// options reads the key=value words after the fence language.
func (x *extractor) options(n *ast.FencedCodeBlock, line int) error {
	if n.Info == nil {
		return nil
	}
	words := strings.Fields(string(n.Info.Segment.Value(x.source)))
	for _, word := range words[1:] {
		key, value, ok := strings.Cut(word, "=")
		if !ok || key == "" {
			return fmt.Errorf("line %d: malformed fence option '%s' in test '%s'", line, word, x.current.Name)
		}
		x.current.Options[key] = value
	}
	return nil
}

// flush validates the test case being built and appends it.
func (x *extractor) flush() error {
	tc := x.current
	if tc == nil {
		return nil
	}
	if tc.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", tc.Name)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", tc.Name)
	}
	x.cases = append(x.cases, *tc)
	x.current = nil
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceBody(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

func isInputFence(language string) bool {
	return InputType(language) == InputTypeOgProgram
}

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionTypePostfix, AssertionTypeSymbols, AssertionTypeExterns, AssertionTypeCompileError:
		return true
	}
	return false
}

// lineOf returns the 1-based line a block starts on. A fence's first
// content line follows its opening line; empty blocks report line 1.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:min(start, len(source))], []byte{'\n'}) + 1
}
