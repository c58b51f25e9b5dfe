package main

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostic is a user-facing compile error tagged with the source line
// of the offending node.
type Diagnostic struct {
	Line int
	Msg  string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d: %s", d.Line, d.Msg)
}

// ErrorCollection accumulates diagnostics across a whole translation unit.
type ErrorCollection struct {
	Errors []*Diagnostic
}

// Add records err. Plain errors are attached to line.
func (ec *ErrorCollection) Add(line int, err error) {
	var d *Diagnostic
	if errors.As(err, &d) {
		ec.Errors = append(ec.Errors, d)
		return
	}
	ec.Errors = append(ec.Errors, &Diagnostic{Line: line, Msg: err.Error()})
}

func (ec *ErrorCollection) HasErrors() bool {
	return len(ec.Errors) > 0
}

func (ec *ErrorCollection) Len() int {
	return len(ec.Errors)
}

// String renders one diagnostic per line.
func (ec *ErrorCollection) String() string {
	var b strings.Builder
	for i, d := range ec.Errors {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Error())
	}
	return b.String()
}

// Err returns nil when the collection is empty.
func (ec *ErrorCollection) Err() error {
	if !ec.HasErrors() {
		return nil
	}
	return ec
}

func (ec *ErrorCollection) Error() string {
	return ec.String()
}

// undeclaredError is raised by identifier resolution. Callers that know
// the identifier is being used as a variable turn it into a diagnostic.
type undeclaredError struct {
	line int
	name string
}

func (e *undeclaredError) Error() string {
	return fmt.Sprintf("%d: %s", e.line, e.name)
}

// InternalError signals that code generation met a state the checker
// should have excluded. It aborts the whole generation pass.
type InternalError struct {
	Line int
	Msg  string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error at line %d: %s", e.Line, e.Msg)
}

func internalf(node Node, format string, args ...any) {
	line := 0
	if node != nil {
		line = node.Pos()
	}
	panic(&InternalError{Line: line, Msg: fmt.Sprintf(format, args...)})
}
