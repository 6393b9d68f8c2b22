// Package expr parses and evaluates infix expressions over the single
// variable x.
//
// An expression is compiled once into a Program and evaluated per sample
// point. Division by zero and the logarithm of zero yield signed infinities;
// the square root of a negative number is a DomainError.
package expr

import "strings"

var std = DefaultDispatch()

// Program is a compiled expression. It holds no mutable state and may be
// evaluated any number of times.
type Program struct {
	src  string
	root node
}

// Compile parses src against the default dispatch table.
func Compile(src string) (*Program, error) {
	return std.Compile(src)
}

// Evaluate compiles src and evaluates it at x.
func Evaluate(src string, x float64) (float64, error) {
	p, err := Compile(src)
	if err != nil {
		return 0, err
	}
	return p.Eval(x)
}

// Compile parses src against d.
func (d *Dispatch) Compile(src string) (*Program, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errorf(SyntaxError, 0, "empty expression")
	}
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, table: d}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return &Program{src: src, root: root}, nil
}

// Eval evaluates the program at x. The only runtime failure is a
// DomainError raised by a function such as sqrt.
func (p *Program) Eval(x float64) (float64, error) {
	return p.root.eval(x)
}

// String returns the source the program was compiled from.
func (p *Program) String() string {
	return p.src
}
