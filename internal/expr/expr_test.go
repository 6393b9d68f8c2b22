package expr

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		src  string
		x    float64
		want float64
	}{
		{"1", 0, 1},
		{"x", 3, 3},
		{"2+3*4", 0, 14},
		{"(2+3)*4", 0, 20},
		{"10-4-3", 0, 3},
		{"8/4/2", 0, 1},
		{"2^3^2", 0, 64},
		{"-2^2", 0, -4},
		{"-x^2", 3, -9},
		{"2^-1", 0, 0.5},
		{"2*-3", 0, -6},
		{"--x", 3, 3},
		{"+x", 3, 3},
		{"7%3", 0, 1},
		{"x^2", -2, 4},
		{"x^2 - 2*x + 1", 1, 0},
		{"sqrt(16)", 0, 4},
		{"log(100)", 0, 2},
		{"abs(-2.5)", 0, 2.5},
		{"min(3, 1, 2)", 0, 1},
		{"max(3, 1, 2)", 0, 3},
		{"sum(1, 2, 3)", 0, 6},
		{"avg(1, 2, 3)", 0, 2},
		{"floor(-1.5)", 0, -2},
		{"ceil(1.2)", 0, 2},
		{"1e3", 0, 1000},
		{".5", 0, 0.5},
		{"2.5E-2", 0, 0.025},
		{" 1 +\t2 ", 0, 3},
		{"sin(0) + cos(0)", 0, 1},
	}
	for _, tt := range tests {
		got, err := Evaluate(tt.src, tt.x)
		if err != nil {
			t.Errorf("Evaluate(%q, %g): unexpected error %v", tt.src, tt.x, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Evaluate(%q, %g) = %g, want %g", tt.src, tt.x, got, tt.want)
		}
	}
}

func TestEvaluateConstants(t *testing.T) {
	got, err := Evaluate("pi", 0)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, math.Pi, got)

	got, err = Evaluate("ln(e)", 0)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 1.0, got, cmpopts.EquateApprox(0, 1e-12))
}

func TestDivisionByZero(t *testing.T) {
	tests := []struct {
		src  string
		x    float64
		want float64
	}{
		{"1/0", 0, math.Inf(1)},
		{"-1/0", 0, math.Inf(-1)},
		{"0/0", 0, 0},
		{"x/0", -3, math.Inf(-1)},
		{"x/(x-x)", 5, math.Inf(1)},
		{"1/(0*-1)", 0, math.Inf(1)},
	}
	for _, tt := range tests {
		got, err := Evaluate(tt.src, tt.x)
		if err != nil {
			t.Errorf("Evaluate(%q): unexpected error %v", tt.src, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Evaluate(%q, %g) = %g, want %g", tt.src, tt.x, got, tt.want)
		}
	}
}

func TestLogarithmOfZero(t *testing.T) {
	for _, src := range []string{"log(0)", "ln(0)", "log(x)", "ln(x)"} {
		got, err := Evaluate(src, 0)
		if err != nil {
			t.Errorf("Evaluate(%q): unexpected error %v", src, err)
			continue
		}
		if !math.IsInf(got, -1) {
			t.Errorf("Evaluate(%q) = %g, want -Inf", src, got)
		}
	}

	// Negative arguments are not special-cased.
	got, err := Evaluate("ln(-1)", 0)
	if err != nil {
		t.Fatalf("ln(-1): unexpected error %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("ln(-1) = %g, want NaN", got)
	}
}

func TestSqrt(t *testing.T) {
	got, err := Evaluate("sqrt(0)", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 || math.Signbit(got) {
		t.Errorf("sqrt(0) = %g, want 0", got)
	}

	_, err = Evaluate("sqrt(-4)", 0)
	if !errors.Is(err, ErrDomain) {
		t.Fatalf("sqrt(-4): got error %v, want domain error", err)
	}
	if KindOf(err) != DomainError {
		t.Errorf("KindOf = %v, want %v", KindOf(err), DomainError)
	}

	p, err := Compile("sqrt(x)")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Eval(-1); !errors.Is(err, ErrDomain) {
		t.Errorf("sqrt(x) at -1: got %v, want domain error", err)
	}
	if v, err := p.Eval(9); err != nil || v != 3 {
		t.Errorf("sqrt(x) at 9 = %g, %v", v, err)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		src  string
		want error
	}{
		{"", ErrSyntax},
		{"   ", ErrSyntax},
		{"2+", ErrSyntax},
		{"2**3", ErrSyntax},
		{"(1+2", ErrSyntax},
		{"x\n+1", ErrSyntax},
		{"x\r", ErrSyntax},
		{"1+2)", ErrSyntax},
		{"2x", ErrSyntax},
		{"1 $ 2", ErrSyntax},
		{"sqrt", ErrSyntax},
		{"1,2", ErrSyntax},
		{".", ErrSyntax},
		{"()", ErrSyntax},
		{"y+1", ErrUnknownIdentifier},
		{"X", ErrUnknownIdentifier},
		{"foo(1)", ErrUnknownIdentifier},
		{"sin(1, 2)", ErrArity},
		{"sin()", ErrArity},
		{"max()", ErrArity},
	}
	for _, tt := range tests {
		_, err := Compile(tt.src)
		if !errors.Is(err, tt.want) {
			t.Errorf("Compile(%q): got error %v, want %v", tt.src, err, tt.want)
		}
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	_, err := Compile("y")
	if errors.Is(err, ErrSyntax) || errors.Is(err, ErrArity) || errors.Is(err, ErrDomain) {
		t.Errorf("unknown identifier error matches another kind: %v", err)
	}
	if KindOf(err).String() != "unknown_identifier" {
		t.Errorf("got kind %q", KindOf(err))
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf should be 0 for foreign errors")
	}
}

func TestErrorMessages(t *testing.T) {
	_, err := Compile("x + y")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "column 5") || !strings.Contains(err.Error(), `"y"`) {
		t.Errorf("unhelpful message %q", err)
	}

	_, err = Compile("cos(1, 2)")
	if !strings.Contains(err.Error(), "cos expects 1 argument, got 2") {
		t.Errorf("unhelpful message %q", err)
	}
}

func TestDeterminism(t *testing.T) {
	srcs := []string{"sin(x)^2 + cos(x)^2", "x^3 - 2*x/7", "ln(abs(x)) + 1/x", "1/0"}
	xs := []float64{-3.7, -1, 0, 0.1, 2, 1e6}
	for _, src := range srcs {
		p, err := Compile(src)
		if err != nil {
			t.Fatal(err)
		}
		for _, x := range xs {
			first, _ := Evaluate(src, x)
			for i := 0; i < 5; i++ {
				got, _ := p.Eval(x)
				if math.Float64bits(got) != math.Float64bits(first) {
					t.Fatalf("%q at %g: run %d gave %g, first gave %g", src, x, i, got, first)
				}
			}
		}
	}
}

func TestProgramString(t *testing.T) {
	p, err := Compile("x ^ 2")
	if err != nil {
		t.Fatal(err)
	}
	diff(t, "x ^ 2", p.String())
}

func TestCustomDispatch(t *testing.T) {
	d := DefaultDispatch()
	d.Operators["/"] = func(a, b float64) float64 { return a / b }
	d.Functions["sq"] = Function{MinArgs: 1, MaxArgs: 1, Call: func(args []float64) (float64, error) {
		return args[0] * args[0], nil
	}}
	delete(d.Constants, "e")

	p, err := d.Compile("0/0")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := p.Eval(0); !math.IsNaN(v) {
		t.Errorf("plain division 0/0 = %g, want NaN", v)
	}

	p, err = d.Compile("sq(x) + 1")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := p.Eval(3); v != 10 {
		t.Errorf("sq(3)+1 = %g", v)
	}

	if _, err := d.Compile("e"); !errors.Is(err, ErrUnknownIdentifier) {
		t.Errorf("removed constant: got %v", err)
	}

	// The package default table is unaffected.
	if v, _ := Evaluate("0/0", 0); v != 0 {
		t.Errorf("default 0/0 = %g", v)
	}
}
