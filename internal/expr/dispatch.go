package expr

import (
	"fmt"
	"math"
)

// BinaryFunc implements an infix operator.
type BinaryFunc func(a, b float64) float64

// Function is a named function callable as name(args...).
// MaxArgs < 0 means any number of arguments from MinArgs up.
type Function struct {
	MinArgs int
	MaxArgs int
	Call    func(args []float64) (float64, error)
}

func (f Function) accepts(n int) bool {
	return n >= f.MinArgs && (f.MaxArgs < 0 || n <= f.MaxArgs)
}

func (f Function) arity() string {
	switch {
	case f.MaxArgs == f.MinArgs && f.MinArgs == 1:
		return "1 argument"
	case f.MaxArgs == f.MinArgs:
		return fmt.Sprintf("%d arguments", f.MinArgs)
	case f.MaxArgs < 0:
		return fmt.Sprintf("at least %d argument(s)", f.MinArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", f.MinArgs, f.MaxArgs)
	}
}

// Dispatch is the operator and function table a Program is compiled
// against. Numeric policies such as division by zero live here.
type Dispatch struct {
	Operators map[string]BinaryFunc
	Functions map[string]Function
	Constants map[string]float64
}

// DefaultDispatch returns a fresh table with the plotter's numeric policies.
func DefaultDispatch() *Dispatch {
	return &Dispatch{
		Operators: map[string]BinaryFunc{
			"+": func(a, b float64) float64 { return a + b },
			"-": func(a, b float64) float64 { return a - b },
			"*": func(a, b float64) float64 { return a * b },
			"/": Divide,
			"%": math.Mod,
			"^": math.Pow,
		},
		Functions: map[string]Function{
			"sqrt":  {MinArgs: 1, MaxArgs: 1, Call: sqrt},
			"log":   {MinArgs: 1, MaxArgs: 1, Call: logarithm(math.Log10)},
			"ln":    {MinArgs: 1, MaxArgs: 1, Call: logarithm(math.Log)},
			"exp":   unary(math.Exp),
			"abs":   unary(math.Abs),
			"sin":   unary(math.Sin),
			"cos":   unary(math.Cos),
			"tan":   unary(math.Tan),
			"asin":  unary(math.Asin),
			"acos":  unary(math.Acos),
			"atan":  unary(math.Atan),
			"sinh":  unary(math.Sinh),
			"cosh":  unary(math.Cosh),
			"tanh":  unary(math.Tanh),
			"ceil":  unary(math.Ceil),
			"floor": unary(math.Floor),
			"round": unary(math.Round),
			"min":   variadic(minOf),
			"max":   variadic(maxOf),
			"sum":   variadic(sumOf),
			"avg":   variadic(avgOf),
		},
		Constants: map[string]float64{
			"pi": math.Pi,
			"e":  math.E,
		},
	}
}

// Divide never fails: a nonzero numerator over zero gives a signed
// infinity and 0/0 gives 0.
func Divide(a, b float64) float64 {
	if b == 0 {
		switch {
		case a > 0:
			return math.Inf(1)
		case a < 0:
			return math.Inf(-1)
		default:
			return 0
		}
	}
	return a / b
}

func sqrt(args []float64) (float64, error) {
	v := args[0]
	if v == 0 {
		return 0, nil
	}
	if v < 0 {
		return 0, fmt.Errorf("sqrt of negative value %g", v)
	}
	return math.Sqrt(v), nil
}

// logarithm maps 0 to -Inf; negative arguments follow f (NaN).
func logarithm(f func(float64) float64) func([]float64) (float64, error) {
	return func(args []float64) (float64, error) {
		if args[0] == 0 {
			return math.Inf(-1), nil
		}
		return f(args[0]), nil
	}
}

func unary(f func(float64) float64) Function {
	return Function{
		MinArgs: 1,
		MaxArgs: 1,
		Call: func(args []float64) (float64, error) {
			return f(args[0]), nil
		},
	}
}

func variadic(f func([]float64) float64) Function {
	return Function{
		MinArgs: 1,
		MaxArgs: -1,
		Call: func(args []float64) (float64, error) {
			return f(args), nil
		},
	}
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		m = math.Max(m, v)
	}
	return m
}

func sumOf(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}

func avgOf(vs []float64) float64 {
	return sumOf(vs) / float64(len(vs))
}
