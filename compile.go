package polysolve

import (
	"fmt"
	"math"
)

// EvalFn is a compiled numeric form of an expression: it maps an argument
// vector, positionally matching the variable list given at compile time, to
// a float64 value.
type EvalFn func(args []float64) float64

// Compile lowers an expression tree into a closure over float64 arithmetic.
// The numeric solvers evaluate the same expression thousands of times during
// bracket scans and Newton steps; compiling once avoids re-walking the tree
// and re-converting rationals on every call.
func Compile(e Expr, vars []string) (EvalFn, error) {
	slot := make(map[string]int, len(vars))
	for i, v := range vars {
		slot[v] = i
	}
	return compileNode(e.Simplify(), slot)
}

func compileNode(e Expr, slot map[string]int) (EvalFn, error) {
	switch v := e.(type) {
	case *Num:
		c := v.Float64()
		return func([]float64) float64 { return c }, nil
	case *Sym:
		i, ok := slot[v.name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingVariable, v.name)
		}
		return func(args []float64) float64 { return args[i] }, nil
	case *Add:
		fns, err := compileAll(v.terms, slot)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 {
			sum := 0.0
			for _, f := range fns {
				sum += f(args)
			}
			return sum
		}, nil
	case *Mul:
		fns, err := compileAll(v.factors, slot)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 {
			prod := 1.0
			for _, f := range fns {
				prod *= f(args)
			}
			return prod
		}, nil
	case *Pow:
		base, err := compileNode(v.base, slot)
		if err != nil {
			return nil, err
		}
		// small integer exponents use repeated multiplication; math.Pow
		// returns NaN for negative bases with fractional representation
		if en, ok := v.exp.(*Num); ok && en.IsInteger() {
			if k := en.val.Num().Int64(); k >= -8 && k <= 8 {
				return func(args []float64) float64 {
					b := base(args)
					out := 1.0
					n := k
					if n < 0 {
						n = -n
					}
					for i := int64(0); i < n; i++ {
						out *= b
					}
					if k < 0 {
						return 1.0 / out
					}
					return out
				}, nil
			}
		}
		exp, err := compileNode(v.exp, slot)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 {
			return math.Pow(base(args), exp(args))
		}, nil
	case *Call:
		arg, err := compileNode(v.arg, slot)
		if err != nil {
			return nil, err
		}
		var fn func(float64) float64
		switch v.name {
		case "sin":
			fn = math.Sin
		case "cos":
			fn = math.Cos
		case "tan":
			fn = math.Tan
		case "exp":
			fn = math.Exp
		case "log":
			fn = math.Log
		case "abs":
			fn = math.Abs
		case "sqrt":
			fn = math.Sqrt
		case "sign":
			fn = func(x float64) float64 {
				switch {
				case x > 0:
					return 1
				case x < 0:
					return -1
				}
				return 0
			}
		default:
			return nil, fmt.Errorf("%w: unknown function %s", ErrNotPolynomial, v.name)
		}
		return func(args []float64) float64 { return fn(arg(args)) }, nil
	}
	return nil, fmt.Errorf("%w: cannot compile %T", ErrNotPolynomial, e)
}

func compileAll(exprs []Expr, slot map[string]int) ([]EvalFn, error) {
	fns := make([]EvalFn, len(exprs))
	for i, e := range exprs {
		f, err := compileNode(e, slot)
		if err != nil {
			return nil, err
		}
		fns[i] = f
	}
	return fns, nil
}
