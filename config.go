package polysolve

// Settings holds the process-wide numeric knobs. A Settings value is read
// only during a solve; change it between top-level calls, not during one.
type Settings struct {
	// SearchRadius bounds the bracket scan for transcendental equations.
	SearchRadius float64
	// Epsilon is the root acceptance threshold for numeric methods.
	Epsilon float64
	// DedupWindow merges numeric solutions closer together than this.
	DedupWindow float64
	// Precision is the decimal precision numeric roots are rounded to.
	Precision int32
	// MaxNewtonIter caps a single Newton run.
	MaxNewtonIter int
	// MaxBisectIter caps a single bisection run.
	MaxBisectIter int
	// MaxSolveDepth bounds recursive solving (abs splits, inverse rewrites).
	MaxSolveDepth int
	// MaxFactorDepth bounds the recursive factoring helpers.
	MaxFactorDepth int
	// SystemRestarts is the number of perturbed starting points tried when
	// Newton-Raphson on a nonlinear system stalls.
	SystemRestarts int
}

// DefaultSettings mirrors the iteration ceilings the algorithms were tuned
// with: hundreds of iterations, not thousands.
func DefaultSettings() Settings {
	return Settings{
		SearchRadius:   1000,
		Epsilon:        1e-10,
		DedupWindow:    1e-7,
		Precision:      10,
		MaxNewtonIter:  200,
		MaxBisectIter:  200,
		MaxSolveDepth:  10,
		MaxFactorDepth: 40,
		SystemRestarts: 12,
	}
}
