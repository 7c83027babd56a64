package polysolve_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ps "github.com/mbrennan-go/polysolve"
)

// rootFloats evaluates every root numerically and returns them sorted.
func rootFloats(t *testing.T, roots []ps.Expr) []float64 {
	t.Helper()
	out := make([]float64, 0, len(roots))
	for _, r := range roots {
		n, ok := r.Eval()
		require.Truef(t, ok, "root %s did not evaluate", r.String())
		out = append(out, n.Float64())
	}
	sort.Float64s(out)
	return out
}

func rootStrings(roots []ps.Expr) []string {
	out := make([]string, len(roots))
	for i, r := range roots {
		out[i] = r.String()
	}
	return out
}

// ============================================================
// Closed forms
// ============================================================

func TestRoots_Linear(t *testing.T) {
	x := ps.S("x")
	roots, err := ps.Roots(ps.AddOf(ps.MulOf(ps.N(2), x), ps.N(-6)), "x")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "3", roots[0].String())
}

func TestRoots_QuadraticRational(t *testing.T) {
	x := ps.S("x")
	e := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.MulOf(ps.N(-5), x), ps.N(6))
	roots, err := ps.Roots(e, "x")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2", "3"}, rootStrings(roots))
}

func TestRoots_QuadraticIrrational(t *testing.T) {
	x := ps.S("x")
	// x^2 - 2: roots +-sqrt(2), kept symbolic
	e := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.N(-2))
	roots, err := ps.Roots(e, "x")
	require.NoError(t, err)
	require.Len(t, roots, 2)
	for _, r := range roots {
		assert.Contains(t, r.String(), "2^(1/2)")
	}
}

func TestRoots_ImaginaryUnitSymbol(t *testing.T) {
	x := ps.S("x")
	// complex roots come out as expressions over the plain symbol i
	e := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.N(1))
	roots, err := ps.Roots(e, "x")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"i", "-1*i"}, rootStrings(roots))
}

func TestRoots_PeelsZeroRoots(t *testing.T) {
	x := ps.S("x")
	// x^3 - 4x = x (x - 2)(x + 2)
	e := ps.AddOf(ps.PowOf(x, ps.N(3)), ps.MulOf(ps.N(-4), x))
	roots, err := ps.Roots(e, "x")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-2, 0, 2}, rootFloats(t, roots), 1e-9)
}

func TestRoots_CubicThreeReal(t *testing.T) {
	x := ps.S("x")
	// (x - 1)(x - 2)(x - 3)
	e := ps.AddOf(
		ps.PowOf(x, ps.N(3)),
		ps.MulOf(ps.N(-6), ps.PowOf(x, ps.N(2))),
		ps.MulOf(ps.N(11), x),
		ps.N(-6),
	)
	roots, err := ps.Roots(e, "x")
	require.NoError(t, err)
	require.Len(t, roots, 3)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, rootFloats(t, roots), 1e-6)
}

func TestRoots_CubicOneReal(t *testing.T) {
	x := ps.S("x")
	// x^3 - 1: one real root, conjugate pair on i
	e := ps.AddOf(ps.PowOf(x, ps.N(3)), ps.N(-1))
	roots, err := ps.Roots(e, "x")
	require.NoError(t, err)
	require.Len(t, roots, 3)
	nReal, nComplex := 0, 0
	for _, r := range roots {
		if _, ok := r.Eval(); ok {
			nReal++
		} else {
			nComplex++
		}
	}
	assert.Equal(t, 1, nReal)
	assert.Equal(t, 2, nComplex)
}

func TestRoots_QuarticBiquadratic(t *testing.T) {
	x := ps.S("x")
	e := ps.AddOf(ps.PowOf(x, ps.N(4)), ps.N(-1))
	roots, err := ps.Roots(e, "x")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "-1", "i", "-1*i"}, rootStrings(roots))
}

func TestRoots_QuarticGeneral(t *testing.T) {
	x := ps.S("x")
	// (x - 1)(x - 2)(x + 1)(x + 3) = x^4 + x^3 - 7x^2 - x + 6
	e := ps.AddOf(
		ps.PowOf(x, ps.N(4)),
		ps.PowOf(x, ps.N(3)),
		ps.MulOf(ps.N(-7), ps.PowOf(x, ps.N(2))),
		ps.NegOf(x),
		ps.N(6),
	)
	roots, err := ps.Roots(e, "x")
	require.NoError(t, err)
	require.Len(t, roots, 4)
	assert.InDeltaSlice(t, []float64{-3, -1, 1, 2}, rootFloats(t, roots), 1e-6)
}

// ============================================================
// Numeric root finding (degree 5+)
// ============================================================

func TestRoots_QuinticNumeric(t *testing.T) {
	x := ps.S("x")
	// (x-1)(x-2)(x-3)(x-4)(x-5)
	e := ps.AddOf(
		ps.PowOf(x, ps.N(5)),
		ps.MulOf(ps.N(-15), ps.PowOf(x, ps.N(4))),
		ps.MulOf(ps.N(85), ps.PowOf(x, ps.N(3))),
		ps.MulOf(ps.N(-225), ps.PowOf(x, ps.N(2))),
		ps.MulOf(ps.N(274), x),
		ps.N(-120),
	)
	roots, err := ps.Roots(e, "x")
	require.NoError(t, err)
	require.Len(t, roots, 5)
	assert.InDeltaSlice(t, []float64{1, 2, 3, 4, 5}, rootFloats(t, roots), 1e-6)
}

func TestRoots_TinyUniformCoefficients(t *testing.T) {
	x := ps.S("x")
	eps := ps.Frac(1, 1000000000000)
	// 1e-12 (x-1)(x-2)(x-3)(x-4)(x-5): uniformly tiny coefficients must not
	// be rescaled down into the subnormal range
	e := ps.AddOf(
		ps.MulOf(eps, ps.PowOf(x, ps.N(5))),
		ps.MulOf(eps, ps.N(-15), ps.PowOf(x, ps.N(4))),
		ps.MulOf(eps, ps.N(85), ps.PowOf(x, ps.N(3))),
		ps.MulOf(eps, ps.N(-225), ps.PowOf(x, ps.N(2))),
		ps.MulOf(eps, ps.N(274), x),
		ps.MulOf(eps, ps.N(-120)),
	)
	roots, err := ps.Roots(e, "x")
	require.NoError(t, err)
	require.Len(t, roots, 5)
	assert.InDeltaSlice(t, []float64{1, 2, 3, 4, 5}, rootFloats(t, roots), 1e-6)
}

func TestRoots_Degree6Mixed(t *testing.T) {
	x := ps.S("x")
	// (x^2 + 1)(x - 1)(x + 1)(x - 2)(x + 2) = x^6 - 4x^4 - x^2 + 4
	e := ps.AddOf(
		ps.PowOf(x, ps.N(6)),
		ps.MulOf(ps.N(-4), ps.PowOf(x, ps.N(4))),
		ps.NegOf(ps.PowOf(x, ps.N(2))),
		ps.N(4),
	)
	roots, err := ps.Roots(e, "x")
	require.NoError(t, err)
	require.Len(t, roots, 6)
	var reals []float64
	for _, r := range roots {
		if n, ok := r.Eval(); ok {
			reals = append(reals, n.Float64())
		}
	}
	sort.Float64s(reals)
	assert.InDeltaSlice(t, []float64{-2, -1, 1, 2}, reals, 1e-6)
}

func TestRoots_DegreeCap(t *testing.T) {
	x := ps.S("x")
	_, err := ps.Roots(ps.AddOf(ps.PowOf(x, ps.N(101)), ps.N(-1)), "x")
	assert.ErrorIs(t, err, ps.ErrDegreeTooLarge)
}

func TestRoots_InfersVariable(t *testing.T) {
	y := ps.S("y")
	roots, err := ps.Roots(ps.AddOf(y, ps.N(-4)), "")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "4", roots[0].String())
}

func TestRoots_RejectsTranscendental(t *testing.T) {
	_, err := ps.Roots(ps.SinOf(ps.S("x")), "x")
	assert.ErrorIs(t, err, ps.ErrNotPolynomial)
}

// ============================================================
// Completing the square
// ============================================================

func TestCompleteTheSquare(t *testing.T) {
	x := ps.S("x")
	e := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.MulOf(ps.N(-6), x), ps.N(11))
	out, err := ps.CompleteTheSquare(e, "x")
	require.NoError(t, err)
	assert.Equal(t, "(x + -3)^2 + 2", out.String())
	requireSameExpanded(t, e, out)
}

func TestCompleteTheSquare_ScaledLeading(t *testing.T) {
	x := ps.S("x")
	// 2x^2 + 8x + 3 = 2(x + 2)^2 - 5
	e := ps.AddOf(ps.MulOf(ps.N(2), ps.PowOf(x, ps.N(2))), ps.MulOf(ps.N(8), x), ps.N(3))
	out, err := ps.CompleteTheSquare(e, "x")
	require.NoError(t, err)
	requireSameExpanded(t, e, out)
}

func TestCompleteTheSquare_RejectsNonQuadratic(t *testing.T) {
	x := ps.S("x")
	_, err := ps.CompleteTheSquare(ps.PowOf(x, ps.N(3)), "x")
	assert.ErrorIs(t, err, ps.ErrNotPolynomial)
}
