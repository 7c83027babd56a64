package polysolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ps "github.com/mbrennan-go/polysolve"
)

// requireSameAt asserts two expressions agree exactly when evaluated at the
// given rational points. Expansion cannot compare rational functions, so
// decompositions are checked pointwise instead.
func requireSameAt(t *testing.T, want, got ps.Expr, varName string, points ...*ps.Num) {
	t.Helper()
	for _, pt := range points {
		w, ok := want.Sub(varName, pt).Simplify().Eval()
		require.Truef(t, ok, "lhs did not evaluate at %s", pt.String())
		g, ok := got.Sub(varName, pt).Simplify().Eval()
		require.Truef(t, ok, "rhs did not evaluate at %s", pt.String())
		assert.Truef(t, w.Equal(g), "at %s: want %s, got %s", pt.String(), w.String(), g.String())
	}
}

// ============================================================
// Proper fractions
// ============================================================

func TestPartialFractions_TwoLinearFactors(t *testing.T) {
	x := ps.S("x")
	// 1 / (x^2 - 1) = 1/2/(x-1) - 1/2/(x+1)
	e := ps.DivOf(ps.N(1), ps.AddOf(ps.PowOf(x, ps.N(2)), ps.N(-1)))
	out, err := ps.PartialFractions(e, "x")
	require.NoError(t, err)
	requireSameAt(t, e, out, "x", ps.N(3), ps.N(5), ps.Frac(1, 2))

	// each summand carries a simple denominator, no x^2 anywhere
	assert.NotContains(t, out.String(), "x^2")
}

func TestPartialFractions_RepeatedFactor(t *testing.T) {
	x := ps.S("x")
	// 1 / (x - 1)^2 stays a single term with the squared denominator
	e := ps.DivOf(ps.N(1), ps.AddOf(ps.PowOf(x, ps.N(2)), ps.MulOf(ps.N(-2), x), ps.N(1)))
	out, err := ps.PartialFractions(e, "x")
	require.NoError(t, err)
	requireSameAt(t, e, out, "x", ps.N(3), ps.N(0), ps.N(-2))
}

func TestPartialFractions_MixedMultiplicity(t *testing.T) {
	x := ps.S("x")
	// (3x + 5) / ((x - 1)^2 (x + 2))
	den := ps.Expand(ps.MulOf(
		ps.PowOf(ps.AddOf(x, ps.N(-1)), ps.N(2)),
		ps.AddOf(x, ps.N(2)),
	))
	e := ps.DivOf(ps.AddOf(ps.MulOf(ps.N(3), x), ps.N(5)), den)
	out, err := ps.PartialFractions(e, "x")
	require.NoError(t, err)
	requireSameAt(t, e, out, "x", ps.N(2), ps.N(3), ps.N(-3), ps.Frac(1, 2))
}

// ============================================================
// Improper fractions
// ============================================================

func TestPartialFractions_ImproperGainsPolynomialPart(t *testing.T) {
	x := ps.S("x")
	// x^3 / (x^2 - 1) = x + 1/2/(x-1) + 1/2/(x+1)
	e := ps.DivOf(ps.PowOf(x, ps.N(3)), ps.AddOf(ps.PowOf(x, ps.N(2)), ps.N(-1)))
	out, err := ps.PartialFractions(e, "x")
	require.NoError(t, err)
	requireSameAt(t, e, out, "x", ps.N(2), ps.N(4), ps.N(-3))
}

// ============================================================
// Degenerate inputs
// ============================================================

func TestPartialFractions_ConstantDenominator(t *testing.T) {
	x := ps.S("x")
	e := ps.DivOf(ps.AddOf(x, ps.N(1)), ps.N(2))
	out, err := ps.PartialFractions(e, "x")
	require.NoError(t, err)
	requireSameAt(t, e, out, "x", ps.N(0), ps.N(7))
}

func TestPartialFractions_ZeroDenominator(t *testing.T) {
	x := ps.S("x")
	_, err := ps.PartialFractions(ps.DivOf(x, ps.N(0)), "x")
	assert.ErrorIs(t, err, ps.ErrDivisionByZero)
}

func TestPartialFractions_RejectsTranscendentalDenominator(t *testing.T) {
	x := ps.S("x")
	_, err := ps.PartialFractions(ps.DivOf(ps.N(1), ps.SinOf(x)), "x")
	assert.ErrorIs(t, err, ps.ErrNotPolynomial)
}
