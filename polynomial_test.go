package polysolve_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ps "github.com/mbrennan-go/polysolve"
)

// ============================================================
// Construction and conversion
// ============================================================

func TestPolyFromExpr_Basic(t *testing.T) {
	x := ps.S("x")
	e := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.MulOf(ps.N(-5), x), ps.N(6))
	p, err := ps.PolyFromExpr(e, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Degree())
	assert.Equal(t, "6", p.ConstantTerm().String())
	assert.Equal(t, "1", p.LeadingCoeff().String())
}

func TestPolyFromExpr_InfersVariable(t *testing.T) {
	y := ps.S("y")
	p, err := ps.PolyFromExpr(ps.AddOf(y, ps.N(1)), "")
	require.NoError(t, err)
	assert.Equal(t, "y", p.Variable())
}

func TestPolyFromExpr_RejectsTranscendental(t *testing.T) {
	_, err := ps.PolyFromExpr(ps.SinOf(ps.S("x")), "x")
	assert.ErrorIs(t, err, ps.ErrNotPolynomial)
}

func TestPolyFromExpr_ImaginaryAsVariable(t *testing.T) {
	// i is an ordinary symbol: an i-carrying expression parses as a
	// polynomial in i instead of failing
	e := ps.AddOf(ps.MulOf(ps.N(3), ps.S(ps.ImaginaryUnit)), ps.N(2))
	p, err := ps.PolyFromExpr(e, "")
	require.NoError(t, err)
	assert.Equal(t, "i", p.Variable())
	assert.Equal(t, 1, p.Degree())
}

func TestPoly_ToExprRoundTrip(t *testing.T) {
	p := ps.NewPoly("x", ps.N(6), ps.N(-5), ps.N(1))
	back, err := ps.PolyFromExpr(p.ToExpr(), "x")
	require.NoError(t, err)
	assert.True(t, p.Equal(back))
}

// ============================================================
// Arithmetic
// ============================================================

func TestPoly_DivideExact(t *testing.T) {
	// (x^2 - 1) / (x - 1) = x + 1
	num := ps.NewPoly("x", ps.N(-1), ps.N(0), ps.N(1))
	den := ps.NewPoly("x", ps.N(-1), ps.N(1))
	q, r, err := num.Divide(den)
	require.NoError(t, err)
	assert.True(t, q.Equal(ps.NewPoly("x", ps.N(1), ps.N(1))))
	assert.True(t, r.IsZero())
}

func TestPoly_DivideWithRemainder(t *testing.T) {
	// (x^3 + 2x + 1) / (x^2 + 1) = x remainder x + 1
	num := ps.NewPoly("x", ps.N(1), ps.N(2), ps.N(0), ps.N(1))
	den := ps.NewPoly("x", ps.N(1), ps.N(0), ps.N(1))
	q, r, err := num.Divide(den)
	require.NoError(t, err)
	assert.True(t, q.Equal(ps.NewPoly("x", ps.N(0), ps.N(1))))
	assert.True(t, r.Equal(ps.NewPoly("x", ps.N(1), ps.N(1))))
}

func TestPoly_DivideByZero(t *testing.T) {
	num := ps.NewPoly("x", ps.N(1), ps.N(1))
	_, _, err := num.Divide(ps.NewPoly("x", ps.N(0)))
	assert.ErrorIs(t, err, ps.ErrDivisionByZero)
}

func TestPoly_DivideRoundTrip(t *testing.T) {
	// q*d + r must reconstruct the dividend exactly
	num := ps.NewPoly("x", ps.Frac(1, 2), ps.N(-3), ps.N(0), ps.N(7), ps.N(2))
	den := ps.NewPoly("x", ps.N(1), ps.N(3))
	q, r, err := num.Divide(den)
	require.NoError(t, err)
	recon := q.MulP(den).AddP(r)
	assert.True(t, num.Equal(recon))
}

// ============================================================
// GCD and square-free structure
// ============================================================

func TestPoly_GCD(t *testing.T) {
	// gcd(x^2 - 1, x^2 - 2x + 1) = x - 1
	a := ps.NewPoly("x", ps.N(-1), ps.N(0), ps.N(1))
	b := ps.NewPoly("x", ps.N(1), ps.N(-2), ps.N(1))
	g := a.GCD(b)
	assert.True(t, g.Equal(ps.NewPoly("x", ps.N(-1), ps.N(1))))
}

func TestPoly_GCD_Coprime(t *testing.T) {
	a := ps.NewPoly("x", ps.N(1), ps.N(1))
	b := ps.NewPoly("x", ps.N(2), ps.N(1))
	g := a.GCD(b)
	assert.Equal(t, 0, g.Degree())
}

func TestPoly_SquareFree(t *testing.T) {
	// p = (x - 1)^2 (x + 2) = x^3 - 3x + 2
	p := ps.NewPoly("x", ps.N(2), ps.N(-3), ps.N(0), ps.N(1))
	sqf, witness, _ := p.SquareFree()
	// square-free part (x - 1)(x + 2) = x^2 + x - 2
	assert.True(t, sqf.Equal(ps.NewPoly("x", ps.N(-2), ps.N(1), ps.N(1))),
		"got %s", sqf.String())
	assert.Equal(t, 1, witness.Degree())
}

func TestPoly_SquareFree_AlreadySquareFree(t *testing.T) {
	p := ps.NewPoly("x", ps.N(-2), ps.N(1), ps.N(1))
	sqf, _, mult := p.SquareFree()
	assert.True(t, sqf.Equal(p))
	assert.Equal(t, 1, mult)
}

// ============================================================
// Calculus and evaluation
// ============================================================

func TestPoly_DiffIntegrate(t *testing.T) {
	// d/dx (x^3 + x) = 3x^2 + 1
	p := ps.NewPoly("x", ps.N(0), ps.N(1), ps.N(0), ps.N(1))
	d := p.Clone().DiffP()
	assert.True(t, d.Equal(ps.NewPoly("x", ps.N(1), ps.N(0), ps.N(3))))

	back := d.IntegrateP()
	assert.True(t, back.Equal(ps.NewPoly("x", ps.N(0), ps.N(1), ps.N(0), ps.N(1))))
}

func TestPoly_EvalAt(t *testing.T) {
	p := ps.NewPoly("x", ps.N(6), ps.N(-5), ps.N(1))
	assert.True(t, p.EvalAt(ps.N(2)).IsZero())
	assert.True(t, p.EvalAt(ps.N(3)).IsZero())
	assert.Equal(t, "2", p.EvalAt(ps.N(4)).String())
	assert.Equal(t, "15/4", p.EvalAt(ps.Frac(1, 2)).String())
}

// ============================================================
// Balanced-digit fitting
// ============================================================

func TestPolyFit_ReproducesValue(t *testing.T) {
	for _, v := range []int64{7, 98, 123, 377, -245} {
		p := ps.PolyFit("x", big.NewInt(v), 10, 6)
		got := p.EvalAt(ps.N(10))
		assert.Equalf(t, big.NewInt(v).String(), got.String(), "value %d", v)
	}
}
