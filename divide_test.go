package polysolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ps "github.com/mbrennan-go/polysolve"
)

// ============================================================
// Expression-level division
// ============================================================

func TestDivide_Univariate(t *testing.T) {
	x := ps.S("x")
	num := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.N(-1))
	den := ps.AddOf(x, ps.N(-1))
	q, r, err := ps.Divide(num, den)
	require.NoError(t, err)
	requireSameExpanded(t, ps.AddOf(x, ps.N(1)), q)
	requireSameExpanded(t, ps.N(0), r)
}

func TestDivide_ByConstant(t *testing.T) {
	x := ps.S("x")
	q, r, err := ps.Divide(ps.MulOf(ps.N(6), x), ps.N(3))
	require.NoError(t, err)
	requireSameExpanded(t, ps.MulOf(ps.N(2), x), q)
	requireSameExpanded(t, ps.N(0), r)
}

func TestDivide_ByZero(t *testing.T) {
	_, _, err := ps.Divide(ps.S("x"), ps.N(0))
	assert.ErrorIs(t, err, ps.ErrDivisionByZero)
}

func TestDivide_Multivariate(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	// (x^2 - y^2) / (x - y) = x + y
	num := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.NegOf(ps.PowOf(y, ps.N(2))))
	den := ps.AddOf(x, ps.NegOf(y))
	q, r, err := ps.Divide(num, den)
	require.NoError(t, err)
	requireSameExpanded(t, ps.AddOf(x, y), q)
	requireSameExpanded(t, ps.N(0), r)
}

func TestDivide_MultivariateRemainder(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	// q*d + r must reconstruct the dividend
	num := ps.AddOf(
		ps.MulOf(ps.PowOf(x, ps.N(2)), y),
		ps.MulOf(x, ps.PowOf(y, ps.N(2))),
		ps.N(3),
	)
	den := ps.AddOf(ps.MulOf(x, y), ps.N(1))
	q, r, err := ps.Divide(num, den)
	require.NoError(t, err)
	recon := ps.AddOf(ps.MulOf(q, den), r)
	requireSameExpanded(t, num, recon)
}

// ============================================================
// Checked division
// ============================================================

func TestDivWithCheck_Exact(t *testing.T) {
	x := ps.S("x")
	num := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.N(-4))
	den := ps.AddOf(x, ps.N(-2))
	q, r := ps.DivWithCheck(num, den)
	requireSameExpanded(t, ps.AddOf(x, ps.N(2)), q)
	requireSameExpanded(t, ps.N(0), r)
}

func TestDivWithCheck_FailureSentinel(t *testing.T) {
	x := ps.S("x")
	q, r := ps.DivWithCheck(x, ps.N(0))
	n, ok := q.(*ps.Num)
	require.True(t, ok)
	assert.True(t, n.IsZero())
	assert.True(t, x.Equal(r))
}

// ============================================================
// GCD / LCM
// ============================================================

func TestGCD_Numbers(t *testing.T) {
	g := ps.GCD(ps.N(12), ps.N(18))
	assert.Equal(t, "6", g.String())
}

func TestGCD_Univariate(t *testing.T) {
	x := ps.S("x")
	a := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.N(-1))
	b := ps.AddOf(x, ps.N(-1))
	g := ps.GCD(a, b)
	requireSameExpanded(t, ps.AddOf(x, ps.N(-1)), g)
}

func TestGCD_CommonMonomial(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	a := ps.MulOf(ps.N(6), ps.PowOf(x, ps.N(2)), y)
	b := ps.MulOf(ps.N(9), x, ps.PowOf(y, ps.N(2)))
	g := ps.GCD(a, b)
	requireSameExpanded(t, ps.MulOf(ps.N(3), x, y), g)
}

func TestLCM_Univariate(t *testing.T) {
	x := ps.S("x")
	a := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.N(-1))
	b := ps.AddOf(x, ps.N(-1))
	l := ps.LCM(a, b)
	requireSameExpanded(t, a, l)
}

func TestLCM_Coprime(t *testing.T) {
	x := ps.S("x")
	a := ps.AddOf(x, ps.N(1))
	b := ps.AddOf(x, ps.N(2))
	l := ps.LCM(a, b)
	requireSameExpanded(t, ps.Expand(ps.MulOf(a, b)), l)
}
