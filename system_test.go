package polysolve_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ps "github.com/mbrennan-go/polysolve"
)

// residual evaluates eq's lhs - rhs at the given assignment.
func residual(t *testing.T, eq *ps.Equation, sol map[string]ps.Expr) float64 {
	t.Helper()
	f := eq.ToLHS()
	for v, val := range sol {
		f = f.Sub(v, val).Simplify()
	}
	n, ok := f.Eval()
	require.Truef(t, ok, "residual did not evaluate: %s", f.String())
	return math.Abs(n.Float64())
}

// ============================================================
// Exact linear systems
// ============================================================

func TestSolveSystem_Linear2x2(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	eq1 := mustEq(t, ps.AddOf(x, y), ps.N(3))
	eq2 := mustEq(t, ps.AddOf(x, ps.NegOf(y)), ps.N(1))
	sols, err := ps.NewSolver().SolveSystem([]*ps.Equation{eq1, eq2}, []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, sols, 1)
	assert.True(t, ps.N(2).Equal(sols[0]["x"]), "x = %s", sols[0]["x"].String())
	assert.True(t, ps.N(1).Equal(sols[0]["y"]), "y = %s", sols[0]["y"].String())
}

func TestSolveSystem_LinearRationalResult(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	// 2x + y = 1, x - y = 1  =>  x = 2/3, y = -1/3
	eq1 := mustEq(t, ps.AddOf(ps.MulOf(ps.N(2), x), y), ps.N(1))
	eq2 := mustEq(t, ps.AddOf(x, ps.NegOf(y)), ps.N(1))
	sols, err := ps.NewSolver().SolveSystem([]*ps.Equation{eq1, eq2}, []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, sols, 1)
	assert.Equal(t, "2/3", sols[0]["x"].String())
	assert.Equal(t, "-1/3", sols[0]["y"].String())
}

func TestSolveSystem_Linear3x3(t *testing.T) {
	x, y, z := ps.S("x"), ps.S("y"), ps.S("z")
	eqs := []*ps.Equation{
		mustEq(t, ps.AddOf(x, y, z), ps.N(6)),
		mustEq(t, ps.AddOf(x, ps.NegOf(y)), ps.N(-1)),
		mustEq(t, ps.AddOf(y, ps.NegOf(z)), ps.N(-1)),
	}
	sols, err := ps.NewSolver().SolveSystem(eqs, []string{"x", "y", "z"})
	require.NoError(t, err)
	require.Len(t, sols, 1)
	assert.Equal(t, "1", sols[0]["x"].String())
	assert.Equal(t, "2", sols[0]["y"].String())
	assert.Equal(t, "3", sols[0]["z"].String())
}

func TestSolveSystem_SingularLinear(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	eq1 := mustEq(t, ps.AddOf(x, y), ps.N(1))
	eq2 := mustEq(t, ps.AddOf(x, y), ps.N(2))
	_, err := ps.NewSolver().SolveSystem([]*ps.Equation{eq1, eq2}, []string{"x", "y"})
	assert.Error(t, err)
}

// ============================================================
// Substitution: line and circle, two circles
// ============================================================

func TestSolveSystem_LineCircle(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	circle := mustEq(t, ps.AddOf(ps.PowOf(x, ps.N(2)), ps.PowOf(y, ps.N(2))), ps.N(25))
	line := mustEq(t, ps.AddOf(x, y), ps.N(7))
	sols, err := ps.NewSolver().SolveSystem([]*ps.Equation{circle, line}, []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, sols, 2)
	for _, sol := range sols {
		assert.Less(t, residual(t, circle, sol), 1e-6)
		assert.Less(t, residual(t, line, sol), 1e-6)
	}
	// the two intersection points are (3,4) and (4,3)
	xs := []string{sols[0]["x"].String(), sols[1]["x"].String()}
	assert.ElementsMatch(t, []string{"3", "4"}, xs)
}

func TestSolveSystem_TwoCircles(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	// x^2 + y^2 = 25 and (x-6)^2 + y^2 = 25 intersect at x = 3, y = +-4
	c1 := mustEq(t, ps.AddOf(ps.PowOf(x, ps.N(2)), ps.PowOf(y, ps.N(2))), ps.N(25))
	c2 := mustEq(t,
		ps.AddOf(ps.PowOf(ps.AddOf(x, ps.N(-6)), ps.N(2)), ps.PowOf(y, ps.N(2))),
		ps.N(25))
	sols, err := ps.NewSolver().SolveSystem([]*ps.Equation{c1, c2}, []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, sols, 2)
	ys := []string{sols[0]["y"].String(), sols[1]["y"].String()}
	assert.ElementsMatch(t, []string{"-4", "4"}, ys)
	for _, sol := range sols {
		assert.Equal(t, "3", sol["x"].String())
	}
}

// ============================================================
// Newton fallback
// ============================================================

func TestSolveSystem_NonlinearNewton(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	// x^2 + y^2 = 25, x*y = 12: solutions (3,4),(4,3),(-3,-4),(-4,-3);
	// the iteration converges to one of them
	eq1 := mustEq(t, ps.AddOf(ps.PowOf(x, ps.N(2)), ps.PowOf(y, ps.N(2))), ps.N(25))
	eq2 := mustEq(t, ps.MulOf(x, y), ps.N(12))
	sols, err := ps.NewSolver().SolveSystem([]*ps.Equation{eq1, eq2}, []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, sols, 1)
	assert.Less(t, residual(t, eq1, sols[0]), 1e-6)
	assert.Less(t, residual(t, eq2, sols[0]), 1e-6)
}

func TestSolveSystem_TranscendentalNewton(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	// exp(x) = y and x + y = 2
	eq1 := mustEq(t, ps.ExpOf(x), y)
	eq2 := mustEq(t, ps.AddOf(x, y), ps.N(2))
	sols, err := ps.NewSolver().SolveSystem([]*ps.Equation{eq1, eq2}, []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, sols, 1)
	nx, ok := sols[0]["x"].Eval()
	require.True(t, ok)
	ny, ok := sols[0]["y"].Eval()
	require.True(t, ok)
	assert.InDelta(t, 2.0, nx.Float64()+ny.Float64(), 1e-6)
	assert.InDelta(t, ny.Float64(), math.Exp(nx.Float64()), 1e-4)
}

// ============================================================
// Shape validation
// ============================================================

func TestSolveSystem_EmptyInput(t *testing.T) {
	_, err := ps.NewSolver().SolveSystem(nil, nil)
	assert.ErrorIs(t, err, ps.ErrMissingVariable)
}

func TestSolveSystem_NonSquare(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	eq := mustEq(t, ps.AddOf(x, y), ps.N(1))
	_, err := ps.NewSolver().SolveSystem([]*ps.Equation{eq}, []string{"x", "y"})
	assert.ErrorIs(t, err, ps.ErrInconsistentEquation)
}
