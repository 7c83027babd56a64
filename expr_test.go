package polysolve_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ps "github.com/mbrennan-go/polysolve"
)

// requireSameExpanded asserts that two expressions are equal as polynomials
// by expanding their difference down to the zero constant.
func requireSameExpanded(t *testing.T, want, got ps.Expr) {
	t.Helper()
	diff := ps.Expand(ps.SubOf(want, got))
	n, ok := diff.(*ps.Num)
	require.Truef(t, ok, "difference did not collapse to a constant: %s", diff.String())
	require.Truef(t, n.IsZero(), "expressions differ by %s", n.String())
}

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	assert.Equal(t, "42", ps.N(42).String())
}

func TestNum_Rational(t *testing.T) {
	assert.Equal(t, "1/3", ps.Frac(1, 3).String())
}

func TestNum_Diff_IsZero(t *testing.T) {
	assert.Equal(t, "0", ps.N(5).Diff("x").String())
}

func TestNum_Eval(t *testing.T) {
	n, ok := ps.N(7).Eval()
	require.True(t, ok)
	assert.Equal(t, "7", n.String())
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Sub_Match(t *testing.T) {
	assert.Equal(t, "3", ps.S("x").Sub("x", ps.N(3)).String())
}

func TestSym_Sub_NoMatch(t *testing.T) {
	assert.Equal(t, "x", ps.S("x").Sub("y", ps.N(3)).String())
}

func TestSym_Diff(t *testing.T) {
	assert.Equal(t, "1", ps.S("x").Diff("x").String())
	assert.Equal(t, "0", ps.S("x").Diff("y").String())
}

// ============================================================
// Add tests
// ============================================================

func TestAdd_CombinesLikeTerms(t *testing.T) {
	x := ps.S("x")
	e := ps.AddOf(x, x, x, ps.N(2))
	assert.Equal(t, "3*x + 2", e.String())
}

func TestAdd_RationalCoefficients(t *testing.T) {
	x := ps.S("x")
	e := ps.AddOf(
		ps.MulOf(ps.Frac(1, 3), x),
		ps.MulOf(ps.Frac(5, 6), x),
	)
	assert.Equal(t, "7/6*x", e.String())
}

func TestAdd_CancelsToZero(t *testing.T) {
	x := ps.S("x")
	e := ps.AddOf(x, ps.NegOf(x))
	n, ok := e.(*ps.Num)
	require.True(t, ok)
	assert.True(t, n.IsZero())
}

// ============================================================
// Mul tests
// ============================================================

func TestMul_MergesPowers(t *testing.T) {
	x := ps.S("x")
	e := ps.MulOf(x, x, ps.PowOf(x, ps.N(2)))
	assert.Equal(t, "x^4", e.String())
}

func TestMul_ZeroAnnihilates(t *testing.T) {
	e := ps.MulOf(ps.S("x"), ps.N(0), ps.S("y"))
	n, ok := e.(*ps.Num)
	require.True(t, ok)
	assert.True(t, n.IsZero())
}

// ============================================================
// Pow tests
// ============================================================

func TestPow_IntegerEval(t *testing.T) {
	e := ps.PowOf(ps.N(2), ps.N(10))
	assert.Equal(t, "1024", e.String())
}

func TestPow_NegativeExponentRational(t *testing.T) {
	e := ps.PowOf(ps.N(2), ps.N(-2))
	assert.Equal(t, "1/4", e.String())
}

func TestPow_ZeroExponent(t *testing.T) {
	e := ps.PowOf(ps.S("x"), ps.N(0))
	assert.Equal(t, "1", e.String())
}

// ============================================================
// Call tests
// ============================================================

func TestCall_LogExpInverse(t *testing.T) {
	x := ps.S("x")
	assert.Equal(t, "x", ps.LnOf(ps.ExpOf(x)).String())
	assert.Equal(t, "x", ps.ExpOf(ps.LnOf(x)).String())
}

func TestCall_AbsNormalizesSign(t *testing.T) {
	x := ps.S("x")
	e := ps.AbsOf(ps.MulOf(ps.N(-3), x))
	assert.Equal(t, "abs(3*x)", e.String())
}

func TestCall_DiffChainRule(t *testing.T) {
	x := ps.S("x")
	d := ps.SinOf(x).Diff("x")
	assert.Equal(t, "cos(x)", d.String())
}

// ============================================================
// Expand tests
// ============================================================

func TestExpand_Binomial(t *testing.T) {
	x := ps.S("x")
	e := ps.Expand(ps.PowOf(ps.AddOf(x, ps.N(1)), ps.N(2)))
	want := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.MulOf(ps.N(2), x), ps.N(1))
	assert.True(t, want.Equal(e), "got %s", e.String())
}

func TestExpand_Distributes(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	e := ps.Expand(ps.MulOf(ps.AddOf(x, y), ps.AddOf(x, ps.NegOf(y))))
	want := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.NegOf(ps.PowOf(y, ps.N(2))))
	requireSameExpanded(t, want, e)
}

func TestExpand_MultivariatePerfectSquare(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	e := ps.Expand(ps.PowOf(ps.AddOf(x, y), ps.N(2)))
	want := ps.AddOf(
		ps.PowOf(x, ps.N(2)),
		ps.MulOf(ps.N(2), x, y),
		ps.PowOf(y, ps.N(2)),
	)
	assert.True(t, want.Equal(e), "got %s", e.String())
}

func TestExpand_CubeOfSum(t *testing.T) {
	x := ps.S("x")
	e := ps.Expand(ps.PowOf(ps.AddOf(x, ps.N(1)), ps.N(3)))
	want := ps.AddOf(
		ps.PowOf(x, ps.N(3)),
		ps.MulOf(ps.N(3), ps.PowOf(x, ps.N(2))),
		ps.MulOf(ps.N(3), x),
		ps.N(1),
	)
	assert.True(t, want.Equal(e), "got %s", e.String())
}

func TestExpand_ProductOfEqualSums(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	sum := ps.AddOf(x, y)
	e := ps.Expand(ps.MulOf(sum, sum))
	want := ps.Expand(ps.PowOf(sum, ps.N(2)))
	assert.True(t, want.Equal(e), "got %s", e.String())
}

// ============================================================
// Structure helpers
// ============================================================

func TestFreeVars(t *testing.T) {
	e := ps.AddOf(ps.MulOf(ps.S("x"), ps.S("y")), ps.S("z"))
	assert.ElementsMatch(t, []string{"x", "y", "z"}, ps.FreeVars(e))
}

func TestDegreeOf(t *testing.T) {
	x := ps.S("x")
	e := ps.AddOf(ps.PowOf(x, ps.N(3)), x)
	assert.Equal(t, 3, ps.DegreeOf(e, "x"))
}

func TestNumeratorDenominator(t *testing.T) {
	x := ps.S("x")
	e := ps.DivOf(ps.AddOf(x, ps.N(1)), x)
	requireSameExpanded(t, ps.AddOf(x, ps.N(1)), ps.Numerator(e))
	requireSameExpanded(t, x, ps.Denominator(e))
}

// ============================================================
// JSON round trip
// ============================================================

func TestJSON_RoundTrip(t *testing.T) {
	x := ps.S("x")
	e := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.MulOf(ps.Frac(-5, 3), x), ps.SinOf(x))

	js, err := ps.ToJSON(e)
	require.NoError(t, err)

	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(js), &obj))

	back, err := ps.FromJSON(obj)
	require.NoError(t, err)
	assert.True(t, e.Equal(back), "got %s", back.String())
}

func TestJSON_RejectsUnknownType(t *testing.T) {
	_, err := ps.FromJSON(map[string]interface{}{"type": "matrix"})
	assert.Error(t, err)
}

func TestJSON_RejectsBadNum(t *testing.T) {
	_, err := ps.FromJSON(map[string]interface{}{"type": "num", "value": "one"})
	assert.Error(t, err)
}
