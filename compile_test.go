package polysolve_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ps "github.com/mbrennan-go/polysolve"
)

func TestCompile_Polynomial(t *testing.T) {
	x := ps.S("x")
	e := ps.AddOf(ps.PowOf(x, ps.N(2)), ps.MulOf(ps.N(-5), x), ps.N(6))
	fn, err := ps.Compile(e, []string{"x"})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, fn([]float64{2}), 1e-12)
	assert.InDelta(t, 0.0, fn([]float64{3}), 1e-12)
	assert.InDelta(t, 2.0, fn([]float64{4}), 1e-12)
}

func TestCompile_MultipleVariables(t *testing.T) {
	x, y := ps.S("x"), ps.S("y")
	fn, err := ps.Compile(ps.AddOf(ps.MulOf(x, y), ps.N(1)), []string{"x", "y"})
	require.NoError(t, err)
	assert.InDelta(t, 7.0, fn([]float64{2, 3}), 1e-12)
}

func TestCompile_NegativeBaseOddPower(t *testing.T) {
	x := ps.S("x")
	// cube of a negative base must not go through math.Pow
	fn, err := ps.Compile(ps.PowOf(x, ps.N(3)), []string{"x"})
	require.NoError(t, err)
	assert.InDelta(t, -8.0, fn([]float64{-2}), 1e-12)
	assert.False(t, math.IsNaN(fn([]float64{-1.5})))
}

func TestCompile_NegativeExponent(t *testing.T) {
	x := ps.S("x")
	fn, err := ps.Compile(ps.PowOf(x, ps.N(-2)), []string{"x"})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, fn([]float64{2}), 1e-12)
}

func TestCompile_Functions(t *testing.T) {
	x := ps.S("x")
	fn, err := ps.Compile(ps.AddOf(ps.SinOf(x), ps.CosOf(x)), []string{"x"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fn([]float64{0}), 1e-12)
	assert.InDelta(t, math.Sin(1)+math.Cos(1), fn([]float64{1}), 1e-12)
}

func TestCompile_UnboundVariable(t *testing.T) {
	_, err := ps.Compile(ps.S("y"), []string{"x"})
	assert.ErrorIs(t, err, ps.ErrMissingVariable)
}
