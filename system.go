package polysolve

import (
	"math"
	"math/big"
)

// SolveSystem solves a square system of equations for the given variables.
// Linear systems are solved exactly by Gaussian elimination. Two quadratics
// in two unknowns go through substitution, which preserves multiple
// intersection points. Everything else falls to Newton-Raphson with a
// numeric Jacobian and perturbed restarts, which yields one solution.
func (s *Solver) SolveSystem(eqs []*Equation, vars []string) ([]map[string]Expr, error) {
	if len(eqs) == 0 || len(vars) == 0 {
		return nil, ErrMissingVariable
	}
	if len(eqs) != len(vars) {
		return nil, ErrInconsistentEquation
	}
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}

	if mat, vec, ok := extractLinear(eqs, vars); ok {
		sol, err := solveLinearRat(mat, vec)
		if err != nil {
			return nil, err
		}
		out := map[string]Expr{}
		for i, v := range vars {
			out[v] = NRat(sol[i])
		}
		return []map[string]Expr{out}, nil
	}

	if len(eqs) == 2 && len(vars) == 2 {
		if sols, ok := s.conicPair(eqs, vars); ok {
			return sols, nil
		}
	}

	return s.newtonSystem(eqs, vars)
}

// extractLinear builds the coefficient matrix and constant vector when every
// equation is affine in the variables with rational coefficients.
func extractLinear(eqs []*Equation, vars []string) ([][]*big.Rat, []*big.Rat, bool) {
	mat := make([][]*big.Rat, len(eqs))
	vec := make([]*big.Rat, len(eqs))
	for i, eq := range eqs {
		coeffs, c, ok := linearCoeffs(eq.ToLHS(), vars)
		if !ok {
			return nil, nil, false
		}
		mat[i] = coeffs
		vec[i] = new(big.Rat).Neg(c)
	}
	return mat, vec, true
}

// linearCoeffs decomposes f into sum(coeffs[i]*vars[i]) + c, failing when
// any term is nonlinear or involves a symbol outside vars.
func linearCoeffs(f Expr, vars []string) (coeffs []*big.Rat, c *big.Rat, ok bool) {
	table := NewVarTable(vars)
	terms, err := termsFromExpr(f, table)
	if err != nil {
		return nil, nil, false
	}
	coeffs = make([]*big.Rat, len(vars))
	for i := range coeffs {
		coeffs[i] = new(big.Rat)
	}
	c = new(big.Rat)
	for _, t := range terms {
		switch t.sum.Cmp(ratOne) {
		case 0:
			slot := -1
			for j := 0; j < table.Len(); j++ {
				if t.exps[j].Cmp(ratOne) == 0 {
					slot = j
				} else if t.exps[j].Sign() != 0 {
					return nil, nil, false
				}
			}
			if slot < 0 {
				return nil, nil, false
			}
			// the table is sorted; map the slot back to caller order
			name := table.names[slot]
			for j, v := range vars {
				if v == name {
					coeffs[j].Add(coeffs[j], t.coeff.val)
				}
			}
		default:
			if t.sum.Sign() != 0 {
				return nil, nil, false
			}
			c.Add(c, t.coeff.val)
		}
	}
	return coeffs, c, true
}

// conicPair handles two polynomial equations whose difference is affine:
// intersecting circles and similar pairs. The affine difference expresses
// one variable in the other, substitution reduces to one univariate
// equation, and back-substitution recovers each intersection point.
func (s *Solver) conicPair(eqs []*Equation, vars []string) ([]map[string]Expr, bool) {
	f1 := Expand(eqs[0].ToLHS())
	f2 := Expand(eqs[1].ToLHS())
	// an equation that is already affine serves directly; two conics with
	// equal quadratic parts leave an affine difference
	var coeffs []*big.Rat
	var c *big.Rat
	ok := false
	if co, cc, affine := linearCoeffs(f2, vars); affine {
		coeffs, c, ok = co, cc, true
	} else if co, cc, affine := linearCoeffs(f1, vars); affine {
		f1, f2 = f2, f1
		coeffs, c, ok = co, cc, true
	} else if co, cc, affine := linearCoeffs(Expand(SubOf(f1, f2)), vars); affine {
		coeffs, c, ok = co, cc, true
	}
	if !ok {
		return nil, false
	}
	// pick a variable with nonzero coefficient to eliminate
	elim := -1
	for i, co := range coeffs {
		if co.Sign() != 0 {
			elim = i
		}
	}
	if elim < 0 {
		return nil, false
	}
	keep := 1 - elim
	// vars[elim] = (-c - coeffs[keep]*vars[keep]) / coeffs[elim]
	inv := NRat(new(big.Rat).Inv(coeffs[elim]))
	subst := MulOf(inv, SubOf(
		NRat(new(big.Rat).Neg(c)),
		MulOf(NRat(coeffs[keep]), S(vars[keep])),
	)).Simplify()

	reduced := Expand(f1.Sub(vars[elim], subst))
	eq, err := NewEquation(reduced, N(0))
	if err != nil {
		return nil, false
	}
	roots, err := s.child().Solve(eq, vars[keep])
	if err != nil {
		return nil, false
	}
	var out []map[string]Expr
	for _, r := range roots {
		other := subst.Sub(vars[keep], r).Simplify()
		out = append(out, map[string]Expr{
			vars[keep]: r,
			vars[elim]: other,
		})
	}
	return out, true
}

// newtonSystem is multidimensional Newton-Raphson. The Jacobian is estimated
// by central differences; a singular step or divergence triggers a restart
// from a deterministically perturbed initial point.
func (s *Solver) newtonSystem(eqs []*Equation, vars []string) ([]map[string]Expr, error) {
	n := len(vars)
	fns := make([]EvalFn, n)
	for i, eq := range eqs {
		fn, err := Compile(eq.ToLHS(), vars)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}

	eval := func(x []float64) []float64 {
		out := make([]float64, n)
		for i, fn := range fns {
			out[i] = fn(x)
		}
		return out
	}
	const h = 1e-6
	jacobian := func(x []float64) [][]float64 {
		j := make([][]float64, n)
		for r := range j {
			j[r] = make([]float64, n)
		}
		for c := 0; c < n; c++ {
			xp := append([]float64(nil), x...)
			xm := append([]float64(nil), x...)
			xp[c] += h
			xm[c] -= h
			fp := eval(xp)
			fm := eval(xm)
			for r := 0; r < n; r++ {
				j[r][c] = (fp[r] - fm[r]) / (2 * h)
			}
		}
		return j
	}

	for attempt := 0; attempt <= s.settings.SystemRestarts; attempt++ {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}
		x := make([]float64, n)
		for i := range x {
			// spiral the starting point outward on each restart
			x[i] = 1.0 + float64(attempt)*0.7*float64(i+1)
			if attempt%2 == 1 {
				x[i] = -x[i]
			}
		}
		if sol, ok := s.newtonIterate(eval, jacobian, x); ok {
			out := map[string]Expr{}
			for i, v := range vars {
				out[v] = s.roundFloat(sol[i])
			}
			return []map[string]Expr{out}, nil
		}
	}
	return nil, ErrNoConvergence
}

func (s *Solver) newtonIterate(eval func([]float64) []float64, jacobian func([]float64) [][]float64, x []float64) ([]float64, bool) {
	n := len(x)
	for iter := 0; iter < s.settings.MaxNewtonIter; iter++ {
		fx := eval(x)
		maxAbs := 0.0
		for _, v := range fx {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, false
			}
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
		if maxAbs < s.settings.Epsilon {
			return x, true
		}
		j := jacobian(x)
		neg := make([]float64, n)
		for i, v := range fx {
			neg[i] = -v
		}
		dx, ok := solveLinearFloat(j, neg)
		if !ok {
			return nil, false
		}
		for i := range x {
			x[i] += dx[i]
			if math.Abs(x[i]) > 1e25 {
				return nil, false
			}
		}
	}
	return nil, false
}

// solveLinearFloat is Gaussian elimination with partial pivoting over
// float64, used only inside the Newton step.
func solveLinearFloat(a [][]float64, b []float64) ([]float64, bool) {
	n := len(a)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append(append([]float64(nil), a[i]...), b[i])
	}
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-14 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = m[i][n] / m[i][i]
	}
	return out, true
}
