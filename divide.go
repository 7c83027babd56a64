package polysolve

import "math/big"

// maxDivIterations caps the multivariate division loop. The leading-term
// heuristic is not proven to terminate on all inputs; past this many passes
// the configuration is treated as non-terminating and reported as
// ErrNoConvergence instead of hanging.
const maxDivIterations = 200

// Divide performs exact polynomial long division and returns quotient and
// remainder. Univariate inputs use dense synthetic division; inputs with
// more than one free variable use term-based division with the leading-term
// tie-break heuristic.
func Divide(a, b Expr) (q, r Expr, err error) {
	if bn, ok := b.Simplify().(*Num); ok {
		if bn.IsZero() {
			return nil, nil, ErrDivisionByZero
		}
		return MulOf(NRat(new(big.Rat).Inv(bn.val)), a).Simplify(), N(0), nil
	}
	varSet := map[string]struct{}{}
	collectVars(a, varSet)
	collectVars(b, varSet)
	names := make([]string, 0, len(varSet))
	for n := range varSet {
		names = append(names, n)
	}
	if len(names) == 1 {
		pa, errA := PolyFromExpr(a, names[0])
		pb, errB := PolyFromExpr(b, names[0])
		if errA == nil && errB == nil {
			pq, pr, err := pa.Divide(pb)
			if err != nil {
				return nil, nil, err
			}
			return pq.ToExpr(), pr.ToExpr(), nil
		}
	}
	return divTerms(a, b, names)
}

// divTerms is the multivariate long-division loop over sorted term lists.
func divTerms(a, b Expr, names []string) (q, r Expr, err error) {
	table := NewVarTable(names)
	dividend, err := termsFromExpr(a, table)
	if err != nil {
		return nil, nil, err
	}
	divisor, err := termsFromExpr(b, table)
	if err != nil {
		return nil, nil, err
	}
	if len(divisor) == 0 {
		return nil, nil, ErrDivisionByZero
	}
	slot := leadingSlot(divisor, table.Len())
	sortTermsBySlot(divisor, slot)
	lead := divisor[0]

	var quotient []*Term
	for iter := 0; ; iter++ {
		if iter >= maxDivIterations {
			return nil, nil, ErrNoConvergence
		}
		sortTermsBySlot(dividend, slot)
		if len(dividend) == 0 {
			break
		}
		lt := dividend[0]
		if !lt.IsLarger(lead) {
			break
		}
		qt := lt.DivideTerm(lead)
		quotient = mergeTerms(append(quotient, qt))
		// dividend -= qt * divisor, merged by exponent signature
		for _, dt := range divisor {
			prod := qt.MulTerm(dt)
			prod.coeff = numNeg(prod.coeff)
			dividend = append(dividend, prod)
		}
		dividend = mergeTerms(dividend)
	}
	return termsToExpr(quotient), termsToExpr(dividend), nil
}

// DivWithCheck wraps Divide with a reconstruction guard: quotient*divisor +
// remainder is expanded and compared against the dividend. On any mismatch
// or division failure it returns the "no division occurred" sentinel (0, a)
// rather than propagating a possibly wrong answer.
func DivWithCheck(a, b Expr) (q, r Expr) {
	q, r, err := Divide(a, b)
	if err != nil {
		return N(0), a
	}
	recon := Expand(AddOf(MulOf(q, b), r))
	diff := Expand(SubOf(recon, a))
	if n, ok := diff.(*Num); ok && n.IsZero() {
		return q, r
	}
	return N(0), a
}

// GCD computes the greatest common divisor of the given expressions:
// rational gcd for constants, Euclidean polynomial gcd for univariate
// inputs, greatest common monomial for anything wider.
func GCD(exprs ...Expr) Expr {
	if len(exprs) == 0 {
		return N(0)
	}
	acc := exprs[0].Simplify()
	for _, e := range exprs[1:] {
		acc = gcdPair(acc, e.Simplify())
	}
	return acc
}

func gcdPair(a, b Expr) Expr {
	if an, ok := a.(*Num); ok {
		if bn, ok2 := b.(*Num); ok2 {
			return NRat(ratGCD(an.val, bn.val))
		}
	}
	varSet := map[string]struct{}{}
	collectVars(a, varSet)
	collectVars(b, varSet)
	if len(varSet) == 1 {
		var v string
		for n := range varSet {
			v = n
		}
		pa, errA := PolyFromExpr(a, v)
		pb, errB := PolyFromExpr(b, v)
		if errA == nil && errB == nil {
			return pa.GCD(pb).ToExpr()
		}
	}
	if g, ok := commonMonomial(a, b, varSet); ok {
		return g
	}
	return N(1)
}

// commonMonomial extracts the largest monomial dividing every term of both
// expressions: the gcd of all coefficients times each variable raised to its
// minimum exponent across terms.
func commonMonomial(a, b Expr, varSet map[string]struct{}) (Expr, bool) {
	names := make([]string, 0, len(varSet))
	for n := range varSet {
		names = append(names, n)
	}
	table := NewVarTable(names)
	ta, errA := termsFromExpr(a, table)
	tb, errB := termsFromExpr(b, table)
	if errA != nil || errB != nil {
		return nil, false
	}
	all := append(append([]*Term{}, ta...), tb...)
	if len(all) == 0 {
		return N(0), true
	}
	coeffs := make([]*Num, len(all))
	for i, t := range all {
		coeffs[i] = t.coeff
	}
	g := numGCDAll(coeffs)
	minExps := make([]*big.Rat, table.Len())
	for j := 0; j < table.Len(); j++ {
		for _, t := range all {
			if minExps[j] == nil || t.exps[j].Cmp(minExps[j]) < 0 {
				minExps[j] = t.exps[j]
			}
		}
		if minExps[j].Sign() < 0 {
			minExps[j] = new(big.Rat)
		}
	}
	factors := []Expr{g}
	for j, e := range minExps {
		if e.Sign() > 0 {
			factors = append(factors, PowOf(S(table.names[j]), NRat(e)))
		}
	}
	return MulOf(factors...), true
}

// LCM computes a*b/gcd(a,b) folded across the inputs.
func LCM(exprs ...Expr) Expr {
	if len(exprs) == 0 {
		return N(1)
	}
	acc := exprs[0].Simplify()
	for _, e := range exprs[1:] {
		e = e.Simplify()
		g := gcdPair(acc, e)
		q, _ := DivWithCheck(MulOf(acc, e), g)
		if n, ok := q.(*Num); ok && n.IsZero() {
			acc = Expand(MulOf(acc, e))
			continue
		}
		acc = q
	}
	return acc
}
