package polysolve

import (
	"context"
	"fmt"
	"math/big"
)

// Factorizer walks an expression peeling factors into a FactorSet until an
// irreducible remainder is left. Every heuristic step is allowed to give up
// and hand back its input untouched; the only error that crosses a step
// boundary is external cancellation through the context.
type Factorizer struct {
	ctx      context.Context
	depth    int
	maxDepth int
}

// Factor returns the factored form of e, or e unchanged when no heuristic
// applies. It never fails.
func Factor(e Expr) Expr {
	out, err := FactorCtx(context.Background(), e)
	if err != nil {
		return e
	}
	return out
}

// FactorCtx is Factor with cancellation. The returned error is non-nil only
// when ctx was cancelled; algorithmic give-up is not an error.
func FactorCtx(ctx context.Context, e Expr) (Expr, error) {
	f := &Factorizer{ctx: ctx, maxDepth: DefaultSettings().MaxFactorDepth}
	fs := NewFactorSet()
	rem, err := f.factorInner(e.Simplify(), fs)
	if err != nil {
		return e, err
	}
	fs.Add(rem)
	return fs.ToExpr(), nil
}

func (f *Factorizer) check() error {
	return f.ctx.Err()
}

// factorInner dispatches on the node shape. Constants short-circuit into
// integer factorization; products factor numerator and denominator
// separately; everything else goes through the main pipeline.
func (f *Factorizer) factorInner(e Expr, fs *FactorSet) (Expr, error) {
	if err := f.check(); err != nil {
		return e, err
	}
	if f.depth >= f.maxDepth {
		return e, nil
	}
	f.depth++
	defer func() { f.depth-- }()

	switch v := e.(type) {
	case *Num:
		f.factorInteger(v, fs)
		return N(1), nil
	case *Sym:
		return e, nil
	case *Mul:
		num, denom := splitFraction(v)
		if !isNumEqual(denom, 1) {
			fn, err := f.factorToExpr(num)
			if err != nil {
				return e, err
			}
			fd, err := f.factorToExpr(denom)
			if err != nil {
				return e, err
			}
			q, r := DivWithCheck(Expand(num), Expand(denom))
			if rn, ok := r.(*Num); ok && rn.IsZero() {
				// the denominator divides out entirely
				return f.factorInner(q, fs)
			}
			return MulOf(fn, PowOf(fd, N(-1))), nil
		}
		for _, inner := range v.factors {
			rem, err := f.factorInner(inner, fs)
			if err != nil {
				return e, err
			}
			fs.Add(rem)
		}
		return N(1), nil
	case *Pow:
		if en, ok := v.exp.(*Num); ok && en.IsInteger() && en.IsPositive() {
			inner, err := f.factorToExpr(v.base)
			if err != nil {
				return e, err
			}
			return PowOf(inner, en), nil
		}
		return e, nil
	}
	return f.factor(e, fs)
}

// factorToExpr runs a nested factoring pass with its own accumulator.
func (f *Factorizer) factorToExpr(e Expr) (Expr, error) {
	fs := NewFactorSet()
	rem, err := f.factorInner(e, fs)
	if err != nil {
		return e, err
	}
	fs.Add(rem)
	return fs.ToExpr(), nil
}

// factorInteger splits an integer constant into prime powers. Non-integer
// rationals are kept whole.
func (f *Factorizer) factorInteger(n *Num, fs *FactorSet) {
	if !n.IsInteger() {
		fs.Add(n)
		return
	}
	v := new(big.Int).Abs(n.val.Num())
	if n.IsNegative() {
		fs.Add(N(-1))
	}
	if v.Cmp(big.NewInt(1)) <= 0 {
		fs.Add(NRat(new(big.Rat).SetInt(v)))
		return
	}
	two := big.NewInt(2)
	one := big.NewInt(1)
	limit := big.NewInt(1 << 20)
	for p := new(big.Int).Set(two); p.Cmp(limit) <= 0; p.Add(p, one) {
		sq := new(big.Int).Mul(p, p)
		if sq.Cmp(v) > 0 {
			break
		}
		for new(big.Int).Mod(v, p).Sign() == 0 {
			fs.Add(NRat(new(big.Rat).SetInt(p)))
			v.Div(v, p)
		}
	}
	if v.Cmp(one) > 0 {
		fs.Add(NRat(new(big.Rat).SetInt(v)))
	}
}

// factor is the main pipeline for sum-of-terms inputs. The expression is
// expanded first (unexpanded subtrees hide common factors), function
// subexpressions are replaced with placeholder variables so they behave as
// opaque atoms, then the univariate or multivariate path runs.
func (f *Factorizer) factor(e Expr, fs *FactorSet) (Expr, error) {
	if err := f.check(); err != nil {
		return e, err
	}
	expanded := Expand(e)
	body, placeholders := substituteCalls(expanded)
	restore := func(x Expr) Expr { return restoreCalls(x, placeholders) }
	if len(placeholders) > 0 {
		prev := fs.preAdd
		fs.SetPreAdd(restore)
		defer fs.SetPreAdd(prev)
	}

	vars := FreeVars(body)
	switch len(vars) {
	case 0:
		return e, nil
	case 1:
		rem, err := f.factorUnivariate(body, vars[0], fs)
		if err != nil {
			if isCancel(err) {
				return e, err
			}
			return e, nil
		}
		return restore(rem), nil
	default:
		rem, err := f.factorMultivariate(body, fs)
		if err != nil {
			if isCancel(err) {
				return e, err
			}
			return e, nil
		}
		return restore(rem), nil
	}
}

// substituteCalls replaces every function application with a fresh
// placeholder symbol so e.g. sin(x) factors as an opaque atom.
func substituteCalls(e Expr) (Expr, map[string]Expr) {
	placeholders := map[string]Expr{}
	counter := 0
	var walk func(Expr) Expr
	walk = func(x Expr) Expr {
		switch v := x.(type) {
		case *Call:
			name := fmt.Sprintf("~f%d", counter)
			counter++
			placeholders[name] = v
			return S(name)
		case *Add:
			out := make([]Expr, len(v.terms))
			for i, t := range v.terms {
				out[i] = walk(t)
			}
			return AddOf(out...)
		case *Mul:
			out := make([]Expr, len(v.factors))
			for i, t := range v.factors {
				out[i] = walk(t)
			}
			return MulOf(out...)
		case *Pow:
			return PowOf(walk(v.base), walk(v.exp))
		}
		return x
	}
	return walk(e), placeholders
}

func restoreCalls(e Expr, placeholders map[string]Expr) Expr {
	for name, call := range placeholders {
		e = e.Sub(name, call)
	}
	return e
}

// ------------------------------------------------------------
// univariate path
// ------------------------------------------------------------

// factorUnivariate: coefficient GCD extraction, square-free layering,
// rational-root trial division, quadratic fallback.
func (f *Factorizer) factorUnivariate(e Expr, varName string, fs *FactorSet) (Expr, error) {
	if err := f.check(); err != nil {
		return e, err
	}
	p, err := PolyFromExpr(e, varName)
	if err != nil {
		return e, nil
	}
	if p.Degree() < 1 {
		return p.ToExpr(), nil
	}
	f.coeffFactor(p, fs)
	if p.Degree() == 1 {
		return p.ToExpr(), nil
	}

	// Square-free layering: peel factors grouped by multiplicity. Each layer
	// is square-free and gets the trial-division treatment at its power.
	residual := NewPoly(varName, N(1))
	layer := 1
	work := p.Clone()
	for work.Degree() > 0 {
		if err := f.check(); err != nil {
			return e, err
		}
		g := work.GCD(work.Clone().DiffP())
		if g.Degree() == 0 {
			// square-free already; factor and stop
			rem := f.trialAndError(work, fs, layer)
			residual = residual.MulP(polyPow(rem, layer))
			break
		}
		w, _, errDiv := work.Divide(g)
		if errDiv != nil {
			rem := f.trialAndError(work, fs, layer)
			residual = residual.MulP(polyPow(rem, layer))
			break
		}
		// w holds every distinct factor of this and deeper layers once;
		// y = gcd(w, g) drops the factors whose multiplicity ends here.
		y := w.GCD(g)
		z, _, errDiv := w.Divide(y)
		if errDiv != nil {
			rem := f.trialAndError(work, fs, layer)
			residual = residual.MulP(polyPow(rem, layer))
			break
		}
		if z.Degree() > 0 {
			rem := f.trialAndError(z.makePrimitive(), fs, layer)
			residual = residual.MulP(polyPow(rem, layer))
		}
		work = g
		layer++
	}
	if residual.Degree() == 2 {
		rem := f.quadFactor(residual, fs)
		return rem.ToExpr(), nil
	}
	return residual.ToExpr(), nil
}

func polyPow(p *Poly, k int) *Poly {
	out := NewPoly(p.v, N(1))
	for i := 0; i < k; i++ {
		out = out.MulP(p.Clone())
	}
	return out
}

// coeffFactor pulls the coefficient GCD out of p and normalizes the sign so
// the leading term is positive. The extracted constant lands in the set.
func (f *Factorizer) coeffFactor(p *Poly, fs *FactorSet) {
	c := p.Content()
	if c.IsZero() {
		return
	}
	if p.LeadingCoeff().IsNegative() {
		c = numNeg(c)
	}
	if c.IsOne() {
		return
	}
	for i := range p.coeffs {
		p.coeffs[i] = numDiv(p.coeffs[i], c)
	}
	fs.Add(c)
}

// trialAndError runs the rational-root test: candidate roots are ratios of
// divisors of the constant term over divisors of the leading coefficient.
// Every exact root r = b/a contributes the binomial a*x - b at the given
// power. When the candidate enumeration finds nothing on a polynomial that
// still might split, the base-expansion search has one more try. Returns
// the unfactored residual.
func (f *Factorizer) trialAndError(p *Poly, fs *FactorSet, power int) *Poly {
	work := p.Clone()
	// strip zero roots first: x^k common factor
	zeroRoots := 0
	for work.Degree() > 0 && work.coeffs[0].IsZero() {
		work.coeffs = work.coeffs[1:]
		zeroRoots++
	}
	if zeroRoots > 0 {
		fs.AddPower(S(p.v), zeroRoots*power)
	}
	if work.Degree() < 1 {
		return work
	}
	if !work.ConstantTerm().IsInteger() || !work.LeadingCoeff().IsInteger() {
		return work
	}
	consts := divisorsOf(work.ConstantTerm().val.Num())
	leads := divisorsOf(work.LeadingCoeff().val.Num())
	for _, a := range leads {
		for _, b := range consts {
			if work.Degree() < 1 {
				return work
			}
			for _, sign := range []int64{1, -1} {
				root := &Num{val: new(big.Rat).SetFrac(new(big.Int).Mul(b, big.NewInt(sign)), a)}
				for work.Degree() > 0 && work.EvalAt(root).IsZero() {
					// divide out the primitive form of a*x - sign*b
					bin := NewPoly(p.v,
						numNeg(numMul(root, NRat(new(big.Rat).SetInt(a)))),
						NRat(new(big.Rat).SetInt(a))).makePrimitive()
					q, r, err := work.Divide(bin)
					if err != nil || !r.IsZero() {
						break
					}
					fs.AddPower(bin.ToExpr(), power)
					work = q
				}
			}
		}
	}
	if work.Degree() > 2 {
		work = f.search(work, fs, 10, power)
	}
	return work
}

// search is the deterministic fallback for exact factors the float root
// approximation is too coarse to expose: evaluate p at an integer base,
// enumerate divisors of that value, and fit each divisor back into a
// candidate polynomial through balanced base-b digits. A candidate that
// divides p exactly is a factor.
func (f *Factorizer) search(p *Poly, fs *FactorSet, base int64, power int) *Poly {
	for i := range p.coeffs {
		if !p.coeffs[i].IsInteger() {
			return p
		}
	}
	val := p.EvalAt(N(base))
	if val.IsZero() {
		return p
	}
	work := p
	for _, d := range divisorsOf(val.val.Num()) {
		if work.Degree() <= 1 {
			break
		}
		for _, sign := range []int64{1, -1} {
			cand := PolyFit(p.v, new(big.Int).Mul(d, big.NewInt(sign)), base, work.Degree()/2).makePrimitive()
			if cand.Degree() < 1 || cand.Degree() >= work.Degree() {
				continue
			}
			q, r, err := work.Divide(cand)
			if err != nil || !r.IsZero() {
				continue
			}
			fs.AddPower(cand.makePrimitive().ToExpr(), power)
			work = q
		}
	}
	return work
}

// quadFactor splits a degree-2 residual with rational roots into two
// integer-coefficient binomials; irrational or complex discriminants leave
// the residual whole.
func (f *Factorizer) quadFactor(p *Poly, fs *FactorSet) *Poly {
	a, b, c := p.coeffs[2], p.coeffs[1], p.coeffs[0]
	disc := numSub(numMul(b, b), numMul(N(4), numMul(a, c)))
	if disc.IsNegative() {
		return p
	}
	sq, exact := ratSqrt(disc.val)
	if !exact {
		return p
	}
	twoA := numMul(N(2), a)
	r1 := numDiv(numAdd(numNeg(b), &Num{val: sq}), twoA)
	r2 := numDiv(numSub(numNeg(b), &Num{val: sq}), twoA)
	// a(x - r1)(x - r2), denominators cleared into the binomials:
	// q*x - p for each root p/q, with the leftover scale kept numeric
	d1 := NRat(new(big.Rat).SetInt(r1.val.Denom()))
	d2 := NRat(new(big.Rat).SetInt(r2.val.Denom()))
	b1 := NewPoly(p.v, numNeg(numMul(r1, d1)), d1)
	b2 := NewPoly(p.v, numNeg(numMul(r2, d2)), d2)
	scale := numDiv(a, numMul(d1, d2))
	if !scale.IsOne() {
		fs.Add(scale)
	}
	fs.Add(b1.ToExpr())
	fs.Add(b2.ToExpr())
	return NewPoly(p.v, N(1))
}

// ratSqrt returns the exact square root of a non-negative rational when the
// numerator and denominator are both perfect squares.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	if r.Sign() < 0 {
		return nil, false
	}
	sn := new(big.Int).Sqrt(r.Num())
	if new(big.Int).Mul(sn, sn).Cmp(r.Num()) != 0 {
		return nil, false
	}
	sd := new(big.Int).Sqrt(r.Denom())
	if new(big.Int).Mul(sd, sd).Cmp(r.Denom()) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(sn, sd), true
}

// ------------------------------------------------------------
// multivariate path
// ------------------------------------------------------------

// factorMultivariate: cube patterns, common-monomial extraction, difference
// of squares, square-free splitting, then zero-fishing for linear factor
// shapes. Best effort: the residual comes back unfactored when nothing
// matches.
func (f *Factorizer) factorMultivariate(e Expr, fs *FactorSet) (Expr, error) {
	if err := f.check(); err != nil {
		return e, err
	}
	if out, ok := f.cubeFactor(e, fs); ok {
		return out, nil
	}
	e = f.monomialFactor(e, fs)
	if out, ok := f.squaresFactor(e, fs); ok {
		return out, nil
	}
	if out, ok, err := f.squareFreeSplit(e, fs); err != nil || ok {
		return out, err
	}
	return f.zeroFish(e, fs)
}

// squareFreeSplit peels repeated multivariate factors: when gcd(e, de/dv) is
// a genuine divisor of e, both halves go back through the pipeline. Both
// halves have strictly lower degree, so the recursion bottoms out.
func (f *Factorizer) squareFreeSplit(e Expr, fs *FactorSet) (Expr, bool, error) {
	if _, isAdd := e.(*Add); !isAdd {
		return e, false, nil
	}
	for _, v := range FreeVars(e) {
		if err := f.check(); err != nil {
			return e, false, err
		}
		g := termGCD(e, e.Diff(v).Simplify())
		if _, isNum := g.(*Num); isNum {
			continue
		}
		q, r := DivWithCheck(e, g)
		rn, okR := r.(*Num)
		if !okR || !rn.IsZero() {
			continue
		}
		if _, isNum := q.(*Num); isNum {
			continue
		}
		remQ, err := f.factorMultivariate(q, fs)
		if err != nil {
			return e, false, err
		}
		fs.Add(remQ)
		remG, err := f.factorMultivariate(g, fs)
		if err != nil {
			return e, false, err
		}
		fs.Add(remG)
		return N(1), true, nil
	}
	return e, false, nil
}

// termGCD runs a bounded Euclidean remainder chain over term-based division.
// The multivariate remainder sequence is not guaranteed to shrink, so the
// chain gives up as N(1) after a few steps.
func termGCD(a, b Expr) Expr {
	for i := 0; i < 8; i++ {
		if bn, isNum := b.(*Num); isNum {
			if bn.IsZero() {
				return a
			}
			return b
		}
		_, r, err := Divide(a, b)
		if err != nil {
			return N(1)
		}
		if rn, ok := r.(*Num); ok && rn.IsZero() {
			return b
		}
		a, b = b, r.Simplify()
	}
	return N(1)
}

// monomialFactor divides out the greatest common monomial across all terms.
func (f *Factorizer) monomialFactor(e Expr, fs *FactorSet) Expr {
	varSet := map[string]struct{}{}
	collectVars(e, varSet)
	g, ok := commonMonomial(e, e, varSet)
	if !ok || isNumEqual(g, 1) {
		return e
	}
	q, r := DivWithCheck(e, g)
	if n, okN := r.(*Num); !okN || !n.IsZero() {
		return e
	}
	fs.Add(g)
	return q
}

// cubeFactor matches a^3 +- b^3 across two-term sums.
func (f *Factorizer) cubeFactor(e Expr, fs *FactorSet) (Expr, bool) {
	add, ok := e.(*Add)
	if !ok || len(add.terms) != 2 {
		return e, false
	}
	a, okA := exactRoot(add.terms[0], 3)
	b, okB := exactRoot(add.terms[1], 3)
	if !okA || !okB {
		return e, false
	}
	// a^3 + b^3 = (a + b)(a^2 - ab + b^2); the sign rides inside b.
	fs.Add(AddOf(a, b))
	fs.Add(AddOf(PowOf(a, N(2)), NegOf(MulOf(a, b)), PowOf(b, N(2))))
	return N(1), true
}

// squaresFactor matches A - B with both terms perfect squares.
func (f *Factorizer) squaresFactor(e Expr, fs *FactorSet) (Expr, bool) {
	add, ok := e.(*Add)
	if !ok || len(add.terms) != 2 {
		return e, false
	}
	pos, neg := add.terms[0], add.terms[1]
	if isNegativeTerm(pos) && !isNegativeTerm(neg) {
		pos, neg = neg, pos
	}
	if !isNegativeTerm(neg) || isNegativeTerm(pos) {
		return e, false
	}
	a, okA := exactRoot(pos, 2)
	b, okB := exactRoot(NegOf(neg).Simplify(), 2)
	if !okA || !okB {
		return e, false
	}
	fs.Add(AddOf(a, NegOf(b)))
	fs.Add(AddOf(a, b))
	return N(1), true
}

func isNegativeTerm(e Expr) bool {
	c, _ := splitCoeff(e)
	return c.IsNegative()
}

// exactRoot extracts the exact k-th root of a monomial term: the
// coefficient must be a perfect k-th power (sign allowed for odd k) and all
// exponents divisible by k.
func exactRoot(e Expr, k int64) (Expr, bool) {
	coeff, body := splitCoeff(e)
	factors := []Expr{body}
	if m, ok := body.(*Mul); ok {
		factors = m.factors
	}
	croot, ok := ratRoot(coeff.val, k)
	if !ok {
		return nil, false
	}
	out := []Expr{NRat(croot)}
	for _, f := range factors {
		if n, isNum := f.(*Num); isNum {
			r, okN := ratRoot(n.val, k)
			if !okN {
				return nil, false
			}
			out = append(out, NRat(r))
			continue
		}
		base, exp := f, Expr(N(1))
		if p, isPow := f.(*Pow); isPow {
			base, exp = p.base, p.exp
		}
		en, isNum := exp.(*Num)
		if !isNum || !en.IsInteger() {
			return nil, false
		}
		ev := en.val.Num().Int64()
		if ev%k != 0 {
			return nil, false
		}
		out = append(out, PowOf(base, N(ev/k)))
	}
	return MulOf(out...), true
}

// ratRoot computes the exact integer k-th root of a rational, when it exists.
func ratRoot(r *big.Rat, k int64) (*big.Rat, bool) {
	neg := r.Sign() < 0
	if neg && k%2 == 0 {
		return nil, false
	}
	abs := new(big.Rat).Abs(r)
	bigK := int(k)
	rn := iroot(abs.Num(), bigK)
	if rn == nil {
		return nil, false
	}
	rd := iroot(abs.Denom(), bigK)
	if rd == nil {
		return nil, false
	}
	out := new(big.Rat).SetFrac(rn, rd)
	if neg {
		out.Neg(out)
	}
	return out, true
}

func iroot(n *big.Int, k int) *big.Int {
	if n.Sign() == 0 {
		return new(big.Int)
	}
	r := new(big.Int).Rsh(n, uint(n.BitLen()/k))
	if r.Sign() == 0 {
		r.SetInt64(1)
	}
	// Newton iteration on integers
	for i := 0; i < 128; i++ {
		pow := new(big.Int).Exp(r, big.NewInt(int64(k-1)), nil)
		next := new(big.Int).Div(n, pow)
		next.Add(next, new(big.Int).Mul(r, big.NewInt(int64(k-1))))
		next.Div(next, big.NewInt(int64(k)))
		if next.Cmp(r) == 0 {
			break
		}
		r = next
	}
	for new(big.Int).Exp(r, big.NewInt(int64(k)), nil).Cmp(n) > 0 {
		r.Sub(r, big.NewInt(1))
	}
	if new(big.Int).Exp(r, big.NewInt(int64(k)), nil).Cmp(n) != 0 {
		return nil
	}
	return r
}

// zeroFish hunts linear factors of a multivariate polynomial by collapsing
// all but one variable to zero, factoring the surviving univariate image,
// and test-dividing each linear image factor against the full expression.
func (f *Factorizer) zeroFish(e Expr, fs *FactorSet) (Expr, error) {
	vars := FreeVars(e)
	work := e
	for _, v := range vars {
		if err := f.check(); err != nil {
			return work, err
		}
		image := work
		for _, other := range vars {
			if other != v {
				image = image.Sub(other, N(0))
			}
		}
		p, err := PolyFromExpr(image, v)
		if err != nil || p.Degree() < 1 {
			continue
		}
		inner := NewFactorSet()
		_ = f.trialAndError(p.Clone(), inner, 1)
		for _, key := range inner.order {
			cand := inner.factors[key]
			for {
				q, r := DivWithCheck(work, cand)
				rn, okR := r.(*Num)
				if !okR || !rn.IsZero() {
					break
				}
				qn, isNum := q.(*Num)
				if isNum && qn.IsZero() {
					break
				}
				fs.Add(cand)
				work = q
				if _, stillAdd := work.(*Add); !stillAdd {
					break
				}
			}
		}
	}
	return work, nil
}
