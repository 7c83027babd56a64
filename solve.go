package polysolve

import (
	"context"
	"math"
	"math/big"
	"sort"

	"github.com/shopspring/decimal"
)

// Equation is a pair of expressions asserted equal.
type Equation struct {
	lhs, rhs Expr
}

// NewEquation builds an equation, rejecting the trivially impossible cases:
// two distinct constants asserted equal, and the imaginary unit (or a numeric
// multiple of it) asserted equal to a real constant.
func NewEquation(lhs, rhs Expr) (*Equation, error) {
	l := lhs.Simplify()
	r := rhs.Simplify()
	if ln, ok := l.(*Num); ok {
		if rn, ok2 := r.(*Num); ok2 && numCmp(ln, rn) != 0 {
			return nil, ErrInconsistentEquation
		}
	}
	if _, ok := l.(*Num); ok && isImaginaryConst(r) {
		return nil, ErrInconsistentEquation
	}
	if _, ok := r.(*Num); ok && isImaginaryConst(l) {
		return nil, ErrInconsistentEquation
	}
	return &Equation{lhs: l, rhs: r}, nil
}

// isImaginaryConst matches the imaginary unit and its numeric multiples.
func isImaginaryConst(e Expr) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == ImaginaryUnit
	case *Mul:
		if len(v.factors) == 2 {
			if _, ok := v.factors[0].(*Num); ok {
				if s, ok := v.factors[1].(*Sym); ok {
					return s.name == ImaginaryUnit
				}
			}
		}
	}
	return false
}

func (eq *Equation) LHS() Expr { return eq.lhs }
func (eq *Equation) RHS() Expr { return eq.rhs }

// ToLHS moves everything to the left side: lhs - rhs.
func (eq *Equation) ToLHS() Expr {
	return SubOf(eq.lhs, eq.rhs).Simplify()
}

// RemoveDenominators multiplies both sides by the denominators of both
// sides, clearing fractions. The result can have spurious roots where a
// cleared denominator vanishes; callers validate solutions against the
// original equation.
func (eq *Equation) RemoveDenominators() *Equation {
	dl := Denominator(eq.lhs)
	dr := Denominator(eq.rhs)
	factor := MulOf(dl, dr).Simplify()
	if n, ok := factor.(*Num); ok && n.IsOne() {
		return eq
	}
	return &Equation{
		lhs: Expand(MulOf(eq.lhs, factor)),
		rhs: Expand(MulOf(eq.rhs, factor)),
	}
}

// Solver finds the solutions of equations in one variable. A zero Solver is
// not usable; construct with NewSolver and customize via the With methods.
// Settings are read-only during a solve, so one Solver may be shared.
type Solver struct {
	settings Settings
	ctx      context.Context
	depth    int
}

func NewSolver() *Solver {
	return &Solver{settings: DefaultSettings(), ctx: context.Background()}
}

// WithSettings returns a copy using the given numeric knobs.
func (s *Solver) WithSettings(st Settings) *Solver {
	c := *s
	c.settings = st
	return &c
}

// WithContext returns a copy bound to ctx; cancellation aborts long scans.
func (s *Solver) WithContext(ctx context.Context) *Solver {
	c := *s
	c.ctx = ctx
	return &c
}

func (s *Solver) child() *Solver {
	c := *s
	c.depth++
	return &c
}

// Solve returns the real and expressible-complex solutions of eq for
// varName, numeric values ascending and symbolic values last. An empty
// varName is inferred when the equation has exactly one free variable.
func (s *Solver) Solve(eq *Equation, varName string) ([]Expr, error) {
	if s.depth > s.settings.MaxSolveDepth {
		// budget spent: surface whatever the shallower frames collected
		// instead of recursing on
		return nil, nil
	}
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	origF := eq.ToLHS()
	f := eq.RemoveDenominators().ToLHS()
	if varName == "" {
		vars := FreeVars(f)
		if len(vars) != 1 {
			return nil, ErrMissingVariable
		}
		varName = vars[0]
	}
	if !Contains(f, varName) {
		if n, ok := f.(*Num); ok && n.IsZero() {
			// identity: every value satisfies it, nothing to enumerate
			return nil, nil
		}
		return nil, ErrMissingVariable
	}

	// absolute values split the problem into sign branches
	if plus, minus, ok := splitAbs(f, varName); ok {
		var roots []Expr
		for _, branch := range []Expr{plus, minus} {
			beq, err := NewEquation(branch, N(0))
			if err != nil {
				continue
			}
			rs, err := s.child().Solve(beq, varName)
			if err != nil && !isCancel(err) {
				continue
			}
			if isCancel(err) {
				return nil, err
			}
			roots = append(roots, rs...)
		}
		return s.finish(roots, origF, varName), nil
	}

	// exact path: polynomial equations go through the factorizer
	if _, err := PolyFromExpr(Expand(f), varName); err == nil {
		roots, err := s.polynomialRoots(f, varName)
		if err != nil {
			return nil, err
		}
		return s.finish(roots, origF, varName), nil
	}

	// symbolic coefficients: the linear and quadratic closed forms still
	// apply when the other variables stay unbound
	if roots, ok := symbolicPolyRoots(f, varName); ok {
		return s.finish(roots, origF, varName), nil
	}

	// single invertible head: peel it and recurse on the argument
	if inner, target, none, ok := invertHead(f, varName); ok {
		if none {
			return nil, nil
		}
		ieq, err := NewEquation(inner, target)
		if err != nil {
			return nil, nil
		}
		roots, err := s.child().Solve(ieq, varName)
		if err != nil {
			return nil, err
		}
		return s.finish(roots, origF, varName), nil
	}

	roots, err := s.numericRoots(f, varName)
	if err != nil {
		return nil, err
	}
	return s.finish(roots, origF, varName), nil
}

// polynomialRoots factors first so rational roots come out exact, then
// applies the closed forms or the numeric finder per irreducible factor.
func (s *Solver) polynomialRoots(f Expr, varName string) ([]Expr, error) {
	factored, err := FactorCtx(s.ctx, f)
	if err != nil {
		return nil, err
	}
	pieces := []Expr{factored}
	if m, ok := factored.(*Mul); ok {
		pieces = m.factors
	}
	var roots []Expr
	for _, piece := range pieces {
		if p, ok := piece.(*Pow); ok {
			if en, isNum := p.exp.(*Num); isNum && en.IsPositive() {
				piece = p.base
			}
		}
		if _, ok := piece.(*Num); ok {
			continue
		}
		if !Contains(piece, varName) {
			continue
		}
		poly, perr := PolyFromExpr(piece, varName)
		if perr != nil {
			return nil, perr
		}
		rs, rerr := polyRoots(poly)
		if rerr != nil {
			return nil, rerr
		}
		roots = append(roots, rs...)
	}
	return roots, nil
}

// symbolicPolyRoots solves equations that are linear or quadratic in varName
// with coefficients left symbolic: -c/b for the linear case, the quadratic
// formula otherwise.
func symbolicPolyRoots(f Expr, varName string) ([]Expr, bool) {
	coeffs, ok := coeffsInVar(Expand(f), varName, 2)
	if !ok {
		return nil, false
	}
	a, b, c := coeffs[2], coeffs[1], coeffs[0]
	if isNumEqual(a, 0) {
		if isNumEqual(b, 0) {
			return nil, false
		}
		return []Expr{MulOf(N(-1), c, PowOf(b, N(-1))).Simplify()}, true
	}
	disc := AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c))
	denom := MulOf(N(2), a)
	x1 := MulOf(AddOf(MulOf(N(-1), b), SqrtOf(disc)), PowOf(denom, N(-1)))
	x2 := MulOf(AddOf(MulOf(N(-1), b), MulOf(N(-1), SqrtOf(disc))), PowOf(denom, N(-1)))
	return []Expr{x1.Simplify(), x2.Simplify()}, true
}

// coeffsInVar splits an expanded expression into coefficients by power of
// varName, up to maxDeg. It fails when varName hides inside a function
// argument, an exponent, or a coefficient, or appears at a higher power.
func coeffsInVar(f Expr, varName string, maxDeg int) ([]Expr, bool) {
	coeffs := make([]Expr, maxDeg+1)
	for i := range coeffs {
		coeffs[i] = N(0)
	}
	terms := []Expr{f}
	if a, ok := f.(*Add); ok {
		terms = a.terms
	}
	for _, t := range terms {
		deg, co, ok := splitVarPower(t, varName)
		if !ok || deg > maxDeg {
			return nil, false
		}
		coeffs[deg] = AddOf(coeffs[deg], co)
	}
	for _, co := range coeffs {
		if Contains(co, varName) {
			return nil, false
		}
	}
	return coeffs, true
}

// splitVarPower factors one term into varName^deg times a cofactor.
func splitVarPower(t Expr, varName string) (deg int, coeff Expr, ok bool) {
	if !Contains(t, varName) {
		return 0, t, true
	}
	switch v := t.(type) {
	case *Sym:
		return 1, N(1), true
	case *Pow:
		base, isSym := v.base.(*Sym)
		en, isNum := v.exp.(*Num)
		if !isSym || base.name != varName || !isNum || !en.IsInteger() || en.IsNegative() {
			return 0, nil, false
		}
		k := en.val.Num().Int64()
		if k > 16 {
			return 0, nil, false
		}
		return int(k), N(1), true
	case *Mul:
		rest := make([]Expr, 0, len(v.factors))
		for _, fct := range v.factors {
			if !Contains(fct, varName) {
				rest = append(rest, fct)
				continue
			}
			d, c, okF := splitVarPower(fct, varName)
			if !okF {
				return 0, nil, false
			}
			deg += d
			if !isNumEqual(c, 1) {
				rest = append(rest, c)
			}
		}
		return deg, MulOf(rest...), true
	}
	return 0, nil, false
}

// splitAbs locates the first abs subterm containing varName and returns the
// expression with that subterm replaced by its argument and by the negated
// argument.
func splitAbs(e Expr, varName string) (plus, minus Expr, ok bool) {
	switch v := e.(type) {
	case *Call:
		if v.name == "abs" && Contains(v.arg, varName) {
			return v.arg, NegOf(v.arg).Simplify(), true
		}
		if p, m, found := splitAbs(v.arg, varName); found {
			return callOf(v.name, p), callOf(v.name, m), true
		}
	case *Add:
		for i, t := range v.terms {
			if p, m, found := splitAbs(t, varName); found {
				return rebuildAdd(v.terms, i, p), rebuildAdd(v.terms, i, m), true
			}
		}
	case *Mul:
		for i, t := range v.factors {
			if p, m, found := splitAbs(t, varName); found {
				return rebuildMul(v.factors, i, p), rebuildMul(v.factors, i, m), true
			}
		}
	case *Pow:
		if p, m, found := splitAbs(v.base, varName); found {
			return PowOf(p, v.exp), PowOf(m, v.exp), true
		}
	}
	return nil, nil, false
}

func rebuildAdd(terms []Expr, i int, repl Expr) Expr {
	out := make([]Expr, len(terms))
	copy(out, terms)
	out[i] = repl
	return &Add{terms: out}
}

func rebuildMul(factors []Expr, i int, repl Expr) Expr {
	out := make([]Expr, len(factors))
	copy(out, factors)
	out[i] = repl
	return &Mul{factors: out}
}

// invertHead recognizes a*g(u) + c = 0 for an invertible head g and returns
// the reduced equation u = g^-1(-c/a). none reports that the equation has no
// real solution (exp of anything is positive, sine never exceeds one).
func invertHead(f Expr, varName string) (inner, target Expr, none, ok bool) {
	scale := N(1)
	shift := N(0)
	var head Expr

	assign := func(e Expr) bool {
		if head != nil {
			return false
		}
		head = e
		return true
	}
	classify := func(t Expr) bool {
		switch tv := t.(type) {
		case *Num:
			shift = numAdd(shift, tv)
			return true
		case *Call:
			return assign(tv)
		case *Pow:
			return assign(tv)
		case *Mul:
			if len(tv.factors) == 2 {
				if n, isNum := tv.factors[0].(*Num); isNum {
					switch tv.factors[1].(type) {
					case *Call, *Pow:
						if assign(tv.factors[1]) {
							scale = n
							return true
						}
					}
				}
			}
			return false
		}
		return false
	}

	switch v := f.(type) {
	case *Add:
		for _, t := range v.terms {
			if !classify(t) {
				return nil, nil, false, false
			}
		}
	default:
		if !classify(f) {
			return nil, nil, false, false
		}
	}
	if head == nil {
		return nil, nil, false, false
	}
	rhs := numDiv(numNeg(shift), scale)

	switch h := head.(type) {
	case *Call:
		if !Contains(h.arg, varName) {
			return nil, nil, false, false
		}
		v := rhs.Float64()
		switch h.name {
		case "exp":
			if v <= 0 {
				return nil, nil, true, true
			}
			return h.arg, NFloat(math.Log(v)), false, true
		case "log":
			return h.arg, NFloat(math.Exp(v)), false, true
		case "sqrt":
			if v < 0 {
				return nil, nil, true, true
			}
			return h.arg, numMul(rhs, rhs), false, true
		}
		return nil, nil, false, false
	case *Pow:
		en, isNum := h.exp.(*Num)
		if !isNum || en.IsInteger() || !Contains(h.base, varName) {
			return nil, nil, false, false
		}
		// u^(p/q) = v  =>  u = v^(q/p)
		if en.val.Num().Sign() > 0 && en.val.Denom().Int64()%2 == 0 && rhs.IsNegative() {
			return nil, nil, true, true
		}
		invExp := NRat(new(big.Rat).Inv(en.val))
		return h.base, PowOf(rhs, invExp).Simplify(), false, true
	}
	return nil, nil, false, false
}

// numericRoots runs the bracket scan and polishes each bracket with
// bisection followed by Newton refinement.
func (s *Solver) numericRoots(f Expr, varName string) ([]Expr, error) {
	fn, err := Compile(f, []string{varName})
	if err != nil {
		return nil, err
	}
	var dfn EvalFn
	if d, derr := Compile(f.Diff(varName).Simplify(), []string{varName}); derr == nil {
		dfn = d
	}

	radius := s.settings.SearchRadius
	var values []float64

	scan := func(lo, hi, step float64) error {
		prev := math.NaN()
		px := lo
		for x := lo; x <= hi; x += step {
			if err := s.ctx.Err(); err != nil {
				return err
			}
			fx := fn([]float64{x})
			if math.IsNaN(fx) || math.IsInf(fx, 0) {
				prev = math.NaN()
				px = x
				continue
			}
			if math.Abs(fx) <= s.settings.Epsilon {
				values = append(values, x)
			} else if !math.IsNaN(prev) && (prev < 0) != (fx < 0) {
				root := s.bisect(fn, px, x)
				if r, ok := s.newton(fn, dfn, root); ok {
					root = r
				}
				values = append(values, root)
			}
			prev = fx
			px = x
		}
		return nil
	}
	// coarse pass over the whole radius, finer passes near the origin
	// where roots of hand-written equations overwhelmingly live
	if err := scan(-radius, radius, 0.1); err != nil {
		return nil, err
	}
	if err := scan(-50, 50, 0.05); err != nil {
		return nil, err
	}
	if err := scan(-50, 50, 0.01); err != nil {
		return nil, err
	}

	// heuristic seeds for roots the bracket scan cannot see: half the value
	// at zero and its magnitude, plus a point just right of a log singularity
	var seeds []float64
	if f0 := fn([]float64{0}); !math.IsNaN(f0) && !math.IsInf(f0, 0) {
		seeds = append(seeds, f0/2, math.Abs(f0))
	}
	if containsCallName(f, "log") {
		seeds = append(seeds, 0.1)
	}
	for _, seed := range seeds {
		if r, ok := s.newton(fn, dfn, seed); ok {
			values = append(values, r)
		}
	}

	roots := make([]Expr, 0, len(values))
	for _, v := range values {
		roots = append(roots, s.roundFloat(v))
	}
	return roots, nil
}

func (s *Solver) bisect(fn EvalFn, a, b float64) float64 {
	fa := fn([]float64{a})
	for i := 0; i < s.settings.MaxBisectIter; i++ {
		m := (a + b) / 2
		fm := fn([]float64{m})
		if fm == 0 || (b-a)/2 < s.settings.Epsilon {
			return m
		}
		if (fa < 0) == (fm < 0) {
			a, fa = m, fm
		} else {
			b = m
		}
	}
	return (a + b) / 2
}

// containsCallName reports whether a function application with the given
// name occurs anywhere in e.
func containsCallName(e Expr, name string) bool {
	switch v := e.(type) {
	case *Call:
		return v.name == name || containsCallName(v.arg, name)
	case *Add:
		for _, t := range v.terms {
			if containsCallName(t, name) {
				return true
			}
		}
	case *Mul:
		for _, t := range v.factors {
			if containsCallName(t, name) {
				return true
			}
		}
	case *Pow:
		return containsCallName(v.base, name) || containsCallName(v.exp, name)
	}
	return false
}

// newtonOverflow is the function-value magnitude past which an iterate is
// treated as blown up.
const newtonOverflow = 1e25

// newton polishes a root estimate. Overflowing function values retreat
// halfway back toward the start; a flat derivative repeats the last step
// direction a few times before giving up.
func (s *Solver) newton(fn, dfn EvalFn, x0 float64) (float64, bool) {
	if dfn == nil {
		return x0, false
	}
	x := x0
	lastStep := 0.0
	stalled := 0
	for i := 0; i < s.settings.MaxNewtonIter; i++ {
		fx := fn([]float64{x})
		if math.Abs(fx) < s.settings.Epsilon {
			return x, true
		}
		if math.IsNaN(fx) || math.Abs(fx) > newtonOverflow {
			if x == x0 {
				return x0, false
			}
			x = (x + x0) / 2
			continue
		}
		d := dfn([]float64{x})
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return x0, false
		}
		if d == 0 {
			stalled++
			if lastStep == 0 || stalled > 3 {
				return x0, false
			}
			x += lastStep
			continue
		}
		nx := x - fx/d
		if math.IsNaN(nx) || math.Abs(nx) > newtonOverflow {
			return x0, false
		}
		lastStep = nx - x
		if math.Abs(nx-x) < s.settings.Epsilon/100 {
			x = nx
			break
		}
		x = nx
	}
	return x, math.Abs(fn([]float64{x})) < 1e-6
}

// roundFloat renders a numeric root at the configured precision; values
// that round to an integer come back as exact integers.
func (s *Solver) roundFloat(v float64) Expr {
	d := decimal.NewFromFloat(v).Round(s.settings.Precision)
	return NRat(d.Rat())
}

// finish validates, deduplicates, and orders a root list. Roots the
// original equation cleanly rejects are dropped; roots that cannot be
// evaluated numerically (symbolic, complex) are kept.
func (s *Solver) finish(roots []Expr, origF Expr, varName string) []Expr {
	kept := make([]Expr, 0, len(roots))
	for _, r := range roots {
		val := origF.Sub(varName, r).Simplify()
		if n, ok := val.Eval(); ok {
			if math.Abs(n.Float64()) > 1e-6 {
				continue
			}
		}
		kept = append(kept, r)
	}
	kept = s.dedup(kept)
	sort.SliceStable(kept, func(i, j int) bool {
		ni, oki := kept[i].Eval()
		nj, okj := kept[j].Eval()
		if oki && okj {
			return ni.Float64() < nj.Float64()
		}
		if oki != okj {
			return oki
		}
		return kept[i].String() < kept[j].String()
	})
	return kept
}

// dedup drops numeric roots within the dedup window of an earlier root and
// symbolic roots structurally equal to an earlier one.
func (s *Solver) dedup(roots []Expr) []Expr {
	var out []Expr
	var numeric []float64
	for _, r := range roots {
		if n, ok := r.Eval(); ok {
			v := n.Float64()
			dup := false
			for _, u := range numeric {
				if math.Abs(u-v) <= s.settings.DedupWindow {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			numeric = append(numeric, v)
			out = append(out, r)
			continue
		}
		dup := false
		for _, o := range out {
			if o.Equal(r) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}
