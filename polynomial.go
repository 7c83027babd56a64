package polysolve

import (
	"math/big"
)

// Poly is a dense univariate polynomial over the rationals. Index i of the
// coefficient slice holds the coefficient of power i, so index 0 is the
// constant term. Arithmetic methods mutate the receiver and return it for
// chaining; callers that need both operands afterwards clone first.
type Poly struct {
	coeffs []*Num
	v      string
}

// NewPoly builds a polynomial from ascending-degree coefficients.
func NewPoly(varName string, coeffs ...*Num) *Poly {
	cs := make([]*Num, len(coeffs))
	for i, c := range coeffs {
		if c == nil {
			c = N(0)
		}
		cs[i] = c
	}
	p := &Poly{coeffs: cs, v: varName}
	if len(p.coeffs) == 0 {
		p.coeffs = []*Num{N(0)}
	}
	return p.Trim()
}

// NewMonomial builds coeff * v^degree.
func NewMonomial(varName string, coeff *Num, degree int) *Poly {
	cs := make([]*Num, degree+1)
	for i := range cs {
		cs[i] = N(0)
	}
	cs[degree] = coeff
	return &Poly{coeffs: cs, v: varName}
}

// PolyFromExpr decomposes a polynomial expression into coefficient buckets.
// The expression is expanded first unless it is already power-one flat.
// Returns ErrNotPolynomial when any term is not an integer power of varName
// with a constant coefficient.
func PolyFromExpr(e Expr, varName string) (*Poly, error) {
	if varName == "" {
		vars := FreeVars(e)
		if len(vars) != 1 {
			return nil, ErrMissingVariable
		}
		varName = vars[0]
	}
	if DegreeOf(e, varName) > 1 {
		e = Expand(e)
	} else {
		e = e.Simplify()
	}
	buckets := map[int]*Num{}
	maxDeg := 0
	var walk func(t Expr) error
	walk = func(t Expr) error {
		switch v := t.(type) {
		case *Add:
			for _, term := range v.terms {
				if err := walk(term); err != nil {
					return err
				}
			}
			return nil
		default:
			deg, coeff, err := monomialOf(t, varName)
			if err != nil {
				return err
			}
			if prev, ok := buckets[deg]; ok {
				buckets[deg] = numAdd(prev, coeff)
			} else {
				buckets[deg] = coeff
			}
			if deg > maxDeg {
				maxDeg = deg
			}
			return nil
		}
	}
	if err := walk(e); err != nil {
		return nil, err
	}
	cs := make([]*Num, maxDeg+1)
	for i := range cs {
		if c, ok := buckets[i]; ok {
			cs[i] = c
		} else {
			cs[i] = N(0)
		}
	}
	return (&Poly{coeffs: cs, v: varName}).Trim(), nil
}

// monomialOf reads one additive term as coeff * varName^deg.
func monomialOf(t Expr, varName string) (int, *Num, error) {
	switch v := t.(type) {
	case *Num:
		return 0, v, nil
	case *Sym:
		if v.name == varName {
			return 1, N(1), nil
		}
		return 0, nil, ErrNotPolynomial
	case *Pow:
		sym, ok := v.base.(*Sym)
		if !ok || sym.name != varName {
			return 0, nil, ErrNotPolynomial
		}
		en, ok := v.exp.(*Num)
		if !ok || !en.IsInteger() || en.IsNegative() {
			return 0, nil, ErrNotPolynomial
		}
		return int(en.val.Num().Int64()), N(1), nil
	case *Mul:
		deg := 0
		coeff := N(1)
		for _, f := range v.factors {
			d, c, err := monomialOf(f, varName)
			if err != nil {
				return 0, nil, err
			}
			deg += d
			coeff = numMul(coeff, c)
		}
		return deg, coeff, nil
	}
	return 0, nil, ErrNotPolynomial
}

// Trim drops trailing zero coefficients so the leading term of any
// polynomial longer than one entry is non-zero.
func (p *Poly) Trim() *Poly {
	n := len(p.coeffs)
	for n > 1 && p.coeffs[n-1].IsZero() {
		n--
	}
	p.coeffs = p.coeffs[:n]
	return p
}

func (p *Poly) Clone() *Poly {
	cs := make([]*Num, len(p.coeffs))
	for i, c := range p.coeffs {
		cs[i] = NRat(c.val)
	}
	return &Poly{coeffs: cs, v: p.v}
}

func (p *Poly) Degree() int        { return len(p.coeffs) - 1 }
func (p *Poly) Variable() string   { return p.v }
func (p *Poly) Coeff(i int) *Num   { return p.coeffs[i] }
func (p *Poly) LeadingCoeff() *Num { return p.coeffs[len(p.coeffs)-1] }
func (p *Poly) ConstantTerm() *Num { return p.coeffs[0] }
func (p *Poly) IsZero() bool       { return len(p.coeffs) == 1 && p.coeffs[0].IsZero() }
func (p *Poly) IsConstant() bool   { return len(p.coeffs) == 1 }

// AddP adds q elementwise over the padded union of both coefficient arrays.
func (p *Poly) AddP(q *Poly) *Poly {
	for len(p.coeffs) < len(q.coeffs) {
		p.coeffs = append(p.coeffs, N(0))
	}
	for i, c := range q.coeffs {
		p.coeffs[i] = numAdd(p.coeffs[i], c)
	}
	return p.Trim()
}

// SubP subtracts q elementwise.
func (p *Poly) SubP(q *Poly) *Poly {
	for len(p.coeffs) < len(q.coeffs) {
		p.coeffs = append(p.coeffs, N(0))
	}
	for i, c := range q.coeffs {
		p.coeffs[i] = numSub(p.coeffs[i], c)
	}
	return p.Trim()
}

// MulP multiplies by q via convolution: (i, j) accumulates into i+j.
func (p *Poly) MulP(q *Poly) *Poly {
	out := make([]*Num, len(p.coeffs)+len(q.coeffs)-1)
	for i := range out {
		out[i] = N(0)
	}
	for i, a := range p.coeffs {
		if a.IsZero() {
			continue
		}
		for j, b := range q.coeffs {
			if b.IsZero() {
				continue
			}
			out[i+j] = numAdd(out[i+j], numMul(a, b))
		}
	}
	p.coeffs = out
	return p.Trim()
}

// Scale multiplies every coefficient by k.
func (p *Poly) Scale(k *Num) *Poly {
	for i := range p.coeffs {
		p.coeffs[i] = numMul(p.coeffs[i], k)
	}
	return p.Trim()
}

// Divide performs schoolbook synthetic long division, returning trimmed
// quotient and remainder. The receiver is not modified.
func (p *Poly) Divide(d *Poly) (q, r *Poly, err error) {
	if d.IsZero() {
		return nil, nil, ErrDivisionByZero
	}
	r = p.Clone()
	qCoeffs := make([]*Num, maxInt(p.Degree()-d.Degree()+1, 1))
	for i := range qCoeffs {
		qCoeffs[i] = N(0)
	}
	lead := d.LeadingCoeff()
	for !r.IsZero() && r.Degree() >= d.Degree() {
		shift := r.Degree() - d.Degree()
		factor := numDiv(r.LeadingCoeff(), lead)
		qCoeffs[shift] = numAdd(qCoeffs[shift], factor)
		sub := NewMonomial(p.v, factor, shift).MulP(d.Clone())
		r.SubP(sub)
	}
	q = (&Poly{coeffs: qCoeffs, v: p.v}).Trim()
	return q, r.Trim(), nil
}

// GCD runs the Euclidean algorithm and normalizes the result to a primitive
// polynomial with positive leading coefficient.
func (p *Poly) GCD(q *Poly) *Poly {
	a, b := p.Clone(), q.Clone()
	if a.Degree() < b.Degree() {
		a, b = b, a
	}
	for !b.IsZero() {
		_, r, err := a.Divide(b)
		if err != nil {
			break
		}
		a, b = b, r
	}
	return a.makePrimitive()
}

// Content is the gcd of all coefficients.
func (p *Poly) Content() *Num {
	return numGCDAll(p.coeffs)
}

func (p *Poly) makePrimitive() *Poly {
	c := p.Content()
	if !c.IsZero() && !c.IsOne() {
		for i := range p.coeffs {
			p.coeffs[i] = numDiv(p.coeffs[i], c)
		}
	}
	if p.LeadingCoeff().IsNegative() {
		for i := range p.coeffs {
			p.coeffs[i] = numNeg(p.coeffs[i])
		}
	}
	return p
}

// SquareFree peels repeated-root layers. It returns the square-free part,
// the witness polynomial holding the remaining multiplicity (gcd(p, p')),
// and the number of times the square-free part divides p exactly.
func (p *Poly) SquareFree() (sqf, witness *Poly, mult int) {
	if p.Degree() < 1 {
		return p.Clone(), NewPoly(p.v, N(1)), 1
	}
	d := p.Clone().DiffP()
	g := p.GCD(d)
	if g.Degree() == 0 {
		return p.Clone(), NewPoly(p.v, N(1)), 1
	}
	q, _, err := p.Divide(g)
	if err != nil {
		return p.Clone(), NewPoly(p.v, N(1)), 1
	}
	sqf = q.makePrimitive()
	// Count how many layers of sqf stack inside p.
	mult = 0
	rest := p.Clone()
	for {
		quo, rem, err := rest.Divide(sqf)
		if err != nil || !rem.IsZero() {
			break
		}
		mult++
		rest = quo
	}
	if mult == 0 {
		mult = 1
	}
	return sqf, g, mult
}

// DiffP differentiates in place: index shifts down with power scaling.
func (p *Poly) DiffP() *Poly {
	if len(p.coeffs) == 1 {
		p.coeffs = []*Num{N(0)}
		return p
	}
	out := make([]*Num, len(p.coeffs)-1)
	for i := 1; i < len(p.coeffs); i++ {
		out[i-1] = numMul(p.coeffs[i], N(int64(i)))
	}
	p.coeffs = out
	return p.Trim()
}

// IntegrateP integrates in place, introducing a zero constant term.
func (p *Poly) IntegrateP() *Poly {
	out := make([]*Num, len(p.coeffs)+1)
	out[0] = N(0)
	for i, c := range p.coeffs {
		out[i+1] = numDiv(c, N(int64(i+1)))
	}
	p.coeffs = out
	return p.Trim()
}

// EvalAt evaluates the polynomial at an exact rational point by direct power
// summation. Degrees here stay modest, so Horner is not needed.
func (p *Poly) EvalAt(x *Num) *Num {
	acc := N(0)
	for i, c := range p.coeffs {
		if c.IsZero() {
			continue
		}
		term := numMul(c, &Num{val: ratPowInt(x.val, int64(i))})
		acc = numAdd(acc, term)
	}
	return acc
}

// EvalFloat evaluates at a float point.
func (p *Poly) EvalFloat(x float64) float64 {
	acc := 0.0
	pow := 1.0
	for _, c := range p.coeffs {
		acc += c.Float64() * pow
		pow *= x
	}
	return acc
}

// FloatCoeffs returns the coefficients in descending degree order as floats,
// the layout the numeric root finder consumes.
func (p *Poly) FloatCoeffs() []float64 {
	out := make([]float64, len(p.coeffs))
	for i, c := range p.coeffs {
		out[len(p.coeffs)-1-i] = c.Float64()
	}
	return out
}

// Fit reconstructs an integer-coefficient polynomial from its value at a
// base point, reading the value as balanced base-b digits. It is the
// deterministic fallback used when float root approximations are too coarse
// to recognize an exact rational root.
func PolyFit(varName string, value *big.Int, base int64, degree int) *Poly {
	b := big.NewInt(base)
	half := big.NewInt(base / 2)
	rest := new(big.Int).Set(value)
	neg := rest.Sign() < 0
	if neg {
		rest.Neg(rest)
	}
	cs := make([]*Num, degree+1)
	for i := range cs {
		cs[i] = N(0)
	}
	for i := 0; i <= degree && rest.Sign() != 0; i++ {
		digit := new(big.Int).Mod(rest, b)
		rest.Div(rest, b)
		if digit.Cmp(half) > 0 {
			// balanced digit: carry one up, keep digit - base
			digit.Sub(digit, b)
			rest.Add(rest, big.NewInt(1))
		}
		if neg {
			digit.Neg(digit)
		}
		cs[i] = &Num{val: new(big.Rat).SetInt(digit)}
	}
	return (&Poly{coeffs: cs, v: varName}).Trim()
}

// ToExpr renders the polynomial back into an expression tree.
func (p *Poly) ToExpr() Expr {
	terms := make([]Expr, 0, len(p.coeffs))
	for i, c := range p.coeffs {
		if c.IsZero() {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, c)
		case 1:
			terms = append(terms, MulOf(c, S(p.v)))
		default:
			terms = append(terms, MulOf(c, PowOf(S(p.v), N(int64(i)))))
		}
	}
	if len(terms) == 0 {
		return N(0)
	}
	return AddOf(terms...)
}

func (p *Poly) String() string { return p.ToExpr().String() }

func (p *Poly) Equal(q *Poly) bool {
	if len(p.coeffs) != len(q.coeffs) {
		return false
	}
	for i := range p.coeffs {
		if numCmp(p.coeffs[i], q.coeffs[i]) != 0 {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
