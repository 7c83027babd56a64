package polysolve

import (
	"math"
	"math/big"
	"math/cmplx"

	"github.com/shopspring/decimal"
)

// ImaginaryUnit is the symbol complex results are expressed with. Complex
// values are not a numeric type here; i is an opaque variable bolted on by
// substitution, per the engine's design.
const ImaginaryUnit = "i"

// Roots returns all roots, real and complex, of a polynomial in varName.
// Closed forms cover degree <= 4; higher degrees go through the numeric
// Jenkins-Traub finder (degree capped at 100). Roots are ordered as emitted
// by the underlying method.
func Roots(e Expr, varName string) ([]Expr, error) {
	if varName == "" {
		vars := FreeVars(e)
		if len(vars) != 1 {
			return nil, ErrMissingVariable
		}
		varName = vars[0]
	}
	p, err := PolyFromExpr(e, varName)
	if err != nil {
		return nil, err
	}
	return polyRoots(p)
}

func polyRoots(p *Poly) ([]Expr, error) {
	if p.Degree() > 100 {
		return nil, ErrDegreeTooLarge
	}
	var roots []Expr
	work := p.Clone().Trim()
	// roots at the origin peel off first
	for work.Degree() > 0 && work.coeffs[0].IsZero() {
		roots = append(roots, N(0))
		work.coeffs = work.coeffs[1:]
	}
	switch work.Degree() {
	case 0:
		return roots, nil
	case 1:
		roots = append(roots, numDiv(numNeg(work.coeffs[0]), work.coeffs[1]))
		return roots, nil
	case 2:
		return append(roots, quadraticRoots(work.coeffs[2], work.coeffs[1], work.coeffs[0])...), nil
	case 3:
		return append(roots, cubicRoots(work)...), nil
	case 4:
		return append(roots, quarticRoots(work)...), nil
	}
	zs, err := jenkinsTraub(work.FloatCoeffs())
	if err != nil {
		return nil, err
	}
	prec := DefaultSettings().Precision
	for _, z := range zs {
		roots = append(roots, complexToExpr(z, prec))
	}
	return roots, nil
}

// quadraticRoots returns the exact symbolic roots (-b +- sqrt(b^2-4ac))/2a.
// The discriminant is computed exactly first so the radical comes out in
// lowest form instead of a nested mess.
func quadraticRoots(a, b, c *Num) []Expr {
	disc := numSub(numMul(b, b), numMul(N(4), numMul(a, c)))
	twoA := numMul(N(2), a)
	if sq, exact := ratSqrt(new(big.Rat).Abs(disc.val)); exact && !disc.IsNegative() {
		r1 := numDiv(numAdd(numNeg(b), &Num{val: sq}), twoA)
		r2 := numDiv(numSub(numNeg(b), &Num{val: sq}), twoA)
		return []Expr{r1, r2}
	}
	rad := radicalOf(disc)
	nb := numNeg(b)
	inv := NRat(new(big.Rat).Inv(twoA.val))
	r1 := MulOf(inv, AddOf(nb, rad)).Simplify()
	r2 := MulOf(inv, SubOf(nb, rad)).Simplify()
	return []Expr{r1, r2}
}

// radicalOf builds sqrt(d) with the largest perfect-square factor pulled
// out; negative d contributes the imaginary unit.
func radicalOf(d *Num) Expr {
	factors := []Expr{}
	v := new(big.Rat).Set(d.val)
	if v.Sign() < 0 {
		factors = append(factors, S(ImaginaryUnit))
		v.Neg(v)
	}
	// sqrt(p/q) = sqrt(p*q)/q keeps the radicand integral
	radicand := new(big.Int).Mul(v.Num(), v.Denom())
	outside := big.NewInt(1)
	for f := big.NewInt(2); ; f.Add(f, big.NewInt(1)) {
		sq := new(big.Int).Mul(f, f)
		if sq.Cmp(radicand) > 0 {
			break
		}
		for new(big.Int).Mod(radicand, sq).Sign() == 0 {
			radicand.Div(radicand, sq)
			outside.Mul(outside, f)
		}
		if f.Cmp(big.NewInt(1<<16)) > 0 {
			break
		}
	}
	scale := new(big.Rat).SetFrac(outside, v.Denom())
	if scale.Cmp(ratOne) != 0 {
		factors = append(factors, NRat(scale))
	}
	if radicand.Cmp(big.NewInt(1)) != 0 {
		factors = append(factors, SqrtOf(NRat(new(big.Rat).SetInt(radicand))))
	}
	if len(factors) == 0 {
		return N(1)
	}
	return MulOf(factors...)
}

// cubicRoots applies the Cardano closed form: three roots generated by
// rotating the principal cube root through the cube roots of unity.
func cubicRoots(p *Poly) []Expr {
	a := p.coeffs[3].Float64()
	b := p.coeffs[2].Float64()
	c := p.coeffs[1].Float64()
	d := p.coeffs[0].Float64()
	// depressed form t^3 + pt + q with x = t - b/3a
	pp := (3*a*c - b*b) / (3 * a * a)
	q := (2*b*b*b - 9*a*b*c + 27*a*a*d) / (27 * a * a * a)
	offset := b / (3 * a)
	prec := DefaultSettings().Precision

	disc := -(4*pp*pp*pp + 27*q*q)
	if disc > 0 {
		// three real roots via the trigonometric branch
		m := 2 * math.Sqrt(-pp/3)
		theta := math.Acos(3*q/(pp*m)) / 3
		out := make([]Expr, 3)
		for k := 0; k < 3; k++ {
			out[k] = complexToExpr(complex(m*math.Cos(theta-2*math.Pi*float64(k)/3)-offset, 0), prec)
		}
		return out
	}
	// one real root, complex conjugate pair
	u := cmplx.Pow(complex(-q/2, 0)+cmplx.Sqrt(complex(q*q/4+pp*pp*pp/27, 0)), 1.0/3.0)
	if cmplx.Abs(u) < 1e-300 {
		u = cmplx.Pow(complex(-q, 0), 1.0/3.0)
	}
	omega := complex(-0.5, math.Sqrt(3)/2)
	out := make([]Expr, 0, 3)
	for k := 0; k < 3; k++ {
		rot := u
		for j := 0; j < k; j++ {
			rot *= omega
		}
		var t complex128
		if cmplx.Abs(rot) > 0 {
			t = rot - complex(pp/3, 0)/rot
		}
		out = append(out, complexToExpr(t-complex(offset, 0), prec))
	}
	return out
}

// quarticRoots uses the resolvent-cubic closed form: depress, pick a real
// root of the resolvent, split into two quadratics.
func quarticRoots(poly *Poly) []Expr {
	a := poly.coeffs[4].Float64()
	b := poly.coeffs[3].Float64() / a
	c := poly.coeffs[2].Float64() / a
	d := poly.coeffs[1].Float64() / a
	e := poly.coeffs[0].Float64() / a
	// depressed quartic y^4 + p y^2 + q y + r, x = y - b/4
	p := c - 3*b*b/8
	q := d - b*c/2 + b*b*b/8
	r := e - b*d/4 + b*b*c/16 - 3*b*b*b*b/256
	offset := b / 4
	prec := DefaultSettings().Precision

	out := make([]Expr, 0, 4)
	if math.Abs(q) < 1e-12 {
		// biquadratic branch: z^2 + p z + r
		zs := quadComplex(1, p, r)
		for _, z := range zs {
			s := cmplx.Sqrt(z)
			out = append(out, complexToExpr(s-complex(offset, 0), prec))
			out = append(out, complexToExpr(-s-complex(offset, 0), prec))
		}
		return out
	}
	// resolvent cubic: m^3 + p m^2 + (p^2/4 - r) m - q^2/8 = 0
	m := realCubicRoot(1, p, p*p/4-r, -q*q/8)
	if m <= 0 {
		m = 1e-12
	}
	s := math.Sqrt(2 * m)
	t1 := p/2 + m
	// two quadratics: y^2 +- s y + (t1 -+ q/(2s))
	for _, branch := range []struct{ sign float64 }{{1}, {-1}} {
		bq := branch.sign * s
		cq := t1 - branch.sign*q/(2*s)
		for _, z := range quadComplex(1, bq, cq) {
			out = append(out, complexToExpr(z-complex(offset, 0), prec))
		}
	}
	return out
}

// realCubicRoot returns one real root of a*x^3+b*x^2+c*x+d.
func realCubicRoot(a, b, c, d float64) float64 {
	p := (3*a*c - b*b) / (3 * a * a)
	q := (2*b*b*b - 9*a*b*c + 27*a*a*d) / (27 * a * a * a)
	offset := b / (3 * a)
	disc := q*q/4 + p*p*p/27
	if disc >= 0 {
		u := math.Cbrt(-q/2 + math.Sqrt(disc))
		v := 0.0
		if u != 0 {
			v = -p / (3 * u)
		} else {
			v = math.Cbrt(-q)
		}
		return u + v - offset
	}
	m := 2 * math.Sqrt(-p/3)
	theta := math.Acos(3*q/(p*m)) / 3
	best := m*math.Cos(theta) - offset
	for k := 1; k < 3; k++ {
		r := m*math.Cos(theta-2*math.Pi*float64(k)/3) - offset
		if r > best {
			best = r
		}
	}
	return best
}

// quadComplex solves a quadratic over the complexes.
func quadComplex(a, b, c float64) []complex128 {
	disc := complex(b*b-4*a*c, 0)
	s := cmplx.Sqrt(disc)
	return []complex128{
		(-complex(b, 0) + s) / complex(2*a, 0),
		(-complex(b, 0) - s) / complex(2*a, 0),
	}
}

// complexToExpr rounds a complex value to the configured precision and
// renders it as an expression: exact zero parts are suppressed, unit
// imaginary coefficients collapse to a bare i.
func complexToExpr(z complex128, prec int32) Expr {
	re := decimal.NewFromFloat(real(z)).Round(prec)
	im := decimal.NewFromFloat(imag(z)).Round(prec)
	reN := NRat(re.Rat())
	imN := NRat(im.Rat())
	if imN.IsZero() {
		return reN
	}
	var imPart Expr
	switch {
	case imN.IsOne():
		imPart = S(ImaginaryUnit)
	case imN.IsNegOne():
		imPart = NegOf(S(ImaginaryUnit))
	default:
		imPart = MulOf(imN, S(ImaginaryUnit))
	}
	if reN.IsZero() {
		return imPart.Simplify()
	}
	return AddOf(reN, imPart)
}

// CompleteTheSquare rewrites a quadratic in varName as a(x + h)^2 + k.
func CompleteTheSquare(e Expr, varName string) (Expr, error) {
	p, err := PolyFromExpr(e, varName)
	if err != nil {
		return nil, err
	}
	if p.Degree() != 2 {
		return nil, ErrNotPolynomial
	}
	a, b, c := p.coeffs[2], p.coeffs[1], p.coeffs[0]
	h := numDiv(b, numMul(N(2), a))
	k := numSub(c, numDiv(numMul(b, b), numMul(N(4), a)))
	inner := PowOf(AddOf(S(varName), h), N(2))
	terms := []Expr{}
	if a.IsOne() {
		terms = append(terms, inner)
	} else {
		terms = append(terms, MulOf(a, inner))
	}
	if !k.IsZero() {
		terms = append(terms, k)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return &Add{terms: terms}, nil
}
