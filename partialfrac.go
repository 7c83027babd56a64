package polysolve

import "math/big"

// PartialFractions decomposes a rational expression in varName into a
// polynomial part plus a sum of fractions whose denominators are the powers
// of the irreducible factors of the original denominator. The unknown
// numerator coefficients are determined exactly by Gaussian elimination over
// the rationals.
func PartialFractions(e Expr, varName string) (Expr, error) {
	e = e.Simplify()
	num := Numerator(e)
	den := Denominator(e)
	if n, ok := den.Simplify().(*Num); ok {
		if n.IsZero() {
			return nil, ErrDivisionByZero
		}
		return e, nil
	}
	if varName == "" {
		vars := FreeVars(e)
		if len(vars) != 1 {
			return nil, ErrMissingVariable
		}
		varName = vars[0]
	}
	pNum, err := PolyFromExpr(Expand(num), varName)
	if err != nil {
		return nil, err
	}
	pDen, err := PolyFromExpr(Expand(den), varName)
	if err != nil {
		return nil, err
	}
	if pDen.Degree() == 0 && pDen.coeffs[0].IsZero() {
		return nil, ErrDivisionByZero
	}

	// split off the polynomial part so the fraction is proper
	quot, rem, err := pNum.Divide(pDen)
	if err != nil {
		return nil, err
	}

	coeff, bases, mults, err := denomFactors(Factor(pDen.ToExpr()), varName)
	if err != nil {
		return nil, err
	}
	if len(bases) == 0 {
		return quot.ToExpr().Simplify(), nil
	}
	// fold the numeric factor into the remainder: r/den = (r/c)/(product)
	rhs := rem.Clone().Scale(NRat(new(big.Rat).Inv(coeff.val)))

	// full product D and per-unknown cofactors D / base^j
	full := NewPoly(varName, N(1))
	for i, b := range bases {
		full = full.MulP(polyPow(b, mults[i]))
	}
	width := full.Degree()

	type unknown struct {
		cof   *Poly // cofactor polynomial multiplying this coefficient
		shift int   // power of x it carries inside its numerator
		base  int   // index into bases
		pow   int   // denominator exponent for this term
		idx   int   // coefficient position within the term's numerator
	}
	var unknowns []unknown
	for i, b := range bases {
		for j := 1; j <= mults[i]; j++ {
			cof, _, derr := full.Divide(polyPow(b, j))
			if derr != nil {
				return nil, derr
			}
			for t := 0; t < b.Degree(); t++ {
				unknowns = append(unknowns, unknown{cof: cof, shift: t, base: i, pow: j, idx: t})
			}
		}
	}
	if len(unknowns) != width {
		return nil, ErrNotPolynomial
	}

	// assemble the coefficient-matching system: row per power of x
	mat := make([][]*big.Rat, width)
	vec := make([]*big.Rat, width)
	for r := 0; r < width; r++ {
		mat[r] = make([]*big.Rat, width)
		for c, u := range unknowns {
			pos := r - u.shift
			cell := new(big.Rat)
			if pos >= 0 && pos <= u.cof.Degree() {
				cell.Set(u.cof.coeffs[pos].val)
			}
			mat[r][c] = cell
		}
		cell := new(big.Rat)
		if r <= rhs.Degree() {
			cell.Set(rhs.coeffs[r].val)
		}
		vec[r] = cell
	}
	sol, err := solveLinearRat(mat, vec)
	if err != nil {
		return nil, err
	}

	// rebuild: quotient + sum of numerator/base^pow terms
	terms := []Expr{}
	if !(quot.Degree() == 0 && quot.coeffs[0].IsZero()) {
		terms = append(terms, quot.ToExpr())
	}
	for i, b := range bases {
		for j := 1; j <= mults[i]; j++ {
			numCoeffs := make([]*Num, b.Degree())
			nonzero := false
			for c, u := range unknowns {
				if u.base == i && u.pow == j {
					numCoeffs[u.idx] = NRat(sol[c])
					if sol[c].Sign() != 0 {
						nonzero = true
					}
				}
			}
			if !nonzero {
				continue
			}
			numExpr := NewPoly(varName, numCoeffs...).ToExpr()
			terms = append(terms, MulOf(numExpr, PowOf(b.ToExpr(), N(int64(-j)))))
		}
	}
	if len(terms) == 0 {
		return N(0), nil
	}
	return AddOf(terms...).Simplify(), nil
}

// denomFactors flattens a factored denominator into base polynomials with
// multiplicities, folding numeric factors into a single coefficient.
func denomFactors(e Expr, varName string) (coeff *Num, bases []*Poly, mults []int, err error) {
	coeff = N(1)
	var walk func(f Expr, mult int) error
	walk = func(f Expr, mult int) error {
		switch v := f.(type) {
		case *Num:
			c := v
			for i := 1; i < mult; i++ {
				c = numMul(c, v)
			}
			coeff = numMul(coeff, c)
			return nil
		case *Mul:
			for _, inner := range v.factors {
				if err := walk(inner, mult); err != nil {
					return err
				}
			}
			return nil
		case *Pow:
			if en, ok := v.exp.(*Num); ok && en.IsInteger() && en.IsPositive() {
				return walk(v.base, mult*int(en.val.Num().Int64()))
			}
		}
		p, perr := PolyFromExpr(f, varName)
		if perr != nil {
			return perr
		}
		// merge repeats of the same base
		for i, b := range bases {
			if b.Equal(p) {
				mults[i] += mult
				return nil
			}
		}
		bases = append(bases, p)
		mults = append(mults, mult)
		return nil
	}
	if err = walk(e, 1); err != nil {
		return nil, nil, nil, err
	}
	return coeff, bases, mults, nil
}

// solveLinearRat solves A*x = b exactly by Gaussian elimination with partial
// pivoting over big.Rat. A singular matrix reports ErrDivisionByZero; an
// inconsistent system reports ErrInconsistentEquation.
func solveLinearRat(a [][]*big.Rat, b []*big.Rat) ([]*big.Rat, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := -1
		for r := col; r < n; r++ {
			if a[r][col].Sign() != 0 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			// zero column: singular unless the rest is trivially consistent
			for r := col; r < n; r++ {
				allZero := true
				for c := col; c < n; c++ {
					if a[r][c].Sign() != 0 {
						allZero = false
						break
					}
				}
				if allZero && b[r].Sign() != 0 {
					return nil, ErrInconsistentEquation
				}
			}
			return nil, ErrDivisionByZero
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		inv := new(big.Rat).Inv(a[col][col])
		for c := col; c < n; c++ {
			a[col][c] = new(big.Rat).Mul(a[col][c], inv)
		}
		b[col] = new(big.Rat).Mul(b[col], inv)
		for r := 0; r < n; r++ {
			if r == col || a[r][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Set(a[r][col])
			for c := col; c < n; c++ {
				a[r][c] = new(big.Rat).Sub(a[r][c], new(big.Rat).Mul(factor, a[col][c]))
			}
			b[r] = new(big.Rat).Sub(b[r], new(big.Rat).Mul(factor, b[col]))
		}
	}
	return b, nil
}
