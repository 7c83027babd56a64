package polysolve

import (
	"math/big"
	"sort"
	"strings"
)

// VarTable is the variable-to-slot index shared by every term of one
// division session. It is built once per session and must not be mutated
// afterwards; terms reference it, they never copy it.
type VarTable struct {
	names []string
	index map[string]int
}

func NewVarTable(names []string) *VarTable {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	idx := make(map[string]int, len(sorted))
	for i, n := range sorted {
		idx[n] = i
	}
	return &VarTable{names: sorted, index: idx}
}

func (t *VarTable) Len() int          { return len(t.names) }
func (t *VarTable) Names() []string   { return t.names }
func (t *VarTable) Slot(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Term is one monomial of a multivariate polynomial: a rational coefficient
// and an exponent vector indexed through the shared VarTable. The exponent
// sum and the signature string are cached; the signature is the fast
// grouping key used when merging terms during division.
type Term struct {
	coeff *Num
	exps  []*big.Rat
	table *VarTable
	sum   *big.Rat
	sig   string
}

func NewTerm(coeff *Num, exps []*big.Rat, table *VarTable) *Term {
	if len(exps) != table.Len() {
		panic("polysolve: exponent vector length does not match variable table")
	}
	t := &Term{coeff: coeff, exps: exps, table: table}
	t.refresh()
	return t
}

func zeroExps(n int) []*big.Rat {
	out := make([]*big.Rat, n)
	for i := range out {
		out[i] = new(big.Rat)
	}
	return out
}

func (t *Term) refresh() {
	sum := new(big.Rat)
	parts := make([]string, len(t.exps))
	for i, e := range t.exps {
		sum.Add(sum, e)
		parts[i] = e.RatString()
	}
	t.sum = sum
	t.sig = strings.Join(parts, ",")
}

func (t *Term) Coeff() *Num        { return t.coeff }
func (t *Term) Exponent(i int) *big.Rat { return t.exps[i] }
func (t *Term) Signature() string  { return t.sig }
func (t *Term) TotalDegree() *big.Rat { return t.sum }

func (t *Term) Clone() *Term {
	exps := make([]*big.Rat, len(t.exps))
	for i, e := range t.exps {
		exps[i] = new(big.Rat).Set(e)
	}
	return NewTerm(NRat(t.coeff.val), exps, t.table)
}

// DivideTerm divides coefficientwise and subtracts exponent vectors.
func (t *Term) DivideTerm(o *Term) *Term {
	exps := make([]*big.Rat, len(t.exps))
	for i := range t.exps {
		exps[i] = new(big.Rat).Sub(t.exps[i], o.exps[i])
	}
	return NewTerm(numDiv(t.coeff, o.coeff), exps, t.table)
}

// MulTerm multiplies coefficients and adds exponent vectors.
func (t *Term) MulTerm(o *Term) *Term {
	exps := make([]*big.Rat, len(t.exps))
	for i := range t.exps {
		exps[i] = new(big.Rat).Add(t.exps[i], o.exps[i])
	}
	return NewTerm(numMul(t.coeff, o.coeff), exps, t.table)
}

// IsLarger reports whether every exponent of t is >= the matching exponent
// of o, i.e. t is divisible by o as a monomial.
func (t *Term) IsLarger(o *Term) bool {
	for i := range t.exps {
		if t.exps[i].Cmp(o.exps[i]) < 0 {
			return false
		}
	}
	return true
}

// ToExpr renders the term back into an expression tree.
func (t *Term) ToExpr() Expr {
	factors := []Expr{t.coeff}
	for i, e := range t.exps {
		if e.Sign() == 0 {
			continue
		}
		factors = append(factors, PowOf(S(t.table.names[i]), NRat(e)))
	}
	return MulOf(factors...)
}

// termsFromExpr converts an expanded expression into a term list over the
// shared table. Fails with ErrNotPolynomial for atoms that are not rational
// powers of table variables.
func termsFromExpr(e Expr, table *VarTable) ([]*Term, error) {
	e = Expand(e)
	var out []*Term
	addends := []Expr{e}
	if a, ok := e.(*Add); ok {
		addends = a.terms
	}
	for _, t := range addends {
		term, err := termOf(t, table)
		if err != nil {
			return nil, err
		}
		out = append(out, term)
	}
	return mergeTerms(out), nil
}

func termOf(e Expr, table *VarTable) (*Term, error) {
	coeff := N(1)
	exps := zeroExps(table.Len())
	var apply func(f Expr) error
	apply = func(f Expr) error {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Sym:
			i, ok := table.Slot(v.name)
			if !ok {
				return ErrNotPolynomial
			}
			exps[i].Add(exps[i], ratOne)
		case *Pow:
			sym, ok := v.base.(*Sym)
			if !ok {
				return ErrNotPolynomial
			}
			en, ok := v.exp.(*Num)
			if !ok {
				return ErrNotPolynomial
			}
			i, ok := table.Slot(sym.name)
			if !ok {
				return ErrNotPolynomial
			}
			exps[i].Add(exps[i], en.val)
		case *Mul:
			for _, inner := range v.factors {
				if err := apply(inner); err != nil {
					return err
				}
			}
		default:
			return ErrNotPolynomial
		}
		return nil
	}
	if err := apply(e); err != nil {
		return nil, err
	}
	return NewTerm(coeff, exps, table), nil
}

// mergeTerms folds terms with equal signatures, dropping zero results.
func mergeTerms(terms []*Term) []*Term {
	seen := map[string]*Term{}
	order := []string{}
	for _, t := range terms {
		if prev, ok := seen[t.sig]; ok {
			prev.coeff = numAdd(prev.coeff, t.coeff)
		} else {
			seen[t.sig] = t
			order = append(order, t.sig)
		}
	}
	out := make([]*Term, 0, len(order))
	for _, sig := range order {
		if !seen[sig].coeff.IsZero() {
			out = append(out, seen[sig])
		}
	}
	return out
}

// leadingSlot picks the variable slot that orders the division. Preference:
// a slot where one term holds a uniquely-largest exponent; ties broken by
// the largest gap between the top two exponents; final fallback is slot 0.
// This is a heuristic with no termination proof; the division loop carries
// an iteration cap for exactly that reason.
func leadingSlot(terms []*Term, width int) int {
	best := -1
	bestGap := new(big.Rat)
	bestUnique := false
	for j := 0; j < width; j++ {
		var max1, max2 *big.Rat
		count := 0
		for _, t := range terms {
			e := t.exps[j]
			if max1 == nil || e.Cmp(max1) > 0 {
				max2 = max1
				max1 = e
				count = 1
			} else if e.Cmp(max1) == 0 {
				count++
			} else if max2 == nil || e.Cmp(max2) > 0 {
				max2 = e
			}
		}
		if max1 == nil || max1.Sign() == 0 {
			continue
		}
		gap := new(big.Rat).Set(max1)
		if max2 != nil {
			gap.Sub(max1, max2)
		}
		unique := count == 1
		switch {
		case unique && !bestUnique:
			best, bestGap, bestUnique = j, gap, true
		case unique == bestUnique && gap.Cmp(bestGap) > 0:
			best, bestGap = j, gap
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// sortTermsBySlot orders terms descending by exponent in the chosen slot,
// with total degree as a stable secondary key.
func sortTermsBySlot(terms []*Term, slot int) {
	sort.SliceStable(terms, func(i, j int) bool {
		c := terms[i].exps[slot].Cmp(terms[j].exps[slot])
		if c != 0 {
			return c > 0
		}
		return terms[i].sum.Cmp(terms[j].sum) > 0
	})
}

// termsToExpr renders a term list back to an expression.
func termsToExpr(terms []*Term) Expr {
	if len(terms) == 0 {
		return N(0)
	}
	out := make([]Expr, len(terms))
	for i, t := range terms {
		out[i] = t.ToExpr()
	}
	return AddOf(out...)
}
