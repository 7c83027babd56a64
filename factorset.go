package polysolve

import "sort"

// FactorSet accumulates the multiplicative factors discovered during a
// factoring pass. One fresh set is created per top-level Factor call and
// threaded by reference through the recursive helpers. The multiplicative
// identity is never stored; numeric factors fold into a single coefficient
// so a bare -1 merges into the sign instead of appearing as a factor.
type FactorSet struct {
	coeff   *Num
	factors map[string]Expr
	order   []string
	// preAdd, when set, rewrites every factor before it is recorded. The
	// factorizer uses it to substitute placeholder variables back to the
	// function subexpressions they stood in for.
	preAdd func(Expr) Expr
}

func NewFactorSet() *FactorSet {
	return &FactorSet{coeff: N(1), factors: map[string]Expr{}}
}

// SetPreAdd installs the rewrite hook applied to each added factor.
func (fs *FactorSet) SetPreAdd(f func(Expr) Expr) { fs.preAdd = f }

// Len is the number of stored non-numeric factors.
func (fs *FactorSet) Len() int { return len(fs.factors) }

// Coeff is the accumulated numeric factor.
func (fs *FactorSet) Coeff() *Num { return fs.coeff }

func factorKey(e Expr) string {
	if p, ok := e.(*Pow); ok {
		return p.base.String()
	}
	return e.String()
}

// Add records a factor. Numeric factors multiply into the coefficient.
// A factor whose canonical key already exists is multiplied onto the stored
// entry; if the product collapses to 1 the entry is removed.
func (fs *FactorSet) Add(e Expr) {
	if fs.preAdd != nil {
		e = fs.preAdd(e)
	}
	e = e.Simplify()
	if n, ok := e.(*Num); ok {
		fs.coeff = numMul(fs.coeff, n)
		return
	}
	if m, ok := e.(*Mul); ok {
		// split products so each base gets its own slot; the hook already
		// ran on the whole product, so disable it for the pieces
		hook := fs.preAdd
		fs.preAdd = nil
		for _, f := range m.factors {
			fs.Add(f)
		}
		fs.preAdd = hook
		return
	}
	key := factorKey(e)
	if prev, ok := fs.factors[key]; ok {
		merged := MulOf(prev, e)
		if n, isNum := merged.(*Num); isNum {
			fs.coeff = numMul(fs.coeff, n)
			delete(fs.factors, key)
			for i, k := range fs.order {
				if k == key {
					fs.order = append(fs.order[:i], fs.order[i+1:]...)
					break
				}
			}
			return
		}
		fs.factors[key] = merged
		return
	}
	fs.factors[key] = e
	fs.order = append(fs.order, key)
}

// AddPower records e^k.
func (fs *FactorSet) AddPower(e Expr, k int) {
	if k == 0 {
		return
	}
	fs.Add(PowOf(e, N(int64(k))))
}

// ToExpr renders the set as a single product with symbolic factors in
// canonical order and the numeric coefficient last.
func (fs *FactorSet) ToExpr() Expr {
	keys := append([]string(nil), fs.order...)
	sort.Strings(keys)
	factors := make([]Expr, 0, len(keys)+1)
	for _, k := range keys {
		factors = append(factors, fs.factors[k])
	}
	if len(factors) == 0 {
		return fs.coeff
	}
	if !fs.coeff.IsOne() {
		factors = append(factors, fs.coeff)
	}
	if len(factors) == 1 {
		return factors[0]
	}
	return &Mul{factors: factors}
}
