// Package polysolve is an exact-arithmetic polynomial and rational-expression
// algebra engine: expressions are typed trees over big.Rat coefficients, and
// the package implements factorization, polynomial GCD/LCM, division with
// remainder, partial fractions, and equation solving (closed form through
// degree 4, numeric root finding above).
package polysolve

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// Expr is the expression tree. Concrete nodes are *Num, *Sym, *Add, *Mul,
// *Pow and *Call. Nodes are immutable; constructors return pre-simplified
// values, so sharing subtrees between expressions is safe.
type Expr interface {
	Simplify() Expr
	String() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num — exact rational constant
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func Frac(p, q int64) *Num {
	if q == 0 {
		panic("polysolve: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }
func NRat(r *big.Rat) *Num  { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(ratNegOne) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

// ============================================================
// Sym — symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) Name() string   { return s.name }
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// SubOf builds a - b.
func SubOf(a, b Expr) Expr { return AddOf(a, MulOf(N(-1), b)) }

// NegOf builds -a.
func NegOf(a Expr) Expr { return MulOf(N(-1), a) }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	// Collect like terms keyed by the canonical text of the non-numeric part.
	coeffs := map[string]*Num{}
	bodies := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, body := splitCoeff(t)
		key := body.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			bodies[key] = body
		}
		coeffs[key] = numAdd(coeffs[key], coeff)
	}
	sort.Strings(order)
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		if c.IsOne() {
			result = append(result, bodies[key])
		} else {
			result = append(result, MulOf(c, bodies[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// splitCoeff separates a leading numeric coefficient from the rest of a term.
func splitCoeff(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if c, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return c, rest[0]
			}
			return c, &Mul{factors: rest}
		}
	}
	return N(1), e
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// DivOf builds a / b as a * b^-1.
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	// Merge repeated bases into powers: x * x^2 -> x^3.
	baseExp := map[string]Expr{}
	baseOf := map[string]Expr{}
	order := []string{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		if _, seen := baseExp[key]; !seen {
			order = append(order, key)
			baseExp[key] = N(0)
			baseOf[key] = base
		}
		baseExp[key] = AddOf(baseExp[key], exp)
	}
	if coeff.IsZero() {
		return N(0)
	}
	others := make([]Expr, 0, len(order))
	for _, key := range order {
		f := PowOf(baseOf[key], baseExp[key])
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		others = append(others, f)
	}
	if len(others) == 0 {
		return coeff
	}
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
	}
	if bn, ok := base.(*Num); ok {
		if bn.IsZero() {
			if en, ok2 := exp.(*Num); ok2 && (en.IsZero() || en.IsNegative()) {
				// 0^0 and 0^negative stay unevaluated.
				return &Pow{base: base, exp: exp}
			}
			return N(0)
		}
		if bn.IsOne() {
			return N(1)
		}
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			e := en.val.Num().Int64()
			if e >= -24 && e <= 24 {
				return NRat(ratPowInt(bn.val, e))
			}
		}
	}
	if inner, ok := base.(*Pow); ok {
		if _, numExp := exp.(*Num); numExp {
			return PowOf(inner.base, MulOf(inner.exp, exp))
		}
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	switch p.base.(type) {
	case *Add, *Mul:
		baseStr = "(" + baseStr + ")"
	case *Num:
		if n := p.base.(*Num); n.IsNegative() || !n.IsInteger() {
			baseStr = "(" + baseStr + ")"
		}
	}
	expStr := p.exp.String()
	switch p.exp.(type) {
	case *Add, *Mul:
		expStr = "(" + expStr + ")"
	case *Num:
		if n := p.exp.(*Num); n.IsNegative() || !n.IsInteger() {
			expStr = "(" + expStr + ")"
		}
	}
	return baseStr + "^" + expStr
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if _, expIsNum := p.exp.(*Num); expIsNum {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if _, baseIsNum := p.base.(*Num); baseIsNum {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if e.IsInteger() {
		k := e.val.Num().Int64()
		if k >= -64 && k <= 64 && !(b.IsZero() && k <= 0) {
			return NRat(ratPowInt(b.val, k)), true
		}
	}
	pf := math.Pow(b.Float64(), e.Float64())
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return nil, false
	}
	return NFloat(pf), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }

// ============================================================
// Call — named function application
// ============================================================

type Call struct {
	name string
	arg  Expr
}

func callOf(name string, arg Expr) *Call { return &Call{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return callOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return callOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return callOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return callOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr   { return callOf("log", arg).Simplify() }
func AbsOf(arg Expr) Expr  { return callOf("abs", arg).Simplify() }
func SqrtOf(arg Expr) Expr { return PowOf(arg, Frac(1, 2)) }
func FnOf(name string, arg Expr) Expr {
	return callOf(name, arg).Simplify()
}

func (c *Call) Simplify() Expr {
	arg := c.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		switch c.name {
		case "sin":
			if n.IsZero() {
				return N(0)
			}
		case "cos":
			if n.IsZero() {
				return N(1)
			}
		case "tan":
			if n.IsZero() {
				return N(0)
			}
		case "exp":
			if n.IsZero() {
				return N(1)
			}
		case "log":
			if n.IsOne() {
				return N(0)
			}
		case "abs":
			return NRat(new(big.Rat).Abs(n.val))
		}
	}
	if inner, ok := arg.(*Call); ok {
		if c.name == "log" && inner.name == "exp" {
			return inner.arg
		}
		if c.name == "exp" && inner.name == "log" {
			return inner.arg
		}
	}
	if c.name == "abs" {
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 1 {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegative() {
				rest := append([]Expr{NRat(new(big.Rat).Abs(coeff.val))}, m.factors[1:]...)
				return AbsOf(MulOf(rest...))
			}
		}
	}
	return &Call{name: c.name, arg: arg}
}

func (c *Call) String() string { return c.name + "(" + c.arg.String() + ")" }

func (c *Call) Sub(varName string, value Expr) Expr {
	return callOf(c.name, c.arg.Sub(varName, value)).Simplify()
}

func (c *Call) Diff(varName string) Expr {
	du := c.arg.Diff(varName)
	var outer Expr
	switch c.name {
	case "sin":
		outer = CosOf(c.arg)
	case "cos":
		outer = NegOf(SinOf(c.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(c.arg), N(2)))
	case "exp":
		outer = ExpOf(c.arg)
	case "log":
		outer = PowOf(c.arg, N(-1))
	case "abs":
		outer = FnOf("sign", c.arg)
	default:
		return MulOf(callOf("D["+c.name+"]", c.arg), du)
	}
	return MulOf(outer, du).Simplify()
}

func (c *Call) Eval() (*Num, bool) {
	n, ok := c.arg.Eval()
	if !ok {
		return nil, false
	}
	v := n.Float64()
	var out float64
	switch c.name {
	case "sin":
		out = math.Sin(v)
	case "cos":
		out = math.Cos(v)
	case "tan":
		out = math.Tan(v)
	case "exp":
		out = math.Exp(v)
	case "log":
		out = math.Log(v)
	case "abs":
		out = math.Abs(v)
	case "sqrt":
		out = math.Sqrt(v)
	case "sign":
		switch {
		case v > 0:
			out = 1
		case v < 0:
			out = -1
		}
	default:
		return nil, false
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return nil, false
	}
	return NFloat(out), true
}

func (c *Call) Equal(other Expr) bool {
	o, ok := other.(*Call)
	return ok && c.name == o.name && c.arg.Equal(o.arg)
}

func (c *Call) exprType() string { return "call" }
func (c *Call) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "call", "name": c.name, "arg": c.arg.toJSON()}
}
func (c *Call) FuncName() string { return c.name }
func (c *Call) Arg() Expr        { return c.arg }

// ============================================================
// Whole-tree helpers
// ============================================================

func SimplifyExpr(e Expr) Expr { return e.Simplify() }

// Expand distributes products over sums and unrolls small integer powers.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return expandExpr(AddOf(terms...))
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			exp := n.val.Num().Int64()
			if exp >= 2 && exp <= 16 {
				if base, isAdd := expandExpr(v.base).(*Add); isAdd {
					// Multiply out term by term. Handing the whole sum to
					// MulOf would merge the identical factors straight back
					// into this power.
					result := Expr(base)
					for i := int64(1); i < exp; i++ {
						result = distribute(result, base)
					}
					return result
				}
			}
		}
		return PowOf(expandExpr(v.base), expandExpr(v.exp))
	}
	return e
}

// distribute multiplies two expanded expressions pairwise across their terms.
func distribute(a, b Expr) Expr {
	at, bt := []Expr{a}, []Expr{b}
	if aa, ok := a.(*Add); ok {
		at = aa.terms
	}
	if ba, ok := b.(*Add); ok {
		bt = ba.terms
	}
	prods := make([]Expr, 0, len(at)*len(bt))
	for _, x := range at {
		for _, y := range bt {
			prods = append(prods, MulOf(x, y))
		}
	}
	return AddOf(prods...)
}

// FreeVars returns the sorted free variable names of e.
func FreeVars(e Expr) []string {
	set := map[string]struct{}{}
	collectVars(e, set)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func collectVars(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectVars(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectVars(f, out)
		}
	case *Pow:
		collectVars(v.base, out)
		collectVars(v.exp, out)
	case *Call:
		collectVars(v.arg, out)
	}
}

// Contains reports whether varName occurs anywhere in e.
func Contains(e Expr, varName string) bool {
	set := map[string]struct{}{}
	collectVars(e, set)
	_, ok := set[varName]
	return ok
}

// Numerator and Denominator split an expression into its fraction parts.
// Factors carrying a negative numeric exponent form the denominator.
func Numerator(e Expr) Expr {
	n, _ := splitFraction(e)
	return n
}

func Denominator(e Expr) Expr {
	_, d := splitFraction(e)
	return d
}

func splitFraction(e Expr) (num, denom Expr) {
	factors := []Expr{e}
	if m, ok := e.(*Mul); ok {
		factors = m.factors
	}
	var numFs, denFs []Expr
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if en, ok2 := p.exp.(*Num); ok2 && en.IsNegative() {
				denFs = append(denFs, PowOf(p.base, NRat(new(big.Rat).Neg(en.val))))
				continue
			}
		}
		if c, ok := f.(*Num); ok && !c.val.IsInt() {
			numFs = append(numFs, NRat(new(big.Rat).SetInt(c.val.Num())))
			denFs = append(denFs, NRat(new(big.Rat).SetInt(c.val.Denom())))
			continue
		}
		numFs = append(numFs, f)
	}
	switch len(numFs) {
	case 0:
		num = N(1)
	case 1:
		num = numFs[0]
	default:
		num = MulOf(numFs...)
	}
	switch len(denFs) {
	case 0:
		denom = N(1)
	case 1:
		denom = denFs[0]
	default:
		denom = MulOf(denFs...)
	}
	return num, denom
}

// DegreeOf returns the degree of e viewed as a polynomial in varName.
// Non-polynomial subtrees contribute degree 0.
func DegreeOf(e Expr, varName string) int {
	switch v := e.(type) {
	case *Sym:
		if v.name == varName {
			return 1
		}
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == varName {
			if n, ok2 := v.exp.(*Num); ok2 && n.IsInteger() && n.IsPositive() {
				return int(n.val.Num().Int64())
			}
		}
	case *Add:
		maxDeg := 0
		for _, t := range v.terms {
			if d := DegreeOf(t, varName); d > maxDeg {
				maxDeg = d
			}
		}
		return maxDeg
	case *Mul:
		total := 0
		for _, f := range v.factors {
			total += DegreeOf(f, varName)
		}
		return total
	}
	return 0
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(new(big.Rat).SetInt64(v)) == 0
}
