package polysolve

import "math/big"

// Rational helpers over math/big.Rat. Every coefficient in the engine is an
// exact rational; floats appear only in the numeric root-finding paths.

var (
	ratOne    = new(big.Rat).SetInt64(1)
	ratNegOne = new(big.Rat).SetInt64(-1)
)

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numAbs(a *Num) *Num    { return &Num{val: new(big.Rat).Abs(a.val)} }
func numCmp(a, b *Num) int  { return a.val.Cmp(b.val) }

func numDiv(a, b *Num) *Num {
	if b.IsZero() {
		panic("polysolve: division by zero")
	}
	return &Num{val: new(big.Rat).Quo(a.val, b.val)}
}

// numMod returns a mod b for integer-valued rationals, following the sign of b.
func numMod(a, b *Num) *Num {
	if !a.IsInteger() || !b.IsInteger() {
		q := new(big.Rat).Quo(a.val, b.val)
		fl := ratFloor(q)
		return numSub(a, &Num{val: new(big.Rat).Mul(b.val, fl)})
	}
	m := new(big.Int).Mod(a.val.Num(), b.val.Num())
	return &Num{val: new(big.Rat).SetInt(m)}
}

func ratFloor(r *big.Rat) *big.Rat {
	q := new(big.Int).Quo(r.Num(), r.Denom())
	if r.Sign() < 0 && !r.IsInt() {
		q.Sub(q, big.NewInt(1))
	}
	return new(big.Rat).SetInt(q)
}

// ratPowInt raises r to an integer power by repeated squaring.
func ratPowInt(r *big.Rat, e int64) *big.Rat {
	neg := e < 0
	if neg {
		e = -e
	}
	result := new(big.Rat).SetInt64(1)
	base := new(big.Rat).Set(r)
	for e > 0 {
		if e&1 == 1 {
			result.Mul(result, base)
		}
		base.Mul(base, base)
		e >>= 1
	}
	if neg {
		result.Inv(result)
	}
	return result
}

// intGCD is the non-negative gcd of two big integers.
func intGCD(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
}

// ratGCD extends gcd to rationals: gcd of numerators over lcm of
// denominators, so that both inputs are integer multiples of the result.
func ratGCD(a, b *big.Rat) *big.Rat {
	if a.Sign() == 0 {
		return new(big.Rat).Abs(b)
	}
	if b.Sign() == 0 {
		return new(big.Rat).Abs(a)
	}
	num := intGCD(a.Num(), b.Num())
	g := intGCD(a.Denom(), b.Denom())
	lcm := new(big.Int).Div(new(big.Int).Mul(a.Denom(), b.Denom()), g)
	return new(big.Rat).SetFrac(num, lcm)
}

// numGCDAll folds ratGCD across a coefficient list.
func numGCDAll(nums []*Num) *Num {
	g := new(big.Rat)
	for _, n := range nums {
		g = ratGCD(g, n.val)
	}
	return &Num{val: g}
}

// divisorsOf returns the positive divisors of |n| in ascending order.
// Intended for the rational-root search, so n is expected to be modest.
func divisorsOf(n *big.Int) []*big.Int {
	abs := new(big.Int).Abs(n)
	if abs.Sign() == 0 {
		return nil
	}
	var out []*big.Int
	one := big.NewInt(1)
	// candidates past this bound are not worth the trial divisions
	limit := big.NewInt(1 << 20)
	for d := new(big.Int).Set(one); ; d.Add(d, one) {
		sq := new(big.Int).Mul(d, d)
		if sq.Cmp(abs) > 0 || d.Cmp(limit) > 0 {
			break
		}
		if new(big.Int).Mod(abs, d).Sign() == 0 {
			out = append(out, new(big.Int).Set(d))
			q := new(big.Int).Div(abs, d)
			if q.Cmp(d) != 0 {
				out = append(out, q)
			}
		}
		if len(out) > 512 {
			break
		}
	}
	sortBigInts(out)
	return out
}

func sortBigInts(xs []*big.Int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j].Cmp(xs[j-1]) < 0; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
