package polysolve

import "math"

// jenkinsTraub finds all zeros of a real-coefficient polynomial given in
// descending order. It is the classic three-stage shift algorithm: a few
// no-shift steps to separate small zeros, fixed-shift stages at rotating
// angles to pick a convergence direction, then variable-shift iteration to
// polish either a real zero or a conjugate quadratic pair, deflating after
// each success.
func jenkinsTraub(coeffs []float64) ([]complex128, error) {
	degree := len(coeffs) - 1
	if degree > 100 {
		return nil, ErrDegreeTooLarge
	}
	for degree > 0 && coeffs[0] == 0 {
		coeffs = coeffs[1:]
		degree--
	}
	if degree < 1 {
		return nil, nil
	}

	st := newJTState(degree)
	copy(st.p, coeffs)
	zeros := make([]complex128, 0, degree)

	// zeros at the origin deflate immediately
	for st.n > 0 && st.p[st.n] == 0 {
		zeros = append(zeros, 0)
		st.n--
	}

	for st.n > 2 {
		if !st.scale() {
			return zeros, ErrNoConvergence
		}
		bnd := st.cauchyBound()
		st.noShift(5)

		saved := make([]float64, st.n)
		copy(saved, st.k[:st.n])

		found := false
		for cnt := 1; cnt <= 20; cnt++ {
			// rotate the shift direction by 94 degrees each attempt so
			// repeated failures never reuse an unlucky angle
			xxx := st.cosr*st.xx - st.sinr*st.yy
			st.yy = st.sinr*st.xx + st.cosr*st.yy
			st.xx = xxx
			st.sr = bnd * st.xx
			st.si = bnd * st.yy
			st.u = -2.0 * st.sr
			st.v = bnd
			nz := st.fxshfr(20 * cnt)
			if nz != 0 {
				zeros = append(zeros, complex(st.szr, st.szi))
				if nz == 2 {
					zeros = append(zeros, complex(st.lzr, st.lzi))
				}
				st.n -= nz
				copy(st.p, st.qp[:st.n+1])
				found = true
				break
			}
			copy(st.k[:st.n], saved)
		}
		if !found {
			return zeros, ErrNoConvergence
		}
	}

	switch st.n {
	case 1:
		zeros = append(zeros, complex(-st.p[1]/st.p[0], 0))
	case 2:
		sr, si, lr, li := quadRoots(st.p[0], st.p[1], st.p[2])
		zeros = append(zeros, complex(sr, si), complex(lr, li))
	}
	return zeros, nil
}

type jtState struct {
	p, qp, k, qk []float64

	sr, si, u, v           float64
	a, b, c, d             float64
	a1, a3, a7, e, f, g, h float64
	szr, szi, lzr, lzi     float64

	eta, are, mre float64
	xx, yy        float64
	cosr, sinr    float64

	n int
}

func newJTState(degree int) *jtState {
	// machine precision measured at runtime rather than assumed
	eta := 1.0
	for 1.0+eta/2 > 1.0 {
		eta /= 2
	}
	rot := 94.0 * math.Pi / 180.0
	return &jtState{
		p:    make([]float64, degree+1),
		qp:   make([]float64, degree+1),
		k:    make([]float64, degree+1),
		qk:   make([]float64, degree+1),
		eta:  eta,
		are:  eta,
		mre:  eta,
		xx:   math.Sqrt(0.5),
		yy:   -math.Sqrt(0.5),
		cosr: math.Cos(rot),
		sinr: math.Sin(rot),
		n:    degree,
	}
}

// scale rescales the coefficients by a power of two when their spread risks
// overflow or underflow. Powers of two keep the scaling exact.
func (st *jtState) scale() bool {
	infin := math.MaxFloat64
	smalno := math.SmallestNonzeroFloat64
	lo := smalno / st.eta

	max, min := 0.0, infin
	for i := 0; i <= st.n; i++ {
		x := math.Abs(st.p[i])
		if x > max {
			max = x
		}
		if x != 0 && x < min {
			min = x
		}
	}
	if max == 0 {
		return false
	}
	sc := lo / min
	if (sc <= 1.0 && max < 10) || (sc > 1.0 && infin/sc < max) {
		return true
	}
	if sc == 0 {
		sc = smalno
	}
	l := int(math.Log(sc)/math.Ln2 + 0.5)
	factor := math.Pow(2, float64(l))
	if factor != 1.0 {
		for i := 0; i <= st.n; i++ {
			st.p[i] *= factor
		}
	}
	return true
}

// cauchyBound computes a lower bound on the moduli of the zeros, used as the
// shift magnitude. Newton iteration on the absolute-value polynomial.
func (st *jtState) cauchyBound() float64 {
	n := st.n
	pt := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		pt[i] = math.Abs(st.p[i])
	}
	pt[n] = -pt[n]

	x := math.Exp((math.Log(-pt[n]) - math.Log(pt[0])) / float64(n))
	if pt[n-1] != 0 {
		if xm := -pt[n] / pt[n-1]; xm < x {
			x = xm
		}
	}
	for {
		xm := x * 0.1
		ff := pt[0]
		for i := 1; i <= n; i++ {
			ff = ff*xm + pt[i]
		}
		if ff <= 0 {
			break
		}
		x = xm
	}
	dx := x
	for math.Abs(dx/x) > 0.005 {
		ff := pt[0]
		df := ff
		for i := 1; i < n; i++ {
			ff = ff*x + pt[i]
			df = df*x + ff
		}
		ff = ff*x + pt[n]
		dx = ff / df
		x -= dx
	}
	return x
}

// noShift runs the stage-one iterations: K polynomials computed with no
// shift to accentuate the smallest zeros.
func (st *jtState) noShift(steps int) {
	n := st.n
	nm1 := n - 1
	for i := 1; i < n; i++ {
		st.k[i] = float64(n-i) * st.p[i] / float64(n)
	}
	st.k[0] = st.p[0]
	aa := st.p[n]
	bb := st.p[n-1]
	zerok := st.k[n-1] == 0
	for jj := 0; jj < steps; jj++ {
		if !zerok {
			cc := st.k[n-1]
			t := -aa / cc
			for i := 0; i < nm1; i++ {
				j := n - 1 - i
				st.k[j] = t*st.k[j-1] + st.p[j]
			}
			st.k[0] = st.p[0]
			zerok = math.Abs(st.k[n-1]) <= math.Abs(bb)*st.eta*10.0
		} else {
			for i := 0; i < nm1; i++ {
				j := n - 1 - i
				st.k[j] = st.k[j-1]
			}
			st.k[0] = 0
			zerok = st.k[n-1] == 0
		}
	}
}

// fxshfr runs up to l2 stage-two steps at the current fixed shift, watching
// the t and v sequences for convergence. When either settles it hands off to
// the matching stage-three iteration. Returns the number of zeros found.
func (st *jtState) fxshfr(l2 int) int {
	n := st.n
	betav, betas := 0.25, 0.25
	oss, ovv := st.sr, st.v
	var ots, otv float64

	st.a, st.b = quadSynDiv(n, st.u, st.v, st.p, st.qp)
	typ := st.calcSC()
	for j := 0; j < l2; j++ {
		st.nextK(typ)
		typ = st.calcSC()
		ui, vi := st.newEst(typ)
		vv := vi
		ss := 0.0
		if st.k[n-1] != 0 {
			ss = -st.p[n] / st.k[n-1]
		}
		tv, ts := 1.0, 1.0
		if j != 0 && typ != 3 {
			if vv != 0 {
				tv = math.Abs((vv - ovv) / vv)
			}
			if ss != 0 {
				ts = math.Abs((ss - oss) / ss)
			}
		}
		tvv := 1.0
		if tv < otv {
			tvv = tv * otv
		}
		tss := 1.0
		if ts < ots {
			tss = ts * ots
		}
		vpass := tvv < betav
		spass := tss < betas
		if spass || vpass {
			// save state so a failed stage three can resume stage two
			svu, svv := st.u, st.v
			svk := make([]float64, n)
			copy(svk, st.k[:n])
			s := ss

			vtry, stry := false, false
			tryQuad := !(spass && (!vpass || tss < tvv))
			for {
				if tryQuad {
					if nz := st.quadIt(ui, vi); nz > 0 {
						return nz
					}
					vtry = true
					betav *= 0.25
					if stry || !spass {
						break
					}
					copy(st.k[:n], svk)
				}
				nz, iflag := st.realIt(&s)
				if nz > 0 {
					return nz
				}
				stry = true
				betas *= 0.25
				if iflag == 0 {
					break
				}
				// a real cluster was hit; retry as a quadratic near it
				ui = -(s + s)
				vi = s * s
				tryQuad = true
			}
			st.u, st.v = svu, svv
			copy(st.k[:n], svk)
			if vpass && !vtry {
				if nz := st.quadIt(ui, vi); nz > 0 {
					return nz
				}
			}
			st.a, st.b = quadSynDiv(n, st.u, st.v, st.p, st.qp)
			typ = st.calcSC()
		}
		ovv, oss, otv, ots = vv, ss, tv, ts
	}
	return 0
}

// quadIt is the stage-three variable-shift iteration for a quadratic factor.
func (st *jtState) quadIt(uu, vv float64) int {
	n := st.n
	tried := false
	st.u, st.v = uu, vv
	j := 0
	var omp, relstp float64
	for {
		st.szr, st.szi, st.lzr, st.lzi = quadRoots(1.0, st.u, st.v)
		// give up if the quadratic's roots separated; a real iteration
		// will find them individually
		if math.Abs(math.Abs(st.szr)-math.Abs(st.lzr)) > 0.01*math.Abs(st.lzr) {
			return 0
		}
		st.a, st.b = quadSynDiv(n, st.u, st.v, st.p, st.qp)
		mp := math.Abs(st.a-st.szr*st.b) + math.Abs(st.szi*st.b)
		// rounding-error bound on the evaluation
		zm := math.Sqrt(math.Abs(st.v))
		ee := 2.0 * math.Abs(st.qp[0])
		t := -st.szr * st.b
		for i := 1; i < n; i++ {
			ee = ee*zm + math.Abs(st.qp[i])
		}
		ee = ee*zm + math.Abs(st.a+t)
		ee = (5.0*st.mre+4.0*st.are)*ee -
			(5.0*st.mre+2.0*st.are)*(math.Abs(st.a+t)+math.Abs(st.b)*zm) +
			2.0*st.are*math.Abs(t)
		if mp <= 20.0*ee {
			return 2
		}
		j++
		if j > 20 {
			return 0
		}
		if j >= 2 && relstp <= 0.01 && mp >= omp && !tried {
			// stalled on a cluster: perturb u,v and take five fixed-shift
			// steps before resuming
			if relstp < st.eta {
				relstp = st.eta
			}
			relstp = math.Sqrt(relstp)
			st.u -= st.u * relstp
			st.v += st.v * relstp
			st.a, st.b = quadSynDiv(n, st.u, st.v, st.p, st.qp)
			for i := 0; i < 5; i++ {
				typ := st.calcSC()
				st.nextK(typ)
			}
			tried = true
			j = 0
		}
		omp = mp
		typ := st.calcSC()
		st.nextK(typ)
		typ = st.calcSC()
		ui, vi := st.newEst(typ)
		if vi == 0 {
			return 0
		}
		relstp = math.Abs((vi - st.v) / vi)
		st.u, st.v = ui, vi
	}
}

// realIt is the stage-three variable-shift iteration for a single real zero.
// iflag 1 signals a real-axis cluster; the caller retries as a quadratic.
func (st *jtState) realIt(sss *float64) (nz, iflag int) {
	n := st.n
	s := *sss
	j := 0
	var t, omp float64
	for {
		pv := st.p[0]
		st.qp[0] = pv
		for i := 1; i <= n; i++ {
			pv = pv*s + st.p[i]
			st.qp[i] = pv
		}
		mp := math.Abs(pv)
		ms := math.Abs(s)
		ee := (st.mre / (st.are + st.mre)) * math.Abs(st.qp[0])
		for i := 1; i <= n; i++ {
			ee = ee*ms + math.Abs(st.qp[i])
		}
		if mp <= 20.0*((st.are+st.mre)*ee-st.mre*mp) {
			st.szr, st.szi = s, 0
			return 1, 0
		}
		j++
		if j > 10 {
			return 0, 0
		}
		if j >= 2 && math.Abs(t) <= 0.001*math.Abs(s-t) && mp > omp {
			*sss = s
			return 0, 1
		}
		omp = mp
		kv := st.k[0]
		st.qk[0] = kv
		for i := 1; i < n; i++ {
			kv = kv*s + st.k[i]
			st.qk[i] = kv
		}
		if math.Abs(kv) > math.Abs(st.k[n-1])*10.0*st.eta {
			t = -pv / kv
			st.k[0] = st.qp[0]
			for i := 1; i < n; i++ {
				st.k[i] = t*st.qk[i-1] + st.qp[i]
			}
		} else {
			st.k[0] = 0
			for i := 1; i < n; i++ {
				st.k[i] = st.qk[i-1]
			}
		}
		kv = st.k[0]
		for i := 1; i < n; i++ {
			kv = kv*s + st.k[i]
		}
		t = 0
		if math.Abs(kv) > math.Abs(st.k[n-1])*10.0*st.eta {
			t = -pv / kv
		}
		s += t
	}
}

// calcSC computes the scalar recurrence quantities. Type 3 means the current
// quadratic nearly divides K and the estimates are unusable.
func (st *jtState) calcSC() int {
	n := st.n
	st.c, st.d = quadSynDiv(n-1, st.u, st.v, st.k, st.qk)
	if math.Abs(st.c) <= math.Abs(st.k[n-1])*100.0*st.eta &&
		math.Abs(st.d) <= math.Abs(st.k[n-2])*100.0*st.eta {
		return 3
	}
	if math.Abs(st.d) >= math.Abs(st.c) {
		// divide by d
		st.e = st.a / st.d
		st.f = st.c / st.d
		st.g = st.u * st.b
		st.h = st.v * st.b
		st.a3 = (st.a+st.g)*st.e + st.h*(st.b/st.d)
		st.a1 = st.b*st.f - st.a
		st.a7 = (st.f+st.u)*st.a + st.h
		return 2
	}
	// divide by c
	st.e = st.a / st.c
	st.f = st.d / st.c
	st.g = st.u * st.e
	st.h = st.v * st.b
	st.a3 = st.a*st.e + (st.h/st.c+st.g)*st.b
	st.a1 = st.b - st.a*(st.d/st.c)
	st.a7 = st.a + st.g*st.d + st.h*st.f
	return 1
}

// nextK computes the next K polynomial using the scalars from calcSC.
func (st *jtState) nextK(typ int) {
	n := st.n
	if typ == 3 {
		st.k[0] = 0
		st.k[1] = 0
		for i := 2; i < n; i++ {
			st.k[i] = st.qk[i-2]
		}
		return
	}
	temp := st.a
	if typ == 1 {
		temp = st.b
	}
	if math.Abs(st.a1) <= math.Abs(temp)*st.eta*10.0 {
		// a1 nearly zero forces the unscaled recurrence
		st.k[0] = 0
		st.k[1] = -st.a7 * st.qp[0]
		for i := 2; i < n; i++ {
			st.k[i] = st.a3*st.qk[i-2] - st.a7*st.qp[i-1]
		}
		return
	}
	st.a7 /= st.a1
	st.a3 /= st.a1
	st.k[0] = st.qp[0]
	st.k[1] = st.qp[1] - st.a7*st.qp[0]
	for i := 2; i < n; i++ {
		st.k[i] = st.a3*st.qk[i-2] - st.a7*st.qp[i-1] + st.qp[i]
	}
}

// newEst computes refined u,v estimates for the quadratic factor.
func (st *jtState) newEst(typ int) (uu, vv float64) {
	if typ == 3 {
		return 0, 0
	}
	n := st.n
	var a4, a5 float64
	if typ == 2 {
		a4 = (st.a+st.g)*st.f + st.h
		a5 = (st.f+st.u)*st.c + st.v*st.d
	} else {
		a4 = st.a + st.u*st.b + st.h*st.f
		a5 = st.c + (st.u+st.v*st.f)*st.d
	}
	b1 := -st.k[n-1] / st.p[n]
	b2 := -(st.k[n-2] + b1*st.p[n-1]) / st.p[n]
	c1 := st.v * b2 * st.a1
	c2 := b1 * st.a7
	c3 := b1 * b1 * st.a3
	c4 := c1 - c2 - c3
	temp := a5 + b1*a4 - c4
	if temp == 0 {
		return 0, 0
	}
	uu = st.u - (st.u*(c3+c2)+st.v*(b1*st.a1+b2*st.a7))/temp
	vv = st.v * (1.0 + c4/temp)
	return uu, vv
}

// quadSynDiv divides p (degree nn) by the quadratic x^2 + u*x + v and writes
// the quotient into q. The last two values computed are the remainder pair.
func quadSynDiv(nn int, u, v float64, p, q []float64) (a, b float64) {
	b = p[0]
	q[0] = b
	a = p[1] - u*b
	q[1] = a
	for i := 2; i <= nn; i++ {
		c := p[i] - u*a - v*b
		q[i] = c
		b = a
		a = c
	}
	return a, b
}

// quadRoots solves a*x^2 + b1*x + c with the discriminant arranged to avoid
// overflow. Real roots come back with zero imaginary parts; the smaller
// modulus root is first.
func quadRoots(a, b1, c float64) (sr, si, lr, li float64) {
	if a == 0 {
		if b1 != 0 {
			sr = -c / b1
		}
		return sr, 0, 0, 0
	}
	if c == 0 {
		return 0, 0, -b1 / a, 0
	}
	b := b1 / 2.0
	var d, e float64
	if math.Abs(b) < math.Abs(c) {
		e = a
		if c < 0 {
			e = -a
		}
		e = b*(b/math.Abs(c)) - e
		d = math.Sqrt(math.Abs(e)) * math.Sqrt(math.Abs(c))
	} else {
		e = 1.0 - (a/b)*(c/b)
		d = math.Sqrt(math.Abs(e)) * math.Abs(b)
	}
	if e >= 0 {
		if b >= 0 {
			d = -d
		}
		lr = (-b + d) / a
		if lr != 0 {
			sr = (c / lr) / a
		}
		return sr, 0, lr, 0
	}
	sr = -b / a
	lr = sr
	si = math.Abs(d / a)
	li = -si
	return sr, si, lr, li
}
