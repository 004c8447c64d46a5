package signature

// Mult computes the truncated tensor-algebra product of the two
// group-like elements (1+arg1)*(1+arg2), writing the result back into
// arg1 in place: for depth P from layout.D down to 1,
//
//	arg1[P] += sum_{j=1}^{P-1} arg1[j] (pre-update) outer arg2[P-j] + arg2[P]
//
// Processing depths from D down to 1 guarantees every arg1[j] read inside
// the sum (j < P) is still its pre-update value, since shallower depths
// have not been touched yet.
func Mult[T Float](layout TermLayout, arg1, arg2 []T, bCount int) {
	for p := layout.D; p >= 1; p-- {
		dst := DepthView(layout, arg1, p)

		for j := 1; j <= p-1; j++ {
			left := DepthView(layout, arg1, j)
			right := DepthView(layout, arg2, p-j)

			OuterProduct(dst, left, right, bCount, true)
		}

		a2 := DepthView(layout, arg2, p)
		for b := range bCount {
			d, r := dst.Row(b), a2.Row(b)
			for i := range d {
				d[i] += r[i]
			}
		}
	}
}

// MultBackward is the adjoint of Mult. arg1Orig must hold the value arg1
// had before Mult was called (Mult overwrites arg1 in place, so the caller
// must save a copy first if it needs this). gradResult is the gradient
// with respect to Mult's output (read-only). It returns freshly allocated
// gradients with respect to the original arg1 and to arg2.
func MultBackward[T Float](layout TermLayout, arg1Orig, arg2, gradResult []T, bCount int) (gradArg1, gradArg2 []T) {
	gradArg1 = make([]T, len(gradResult))
	gradArg2 = make([]T, len(gradResult))

	for p := 1; p <= layout.D; p++ {
		g := DepthView(layout, gradResult, p)
		ga1P := DepthView(layout, gradArg1, p)
		ga2P := DepthView(layout, gradArg2, p)

		for b := range bCount {
			gp, d1, d2 := g.Row(b), ga1P.Row(b), ga2P.Row(b)
			for i := range gp {
				d1[i] += gp[i]
				d2[i] += gp[i]
			}
		}

		for j := 1; j <= p-1; j++ {
			k := p - j
			left := DepthView(layout, arg1Orig, j)
			right := DepthView(layout, arg2, k)
			gradLeft := DepthView(layout, gradArg1, j)
			gradRight := DepthView(layout, gradArg2, k)

			OuterBackward(g, left, right, gradLeft, gradRight, bCount, true, true)
		}
	}

	return gradArg1, gradArg2
}

// MultPartial computes a scaled, truncated variant of Mult used by the
// logsignature power-series expansion: for depth P from layout.D-skip down
// to 1,
//
//	arg1[P] ← sum_{j=1}^{P-1} arg1[j] (pre-update) outer arg2[P-j] + alpha*arg2[P]
//
// Unlike Mult, arg1[P] is zeroed before the inner sum runs rather than added
// onto, and arg2's own-depth contribution is scaled by alpha instead of
// added as-is. The top skip depths are left untouched entirely, which lets
// a caller building up a power series term by term grow only the depths it
// has reached so far.
func MultPartial[T Float](layout TermLayout, arg1, arg2 []T, alpha T, skip, bCount int) {
	for p := layout.D - skip; p >= 1; p-- {
		dst := DepthView(layout, arg1, p)

		for b := range bCount {
			row := dst.Row(b)
			for i := range row {
				row[i] = 0
			}
		}

		for j := 1; j <= p-1; j++ {
			left := DepthView(layout, arg1, j)
			right := DepthView(layout, arg2, p-j)

			OuterProduct(dst, left, right, bCount, true)
		}

		a2 := DepthView(layout, arg2, p)
		for b := range bCount {
			d, r := dst.Row(b), a2.Row(b)
			for i := range d {
				d[i] += alpha * r[i]
			}
		}
	}
}
