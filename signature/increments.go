package signature

// ComputeIncrements turns a path of shape (n, bCount, c) into its successive
// differences of shape (s, bCount, c). When basepoint is provided (shape
// (bCount, c)), it stands in for a virtual path[-1] and s == n; otherwise
// s == n-1. When inverse is set every increment is negated; the stream
// order of the increments is unchanged.
func ComputeIncrements[T Float](path []T, n, bCount, c int, basepoint []T, hasBasepoint, inverse bool) (incr []T, s int) {
	if hasBasepoint {
		s = n
	} else {
		s = n - 1
	}

	incr = make([]T, s*bCount*c)

	sign := T(1)
	if inverse {
		sign = -1
	}

	rowAt := func(buf []T, idx int) BatchView[T] {
		return FlatView(buf[idx*bCount*c:(idx+1)*bCount*c], c)
	}

	if hasBasepoint {
		cur, bp, out := rowAt(path, 0), FlatView(basepoint, c), rowAt(incr, 0)
		diffInto(out, cur, bp, sign, bCount)

		for idx := 1; idx < n; idx++ {
			cur, prev, out := rowAt(path, idx), rowAt(path, idx-1), rowAt(incr, idx)
			diffInto(out, cur, prev, sign, bCount)
		}
	} else {
		for idx := range s {
			cur, prev, out := rowAt(path, idx+1), rowAt(path, idx), rowAt(incr, idx)
			diffInto(out, cur, prev, sign, bCount)
		}
	}

	return incr, s
}

func diffInto[T Float](out, a, b BatchView[T], sign T, bCount int) {
	for bi := range bCount {
		o, av, bv := out.Row(bi), a.Row(bi), b.Row(bi)
		for x := range o {
			o[x] = sign * (av[x] - bv[x])
		}
	}
}

// ComputeIncrementsBackward is the adjoint of ComputeIncrements. gradIncr
// has shape (s, bCount, c); it returns gradPath (n, bCount, c) and, when
// hasBasepoint is set, gradBasepoint (bCount, c) (nil otherwise).
func ComputeIncrementsBackward[T Float](gradIncr []T, n, s, bCount, c int, hasBasepoint, inverse bool) (gradPath, gradBasepoint []T) {
	gradPath = make([]T, n*bCount*c)

	sign := T(1)
	if inverse {
		sign = -1
	}

	rowAt := func(buf []T, idx int) BatchView[T] {
		return FlatView(buf[idx*bCount*c:(idx+1)*bCount*c], c)
	}

	if hasBasepoint {
		gradBasepoint = make([]T, bCount*c)
		bp := FlatView(gradBasepoint, c)
		g0, p0 := rowAt(gradIncr, 0), rowAt(gradPath, 0)
		accumDiff(p0, bp, g0, sign, bCount)

		for idx := 1; idx < n; idx++ {
			g, pCur, pPrev := rowAt(gradIncr, idx), rowAt(gradPath, idx), rowAt(gradPath, idx-1)
			accumDiff(pCur, pPrev, g, sign, bCount)
		}
	} else {
		for idx := range s {
			g, pNext, pCur := rowAt(gradIncr, idx), rowAt(gradPath, idx+1), rowAt(gradPath, idx)
			accumDiff(pNext, pCur, g, sign, bCount)
		}
	}

	return gradPath, gradBasepoint
}

// accumDiff propagates the adjoint of out = sign*(a-b): posTarget += sign*g,
// negTarget -= sign*g.
func accumDiff[T Float](posTarget, negTarget, g BatchView[T], sign T, bCount int) {
	for bi := range bCount {
		p, n, gv := posTarget.Row(bi), negTarget.Row(bi), g.Row(bi)
		for x := range gv {
			p[x] += sign * gv[x]
			n[x] -= sign * gv[x]
		}
	}
}
