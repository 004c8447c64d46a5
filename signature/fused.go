package signature

// FusedScratch holds the intermediate values a FusedMultExpForward call
// needs to save for its matching FusedMultExpBackward call to replay
// without recomputing the whole forward pass.
type FusedScratch[T Float] struct {
	c, d int

	// nextDivided[i] = next * r[i], for i = 0..d-2, each a (bCount, c) buffer.
	nextDivided [][]T

	// stages[d0] holds the chain of partial "s" accumulators built while
	// processing depth d0 (1-indexed loop variable, 1..d-1 in forward's
	// descending order); stages[d0][0] has shape (bCount, c), and
	// stages[d0][t] for t=1..d0-1 has shape (bCount, c^(t+1)).
	stages [][][]T

	bCount int
}

func powInt(base, exp int) int {
	v := 1
	for range exp {
		v *= base
	}

	return v
}

// outerFwd computes dst = a outer b (or b outer a, when inverse is set),
// added to dst if accumulate.
func outerFwd[T Float](dst, a, b BatchView[T], bCount int, accumulate, inverse bool) {
	if inverse {
		OuterProduct(dst, b, a, bCount, accumulate)
	} else {
		OuterProduct(dst, a, b, bCount, accumulate)
	}
}

// outerBwd is the adjoint of outerFwd: gradA/gradB receive the gradients
// with respect to a/b regardless of how inverse reordered the underlying
// multiply.
func outerBwd[T Float](gradDst, a, b, gradA, gradB BatchView[T], bCount int, accumA, accumB, inverse bool) {
	if inverse {
		OuterBackward(gradDst, b, a, gradB, gradA, bCount, accumB, accumA)
	} else {
		OuterBackward(gradDst, a, b, gradA, gradB, bCount, accumA, accumB)
	}
}

// FusedMultExpForward updates prev in place to prev*exp(next) (or
// exp(next)*prev, when inverse is set), where exp is the restricted
// exponential, fused so that exp(next) is never materialized on its own.
// It returns the scratch FusedMultExpBackward needs.
func FusedMultExpForward[T Float](layout TermLayout, prev []T, next BatchView[T], bCount int, r []T, inverse bool) *FusedScratch[T] {
	c, d := layout.C, layout.D

	scratch := &FusedScratch[T]{c: c, d: d, bCount: bCount}
	scratch.nextDivided = make([][]T, maxInt(d-1, 0))
	scratch.stages = make([][][]T, d)

	for i := range d - 1 {
		buf := make([]T, bCount*c)
		ndv := FlatView(buf, c)

		for b := range bCount {
			nb, row := next.Row(b), ndv.Row(b)
			for x := range nb {
				row[x] = nb[x] * r[i]
			}
		}

		scratch.nextDivided[i] = buf
	}

	prevDepth1 := DepthView(layout, prev, 1)

	for d0 := d - 1; d0 >= 1; d0-- {
		stages := make([][]T, d0)

		sBuf := make([]T, bCount*c)
		sView := FlatView(sBuf, c)
		ndInit := FlatView(scratch.nextDivided[d0-1], c)

		for b := range bCount {
			p1, nd, s := prevDepth1.Row(b), ndInit.Row(b), sView.Row(b)
			for x := range s {
				s[x] = p1[x] + nd[x]
			}
		}

		stages[0] = sBuf

		curDim, cur := 1, sBuf

		for j := 1; j <= d0-1; j++ {
			k := d0 - 1 - j
			newDim := curDim + 1
			newBuf := make([]T, bCount*powInt(c, newDim))
			newView := FlatView(newBuf, powInt(c, newDim))
			curView := FlatView(cur, powInt(c, curDim))
			ndK := FlatView(scratch.nextDivided[k], c)

			outerFwd(newView, curView, ndK, bCount, false, inverse)

			prevJJ := DepthView(layout, prev, j+1)
			for b := range bCount {
				row, pr := newView.Row(b), prevJJ.Row(b)
				for x := range row {
					row[x] += pr[x]
				}
			}

			stages[j] = newBuf
			cur, curDim = newBuf, newDim
		}

		scratch.stages[d0] = stages

		dd := d0 + 1
		prevDD := DepthView(layout, prev, dd)
		curView := FlatView(cur, powInt(c, curDim))
		outerFwd(prevDD, curView, next, bCount, true, inverse)
	}

	for b := range bCount {
		row, nx := prevDepth1.Row(b), next.Row(b)
		for x := range row {
			row[x] += nx[x]
		}
	}

	return scratch
}

// FusedMultExpBackward is the adjoint of FusedMultExpForward. prevOrig must
// hold the value prev had before the matching forward call. gradPrev is the
// gradient with respect to the forward call's (in-place) output, read-only.
// It returns the gradient with respect to prevOrig and accumulates the
// gradient with respect to next into gradNext (which the caller must have
// sized to (bCount, layout.C), typically zeroed).
func FusedMultExpBackward[T Float](layout TermLayout, prevOrig []T, next BatchView[T], scratch *FusedScratch[T], gradPrev []T, gradNext BatchView[T], bCount int, r []T, inverse bool) (gradPrevOrig []T) {
	c, d := layout.C, layout.D
	gradPrevOrig = make([]T, len(gradPrev))

	gradNextDivided := make([][]T, maxInt(d-1, 0))
	for i := range gradNextDivided {
		gradNextDivided[i] = make([]T, bCount*c)
	}

	gradPrevDepth1 := DepthView(layout, gradPrevOrig, 1)

	for d0 := 1; d0 <= d-1; d0++ {
		stages := scratch.stages[d0]
		gDD := DepthView(layout, gradPrev, d0+1)

		// identity contribution: prev[dd]_new = prev[dd]_orig + finalS⊗next
		gradPrevDD := DepthView(layout, gradPrevOrig, d0+1)
		for b := range bCount {
			g, out := gDD.Row(b), gradPrevDD.Row(b)
			for x := range g {
				out[x] += g[x]
			}
		}

		curDim := d0
		cur := stages[d0-1]
		curView := FlatView(cur, powInt(c, curDim))

		gradCur := make([]T, len(cur))
		gradCurView := FlatView(gradCur, powInt(c, curDim))

		outerBwd(gDD, curView, next, gradCurView, gradNext, bCount, false, true, inverse)

		for j := d0 - 1; j >= 1; j-- {
			k := d0 - 1 - j
			prevJJ := DepthView(layout, prevOrig, j+1)
			gradPrevJJ := DepthView(layout, gradPrevOrig, j+1)

			for b := range bCount {
				g, out := gradCurView.Row(b), gradPrevJJ.Row(b)
				for x := range g {
					out[x] += g[x]
				}
			}

			prevDim := curDim - 1
			prevStage := stages[j-1]
			prevView := FlatView(prevStage, powInt(c, prevDim))
			ndK := FlatView(scratch.nextDivided[k], c)
			gradNdK := FlatView(gradNextDivided[k], c)

			gradPrevStage := make([]T, len(prevStage))
			gradPrevStageView := FlatView(gradPrevStage, powInt(c, prevDim))

			outerBwd(gradCurView, prevView, ndK, gradPrevStageView, gradNdK, bCount, false, true, inverse)

			gradCurView = gradPrevStageView
			curDim = prevDim
		}

		// here curDim == 1 and gradCurView is the gradient wrt s0 =
		// prev[0]_orig + next_divided[d0-1].
		for b := range bCount {
			g, out := gradCurView.Row(b), gradPrevDepth1.Row(b)
			for x := range g {
				out[x] += g[x]
			}
		}

		gradNdInit := FlatView(gradNextDivided[d0-1], c)
		for b := range bCount {
			g, out := gradCurView.Row(b), gradNdInit.Row(b)
			for x := range g {
				out[x] += g[x]
			}
		}
	}

	// prev[0]_final = prev[0]_orig + next
	gTop := DepthView(layout, gradPrev, 1)
	for b := range bCount {
		g, out, gn := gTop.Row(b), gradPrevDepth1.Row(b), gradNext.Row(b)
		for x := range g {
			out[x] += g[x]
			gn[x] += g[x]
		}
	}

	for i, gnd := range gradNextDivided {
		gndView := FlatView(gnd, c)
		for b := range bCount {
			g, gn := gndView.Row(b), gradNext.Row(b)
			for x := range g {
				gn[x] += r[i] * g[x]
			}
		}
	}

	return gradPrevOrig
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
