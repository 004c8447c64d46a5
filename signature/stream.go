package signature

// parallelStreamElementThreshold is the empirical element-count floor below
// which chunked-parallel streaming isn't worth its combine overhead. Kept as
// a named constant rather than hardwired into the driver since it is a
// device-specific heuristic, due for re-tuning on the target hardware.
const parallelStreamElementThreshold = 1392640

// minChunkSize is the smallest number of increments a chunk may own; the
// chunk count is reduced until no chunk falls below this, since the
// fused kernel's cost grows with depth and a one-increment chunk wastes a
// combine for no parallel benefit.
const minChunkSize = 3

// StreamScratch holds everything SignatureStreamBackward needs to replay a
// SignatureStreamForward call. Unlike a design that saves every intermediate
// signature and FusedScratch as the forward produces them, this driver keeps
// only the path increments: backward reconstructs each step's scratch by
// replaying FusedMultExpForward from the signature value at that step (see
// SignatureStreamBackward). That keeps memory at O(increments) regardless of
// S, and — crucially — decouples backward from *how* forward computed the
// output, so a chunked-parallel forward pass backs the same backward path as
// the serial one.
type StreamScratch[T Float] struct {
	Layout       TermLayout
	Increments   []T
	N, S, BCount int
	HasBasepoint bool
	HasInitial   bool
	Inverse      bool
	R            []T
}

// SignatureStreamForward drives the per-step signature recurrence over an
// entire path: it computes path increments (ComputeIncrements), seeds the
// running signature from initialValue (when supplied, via
// FusedMultExpForward) or from the first increment alone (via
// RestrictedExpForward), then folds in every remaining increment via
// FusedMultExpForward. When streamOut is set the result has shape
// (s, bCount, layout.Width), one signature per prefix; otherwise it is the
// single final (bCount, layout.Width) signature, optionally computed via the
// chunked-parallel driver (see signatureChunkedForward) when the problem is
// large enough to amortize the combine phase.
func SignatureStreamForward[T Float](
	c, d, n, bCount int,
	path, basepoint []T, hasBasepoint bool,
	initialValue []T, hasInitial bool,
	inverse, streamOut bool,
) ([]T, int, TermLayout, *StreamScratch[T], error) {
	layout, err := NewTermLayout(c, d)
	if err != nil {
		return nil, 0, TermLayout{}, nil, err
	}

	r := Reciprocals[T](d)

	increments, s := ComputeIncrements(path, n, bCount, c, basepoint, hasBasepoint, inverse)

	scratch := &StreamScratch[T]{
		Layout: layout, Increments: increments,
		N: n, S: s, BCount: bCount,
		HasBasepoint: hasBasepoint, HasInitial: hasInitial, Inverse: inverse, R: r,
	}

	cur := make([]T, bCount*layout.Width)
	first := FlatView(increments[0:bCount*c], c)

	if hasInitial {
		copy(cur, initialValue)
		FusedMultExpForward(layout, cur, first, bCount, r, inverse)
	} else {
		RestrictedExpForward(layout, first, cur, bCount, r)
	}

	var out []T

	switch {
	case streamOut:
		out = make([]T, s*bCount*layout.Width)
		copy(out[0:bCount*layout.Width], cur)

		for step := 1; step < s; step++ {
			incr := FlatView(increments[step*bCount*c:(step+1)*bCount*c], c)
			FusedMultExpForward(layout, cur, incr, bCount, r, inverse)
			copy(out[step*bCount*layout.Width:(step+1)*bCount*layout.Width], cur)
		}
	case shouldChunk(s, bCount, layout.Width):
		out = signatureChunkedForward(layout, increments, s, bCount, r, cur, inverse)
	default:
		for step := 1; step < s; step++ {
			incr := FlatView(increments[step*bCount*c:(step+1)*bCount*c], c)
			FusedMultExpForward(layout, cur, incr, bCount, r, inverse)
		}

		out = cur
	}

	return out, s, layout, scratch, nil
}

// shouldChunk reports whether the chunked-parallel driver is worth using for
// a stream=false signature of the given shape: it needs at least two usable
// chunks and a problem large enough to clear parallelStreamElementThreshold.
func shouldChunk(s, bCount, width int) bool {
	if MaxParallelism() < 2 || s < 2*minChunkSize+1 {
		return false
	}

	return s*bCount*width >= parallelStreamElementThreshold
}

// signatureChunkedForward implements the chunked-parallel streaming
// driver: it partitions stream indices [1, s) into T contiguous chunks, runs
// each chunk's own restricted-exponential seed and fused-multiply sweep on
// its own private scratch signature, then combines the chunk results with
// firstTerm (the already-computed signature of the first increment) via
// Mult. This realizes Chen's identity: the signature over [0, s) is the
// product of the signatures over each contiguous sub-interval.
//
// Under inverse=false each chunk's local signature is built left-to-right
// (prev*exp(next) at every step), so the combine phase walks chunks in
// ascending order and right-multiplies: global <- global*chunk. Under
// inverse=true each chunk is built right-to-left instead (exp(next)*prev at
// every step, since that's what FusedMultExpForward's own inverse flag
// does), so to keep the overall concatenation order correct the combine
// phase must also left-multiply: global <- chunk*global, still walking
// chunks in ascending index order (each new chunk's factor ends up
// leftmost, matching what the per-chunk recurrence already did internally).
func signatureChunkedForward[T Float](layout TermLayout, increments []T, s, bCount int, r []T, firstTerm []T, inverse bool) []T {
	c, width := layout.C, layout.Width

	starts, ends := chunkBounds(s)
	chunkResults := make([][]T, len(starts))

	parallelFor(len(starts), MaxParallelism(), func(lo, hi int) {
		for ci := lo; ci < hi; ci++ {
			start, end := starts[ci], ends[ci]

			local := make([]T, bCount*width)
			seed := FlatView(increments[start*bCount*c:(start+1)*bCount*c], c)
			RestrictedExpForward(layout, seed, local, bCount, r)

			for step := start + 1; step < end; step++ {
				incr := FlatView(increments[step*bCount*c:(step+1)*bCount*c], c)
				FusedMultExpForward(layout, local, incr, bCount, r, inverse)
			}

			chunkResults[ci] = local
		}
	})

	global := cloneSlice(firstTerm)

	for _, chunk := range chunkResults {
		if inverse {
			next := cloneSlice(chunk)
			Mult(layout, next, global, bCount)
			global = next
		} else {
			Mult(layout, global, chunk, bCount)
		}
	}

	return global
}

// chunkBounds partitions stream indices [1, s) into contiguous chunks, each
// at least minChunkSize increments wide, capped at MaxParallelism() chunks
// and at (s+1)/3 via a stream-thread clamp (preserving the benefit of
// the fused kernel over very small chunks). Chunk lengths differ by at most
// one. When s-1 is itself below minChunkSize, one chunk covers the range.
func chunkBounds(s int) (starts, ends []int) {
	remaining := s - 1
	if remaining <= 0 {
		return nil, nil
	}

	maxByClamp := (s + 1) / 3
	t := MaxParallelism()

	if maxByClamp < t {
		t = maxByClamp
	}

	if byMinSize := remaining / minChunkSize; byMinSize < t {
		t = byMinSize
	}

	if t < 1 {
		t = 1
	}

	base, extra := remaining/t, remaining%t

	starts = make([]int, 0, t)
	ends = make([]int, 0, t)

	lo := 1
	for i := range t {
		hi := lo + base
		if i < extra {
			hi++
		}

		starts = append(starts, lo)
		ends = append(ends, hi)
		lo = hi
	}

	return starts, ends
}

// SignatureStreamBackward is the adjoint of SignatureStreamForward.
// signatureOut must be exactly the value SignatureStreamForward returned
// (shape (s, bCount, layout.Width) when streamOut was set, else
// (bCount, layout.Width)); gradOut is the upstream gradient with respect to
// it, of the same shape. initialValue must be passed again when HasInitial
// was set (it is needed to unwind the first step).
//
// Backward walks the steps from S-1 down to 1. Under stream=true the
// signature at each prior step is already present in signatureOut — no
// reconstruction needed. Under stream=false only the final signature is
// known, so each step first rolls the running signature back one increment
// via FusedMultExpForward with the negated increment, using scratch.Inverse
// (valid because the restricted exponential is invertible in the graded
// algebra regardless of which side it was multiplied on), recovering the
// signature at the previous step. Either way, the FusedScratch a given
// step's backward needs is regenerated by replaying FusedMultExpForward
// forward (again with scratch.Inverse) from that recovered (or looked-up)
// prior signature — the "replay" strategy this driver uses in place of
// saving every scratch up front.
func SignatureStreamBackward[T Float](scratch *StreamScratch[T], signatureOut, gradOut []T, streamOut bool, initialValue []T) (gradPath, gradBasepoint, gradInitial []T) {
	layout, bCount, c, w, s := scratch.Layout, scratch.BCount, scratch.Layout.C, scratch.Layout.Width, scratch.S
	r := scratch.R

	lastIdx := s - 1

	gradCur := make([]T, bCount*w)
	if streamOut {
		copy(gradCur, gradOut[lastIdx*bCount*w:(lastIdx+1)*bCount*w])
	} else {
		copy(gradCur, gradOut)
	}

	current := make([]T, bCount*w)
	if streamOut {
		copy(current, signatureOut[lastIdx*bCount*w:(lastIdx+1)*bCount*w])
	} else {
		copy(current, signatureOut)
	}

	gradIncrements := make([]T, len(scratch.Increments))

	for step := lastIdx; step >= 1; step-- {
		incr := FlatView(scratch.Increments[step*bCount*c:(step+1)*bCount*c], c)

		var prevOrig []T
		if streamOut {
			prevOrig = cloneSlice(signatureOut[(step-1)*bCount*w : step*bCount*w])
		} else {
			rolled := cloneSlice(current)
			negIncrBuf := make([]T, bCount*c)
			negIncr := FlatView(negIncrBuf, c)

			for b := range bCount {
				dst, src := negIncr.Row(b), incr.Row(b)
				for x := range src {
					dst[x] = -src[x]
				}
			}

			FusedMultExpForward(layout, rolled, negIncr, bCount, r, scratch.Inverse)
			prevOrig = rolled
		}

		replay := cloneSlice(prevOrig)
		fscratch := FusedMultExpForward(layout, replay, incr, bCount, r, scratch.Inverse)

		gradNext := make([]T, bCount*c)
		gradPrevOrig := FusedMultExpBackward(layout, prevOrig, incr, fscratch, gradCur, FlatView(gradNext, c), bCount, r, scratch.Inverse)

		copy(gradIncrements[step*bCount*c:(step+1)*bCount*c], gradNext)

		if streamOut {
			addInto(gradPrevOrig, gradOut[(step-1)*bCount*w:step*bCount*w])
		}

		gradCur = gradPrevOrig
		current = prevOrig
	}

	first := FlatView(scratch.Increments[0:bCount*c], c)
	gradFirstIncr := make([]T, bCount*c)

	if scratch.HasInitial {
		replay := cloneSlice(initialValue)
		fscratch := FusedMultExpForward(layout, replay, first, bCount, r, scratch.Inverse)
		gradInitial = FusedMultExpBackward(layout, initialValue, first, fscratch, gradCur, FlatView(gradFirstIncr, c), bCount, r, scratch.Inverse)
	} else {
		RestrictedExpBackward(layout, first, current, gradCur, FlatView(gradFirstIncr, c), bCount, r)
	}

	copy(gradIncrements[0:bCount*c], gradFirstIncr)

	gradPath, gradBasepoint = ComputeIncrementsBackward(gradIncrements, scratch.N, s, bCount, c, scratch.HasBasepoint, scratch.Inverse)

	return gradPath, gradBasepoint, gradInitial
}

func cloneSlice[T Float](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)

	return out
}

func addInto[T Float](dst, src []T) {
	for i := range dst {
		dst[i] += src[i]
	}
}
