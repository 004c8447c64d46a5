package signature

import "github.com/zerfoo/signature/internal/xblas"

// OuterProduct computes, for each batch element b in [0, bCount),
// dst.Row(b) (reshaped as an m x n row-major matrix) := left.Row(b) (m x 1)
// outer-producted with right.Row(b) (1 x n), added to dst.Row(b) in place
// if accumulate is true, overwriting it otherwise. This is the batched
// rank-1 GEMM that both the restricted exponential and the fused
// mult-restricted-exp kernels use to grow a graded term by one more factor.
func OuterProduct[T Float](dst, left, right BatchView[T], bCount int, accumulate bool) {
	batchParallelFor(bCount, func(lo, hi int) {
		for b := lo; b < hi; b++ {
			l := left.Row(b)
			r := right.Row(b)
			d := dst.Row(b)
			m, n := len(l), len(r)

			xblas.BatchGemm(1, false, false, m, n, 1, l, 1, r, n, accumulate, d, n)
		}
	})
}

// OuterBackward is the adjoint of OuterProduct: given gradDst, the gradient
// with respect to dst's m x n outer product, it accumulates (or overwrites,
// depending on accumulateLeft/accumulateRight) the gradients with respect
// to left and right:
//
//	gradLeft[i]  += sum_j gradDst[i,j] * right[j]
//	gradRight[j] += sum_i gradDst[i,j] * left[i]
func OuterBackward[T Float](gradDst, left, right, gradLeft, gradRight BatchView[T], bCount int, accumulateLeft, accumulateRight bool) {
	batchParallelFor(bCount, func(lo, hi int) {
		for b := lo; b < hi; b++ {
			l := left.Row(b)
			r := right.Row(b)
			gd := gradDst.Row(b)
			gl := gradLeft.Row(b)
			gr := gradRight.Row(b)
			m, n := len(l), len(r)

			xblas.BatchGemm(1, false, false, m, 1, n, gd, n, r, 1, accumulateLeft, gl, 1)
			xblas.BatchGemm(1, true, false, n, 1, m, gd, n, l, 1, accumulateRight, gr, 1)
		}
	})
}

// batchParallelOrder is the minimum batch count before OuterProduct/
// OuterBackward split work across goroutines; below it the per-goroutine
// overhead would dwarf the handful of flops each batch element costs.
const batchParallelOrder = 64

// batchParallelFor runs fn(lo, hi) across parallelFor's chunking when
// bCount clears batchParallelOrder and more than one worker is available;
// otherwise it runs fn serially over the whole range. Each batch element's
// GEMM calls are fully independent, so splitting the range never changes
// the result.
func batchParallelFor(bCount int, fn func(lo, hi int)) {
	workers := MaxParallelism()
	if bCount < batchParallelOrder || workers <= 1 {
		fn(0, bCount)

		return
	}

	parallelFor(bCount, workers, fn)
}
