// Package signature implements the truncated tensor-algebra signature
// transform of a piecewise-linear path (rough-path theory / Chen's
// identity), together with its reverse-mode derivative.
package signature

import (
	"fmt"

	"github.com/zerfoo/signature/tensor"
)

// Float is the element type the signature core operates on.
type Float = tensor.Float

// TermLayout describes how a graded truncated tensor-algebra element of
// depth D over a channel space of dimension C is flattened into one
// contiguous buffer of width Width per batch element. Depth k (1-indexed)
// occupies the half-open range [Offsets[k-1], Offsets[k]) of that buffer,
// with size C^k. The scalar (grade 0) term is implicit and never stored.
type TermLayout struct {
	C, D, Width int
	Offsets     []int // length D+1, Offsets[0] == 0
}

// NewTermLayout computes the term layout for channel count C and depth D.
func NewTermLayout(c, d int) (TermLayout, error) {
	if c < 1 {
		return TermLayout{}, fmt.Errorf("%w: channel count must be positive, got %d", ErrInvalidArgument, c)
	}

	if d < 1 {
		return TermLayout{}, fmt.Errorf("%w: depth must be positive, got %d", ErrInvalidArgument, d)
	}

	offsets := make([]int, d+1)

	size := 1
	for k := 1; k <= d; k++ {
		size *= c
		offsets[k] = offsets[k-1] + size
	}

	return TermLayout{C: c, D: d, Width: offsets[d], Offsets: offsets}, nil
}

// DepthRange returns the [start, end) range within one batch row's Width
// elements occupied by the depth-k term (k is 1-indexed, 1<=k<=D).
func (tl TermLayout) DepthRange(k int) (start, end int) {
	return tl.Offsets[k-1], tl.Offsets[k]
}

// DepthSize returns C^k, the number of elements of the depth-k term.
func (tl TermLayout) DepthSize(k int) int {
	start, end := tl.DepthRange(k)

	return end - start
}

// SignatureChannels returns W(C, D) = C + C^2 + ... + C^D, the flattened
// width of a depth-D truncated signature over a C-dimensional channel
// space, without allocating a TermLayout.
func SignatureChannels(c, d int) int {
	if c == 1 {
		return d
	}

	w := 0

	term := 1
	for range d {
		term *= c
		w += term
	}

	return w
}

// BatchView describes a (batch, N) region of a flat buffer where batch
// element b occupies buf[b*Stride+Offset : b*Stride+Offset+N]. It is the
// zero-copy "view" primitive the kernels use in place of per-depth tensor
// slicing: every BatchView.Row(b) aliases the owning buffer directly.
type BatchView[T tensor.Float] struct {
	Buf    []T
	Stride int
	Offset int
	N      int
}

// Row returns the slice for batch element b. It aliases Buf.
func (v BatchView[T]) Row(b int) []T {
	start := b*v.Stride + v.Offset

	return v.Buf[start : start+v.N]
}

// FlatView returns a BatchView over buf, treated as a contiguous (batch, n)
// buffer (Stride == N, Offset == 0). It allocates nothing; the view aliases
// buf.
func FlatView[T tensor.Float](buf []T, n int) BatchView[T] {
	return BatchView[T]{Buf: buf, Stride: n, Offset: 0, N: n}
}

// DepthView returns the BatchView over depth k (1-indexed) of a signature
// buffer of the given layout, for a buffer laid out as (batch, layout.Width).
func DepthView[T tensor.Float](layout TermLayout, buf []T, k int) BatchView[T] {
	start, end := layout.DepthRange(k)

	return BatchView[T]{Buf: buf, Stride: layout.Width, Offset: start, N: end - start}
}
