package signature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerfoo/signature/signature"
)

// S3: C=1, D=3, x=2 gives depth-k entry 2^k/k!.
func TestRestrictedExpForward_S3(t *testing.T) {
	layout, err := signature.NewTermLayout(1, 3)
	require.NoError(t, err)

	r := signature.Reciprocals[float64](3)
	x := signature.FlatView([]float64{2}, 1)

	out := make([]float64, layout.Width)
	signature.RestrictedExpForward(layout, x, out, 1, r)

	want := []float64{2, 2, 4.0 / 3}
	assert.InDeltaSlice(t, want, out, 1e-12)
}

func TestRestrictedExpBackward_FiniteDifference(t *testing.T) {
	const (
		c, d, bCount = 2, 3, 1
		eps          = 1e-6
	)

	layout, err := signature.NewTermLayout(c, d)
	require.NoError(t, err)

	r := signature.Reciprocals[float64](d)
	xVals := []float64{0.3, -0.7}

	forward := func(xv []float64) []float64 {
		x := signature.FlatView(append([]float64(nil), xv...), c)
		out := make([]float64, bCount*layout.Width)
		signature.RestrictedExpForward(layout, x, out, bCount, r)

		return out
	}

	out := forward(xVals)

	gradOut := make([]float64, bCount*layout.Width)
	for i := range gradOut {
		gradOut[i] = 1 // sum-reduction upstream gradient
	}

	gradX := make([]float64, bCount*c)
	x := signature.FlatView(xVals, c)
	signature.RestrictedExpBackward(layout, x, out, gradOut, signature.FlatView(gradX, c), bCount, r)

	for i := range xVals {
		plus := append([]float64(nil), xVals...)
		plus[i] += eps
		minus := append([]float64(nil), xVals...)
		minus[i] -= eps

		sumPlus, sumMinus := sumOf(forward(plus)), sumOf(forward(minus))
		numGrad := (sumPlus - sumMinus) / (2 * eps)

		assert.InDelta(t, numGrad, gradX[i], 1e-5)
	}
}

func sumOf(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}

	return s
}
