package signature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerfoo/signature/signature"
)

func TestMult_IdentityElement(t *testing.T) {
	// Multiplying by the zero element (1 + 0 in the algebra) is a no-op.
	const c, d, bCount = 2, 3, 1

	layout, err := signature.NewTermLayout(c, d)
	require.NoError(t, err)

	arg1 := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}
	zero := make([]float64, layout.Width)

	got := append([]float64(nil), arg1...)
	signature.Mult(layout, got, zero, bCount)

	assert.InDeltaSlice(t, arg1, got, 1e-12)
}

func TestMultBackward_FiniteDifference(t *testing.T) {
	const (
		c, d, bCount = 2, 2, 1
		eps          = 1e-6
	)

	layout, err := signature.NewTermLayout(c, d)
	require.NoError(t, err)

	arg1 := []float64{0.1, -0.2, 0.3, 0.05, -0.1, 0.2}
	arg2 := []float64{-0.3, 0.1, 0.2, -0.05, 0.15, -0.1}

	forward := func(a1, a2 []float64) []float64 {
		out := append([]float64(nil), a1...)
		signature.Mult(layout, out, a2, bCount)

		return out
	}

	gradResult := make([]float64, layout.Width)
	for i := range gradResult {
		gradResult[i] = 1
	}

	gradArg1, gradArg2 := signature.MultBackward(layout, arg1, arg2, gradResult, bCount)

	checkGrad := func(vals []float64, grad []float64, perturb func(v []float64) []float64) {
		for i := range vals {
			plus := append([]float64(nil), vals...)
			plus[i] += eps
			minus := append([]float64(nil), vals...)
			minus[i] -= eps

			sumPlus := sumOf(perturb(plus))
			sumMinus := sumOf(perturb(minus))
			numGrad := (sumPlus - sumMinus) / (2 * eps)

			assert.InDelta(t, numGrad, grad[i], 1e-5)
		}
	}

	checkGrad(arg1, gradArg1, func(v []float64) []float64 { return forward(v, arg2) })
	checkGrad(arg2, gradArg2, func(v []float64) []float64 { return forward(arg1, v) })
}

func TestMultPartial_ZeroSkipMatchesScaledMult(t *testing.T) {
	// With skip=0 and alpha=1, MultPartial differs from Mult only in that it
	// overwrites arg1's depths instead of accumulating onto them. Starting
	// from an arg1 that is all zero makes the two equivalent.
	const c, d, bCount = 2, 3, 1

	layout, err := signature.NewTermLayout(c, d)
	require.NoError(t, err)

	arg2 := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}

	viaMult := make([]float64, layout.Width)
	signature.Mult(layout, viaMult, arg2, bCount)

	viaPartial := make([]float64, layout.Width)
	signature.MultPartial(layout, viaPartial, arg2, 1, 0, bCount)

	assert.InDeltaSlice(t, viaMult, viaPartial, 1e-12)
}

func TestMultPartial_SkipLeavesTopDepthsUntouched(t *testing.T) {
	const c, d, bCount = 2, 3, 1

	layout, err := signature.NewTermLayout(c, d)
	require.NoError(t, err)

	arg2 := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}

	arg1 := []float64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000, 1100, 1200, 1300, 1400}
	want := append([]float64(nil), arg1...)

	signature.MultPartial(layout, arg1, arg2, 2, d, bCount)

	assert.InDeltaSlice(t, want, arg1, 1e-12)
}

func TestMultPartial_AlphaScalesOwnDepthTerm(t *testing.T) {
	// At depth 1 there is no inner sum (j ranges over 1..0), so the whole
	// depth-1 result is alpha*arg2[1].
	const c, d, bCount = 2, 1, 1

	layout, err := signature.NewTermLayout(c, d)
	require.NoError(t, err)

	arg2 := []float64{10, 20}
	arg1 := []float64{1, 2}

	const alpha = 0.5

	signature.MultPartial(layout, arg1, arg2, alpha, 0, bCount)

	assert.InDeltaSlice(t, []float64{5, 10}, arg1, 1e-12)
}
