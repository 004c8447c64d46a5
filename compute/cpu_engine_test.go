package compute_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerfoo/signature/compute"
	"github.com/zerfoo/signature/numeric"
	"github.com/zerfoo/signature/tensor"
)

func newEngine() *compute.CPUEngine[float64] {
	return compute.NewCPUEngine[float64](numeric.Float64Ops{})
}

func TestCPUEngine_AddSubMulBroadcast(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	a, err := tensor.New[float64]([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	b, err := tensor.New[float64]([]int{1, 3}, []float64{10, 20, 30})
	require.NoError(t, err)

	sum, err := e.Add(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, sum.Data())

	diff, err := e.Sub(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{-9, -18, -27, -6, -15, -24}, diff.Data())

	prod, err := e.Mul(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 40, 90, 40, 100, 180}, prod.Data())
}

func TestCPUEngine_ZeroFillCopy(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	a, err := tensor.New[float64]([]int{4}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	require.NoError(t, e.Fill(ctx, a, 7))
	assert.Equal(t, []float64{7, 7, 7, 7}, a.Data())

	require.NoError(t, e.Zero(ctx, a))
	assert.Equal(t, []float64{0, 0, 0, 0}, a.Data())

	src, err := tensor.New[float64]([]int{4}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, e.Copy(ctx, a, src))
	assert.Equal(t, src.Data(), a.Data())
}

func TestCPUEngine_EmptyZerosLike(t *testing.T) {
	e := newEngine()

	a, err := tensor.New[float64]([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	empty, err := e.EmptyLike(a)
	require.NoError(t, err)
	assert.Equal(t, a.Shape(), empty.Shape())

	zeros, err := e.ZerosLike(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, zeros.Data())
}

func TestCPUEngine_MatMul(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	a, err := tensor.New[float64]([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	b, err := tensor.New[float64]([]int{2, 2}, []float64{5, 6, 7, 8})
	require.NoError(t, err)

	result, err := e.MatMul(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{19, 22, 43, 50}, result.Data())
}

func TestCPUEngine_BatchMatMulAndAccumulate(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	a, err := tensor.New[float64]([]int{2, 1, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	b, err := tensor.New[float64]([]int{2, 2, 1}, []float64{1, 1, 1, 1})
	require.NoError(t, err)

	result, err := e.BatchMatMul(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7}, result.Data())

	require.NoError(t, e.BatchAddMatMul(ctx, result, a, b))
	assert.Equal(t, []float64{6, 14}, result.Data())
}
