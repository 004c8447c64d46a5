// Package compute implements tensor computation engines and operations.
package compute

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/zerfoo/signature/device"
	"github.com/zerfoo/signature/internal/xblas"
	"github.com/zerfoo/signature/numeric"
	"github.com/zerfoo/signature/tensor"
)

// CPUEngine is a CPU-based implementation of the Engine interface.
type CPUEngine[T tensor.Float] struct {
	ops numeric.Arithmetic[T]
	dev device.Device
}

// NewCPUEngine creates a new CPUEngine bound to the process-wide CPU device.
func NewCPUEngine[T tensor.Float](ops numeric.Arithmetic[T]) *CPUEngine[T] {
	return &CPUEngine[T]{ops: ops, dev: device.Default()}
}

// Ops returns the numeric.Arithmetic operations for the engine's numeric type.
func (e *CPUEngine[T]) Ops() numeric.Arithmetic[T] {
	return e.ops
}

// Device returns the device this engine executes on. A future GPU-backed
// Engine implementation would report device.CUDA here instead.
func (e *CPUEngine[T]) Device() device.Device {
	return e.dev
}

// AllocatedBytes reports the cumulative number of bytes this engine's
// device allocator has handed out for tensors this engine created (via
// EmptyLike, ZerosLike, or an op called without a dst). Buffers the
// signature package allocates on its own are not counted. cmd/sigcli's
// -verbose flag reports it as the normalization step's scratch bytes.
// The allocator is shared process-wide, so the count also includes
// allocations by any other engine bound to the same device.
func (e *CPUEngine[T]) AllocatedBytes() int64 {
	return e.dev.GetAllocator().Allocated()
}

func (e *CPUEngine[T]) elemSize() int {
	var zero T

	return int(reflect.TypeOf(zero).Size())
}

func (e *CPUEngine[T]) newTensor(shape []int) (*tensor.TensorNumeric[T], error) {
	size := 1
	for _, dim := range shape {
		size *= dim
	}

	if _, err := e.dev.GetAllocator().Allocate(size * e.elemSize()); err != nil {
		return nil, fmt.Errorf("allocate tensor: %w", err)
	}

	return tensor.New[T](shape, nil)
}

func (e *CPUEngine[T]) getOrCreateDest(shape []int, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if len(dst) > 0 && dst[0] != nil {
		if !reflect.DeepEqual(dst[0].Shape(), shape) {
			return nil, fmt.Errorf("destination tensor has incorrect shape: got %v, want %v", dst[0].Shape(), shape)
		}

		return dst[0], nil
	}

	return e.newTensor(shape)
}

// binaryOp performs element-wise binary operations with broadcasting support.
func (e *CPUEngine[T]) binaryOp(_ context.Context, a, b *tensor.TensorNumeric[T], op func(T, T) T, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if a == nil || b == nil {
		return nil, errors.New("input tensors cannot be nil")
	}

	outputShape, broadcastA, broadcastB, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}

	result, err := e.getOrCreateDest(outputShape, dst...)
	if err != nil {
		return nil, err
	}

	aData := a.Data()
	bData := b.Data()
	rData := result.Data()

	for i := range rData {
		aIndex := tensor.BroadcastIndex(i, a.Shape(), outputShape, broadcastA)
		bIndex := tensor.BroadcastIndex(i, b.Shape(), outputShape, broadcastB)
		rData[i] = op(aData[aIndex], bData[bIndex])
	}

	return result, nil
}

// Add performs element-wise addition of two tensors, with broadcasting.
func (e *CPUEngine[T]) Add(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	return e.binaryOp(ctx, a, b, e.ops.Add, dst...)
}

// Sub performs element-wise subtraction of two tensors, with broadcasting.
func (e *CPUEngine[T]) Sub(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	return e.binaryOp(ctx, a, b, e.ops.Sub, dst...)
}

// Mul performs element-wise multiplication of two tensors, with broadcasting.
func (e *CPUEngine[T]) Mul(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	return e.binaryOp(ctx, a, b, e.ops.Mul, dst...)
}

// Zero sets all elements of a tensor to zero.
func (e *CPUEngine[T]) Zero(_ context.Context, a *tensor.TensorNumeric[T]) error {
	if a == nil {
		return errors.New("input tensor cannot be nil")
	}

	zero := e.ops.FromFloat64(0)

	data := a.Data()
	for i := range data {
		data[i] = zero
	}

	return nil
}

// Fill sets all elements of the tensor to a scalar value.
func (e *CPUEngine[T]) Fill(_ context.Context, t *tensor.TensorNumeric[T], value T) error {
	if t == nil {
		return errors.New("input tensor cannot be nil")
	}

	data := t.Data()
	for i := range data {
		data[i] = value
	}

	return nil
}

// Copy copies the data from src into dst. Shapes must match.
func (e *CPUEngine[T]) Copy(_ context.Context, dst, src *tensor.TensorNumeric[T]) error {
	if dst == nil || src == nil {
		return errors.New("tensors cannot be nil")
	}

	if !reflect.DeepEqual(dst.Shape(), src.Shape()) {
		return fmt.Errorf("shape mismatch: dst %v vs src %v", dst.Shape(), src.Shape())
	}

	copy(dst.Data(), src.Data())

	return nil
}

// EmptyLike allocates a new, uninitialized tensor with the same shape as a.
func (e *CPUEngine[T]) EmptyLike(a *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if a == nil {
		return nil, errors.New("input tensor cannot be nil")
	}

	return e.newTensor(a.Shape())
}

// ZerosLike allocates a new, zero-filled tensor with the same shape as a.
func (e *CPUEngine[T]) ZerosLike(a *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	out, err := e.EmptyLike(a)
	if err != nil {
		return nil, err
	}

	return out, e.Zero(context.Background(), out)
}

// MatMul performs matrix multiplication of two 2D tensors, backed by gonum BLAS.
func (e *CPUEngine[T]) MatMul(_ context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if a == nil || b == nil {
		return nil, errors.New("input tensors cannot be nil")
	}

	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		return nil, fmt.Errorf("MatMul requires 2D tensors, got shapes %v and %v", aShape, bShape)
	}

	m, k, k2, n := aShape[0], aShape[1], bShape[0], bShape[1]
	if k != k2 {
		return nil, fmt.Errorf("invalid shapes for matrix multiplication: a.Shape()=%v, b.Shape()=%v", aShape, bShape)
	}

	result, err := e.getOrCreateDest([]int{m, n}, dst...)
	if err != nil {
		return nil, err
	}

	xblas.BatchGemm(1, false, false, m, n, k, a.Data(), k, b.Data(), n, false, result.Data(), n)

	return result, nil
}

// BatchMatMul performs batched matrix multiplication over a leading batch
// axis: a has shape (batch, m, k), b has shape (batch, k, n).
func (e *CPUEngine[T]) BatchMatMul(_ context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if a == nil || b == nil {
		return nil, errors.New("input tensors cannot be nil")
	}

	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 3 || len(bShape) != 3 || aShape[0] != bShape[0] || aShape[2] != bShape[1] {
		return nil, fmt.Errorf("invalid shapes for batched matrix multiplication: a.Shape()=%v, b.Shape()=%v", aShape, bShape)
	}

	batch, m, k, n := aShape[0], aShape[1], aShape[2], bShape[2]

	result, err := e.getOrCreateDest([]int{batch, m, n}, dst...)
	if err != nil {
		return nil, err
	}

	xblas.BatchGemm(batch, false, false, m, n, k, a.Data(), k, b.Data(), n, false, result.Data(), n)

	return result, nil
}

// BatchAddMatMul computes dst += a @ b (batched), an in-place accumulating
// batched matrix multiply.
func (e *CPUEngine[T]) BatchAddMatMul(_ context.Context, dst, a, b *tensor.TensorNumeric[T]) error {
	if dst == nil || a == nil || b == nil {
		return errors.New("tensors cannot be nil")
	}

	aShape, bShape, dShape := a.Shape(), b.Shape(), dst.Shape()
	if len(aShape) != 3 || len(bShape) != 3 || len(dShape) != 3 ||
		aShape[0] != bShape[0] || aShape[2] != bShape[1] ||
		dShape[0] != aShape[0] || dShape[1] != aShape[1] || dShape[2] != bShape[2] {
		return fmt.Errorf("invalid shapes for batched addmm: dst=%v, a=%v, b=%v", dShape, aShape, bShape)
	}

	batch, m, k, n := aShape[0], aShape[1], aShape[2], bShape[2]

	xblas.BatchGemm(batch, false, false, m, n, k, a.Data(), k, b.Data(), n, true, dst.Data(), n)

	return nil
}
