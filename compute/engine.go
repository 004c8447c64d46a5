// Package compute defines a narrow tensor-computation capability that
// callers outside the signature core (such as cmd/sigcli) build on, and a
// CPU implementation of it. The signature package does not use it.
package compute

import (
	"context"

	"github.com/zerfoo/signature/numeric"
	"github.com/zerfoo/signature/tensor"
)

// Engine defines the interface for a computation engine (e.g., CPU, GPU).
// It is intentionally narrow: element-wise arithmetic, matrix multiplies,
// and allocation helpers. The signature core (its per-depth recurrences and
// its streaming driver) bypasses this interface and works directly on flat
// buffers (see the signature package), the way a from-scratch kernel would.
type Engine[T tensor.Float] interface {
	// Ops returns the numeric.Arithmetic operations for the engine's numeric type.
	Ops() numeric.Arithmetic[T]

	// Add performs element-wise addition of two tensors, with support for broadcasting.
	Add(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// Sub performs element-wise subtraction of two tensors, with support for broadcasting.
	Sub(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// Mul performs element-wise multiplication of two tensors, with support for broadcasting.
	Mul(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// MatMul performs matrix multiplication of two 2D tensors, backed by gonum BLAS.
	MatMul(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// BatchMatMul performs batched matrix multiplication over a leading batch
	// axis: a has shape (batch, m, k), b has shape (batch, k, n), the result
	// has shape (batch, m, n) — an out-of-place batched matrix multiply.
	BatchMatMul(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// BatchAddMatMul computes dst += a @ b (batched), an in-place
	// accumulating batched matrix multiply.
	BatchAddMatMul(ctx context.Context, dst, a, b *tensor.TensorNumeric[T]) error

	// Zero sets all elements of a tensor to zero.
	Zero(ctx context.Context, a *tensor.TensorNumeric[T]) error

	// Copy copies the data from src into dst. Shapes must match.
	Copy(ctx context.Context, dst, src *tensor.TensorNumeric[T]) error

	// Fill fills the tensor with a scalar value.
	Fill(ctx context.Context, t *tensor.TensorNumeric[T], value T) error

	// EmptyLike allocates a new, uninitialized tensor with the same shape as a.
	EmptyLike(a *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// ZerosLike allocates a new, zero-filled tensor with the same shape as a.
	ZerosLike(a *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
}
