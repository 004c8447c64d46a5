package tensor

import (
	"errors"
	"fmt"
)

// Reshape returns a new TensorNumeric with a different shape that shares the same underlying data.
// The new shape must have the same total number of elements as the original tensor.
// This operation is a "view" and does not copy the data.
func (t *TensorNumeric[T]) Reshape(newShape []int) (*TensorNumeric[T], error) {
	newSize := 1
	inferredDim := -1
	for i, dim := range newShape {
		switch {
		case dim > 0:
			newSize *= dim
		case dim == -1:
			if inferredDim != -1 {
				return nil, errors.New("only one dimension can be inferred")
			}
			inferredDim = i
		default:
			return nil, fmt.Errorf("invalid shape dimension: %d; must be positive or -1", dim)
		}
	}

	if inferredDim != -1 {
		if t.Size()%newSize != 0 {
			return nil, fmt.Errorf("cannot infer dimension for size %d and new size %d", t.Size(), newSize)
		}
		newShape[inferredDim] = t.Size() / newSize
		newSize = t.Size()
	}

	if newSize != t.Size() {
		return nil, fmt.Errorf("cannot reshape tensor of size %d into shape %v with size %d", t.Size(), newShape, newSize)
	}

	// For a reshaped tensor, strides need to be recalculated.
	newStrides := make([]int, len(newShape))
	stride := 1
	for i := len(newShape) - 1; i >= 0; i-- {
		newStrides[i] = stride
		stride *= newShape[i]
	}

	return &TensorNumeric[T]{
		shape:   newShape,
		strides: newStrides,
		data:    t.data, // Share the underlying data
		isView:  true,
	}, nil
}

// Unsqueeze returns a view with a new length-1 axis inserted at dim.
// dim may be in [0, Dims()], matching the convention of inserting before
// the existing axis at that position (Dims() itself appends a trailing axis).
func (t *TensorNumeric[T]) Unsqueeze(dim int) (*TensorNumeric[T], error) {
	if dim < 0 || dim > len(t.shape) {
		return nil, fmt.Errorf("invalid unsqueeze dim %d for tensor with %d dimensions", dim, len(t.shape))
	}

	newShape := make([]int, 0, len(t.shape)+1)
	newShape = append(newShape, t.shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, t.shape[dim:]...)

	newStrides := make([]int, 0, len(t.strides)+1)
	newStrides = append(newStrides, t.strides[:dim]...)

	// The stride of a size-1 axis is never read during indexing; reuse the
	// neighboring stride so Strides() stays well-formed for callers that
	// inspect it directly.
	innerStride := 1
	if dim < len(t.strides) {
		innerStride = t.strides[dim]
	} else if len(t.strides) > 0 {
		innerStride = 1
	}

	newStrides = append(newStrides, innerStride)
	newStrides = append(newStrides, t.strides[dim:]...)

	return &TensorNumeric[T]{
		shape:   newShape,
		strides: newStrides,
		data:    t.data,
		isView:  t.isView,
	}, nil
}
