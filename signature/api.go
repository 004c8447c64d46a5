package signature

import (
	"fmt"

	"github.com/zerfoo/signature/tensor"
)

// Forward is the stable, tensor-facing entry point for computing a
// signature: it validates path/basepoint/initial against d (via
// CheckArgs), drives SignatureStreamForward over their flat data, and wraps
// the result back into a TensorNumeric of shape (bCount, W) or
// (s, bCount, W) depending on streamOut. basepoint and initial may be nil.
func Forward[T Float](path *tensor.TensorNumeric[T], d int, streamOut bool, basepoint, initial *tensor.TensorNumeric[T], inverse bool) (*tensor.TensorNumeric[T], *StreamScratch[T], error) {
	pathShape := path.Shape()

	hasBasepoint := basepoint != nil
	hasInitial := initial != nil

	var basepointShape, initialShape []int
	if hasBasepoint {
		basepointShape = basepoint.Shape()
	}

	if hasInitial {
		initialShape = initial.Shape()
	}

	var n, bCount, c int
	if len(pathShape) == 3 {
		n, bCount, c = pathShape[0], pathShape[1], pathShape[2]
	}

	if err := CheckArgs(pathShape, bCount, c, d, hasBasepoint, basepointShape, hasInitial, initialShape); err != nil {
		return nil, nil, err
	}

	var basepointData, initialData []T
	if hasBasepoint {
		basepointData = basepoint.Data()
	}

	if hasInitial {
		initialData = initial.Data()
	}

	out, s, layout, scratch, err := SignatureStreamForward(c, d, n, bCount, path.Data(), basepointData, hasBasepoint, initialData, hasInitial, inverse, streamOut)
	if err != nil {
		return nil, nil, err
	}

	outShape := []int{bCount, layout.Width}
	if streamOut {
		outShape = []int{s, bCount, layout.Width}
	}

	outTensor, err := tensor.New[T](outShape, out)
	if err != nil {
		return nil, nil, fmt.Errorf("signature: failed to allocate output tensor: %w", err)
	}

	return outTensor, scratch, nil
}

// Backward is the adjoint of Forward.
// signatureOut must be exactly the tensor Forward returned; gradOut must
// match its shape. initial must be passed again whenever Forward was given
// one (nil otherwise). Returns (grad_path, grad_basepoint_value,
// grad_initial_value); the latter two are nil when the corresponding input
// to Forward was nil.
func Backward[T Float](scratch *StreamScratch[T], signatureOut, gradOut *tensor.TensorNumeric[T], streamOut bool, initial *tensor.TensorNumeric[T]) (gradPath, gradBasepoint, gradInitial *tensor.TensorNumeric[T], err error) {
	if !shapeEqual(signatureOut.Shape(), gradOut.Shape()) {
		return nil, nil, nil, fmt.Errorf("%w: grad_signature shape %v does not match signature shape %v", ErrShapeMismatch, gradOut.Shape(), signatureOut.Shape())
	}

	var initialData []T
	if scratch.HasInitial {
		initialData = initial.Data()
	}

	gp, gbp, gi := SignatureStreamBackward(scratch, signatureOut.Data(), gradOut.Data(), streamOut, initialData)

	c := scratch.Layout.C
	bCount := scratch.BCount

	gradPathTensor, err := tensor.New[T]([]int{scratch.N, bCount, c}, gp)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("signature: failed to allocate grad_path tensor: %w", err)
	}

	var gradBasepointTensor *tensor.TensorNumeric[T]
	if scratch.HasBasepoint {
		gradBasepointTensor, err = tensor.New[T]([]int{bCount, c}, gbp)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("signature: failed to allocate grad_basepoint tensor: %w", err)
		}
	}

	var gradInitialTensor *tensor.TensorNumeric[T]
	if scratch.HasInitial {
		gradInitialTensor, err = tensor.New[T]([]int{bCount, scratch.Layout.Width}, gi)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("signature: failed to allocate grad_initial tensor: %w", err)
		}
	}

	return gradPathTensor, gradBasepointTensor, gradInitialTensor, nil
}

// CombineForward is the tensor-facing wrapper around the flat-buffer
// combineForward primitive. sig1 and sig2 must both have shape (bCount, W(c, d)) with
// matching bCount.
func CombineForward[T Float](sig1, sig2 *tensor.TensorNumeric[T], c, d int) (*tensor.TensorNumeric[T], error) {
	layout, err := NewTermLayout(c, d)
	if err != nil {
		return nil, err
	}

	if err := checkCombineShapes(layout, sig1.Shape(), sig2.Shape()); err != nil {
		return nil, err
	}

	bCount := sig1.Shape()[0]
	out := combineForward(layout, sig1.Data(), sig2.Data(), bCount)

	return tensor.New[T](sig1.Shape(), out)
}

// CombineBackward is the adjoint of CombineForward.
func CombineBackward[T Float](grad, sig1, sig2 *tensor.TensorNumeric[T], c, d int) (gradSig1, gradSig2 *tensor.TensorNumeric[T], err error) {
	layout, err := NewTermLayout(c, d)
	if err != nil {
		return nil, nil, err
	}

	if err := checkCombineShapes(layout, sig1.Shape(), sig2.Shape()); err != nil {
		return nil, nil, err
	}

	bCount := sig1.Shape()[0]
	g1, g2 := combineBackward(layout, sig1.Data(), sig2.Data(), grad.Data(), bCount)

	gradSig1, err = tensor.New[T](sig1.Shape(), g1)
	if err != nil {
		return nil, nil, err
	}

	gradSig2, err = tensor.New[T](sig2.Shape(), g2)
	if err != nil {
		return nil, nil, err
	}

	return gradSig1, gradSig2, nil
}

func checkCombineShapes(layout TermLayout, shape1, shape2 []int) error {
	want := func(bCount int) []int { return []int{bCount, layout.Width} }

	if len(shape1) != 2 || len(shape2) != 2 {
		return fmt.Errorf("%w: combine requires 2-D (batch, width) signatures, got %v and %v", ErrInvalidArgument, shape1, shape2)
	}

	if shape1[0] != shape2[0] {
		return fmt.Errorf("%w: combine requires matching batch size, got %d and %d", ErrShapeMismatch, shape1[0], shape2[0])
	}

	if !shapeEqual(shape1, want(shape1[0])) || !shapeEqual(shape2, want(shape2[0])) {
		return fmt.Errorf("%w: combine signatures must have shape (batch, %d), got %v and %v", ErrShapeMismatch, layout.Width, shape1, shape2)
	}

	return nil
}
