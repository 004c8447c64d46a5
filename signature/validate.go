package signature

import "fmt"

// CheckArgs validates the shapes involved in a signature computation before
// any allocation happens, so that bad arguments fail fast and synchronously.
// pathShape is the raw shape supplied for the path; bCount and c are the
// batch and channel sizes the basepoint and initial shapes are checked
// against. The stream length is read from pathShape[0].
func CheckArgs(pathShape []int, bCount, c, d int, hasBasepoint bool, basepointShape []int, hasInitial bool, initialShape []int) error {
	if len(pathShape) != 3 {
		if len(pathShape) == 2 {
			return fmt.Errorf("%w: path must be 3-D (stream, batch, channel); got a 2-D shape %v — did you forget the batch axis?", ErrInvalidArgument, pathShape)
		}

		return fmt.Errorf("%w: path must be 3-D (stream, batch, channel); got shape %v", ErrInvalidArgument, pathShape)
	}

	for axis, dim := range pathShape {
		if dim <= 0 {
			return fmt.Errorf("%w: path axis %d has non-positive size %d", ErrInvalidArgument, axis, dim)
		}
	}

	n := pathShape[0]
	if n < 2 && !hasBasepoint {
		return fmt.Errorf("%w: path must have at least 2 stream points when no basepoint is supplied, got %d", ErrInvalidArgument, n)
	}

	if d < 1 {
		return fmt.Errorf("%w: depth must be at least 1, got %d", ErrInvalidArgument, d)
	}

	if hasBasepoint {
		want := []int{bCount, c}
		if !shapeEqual(basepointShape, want) {
			return fmt.Errorf("%w: basepoint_value shape %v does not match path's (batch, channel) %v", ErrShapeMismatch, basepointShape, want)
		}
	}

	if hasInitial {
		want := []int{bCount, SignatureChannels(c, d)}
		if !shapeEqual(initialShape, want) {
			return fmt.Errorf("%w: initial_value shape %v does not match the expected (batch, width) %v", ErrShapeMismatch, initialShape, want)
		}
	}

	return nil
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
