package signature

import "errors"

// Sentinel errors returned by the signature package. Wrap with fmt.Errorf
// and %w to attach argument-specific detail.
var (
	// ErrInvalidArgument marks a synchronous argument-validation failure,
	// detected before any allocation takes place.
	ErrInvalidArgument = errors.New("signature: invalid argument")

	// ErrShapeMismatch marks disagreement between tensor shapes that must
	// agree (path vs basepoint_value, path vs initial_value, and so on).
	ErrShapeMismatch = errors.New("signature: shape mismatch")

	// ErrDtypeMismatch marks disagreement between tensor element types.
	ErrDtypeMismatch = errors.New("signature: dtype mismatch")
)
