package numeric

// Arithmetic defines a generic interface for the numeric operations
// compute.Engine needs. This keeps the engine (and anything built on top of
// it, such as cmd/sigcli's channel normalization) agnostic to the specific
// floating-point type it operates on. The signature core itself bypasses
// this interface and works directly on flat buffers of its own Float
// constraint, so Arithmetic only needs to cover whole-tensor ops.
type Arithmetic[T any] interface {
	// Basic binary operations
	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Div(a, b T) T

	// Conversion from standard types
	FromFloat32(f float32) T
	FromFloat64(f float64) T
	One() T

	// IsZero checks if a value is zero.
	IsZero(v T) bool

	// Abs returns the absolute value of x.
	Abs(x T) T
	// Sum returns the sum of all elements in the slice.
	Sum(s []T) T
	// Exp returns e**x.
	Exp(x T) T
	// Log returns the natural logarithm of x.
	Log(x T) T
	// Pow returns base**exponent.
	Pow(base, exponent T) T

	// Sqrt returns the square root of x.
	Sqrt(x T) T

	// GreaterThan returns true if a is greater than b.
	GreaterThan(a, b T) bool
}
