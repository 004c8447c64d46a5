package numeric

import "math"

// Float64Ops provides the implementation of the Arithmetic interface for the float64 type.
type Float64Ops struct{}

// Add performs element-wise addition.
func (ops Float64Ops) Add(a, b float64) float64 { return a + b }

// Sub performs element-wise subtraction.
func (ops Float64Ops) Sub(a, b float64) float64 { return a - b }

// Mul performs element-wise multiplication.
func (ops Float64Ops) Mul(a, b float64) float64 { return a * b }

// Div performs element-wise division.
func (ops Float64Ops) Div(a, b float64) float64 {
	if b == 0 {
		return 0 // Avoid NaN
	}

	return a / b
}

// FromFloat32 converts a float32 to a float64.
func (ops Float64Ops) FromFloat32(f float32) float64 {
	return float64(f)
}

// FromFloat64 converts a float64 to a float64.
func (ops Float64Ops) FromFloat64(f float64) float64 {
	return f
}

// IsZero checks if the given float64 value is zero.
func (ops Float64Ops) IsZero(v float64) bool {
	return v == 0
}

// Exp computes the exponential of x.
func (ops Float64Ops) Exp(x float64) float64 {
	return math.Exp(x)
}

// Log computes the natural logarithm of x.
func (ops Float64Ops) Log(x float64) float64 {
	return math.Log(x)
}

// Pow computes base raised to the power of exponent.
func (ops Float64Ops) Pow(base, exponent float64) float64 {
	return math.Pow(base, exponent)
}

// Sqrt computes the square root of x.
func (ops Float64Ops) Sqrt(x float64) float64 {
	return math.Sqrt(x)
}

// Abs computes the absolute value of x.
func (ops Float64Ops) Abs(x float64) float64 {
	if x < 0 {
		return -x
	}

	return x
}

// Sum computes the sum of elements in a slice.
func (ops Float64Ops) Sum(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v
	}

	return sum
}

// GreaterThan checks if a is greater than b.
func (ops Float64Ops) GreaterThan(a, b float64) bool {
	return a > b
}

// One returns a float64 with value 1.
func (ops Float64Ops) One() float64 {
	return 1.0
}
