package signature

// Reciprocals returns [1/2, 1/3, ..., 1/D], the per-depth scaling factors
// used by the restricted exponential recurrence. Its length is D-1; for
// D==1 it is empty, since the restricted exponential of a depth-1 element
// is just the element itself and no scaling is ever applied.
func Reciprocals[T Float](d int) []T {
	if d <= 1 {
		return nil
	}

	r := make([]T, d-1)
	for i := range r {
		r[i] = T(1) / T(i+2)
	}

	return r
}
