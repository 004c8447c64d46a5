// Package tensor provides a multi-dimensional array (tensor) implementation.
package tensor

// Product returns the product of the elements in a slice of ints.
func Product(s []int) int {
	p := 1
	for _, v := range s {
		p *= v
	}

	return p
}
