package signature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zerfoo/signature/signature"
)

func TestReciprocals(t *testing.T) {
	assert.Nil(t, signature.Reciprocals[float64](1))
	assert.Nil(t, signature.Reciprocals[float64](0))

	r := signature.Reciprocals[float64](4)
	assert.InDeltaSlice(t, []float64{0.5, 1.0 / 3, 0.25}, r, 1e-15)
}
