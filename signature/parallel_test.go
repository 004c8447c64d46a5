package signature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zerfoo/signature/signature"
)

func TestMaxParallelism_SetAndGet(t *testing.T) {
	orig := signature.MaxParallelism()
	defer signature.SetMaxParallelism(orig)

	signature.SetMaxParallelism(4)
	assert.Equal(t, 4, signature.MaxParallelism())

	// Values below 1 are clamped to 1.
	signature.SetMaxParallelism(0)
	assert.Equal(t, 1, signature.MaxParallelism())

	signature.SetMaxParallelism(-5)
	assert.Equal(t, 1, signature.MaxParallelism())
}
