package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSignatureChunkedForward_MatchesSerial exercises the chunked-parallel
// combine driver directly (bypassing the size threshold SignatureStreamForward
// applies) and checks it agrees with the plain serial sweep across several
// forced parallelism levels (testable property 7: parallelism invariance).
func TestSignatureChunkedForward_MatchesSerial(t *testing.T) {
	const c, d, n, bCount = 3, 3, 32, 2

	layout, err := NewTermLayout(c, d)
	require.NoError(t, err)

	r := Reciprocals[float64](d)

	path := make([]float64, n*bCount*c)
	state := uint64(99)

	for i := range path {
		state = state*6364136223846793005 + 1442695040888963407
		path[i] = float64((state>>11)&0xFFFFFF)/float64(1<<24)*2 - 1
	}

	increments, s := ComputeIncrements(path, n, bCount, c, nil, false, false)

	first := FlatView(increments[0:bCount*c], c)
	serial := make([]float64, bCount*layout.Width)
	RestrictedExpForward(layout, first, serial, bCount, r)

	for step := 1; step < s; step++ {
		incr := FlatView(increments[step*bCount*c:(step+1)*bCount*c], c)
		FusedMultExpForward(layout, serial, incr, bCount, r, false)
	}

	orig := MaxParallelism()
	defer SetMaxParallelism(orig)

	for _, workers := range []int{1, 2, 3, 5, 8} {
		SetMaxParallelism(workers)

		firstTerm := make([]float64, bCount*layout.Width)
		RestrictedExpForward(layout, first, firstTerm, bCount, r)

		chunked := signatureChunkedForward(layout, increments, s, bCount, r, firstTerm, false)

		assert.InDeltaSlicef(t, serial, chunked, 1e-9, "workers=%d", workers)
	}
}

func TestChunkBounds(t *testing.T) {
	orig := MaxParallelism()
	defer SetMaxParallelism(orig)

	SetMaxParallelism(8)

	starts, ends := chunkBounds(31)
	require.NotEmpty(t, starts)
	assert.Equal(t, 1, starts[0])
	assert.Equal(t, 31, ends[len(ends)-1])

	for i := 1; i < len(starts); i++ {
		assert.Equal(t, ends[i-1], starts[i])
	}
}

func TestShouldChunk(t *testing.T) {
	orig := MaxParallelism()
	defer SetMaxParallelism(orig)

	SetMaxParallelism(1)
	assert.False(t, shouldChunk(100000, 8, 100))

	SetMaxParallelism(8)
	assert.False(t, shouldChunk(10, 8, 100))
	assert.True(t, shouldChunk(10000, 8, 100))
}
