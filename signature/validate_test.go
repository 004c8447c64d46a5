package signature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerfoo/signature/signature"
)

func TestCheckArgs_Valid(t *testing.T) {
	err := signature.CheckArgs([]int{3, 2, 4}, 2, 4, 2, false, nil, false, nil)
	require.NoError(t, err)
}

func TestCheckArgs_2DPathFriendlyError(t *testing.T) {
	err := signature.CheckArgs([]int{3, 4}, 1, 4, 2, false, nil, false, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, signature.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "batch axis")
}

func TestCheckArgs_TooShortWithoutBasepoint(t *testing.T) {
	err := signature.CheckArgs([]int{1, 2, 3}, 2, 3, 2, false, nil, false, nil)
	require.Error(t, err)
}

func TestCheckArgs_OkWithBasepointAndSingleStreamPoint(t *testing.T) {
	err := signature.CheckArgs([]int{1, 2, 3}, 2, 3, 2, true, []int{2, 3}, false, nil)
	require.NoError(t, err)
}

func TestCheckArgs_DepthTooSmall(t *testing.T) {
	err := signature.CheckArgs([]int{3, 2, 4}, 2, 4, 0, false, nil, false, nil)
	require.Error(t, err)
}

func TestCheckArgs_BasepointShapeMismatch(t *testing.T) {
	err := signature.CheckArgs([]int{3, 2, 4}, 2, 4, 2, true, []int{2, 3}, false, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, signature.ErrShapeMismatch)
}

func TestCheckArgs_InitialShapeMismatch(t *testing.T) {
	err := signature.CheckArgs([]int{3, 2, 4}, 2, 4, 2, false, nil, true, []int{2, 999})
	require.Error(t, err)
	assert.ErrorIs(t, err, signature.ErrShapeMismatch)
}

func TestCheckArgs_ZeroSizedAxis(t *testing.T) {
	err := signature.CheckArgs([]int{0, 2, 4}, 2, 4, 2, false, nil, false, nil)
	require.Error(t, err)
}
