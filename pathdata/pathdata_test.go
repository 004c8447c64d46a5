package pathdata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerfoo/signature/pathdata"
)

func TestWriteLoadPath_RoundTrips(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "path.parquet")

	rows := []pathdata.PathRow{
		{Stream: 0, Batch: 0, Channels: []float32{0, 0}},
		{Stream: 0, Batch: 1, Channels: []float32{10, 10}},
		{Stream: 1, Batch: 0, Channels: []float32{1, 0}},
		{Stream: 1, Batch: 1, Channels: []float32{11, 10}},
		{Stream: 2, Batch: 0, Channels: []float32{1, 1}},
		{Stream: 2, Batch: 1, Channels: []float32{11, 11}},
	}

	require.NoError(t, pathdata.WritePath(testFile, rows))

	data, n, bCount, c, err := pathdata.LoadPath(testFile)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, bCount)
	assert.Equal(t, 2, c)

	want := []float64{0, 0, 10, 10, 1, 0, 11, 10, 1, 1, 11, 11}
	assert.InDeltaSlice(t, want, data, 1e-9)
}

func TestLoadPath_FileNotFound(t *testing.T) {
	_, _, _, _, err := pathdata.LoadPath("nonexistent.parquet")
	require.Error(t, err)
}

func TestLoadPath_MissingRowIsError(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "path.parquet")

	rows := []pathdata.PathRow{
		{Stream: 0, Batch: 0, Channels: []float32{0}},
		{Stream: 1, Batch: 0, Channels: []float32{1}},
		// Batch 1 never appears: the (stream, batch) grid is incomplete.
	}

	require.NoError(t, pathdata.WritePath(testFile, rows))

	_, _, _, _, err := pathdata.LoadPath(testFile)
	require.Error(t, err)
}

func TestWriteLoadBasepoint_RoundTrips(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "basepoint.parquet")

	rows := []pathdata.BasepointRow{
		{Batch: 1, Channels: []float32{2, 3}},
		{Batch: 0, Channels: []float32{0, 1}},
	}

	require.NoError(t, pathdata.WriteBasepoint(testFile, rows))

	data, bCount, c, err := pathdata.LoadBasepoint(testFile)
	require.NoError(t, err)
	assert.Equal(t, 2, bCount)
	assert.Equal(t, 2, c)
	assert.InDeltaSlice(t, []float64{0, 1, 2, 3}, data, 1e-9)
}

func TestLoadPath_EmptyFileIsError(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "empty.parquet")

	require.NoError(t, pathdata.WritePath(testFile, []pathdata.PathRow{}))

	_, _, _, _, err := pathdata.LoadPath(testFile)
	require.Error(t, err)

	_ = os.Remove(testFile)
}
