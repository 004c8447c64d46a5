// Package pathdata reads and writes the (stream, batch, channel) path
// tensors the signature package operates on from columnar Parquet files,
// the natural on-disk shape for path data too large to hold as CSV.
package pathdata

import (
	"fmt"
	"sort"

	"github.com/parquet-go/parquet-go"
)

// PathRow is one (stream, batch) observation of a path: the channel values
// at a single stream index for a single batch row, one row per observation
// the way a tabular Parquet export would lay out a time series.
type PathRow struct {
	Stream   int32     `parquet:"stream"`
	Batch    int32     `parquet:"batch"`
	Channels []float32 `parquet:"channels,list"`
}

// BasepointRow is one (batch) basepoint observation, omitted entirely when a
// path has no basepoint.
type BasepointRow struct {
	Batch    int32     `parquet:"batch"`
	Channels []float32 `parquet:"channels,list"`
}

// WritePath writes rows describing a path tensor to a Parquet file at path,
// one row per (stream, batch) pair.
func WritePath(path string, rows []PathRow) error {
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("pathdata: write %s: %w", path, err)
	}

	return nil
}

// WriteBasepoint writes rows describing a basepoint tensor to a Parquet
// file at path, one row per batch.
func WriteBasepoint(path string, rows []BasepointRow) error {
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("pathdata: write %s: %w", path, err)
	}

	return nil
}

// LoadPath reads a path tensor previously written by WritePath and returns
// it flattened in the (stream, batch, channel) term layout the signature
// package expects, along with the stream length n, batch count bCount, and
// channel count c it inferred from the rows.
//
// Every batch row must be present at every stream index and every row must
// carry the same channel count; LoadPath returns an error otherwise.
func LoadPath(path string) (data []float64, n, bCount, c int, err error) {
	rows, err := parquet.ReadFile[PathRow](path)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("pathdata: read %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, 0, 0, 0, fmt.Errorf("pathdata: %s: no rows", path)
	}

	maxStream, maxBatch := int32(-1), int32(-1)

	for _, r := range rows {
		if r.Stream > maxStream {
			maxStream = r.Stream
		}

		if r.Batch > maxBatch {
			maxBatch = r.Batch
		}

		if len(r.Channels) != len(rows[0].Channels) {
			return nil, 0, 0, 0, fmt.Errorf("pathdata: %s: inconsistent channel count", path)
		}
	}

	n, bCount, c = int(maxStream)+1, int(maxBatch)+1, len(rows[0].Channels)

	data = make([]float64, n*bCount*c)
	seen := make([]bool, n*bCount)

	for _, r := range rows {
		idx := int(r.Stream)*bCount + int(r.Batch)
		if seen[idx] {
			return nil, 0, 0, 0, fmt.Errorf("pathdata: %s: duplicate row for stream=%d batch=%d", path, r.Stream, r.Batch)
		}

		seen[idx] = true

		base := idx * c
		for k, v := range r.Channels {
			data[base+k] = float64(v)
		}
	}

	for idx, ok := range seen {
		if !ok {
			return nil, 0, 0, 0, fmt.Errorf("pathdata: %s: missing row for stream=%d batch=%d", path, idx/bCount, idx%bCount)
		}
	}

	return data, n, bCount, c, nil
}

// LoadBasepoint reads a basepoint tensor previously written by
// WriteBasepoint, flattened in (batch, channel) order.
func LoadBasepoint(path string) (data []float64, bCount, c int, err error) {
	rows, err := parquet.ReadFile[BasepointRow](path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("pathdata: read %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, 0, 0, fmt.Errorf("pathdata: %s: no rows", path)
	}

	sorted := make([]BasepointRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Batch < sorted[j].Batch })

	bCount = int(sorted[len(sorted)-1].Batch) + 1
	c = len(sorted[0].Channels)

	data = make([]float64, bCount*c)
	seen := make([]bool, bCount)

	for _, r := range sorted {
		if len(r.Channels) != c {
			return nil, 0, 0, fmt.Errorf("pathdata: %s: inconsistent channel count", path)
		}

		if int(r.Batch) >= bCount || seen[r.Batch] {
			return nil, 0, 0, fmt.Errorf("pathdata: %s: duplicate or out-of-range batch %d", path, r.Batch)
		}

		seen[r.Batch] = true

		base := int(r.Batch) * c
		for k, v := range r.Channels {
			data[base+k] = float64(v)
		}
	}

	return data, bCount, c, nil
}
