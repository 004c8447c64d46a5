// Command sigcli computes path signatures from a Parquet-encoded path
// tensor on the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/zerfoo/signature/compute"
	"github.com/zerfoo/signature/numeric"
	"github.com/zerfoo/signature/pathdata"
	"github.com/zerfoo/signature/signature"
	"github.com/zerfoo/signature/tensor"
)

// Config represents command-line configuration for computing a signature.
type Config struct {
	InputPath     string // Path to input path data (required)
	BasepointPath string // Optional basepoint data
	OutputPath    string // Output path for the signature

	Depth     int  // Truncation depth (required)
	Inverse   bool // Compute the signature of the time-reversed path
	StreamOut bool // Emit the signature at every stream index, not just the last
	Normalize bool // Z-score normalize channels across the stream axis before transforming

	Workers int // Max goroutines for the batch/chunk drivers (0: leave at default)

	Verbose bool
}

func main() {
	config := parseFlags()

	logger := log.New(os.Stderr, "sigcli: ", log.LstdFlags)

	if config.Workers > 0 {
		signature.SetMaxParallelism(config.Workers)
	}

	if config.Verbose {
		logger.Printf("loading path data from %s", config.InputPath)
	}

	if err := run(config, logger); err != nil {
		logger.Fatalf("failed: %v", err)
	}
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.InputPath, "input", "", "Path to input path data, Parquet format (required)")
	flag.StringVar(&config.BasepointPath, "basepoint", "", "Path to optional basepoint data, Parquet format")
	flag.StringVar(&config.OutputPath, "output", "", "Output path for the signature, Parquet format (required)")

	flag.IntVar(&config.Depth, "depth", 2, "Truncation depth")
	flag.BoolVar(&config.Inverse, "inverse", false, "Compute the signature of the time-reversed path")
	flag.BoolVar(&config.StreamOut, "stream", false, "Emit the signature at every stream index")
	flag.BoolVar(&config.Normalize, "normalize", false, "Z-score normalize channels before transforming")

	flag.IntVar(&config.Workers, "workers", 0, "Max goroutines for the batch/chunk drivers (0: default)")
	flag.BoolVar(&config.Verbose, "verbose", false, "Verbose output")

	flag.Parse()

	if config.InputPath == "" {
		log.Fatal("input path is required (-input)")
	}

	if config.OutputPath == "" {
		log.Fatal("output path is required (-output)")
	}

	return config
}

func run(config *Config, logger *log.Logger) error {
	start := time.Now()

	data, n, bCount, c, err := pathdata.LoadPath(config.InputPath)
	if err != nil {
		return fmt.Errorf("load path: %w", err)
	}

	path, err := tensor.New[float64]([]int{n, bCount, c}, data)
	if err != nil {
		return fmt.Errorf("build path tensor: %w", err)
	}

	engine := compute.NewCPUEngine[float64](numeric.Float64Ops{})

	if config.Normalize {
		if err := normalizeChannels(engine, path, n, bCount, c); err != nil {
			return fmt.Errorf("normalize: %w", err)
		}
	}

	var basepoint *tensor.TensorNumeric[float64]

	if config.BasepointPath != "" {
		bpData, bpBCount, bpC, err := pathdata.LoadBasepoint(config.BasepointPath)
		if err != nil {
			return fmt.Errorf("load basepoint: %w", err)
		}

		basepoint, err = tensor.New[float64]([]int{bpBCount, bpC}, bpData)
		if err != nil {
			return fmt.Errorf("build basepoint tensor: %w", err)
		}
	}

	out, _, err := signature.Forward[float64](path, config.Depth, config.StreamOut, basepoint, nil, config.Inverse)
	if err != nil {
		return fmt.Errorf("signature forward: %w", err)
	}

	if err := writeSignature(config.OutputPath, out, bCount); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if config.Verbose {
		logger.Printf("wrote signature with shape %v to %s in %v (%d normalize scratch bytes allocated)",
			out.Shape(), config.OutputPath, time.Since(start), engine.AllocatedBytes())
	}

	return nil
}

// normalizeChannels z-score normalizes each channel across the stream axis.
// The per-(batch, channel) mean and inverse standard deviation are
// accumulated with plain loops over path.Data(); centering and scaling the
// path are then whole-tensor broadcast ops against compute.Engine.
func normalizeChannels(engine *compute.CPUEngine[float64], path *tensor.TensorNumeric[float64], n, bCount, c int) error {
	ctx := context.Background()

	mean, err := tensor.New[float64]([]int{1, bCount, c}, nil)
	if err != nil {
		return err
	}

	std, err := engine.EmptyLike(mean)
	if err != nil {
		return err
	}

	if err := engine.Zero(ctx, std); err != nil {
		return err
	}

	data := path.Data()
	meanData := mean.Data()

	for i := 0; i < n; i++ {
		for j := 0; j < bCount*c; j++ {
			meanData[j] += data[i*bCount*c+j]
		}
	}

	for j := range meanData {
		meanData[j] /= float64(n)
	}

	stdData := std.Data()

	for i := 0; i < n; i++ {
		for j := 0; j < bCount*c; j++ {
			d := data[i*bCount*c+j] - meanData[j]
			stdData[j] += d * d
		}
	}

	for j := range stdData {
		v := stdData[j] / float64(n)
		if v > 0 {
			stdData[j] = 1 / sqrt(v)
		} else {
			stdData[j] = 0
		}
	}

	broadcastMean, err := tensor.New[float64]([]int{1, bCount, c}, meanData)
	if err != nil {
		return err
	}

	broadcastStd, err := tensor.New[float64]([]int{1, bCount, c}, stdData)
	if err != nil {
		return err
	}

	centered, err := engine.Sub(ctx, path, broadcastMean)
	if err != nil {
		return err
	}

	scaled, err := engine.Mul(ctx, centered, broadcastStd)
	if err != nil {
		return err
	}

	return engine.Copy(ctx, path, scaled)
}

func sqrt(v float64) float64 {
	// Newton's method avoids pulling in math just for Sqrt in this one spot;
	// eight iterations from v is enough for the normalize feature's purposes.
	if v == 0 {
		return 0
	}

	x := v
	for i := 0; i < 8; i++ {
		x = 0.5 * (x + v/x)
	}

	return x
}

// writeSignature walks the output tensor one batch row (and, when streamed,
// one step) at a time via tensor.Slice rather than hand-computing flat
// offsets into out.Data(), so a change to the tensor's internal layout can't
// silently desync this from the recurrence that produced out.
func writeSignature(path string, out *tensor.TensorNumeric[float64], bCount int) error {
	shape := out.Shape()

	if len(shape) == 2 {
		rows := make([]pathdata.BasepointRow, bCount)

		for b := 0; b < bCount; b++ {
			row, err := out.Slice([2]int{b, b + 1})
			if err != nil {
				return fmt.Errorf("slice batch %d: %w", b, err)
			}

			rows[b] = pathdata.BasepointRow{
				Batch:    int32(b),
				Channels: toFloat32(row.Data()),
			}
		}

		return pathdata.WriteBasepoint(path, rows)
	}

	steps := shape[0]
	rows := make([]pathdata.PathRow, 0, steps*bCount)

	for s := 0; s < steps; s++ {
		stepView, err := out.Slice([2]int{s, s + 1})
		if err != nil {
			return fmt.Errorf("slice step %d: %w", s, err)
		}

		for b := 0; b < bCount; b++ {
			batchView, err := stepView.Slice([2]int{0, 1}, [2]int{b, b + 1})
			if err != nil {
				return fmt.Errorf("slice step %d batch %d: %w", s, b, err)
			}

			rows = append(rows, pathdata.PathRow{
				Stream:   int32(s),
				Batch:    int32(b),
				Channels: toFloat32(batchView.Data()),
			})
		}
	}

	return pathdata.WritePath(path, rows)
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}

	return out
}
