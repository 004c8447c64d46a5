// Package device provides device abstraction and memory allocation interfaces.
package device

import (
	"fmt"
	"sync/atomic"
)

// Allocator defines the interface for a memory allocator.
// It is responsible for allocating and freeing memory on a specific device.
type Allocator interface {
	// Allocate allocates a block of memory of the given size in bytes.
	// For the CPU, this will be a Go slice. For a GPU, it would be a device pointer.
	Allocate(size int) (any, error)
	// Free releases the allocated memory.
	// For the CPU allocator, this is a no-op as Go's garbage collector manages memory.
	Free(ptr any) error
	// Allocated reports the cumulative number of bytes handed out by
	// Allocate over the allocator's lifetime. compute.CPUEngine reports it
	// through AllocatedBytes instead of keeping a byte counter of its own.
	Allocated() int64
}

// --- CPU Allocator ---

// cpuAllocator is the memory allocator for the CPU.
// It uses standard Go slices and relies on the Go garbage collector.
type cpuAllocator struct {
	allocated atomic.Int64
}

// NewCPUAllocator creates a new CPU memory allocator.
func NewCPUAllocator() Allocator {
	return &cpuAllocator{}
}

// Allocate creates a new Go slice of the given size.
func (a *cpuAllocator) Allocate(size int) (any, error) {
	if size < 0 {
		return nil, fmt.Errorf("allocation size cannot be negative: %d", size)
	}

	a.allocated.Add(int64(size))

	return make([]byte, size), nil
}

// Free is a no-op for the CPU allocator because the Go garbage collector
// automatically manages memory for slices.
func (a *cpuAllocator) Free(_ any) error {
	return nil
}

// Allocated reports the cumulative number of bytes this allocator has
// handed out.
func (a *cpuAllocator) Allocated() int64 {
	return a.allocated.Load()
}
